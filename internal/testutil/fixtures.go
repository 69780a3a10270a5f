package testutil

import "github.com/roach88/sloimpact/internal/model"

// IDs used by PaymentSystem.
const (
	PaymentArchitecture = "arch-shop"

	// CreditInstitute provides FaceCredit. A violation there reaches both
	// business-process tasks.
	CompCreditInstitute = "comp-credit-institute"
	CompPayment         = "comp-payment"
	CompGateway         = "comp-gateway"
	CompInventory       = "comp-inventory"
	CompReporting       = "comp-reporting"

	FaceCredit    = "face-credit"    // I
	FacePay       = "face-pay"       // P, realized by StepPayment
	FaceOther     = "face-other"     // first hop towards FaceInventory
	FaceAudit     = "face-audit"     // dead end
	FaceAnother   = "face-another"   // second hop towards FaceInventory
	FaceMetrics   = "face-metrics"   // dead end
	FaceInventory = "face-inventory" // I2, realized by StepInventory
	FaceStock     = "face-stock"     // dead end
	FaceReport1   = "face-report-1"
	FaceReport2   = "face-report-2"
	FaceReport3   = "face-report-3"

	SagaOrder     = "saga-order"
	StepPayment   = "step-payment"
	StepInventory = "step-inventory"

	ProcessOrder  = "process-order"
	TaskPay       = "Task_pay"
	TaskInventory = "Task_inventory"

	RuleCreditLatency    = "slo-credit-latency"    // at FaceCredit
	RuleCreditComponent  = "slo-credit-component"  // at CompCreditInstitute
	RuleReportingLatency = "slo-reporting-latency" // at CompReporting, dead ends only
)

// PaymentSystem builds the reference architecture:
//
//	credit-institute ──provides──▶ face-credit
//	payment   consumes face-credit,   provides face-pay, face-other, face-audit
//	gateway   consumes face-other,    provides face-another, face-metrics
//	inventory consumes face-another,  provides face-inventory, face-stock
//	reporting provides face-report-1..3 (consumed by nobody)
//
//	saga-order: step-payment   realizes face-pay       → Task_pay
//	            step-inventory realizes face-inventory → Task_inventory
//
// Violating RuleCreditLatency produces two notifications. The chain to
// Task_pay has 4 impacts, the chain to Task_inventory has 6, and 12 impacts
// are persisted in total (the dead ends face-audit, face-metrics and
// face-stock included).
func PaymentSystem() *model.System {
	return &model.System{
		ID:   "system-shop",
		Name: "Shop",
		Architecture: model.Architecture{
			ID:   PaymentArchitecture,
			Name: "Shop Architecture",
			Interfaces: []*model.Interface{
				{ID: FaceCredit, Name: "Credit API"},
				{ID: FacePay, Name: "Pay"},
				{ID: FaceOther, Name: "Other"},
				{ID: FaceAudit, Name: "Audit"},
				{ID: FaceAnother, Name: "Another"},
				{ID: FaceMetrics, Name: "Metrics"},
				{ID: FaceInventory, Name: "Inventory API"},
				{ID: FaceStock, Name: "Stock"},
				{ID: FaceReport1, Name: "Report 1"},
				{ID: FaceReport2, Name: "Report 2"},
				{ID: FaceReport3, Name: "Report 3"},
			},
			Components: []*model.Component{
				{ID: CompCreditInstitute, Name: "Credit Institute", Provides: []string{FaceCredit}},
				{ID: CompPayment, Name: "Payment", Provides: []string{FacePay, FaceOther, FaceAudit}, Consumes: []string{FaceCredit}},
				{ID: CompGateway, Name: "Gateway", Provides: []string{FaceAnother, FaceMetrics}, Consumes: []string{FaceOther}},
				{ID: CompInventory, Name: "Inventory", Provides: []string{FaceInventory, FaceStock}, Consumes: []string{FaceAnother}},
				{ID: CompReporting, Name: "Reporting", Provides: []string{FaceReport1, FaceReport2, FaceReport3}},
			},
		},
		Process: model.Process{
			ID:   ProcessOrder,
			Name: "Order Process",
			Tasks: []*model.Task{
				{ID: TaskPay, Name: "Pay Order"},
				{ID: TaskInventory, Name: "Reserve Stock"},
			},
		},
		Sagas: []*model.Saga{
			{
				ID:   SagaOrder,
				Name: "Order Saga",
				Steps: []*model.SagaStep{
					{ID: StepPayment, Name: "Payment Step", InterfaceID: FacePay, TaskID: TaskPay},
					{ID: StepInventory, Name: "Inventory Step", InterfaceID: FaceInventory, TaskID: TaskInventory},
				},
			},
		},
		Rules: []*model.SloRule{
			{ID: RuleCreditLatency, Name: "Credit latency", ArchitectureID: PaymentArchitecture, InterfaceID: FaceCredit, Metric: "latency_ms", Threshold: 200, Period: 60},
			{ID: RuleCreditComponent, Name: "Credit availability", ArchitectureID: PaymentArchitecture, ComponentID: CompCreditInstitute, Metric: "availability", Threshold: 0.99, Period: 300},
			{ID: RuleReportingLatency, Name: "Reporting latency", ArchitectureID: PaymentArchitecture, ComponentID: CompReporting, Metric: "latency_ms", Threshold: 1000, Period: 60},
		},
	}
}

// IDs used by CyclicSystem.
const (
	CyclicArchitecture = "arch-loop"
	FaceLoopA          = "face-loop-a"
	FaceLoopB          = "face-loop-b"
	RuleLoop           = "slo-loop"
)

// CyclicSystem has two components feeding each other: whatever happens at
// face-loop-a reaches face-loop-b and comes back. Nothing realizes either
// interface, so unbounded propagation never terminates.
func CyclicSystem() *model.System {
	return &model.System{
		ID:   "system-loop",
		Name: "Loop",
		Architecture: model.Architecture{
			ID:   CyclicArchitecture,
			Name: "Loop Architecture",
			Interfaces: []*model.Interface{
				{ID: FaceLoopA, Name: "A"},
				{ID: FaceLoopB, Name: "B"},
			},
			Components: []*model.Component{
				{ID: "comp-loop-a", Name: "Loop A", Provides: []string{FaceLoopA}, Consumes: []string{FaceLoopB}},
				{ID: "comp-loop-b", Name: "Loop B", Provides: []string{FaceLoopB}, Consumes: []string{FaceLoopA}},
			},
		},
		Process: model.Process{ID: "process-loop", Name: "Loop Process"},
		Rules: []*model.SloRule{
			{ID: RuleLoop, Name: "Loop latency", ArchitectureID: CyclicArchitecture, InterfaceID: FaceLoopA, Threshold: 1, Period: 1},
		},
	}
}
