package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sloimpact/internal/model"
	"github.com/roach88/sloimpact/internal/testutil"
)

func TestSystem_Lookups(t *testing.T) {
	sys := testutil.PaymentSystem()

	face, ok := sys.Interface(testutil.FacePay)
	require.True(t, ok)
	assert.Equal(t, "Pay", face.Name)

	_, ok = sys.Interface("nope")
	assert.False(t, ok)

	provider, ok := sys.Provider(testutil.FacePay)
	require.True(t, ok)
	assert.Equal(t, testutil.CompPayment, provider.ID)

	consumers := sys.ConsumersOf(testutil.FaceCredit)
	require.Len(t, consumers, 1)
	assert.Equal(t, testutil.CompPayment, consumers[0].ID)
	assert.Empty(t, sys.ConsumersOf(testutil.FaceAudit))

	saga, ok := sys.SagaOf(testutil.StepInventory)
	require.True(t, ok)
	assert.Equal(t, testutil.SagaOrder, saga.ID)

	rule, ok := sys.Rule(testutil.RuleCreditLatency)
	require.True(t, ok)
	assert.True(t, rule.HasLocation())
}

func TestSystem_StepsRealizingMatchesByID(t *testing.T) {
	sys := testutil.PaymentSystem()

	// A structurally equal but distinct interface value must still match.
	copyOfPay := &model.Interface{ID: testutil.FacePay, Name: "Pay"}
	steps := sys.StepsRealizing(copyOfPay.ID)
	require.Len(t, steps, 1)
	assert.Equal(t, testutil.StepPayment, steps[0].ID)

	assert.Empty(t, sys.StepsRealizing(testutil.FaceOther))
}

func TestSystem_IndexSurvivesJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(testutil.PaymentSystem())
	require.NoError(t, err)

	var decoded model.System
	require.NoError(t, json.Unmarshal(data, &decoded))

	steps := decoded.StepsRealizing(testutil.FaceInventory)
	require.Len(t, steps, 1)
	assert.Equal(t, testutil.TaskInventory, steps[0].TaskID)
}

func TestSystem_Describe(t *testing.T) {
	sys := testutil.PaymentSystem()

	el, err := sys.Describe(model.InterfaceAt(testutil.FacePay))
	require.NoError(t, err)
	assert.Equal(t, "Interface", el.Type)
	require.NotNil(t, el.Container)
	assert.Equal(t, "Component", el.Container.Type)
	assert.Equal(t, "Payment", el.Container.Name)

	el, err = sys.Describe(model.StepAt(testutil.StepPayment))
	require.NoError(t, err)
	assert.Equal(t, "Step", el.Type)
	assert.Equal(t, "Saga", el.Container.Type)

	el, err = sys.Describe(model.TaskAt(testutil.TaskPay))
	require.NoError(t, err)
	assert.Equal(t, "Task", el.Type)
	assert.Equal(t, "Process", el.Container.Type)
	assert.Equal(t, "Order Process", el.Container.Name)

	_, err = sys.Describe(model.TaskAt("missing"))
	assert.Error(t, err)
	_, err = sys.Describe(model.Location{Kind: 42, ID: "x"})
	assert.Error(t, err)
}

func paymentNotification(sys *model.System) *model.Notification {
	rule, _ := sys.Rule(testutil.RuleCreditLatency)
	root := model.NewImpact(nil, model.InterfaceAt(testutil.FaceCredit))
	root.ID = "impact-1"
	pay := model.NewImpact(root, model.InterfaceAt(testutil.FacePay))
	pay.ID = "impact-2"
	step := model.NewImpact(pay, model.StepAt(testutil.StepPayment))
	step.ID = "impact-9"
	task := model.NewImpact(step, model.TaskAt(testutil.TaskPay))
	task.ID = "impact-10"
	return &model.Notification{
		RootCause:      &model.Violation{Rule: rule, Threshold: 250, Period: 60, StartTime: time.Unix(0, 0)},
		TopLevelImpact: task,
	}
}

func TestRenderNotification(t *testing.T) {
	sys := testutil.PaymentSystem()
	view, err := model.RenderNotification(sys, paymentNotification(sys))
	require.NoError(t, err)

	assert.Equal(t, testutil.TaskPay, view.ImpactLocation.ID)
	assert.Equal(t, testutil.RuleCreditLatency, view.ViolatedRule.ID)
	require.Len(t, view.ImpactPath, 4)
	assert.Equal(t, testutil.TaskPay, view.ImpactPath[0].ID)
	assert.Equal(t, testutil.StepPayment, view.ImpactPath[0].Cause)
	assert.Equal(t, testutil.FaceCredit, view.ImpactPath[3].ID)
	assert.Empty(t, view.ImpactPath[3].Cause)

	data, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"impactlocation"`)
	assert.Contains(t, string(data), `"impactpath"`)
}

func TestRenderNotification_Incomplete(t *testing.T) {
	_, err := model.RenderNotification(testutil.PaymentSystem(), &model.Notification{})
	assert.Error(t, err)
}

func TestNotification_Fingerprint(t *testing.T) {
	sys := testutil.PaymentSystem()
	a := paymentNotification(sys)
	b := paymentNotification(sys)
	b.TopLevelImpact.ID = "impact-99"

	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)

	assert.Len(t, fa, 64)
	assert.Equal(t, fa, fb, "ledger ids do not take part in the fingerprint")
	assert.NotSame(t, a, b)

	other := *a.RootCause
	otherRule := *other.Rule
	otherRule.ID = "slo-other"
	other.Rule = &otherRule
	c := &model.Notification{RootCause: &other, TopLevelImpact: a.TopLevelImpact}
	fc, err := c.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, fa, fc)

	_, err = (&model.Notification{}).Fingerprint()
	assert.Error(t, err)
}
