package harness

// TraceEvent is one ledger write, in write order.
type TraceEvent struct {
	Seq      int64  `json:"seq"`
	ID       string `json:"id"`
	Location string `json:"location"`
	Cause    string `json:"cause,omitempty"`
}

// NotificationTrace is one produced notification.
type NotificationTrace struct {
	Task        string   `json:"task"`
	TopImpactID string   `json:"top_impact_id"`
	Path        []string `json:"path"`
	Fingerprint string   `json:"fingerprint"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Trace lists the ledger writes in order.
	Trace []TraceEvent `json:"trace"`

	// Notifications lists the calculation's notifications in order.
	Notifications []NotificationTrace `json:"notifications"`

	// ErrorCode is the propagation error code if the calculation failed.
	ErrorCode string `json:"error_code,omitempty"`

	// Errors contains failed assertion messages.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:          true,
		Trace:         []TraceEvent{},
		Notifications: []NotificationTrace{},
		Errors:        []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
