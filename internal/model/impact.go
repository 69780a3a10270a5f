package model

import "time"

// Violation reports that an SLO rule's observed value breached its threshold.
type Violation struct {
	Rule      *SloRule
	Threshold float64 // observed value
	Period    float64 // observed period
	StartTime time.Time
}

// Impact is one node of a causal chain.
//
// Cause points at the impact that produced this one and is used to walk the
// chain in memory. CauseID is the ledger identifier of that impact and is what
// gets persisted. Both are empty for the first impact of a chain.
type Impact struct {
	ID       string
	Location Location
	Cause    *Impact
	CauseID  string
}

// NewImpact creates a fresh impact at loc caused by cause (which may be nil).
// The cause must already carry its ledger ID.
func NewImpact(cause *Impact, loc Location) *Impact {
	imp := &Impact{Location: loc, Cause: cause}
	if cause != nil {
		imp.CauseID = cause.ID
	}
	return imp
}

// Chain returns the impacts from this one back to the root, head first.
func (i *Impact) Chain() []*Impact {
	var out []*Impact
	for cur := i; cur != nil; cur = cur.Cause {
		out = append(out, cur)
	}
	return out
}

// Root returns the first impact of the chain.
func (i *Impact) Root() *Impact {
	cur := i
	for cur.Cause != nil {
		cur = cur.Cause
	}
	return cur
}

// Path returns the locations of the chain, head first.
func (i *Impact) Path() []Location {
	chain := i.Chain()
	out := make([]Location, len(chain))
	for n, imp := range chain {
		out[n] = imp.Location
	}
	return out
}

// Notification pairs the violation that started a chain with the impact on a
// business-process task at its head.
//
// Notifications compare by identity: two structurally equal notifications from
// separate calculations are distinct values.
type Notification struct {
	RootCause      *Violation
	TopLevelImpact *Impact
}

// Task returns the ID of the business-process task the notification reached.
func (n *Notification) Task() string {
	return n.TopLevelImpact.Location.ID
}
