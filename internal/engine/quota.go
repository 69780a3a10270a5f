package engine

import "github.com/roach88/sloimpact/internal/model"

// Unbounded disables the impact budget.
const Unbounded = 0

// ImpactQuota counts the impacts one calculation creates and enforces an
// optional maximum.
//
// A cyclic consumer graph makes the architecture phase run forever. The quota
// turns that into a QUOTA_EXCEEDED error after a fixed number of ledger writes.
// Each calculation gets its own quota.
type ImpactQuota struct {
	max     int // Unbounded means no limit
	current int
}

// NewImpactQuota creates a quota allowing maxImpacts impacts.
func NewImpactQuota(maxImpacts int) *ImpactQuota {
	return &ImpactQuota{max: maxImpacts}
}

// Check reserves one impact at loc.
//
// Returns a quota error once more than max impacts have been reserved. Must be
// called before the impact is written so that no more than max are persisted.
func (q *ImpactQuota) Check(loc model.Location) error {
	q.current++
	if q.max != Unbounded && q.current > q.max {
		return NewQuotaError(loc, q.current, q.max)
	}
	return nil
}

// Current returns the number of impacts reserved so far.
func (q *ImpactQuota) Current() int {
	return q.current
}

// Max returns the limit, or Unbounded.
func (q *ImpactQuota) Max() int {
	return q.max
}
