package booking

import "time"

// Unlimited is the wire sentinel for plans without a monthly cap.
const Unlimited = -1

// counterWindow is how long a usage counter lives before the lazy
// reset zeroes it.
const counterWindow = 30 * 24 * time.Hour

// Quota is the monthly usage snapshot of a subscription. Limit of zero
// means the plan is unlimited.
type Quota struct {
	Limit     int
	Used      int
	LastReset time.Time
}

// Normalize applies the lazy 30-day reset. It returns the normalized
// quota and whether the counter was reset (so the caller can persist
// the change). Normalizing an already-fresh quota is a no-op, which
// keeps the step idempotent.
func Normalize(q Quota, now time.Time) (Quota, bool) {
	if now.Sub(q.LastReset) < counterWindow {
		return q, false
	}
	q.Used = 0
	q.LastReset = now
	return q, true
}

// Remaining returns how many covered washes are left this month, or
// Unlimited when the plan has no cap. It never goes negative.
func (q Quota) Remaining() int {
	if q.Limit == 0 {
		return Unlimited
	}
	if q.Used >= q.Limit {
		return 0
	}
	return q.Limit - q.Used
}

// Exhausted reports whether a capped quota has no washes left.
func (q Quota) Exhausted() bool {
	return q.Limit > 0 && q.Used >= q.Limit
}
