package booking

// Login failure thresholds. Three straight failures earn the temporary
// lock; once that warning happened, reaching six failures deactivates
// the account until support reactivates it.
const (
	lockThreshold       = 3
	deactivateThreshold = 6
)

// LockoutAction is the step a failed login attempt triggers.
type LockoutAction int

const (
	LockoutNone       LockoutAction = iota // reject the attempt, nothing else
	LockoutTemporary                       // apply the 15 minute lock
	LockoutDeactivate                      // disable the account
)

// NextLockoutStep decides what a failed attempt triggers given the
// updated failure count and whether the warning lock already happened.
// Customer and business logins share this rule.
func NextLockoutStep(attempts int, warned bool) LockoutAction {
	switch {
	case !warned && attempts >= lockThreshold:
		return LockoutTemporary
	case warned && attempts >= deactivateThreshold:
		return LockoutDeactivate
	}
	return LockoutNone
}

// AttemptsLeft reports how many failures remain before the next
// lockout step, never negative.
func AttemptsLeft(attempts int, warned bool) int {
	limit := lockThreshold
	if warned {
		limit = deactivateThreshold
	}
	if left := limit - attempts; left > 0 {
		return left
	}
	return 0
}
