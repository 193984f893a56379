package models

import "time"

// PlanTier is a named subscription level
type PlanTier string

const (
	PlanFree   PlanTier = "free"
	PlanBronze PlanTier = "bronze"
	PlanSilver PlanTier = "silver"
	PlanGold   PlanTier = "gold"
)

// Paid reports whether the tier is purchasable
func (t PlanTier) Paid() bool {
	return t == PlanBronze || t == PlanSilver || t == PlanGold
}

// MeteredAction identifies a quota-limited action kind together with
// the period over which its count resets.
type MeteredAction string

const (
	ActionDailyPost          MeteredAction = "daily_post"
	ActionMonthlyApplication MeteredAction = "monthly_application"
)

// PeriodStart returns the start of the current quota period for the
// action kind: local midnight for daily kinds, first-of-month local
// midnight for monthly kinds.
func (a MeteredAction) PeriodStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	switch a {
	case ActionMonthlyApplication:
		return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	}
}

// Allowance is an explicit bounded/unbounded quota limit. The zero
// value is Bounded(0), which permits nothing.
type Allowance struct {
	Limit     int
	Unbounded bool
}

// Bounded returns an allowance of exactly n actions per period
func Bounded(n int) Allowance { return Allowance{Limit: n} }

// Unlimited returns an allowance with no cap
func Unlimited() Allowance { return Allowance{Unbounded: true} }

// Permits reports whether one more action is allowed given the number
// already used this period.
func (a Allowance) Permits(used int) bool {
	return a.Unbounded || used < a.Limit
}

// Remaining returns how many actions are left this period. For an
// unbounded allowance the second return is false and the count is
// meaningless.
func (a Allowance) Remaining(used int) (int, bool) {
	if a.Unbounded {
		return 0, false
	}
	if used >= a.Limit {
		return 0, true
	}
	return a.Limit - used, true
}

// AtLeast returns the more permissive of two allowances
func (a Allowance) AtLeast(b Allowance) Allowance {
	if a.Unbounded || b.Unbounded {
		return Unlimited()
	}
	if b.Limit > a.Limit {
		return b
	}
	return a
}

// PlanDefinition is the immutable description of a subscription tier
type PlanDefinition struct {
	Tier            PlanTier
	PriceMinorUnits int64
	Allowances      map[MeteredAction]Allowance
}

// Allowance resolves the plan's limit for an action kind. Unknown
// kinds permit nothing.
func (d PlanDefinition) Allowance(kind MeteredAction) Allowance {
	return d.Allowances[kind]
}
