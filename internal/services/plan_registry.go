package services

import "github.com/careerdeck/gatekeeper/internal/models"

// PlanRegistry is the source of truth for tier pricing and per-action
// allowances. One registry serves every metered-action kind.
type PlanRegistry interface {
	// Definition returns the plan definition for a tier. Unknown tiers
	// resolve to the free tier so enforcement fails safe.
	Definition(tier models.PlanTier) models.PlanDefinition
}

// staticPlanRegistry is the compile-time registry used in production
type staticPlanRegistry struct {
	plans map[models.PlanTier]models.PlanDefinition
}

// planDefaults holds the canonical tier table. Prices are INR minor
// units (paise). The gold tier's application allowance is explicitly
// unbounded rather than a numeric sentinel.
var planDefaults = map[models.PlanTier]models.PlanDefinition{
	models.PlanFree: {
		Tier:            models.PlanFree,
		PriceMinorUnits: 0,
		Allowances: map[models.MeteredAction]models.Allowance{
			models.ActionDailyPost:          models.Bounded(1),
			models.ActionMonthlyApplication: models.Bounded(1),
		},
	},
	models.PlanBronze: {
		Tier:            models.PlanBronze,
		PriceMinorUnits: 10000,
		Allowances: map[models.MeteredAction]models.Allowance{
			models.ActionDailyPost:          models.Bounded(1),
			models.ActionMonthlyApplication: models.Bounded(3),
		},
	},
	models.PlanSilver: {
		Tier:            models.PlanSilver,
		PriceMinorUnits: 30000,
		Allowances: map[models.MeteredAction]models.Allowance{
			models.ActionDailyPost:          models.Bounded(1),
			models.ActionMonthlyApplication: models.Bounded(5),
		},
	},
	models.PlanGold: {
		Tier:            models.PlanGold,
		PriceMinorUnits: 100000,
		Allowances: map[models.MeteredAction]models.Allowance{
			models.ActionDailyPost:          models.Unlimited(),
			models.ActionMonthlyApplication: models.Unlimited(),
		},
	},
}

// NewStaticPlanRegistry returns the registry backed by the canonical
// tier table. Callers get a copy so the package-level table cannot be
// mutated.
func NewStaticPlanRegistry() PlanRegistry {
	m := make(map[models.PlanTier]models.PlanDefinition, len(planDefaults))
	for k, v := range planDefaults {
		m[k] = v
	}
	return &staticPlanRegistry{plans: m}
}

func (r *staticPlanRegistry) Definition(tier models.PlanTier) models.PlanDefinition {
	if def, ok := r.plans[tier]; ok {
		return def
	}
	return r.plans[models.PlanFree]
}
