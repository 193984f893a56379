package services

import (
	"testing"

	"github.com/careerdeck/gatekeeper/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestPlanRegistry_TierTable(t *testing.T) {
	registry := NewStaticPlanRegistry()

	tests := []struct {
		tier  models.PlanTier
		price int64
		apps  models.Allowance
		posts models.Allowance
	}{
		{models.PlanFree, 0, models.Bounded(1), models.Bounded(1)},
		{models.PlanBronze, 10000, models.Bounded(3), models.Bounded(1)},
		{models.PlanSilver, 30000, models.Bounded(5), models.Bounded(1)},
		{models.PlanGold, 100000, models.Unlimited(), models.Unlimited()},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			def := registry.Definition(tt.tier)
			assert.Equal(t, tt.price, def.PriceMinorUnits)
			assert.Equal(t, tt.apps, def.Allowance(models.ActionMonthlyApplication))
			assert.Equal(t, tt.posts, def.Allowance(models.ActionDailyPost))
		})
	}
}

func TestPlanRegistry_UnknownTierFailsSafe(t *testing.T) {
	registry := NewStaticPlanRegistry()

	def := registry.Definition(models.PlanTier("diamond"))
	assert.Equal(t, models.PlanFree, def.Tier)
	assert.Equal(t, int64(0), def.PriceMinorUnits)
}

func TestPlanTier_Paid(t *testing.T) {
	assert.False(t, models.PlanFree.Paid())
	assert.True(t, models.PlanBronze.Paid())
	assert.True(t, models.PlanSilver.Paid())
	assert.True(t, models.PlanGold.Paid())
	assert.False(t, models.PlanTier("diamond").Paid())
}
