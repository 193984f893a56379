package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowance_Permits(t *testing.T) {
	assert.True(t, Bounded(3).Permits(0))
	assert.True(t, Bounded(3).Permits(2))
	assert.False(t, Bounded(3).Permits(3))
	assert.False(t, Bounded(0).Permits(0))

	assert.True(t, Unlimited().Permits(0))
	assert.True(t, Unlimited().Permits(1_000_000))

	// Zero value permits nothing
	var zero Allowance
	assert.False(t, zero.Permits(0))
}

func TestAllowance_Remaining(t *testing.T) {
	left, bounded := Bounded(5).Remaining(2)
	assert.True(t, bounded)
	assert.Equal(t, 3, left)

	left, bounded = Bounded(5).Remaining(7)
	assert.True(t, bounded)
	assert.Equal(t, 0, left)

	_, bounded = Unlimited().Remaining(2)
	assert.False(t, bounded)
}

func TestAllowance_AtLeast(t *testing.T) {
	assert.Equal(t, Bounded(5), Bounded(3).AtLeast(Bounded(5)))
	assert.Equal(t, Bounded(5), Bounded(5).AtLeast(Bounded(3)))
	assert.Equal(t, Unlimited(), Bounded(3).AtLeast(Unlimited()))
	assert.Equal(t, Unlimited(), Unlimited().AtLeast(Bounded(3)))
}

func TestMeteredAction_PeriodStart(t *testing.T) {
	loc := time.FixedZone("IST", int((5*time.Hour + 30*time.Minute).Seconds()))
	now := time.Date(2025, 3, 15, 18, 45, 12, 0, loc)

	daily := ActionDailyPost.PeriodStart(now, loc)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, loc), daily)

	monthly := ActionMonthlyApplication.PeriodStart(now, loc)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, loc), monthly)
}

func TestMeteredAction_PeriodStartCrossesTimezoneDate(t *testing.T) {
	loc := time.FixedZone("IST", int((5*time.Hour + 30*time.Minute).Seconds()))

	// 20:00 UTC on the 14th is already the 15th locally
	now := time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)
	daily := ActionDailyPost.PeriodStart(now, loc)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, loc), daily)
}
