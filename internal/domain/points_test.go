package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMonthlyIncentiveRecalculate(t *testing.T) {
	tests := []struct {
		name      string
		total     string
		incentive string
		bonus     string
		milestone *int
		warning   bool
	}{
		{"zero", "0", "0", "0", nil, true},
		{"below first tier", "299.99", "0", "0", nil, true},
		{"exactly 300", "300", "200", "0", milestone(200), true},
		{"mid tier with warning", "800", "400", "0", milestone(400), true},
		{"warning boundary", "850", "400", "0", milestone(400), false},
		{"exactly 900", "900", "600", "0", milestone(600), false},
		{"just under top", "1199.99", "600", "0", milestone(600), false},
		{"exactly 1200 no bonus", "1200", "1000", "0", milestone(1000), false},
		{"excess bonus", "1300", "1000", "50", milestone(1000), false},
		{"fractional excess", "1201.50", "1000", "0.75", milestone(1000), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MonthlyIncentive{TotalPoints: dec(tt.total)}
			m.Recalculate()

			assert.True(t, m.IncentiveEarned.Equal(dec(tt.incentive)),
				"incentive: want %s got %s", tt.incentive, m.IncentiveEarned)
			assert.True(t, m.BonusEarned.Equal(dec(tt.bonus)),
				"bonus: want %s got %s", tt.bonus, m.BonusEarned)
			if tt.milestone == nil {
				assert.Nil(t, m.MilestoneReached)
			} else {
				require.NotNil(t, m.MilestoneReached)
				assert.Equal(t, *tt.milestone, *m.MilestoneReached)
			}
			assert.Equal(t, tt.warning, m.BelowWarning)
		})
	}
}

func TestMonthlyIncentiveRecalculateIdempotent(t *testing.T) {
	m := MonthlyIncentive{TotalPoints: dec("1300")}
	m.Recalculate()
	first := m
	m.Recalculate()
	m.Recalculate()

	assert.True(t, first.IncentiveEarned.Equal(m.IncentiveEarned))
	assert.True(t, first.BonusEarned.Equal(m.BonusEarned))
	assert.Equal(t, *first.MilestoneReached, *m.MilestoneReached)
}

func TestDailyPointEntryAddKeepsTotalInvariant(t *testing.T) {
	var e DailyPointEntry
	e.Add(CategoryBooking, dec("40"))
	e.Add(CategoryGrooming, dec("12.5"))
	e.Add(CategoryService, dec("7.25"))
	e.Add(CategoryBonus, dec("3"))
	e.Add(CategoryBooking, dec("10"))

	sum := e.GroomingPoints.Add(e.ServicePoints).Add(e.BookingPoints).Add(e.BonusPoints)
	assert.True(t, e.TotalPoints.Equal(sum), "total %s != category sum %s", e.TotalPoints, sum)
	assert.True(t, e.BookingPoints.Equal(dec("50")))
	assert.True(t, e.TotalPoints.Equal(dec("72.75")))
}

func TestDailyPointEntryTargetStatus(t *testing.T) {
	var e DailyPointEntry
	assert.Equal(t, "below_target", e.TargetStatus())

	e.Add(CategoryGrooming, dec("35"))
	assert.Equal(t, "progress", e.TargetStatus())

	e.Add(CategoryService, dec("15"))
	assert.Equal(t, "achieved", e.TargetStatus())
}

func TestPointCategoryValid(t *testing.T) {
	assert.True(t, CategoryGrooming.Valid())
	assert.True(t, CategoryBonus.Valid())
	assert.False(t, PointCategory("overtime").Valid())
	assert.False(t, PointCategory("").Valid())
}

func TestMonthStart(t *testing.T) {
	d := time.Date(2024, 3, 15, 13, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), MonthStart(d))
}
