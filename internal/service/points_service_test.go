package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestProjectMidMonth(t *testing.T) {
	// 600 points by Jan 15: averaging 40/day projects to 1240.
	now := time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
	p := Project(d("600"), now)

	assert.Equal(t, 15, p.DaysElapsed)
	assert.Equal(t, 31, p.DaysInMonth)
	assert.True(t, p.DailyAverage.Equal(d("40")), "got %s", p.DailyAverage)
	assert.True(t, p.ProjectedTotal.Equal(d("1240")), "got %s", p.ProjectedTotal)
	assert.True(t, p.RemainingToTop.Equal(d("600")))
	assert.True(t, p.NeededPerDay.Equal(d("37.50")), "got %s", p.NeededPerDay)
	assert.True(t, p.OnTrack)
}

func TestProjectBehindPace(t *testing.T) {
	now := time.Date(2026, time.April, 20, 9, 0, 0, 0, time.UTC)
	p := Project(d("400"), now)

	assert.Equal(t, 30, p.DaysInMonth)
	assert.True(t, p.ProjectedTotal.Equal(d("600")), "got %s", p.ProjectedTotal)
	assert.True(t, p.RemainingToTop.Equal(d("800")))
	assert.True(t, p.NeededPerDay.Equal(d("80")), "got %s", p.NeededPerDay)
	assert.False(t, p.OnTrack)
}

func TestProjectTargetAlreadyMet(t *testing.T) {
	now := time.Date(2026, time.June, 28, 9, 0, 0, 0, time.UTC)
	p := Project(d("1350"), now)

	assert.True(t, p.RemainingToTop.IsZero())
	assert.True(t, p.NeededPerDay.IsZero())
	assert.True(t, p.OnTrack)
}

func TestProjectLastDayOfMonth(t *testing.T) {
	now := time.Date(2026, time.February, 28, 23, 0, 0, 0, time.UTC)
	p := Project(d("1100"), now)

	assert.Equal(t, 28, p.DaysInMonth)
	assert.Equal(t, 28, p.DaysElapsed)
	// No days left: the remainder itself is what the day must yield.
	assert.True(t, p.NeededPerDay.Equal(d("100")), "got %s", p.NeededPerDay)
	assert.False(t, p.OnTrack)
}
