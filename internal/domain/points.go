package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PointCategory names the four additive buckets of a daily entry.
type PointCategory string

const (
	CategoryGrooming PointCategory = "grooming"
	CategoryService  PointCategory = "service"
	CategoryBooking  PointCategory = "booking"
	CategoryBonus    PointCategory = "bonus"
)

// Valid reports whether the category is one of the four known buckets.
func (c PointCategory) Valid() bool {
	switch c {
	case CategoryGrooming, CategoryService, CategoryBooking, CategoryBonus:
		return true
	}
	return false
}

// Daily target used by the performance dashboard.
var DailyTargetPoints = decimal.NewFromInt(50)

// DailyPointEntry accumulates one staff member's points for one calendar date.
// TotalPoints always equals the sum of the four category fields; it is never
// written directly.
type DailyPointEntry struct {
	ID             int64
	StaffID        int64
	Date           time.Time
	GroomingPoints decimal.Decimal
	ServicePoints  decimal.Decimal
	BookingPoints  decimal.Decimal
	BonusPoints    decimal.Decimal
	TotalPoints    decimal.Decimal
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Add applies an award to the named category and recomputes the total.
func (e *DailyPointEntry) Add(category PointCategory, amount decimal.Decimal) {
	switch category {
	case CategoryGrooming:
		e.GroomingPoints = e.GroomingPoints.Add(amount)
	case CategoryService:
		e.ServicePoints = e.ServicePoints.Add(amount)
	case CategoryBooking:
		e.BookingPoints = e.BookingPoints.Add(amount)
	case CategoryBonus:
		e.BonusPoints = e.BonusPoints.Add(amount)
	}
	e.TotalPoints = e.GroomingPoints.Add(e.ServicePoints).Add(e.BookingPoints).Add(e.BonusPoints)
}

// TargetStatus buckets the day against the 50-point target.
func (e *DailyPointEntry) TargetStatus() string {
	switch {
	case e.TotalPoints.GreaterThanOrEqual(DailyTargetPoints):
		return "achieved"
	case e.TotalPoints.GreaterThanOrEqual(DailyTargetPoints.Mul(decimal.NewFromFloat(0.7))):
		return "progress"
	default:
		return "below_target"
	}
}

// Monthly thresholds for the incentive scheme.
var (
	MonthlyTargetPoints  = decimal.NewFromInt(1200)
	WarningThreshold     = decimal.NewFromInt(850)
	excessBonusRate      = decimal.NewFromFloat(0.50)
	incentiveTierTop     = decimal.NewFromInt(1200)
	incentiveTier900     = decimal.NewFromInt(900)
	incentiveTier600     = decimal.NewFromInt(600)
	incentiveTier300     = decimal.NewFromInt(300)
	incentiveAmountTop   = decimal.NewFromInt(1000)
	incentiveAmount900   = decimal.NewFromInt(600)
	incentiveAmount600   = decimal.NewFromInt(400)
	incentiveAmount300   = decimal.NewFromInt(200)
)

// MonthlyIncentive is the per-staff, per-month derived incentive record.
// Month is always the first day of the month.
type MonthlyIncentive struct {
	ID               int64
	StaffID          int64
	Month            time.Time
	TotalPoints      decimal.Decimal
	IncentiveEarned  decimal.Decimal
	BonusEarned      decimal.Decimal
	MilestoneReached *int
	BelowWarning     bool
	WarningIssued    bool
	WarningIssuedAt  *time.Time
	Paid             bool
	PaidAt           *time.Time
}

// Recalculate derives the incentive tier, excess bonus and warning flag from
// TotalPoints. Pure and idempotent: recomputing from the same total always
// yields the same result. The warning flag is independent of the tier table.
func (m *MonthlyIncentive) Recalculate() {
	m.BonusEarned = decimal.Zero
	switch {
	case m.TotalPoints.GreaterThanOrEqual(incentiveTierTop):
		m.IncentiveEarned = incentiveAmountTop
		m.MilestoneReached = milestone(1000)
		if m.TotalPoints.GreaterThan(incentiveTierTop) {
			m.BonusEarned = m.TotalPoints.Sub(incentiveTierTop).Mul(excessBonusRate)
		}
	case m.TotalPoints.GreaterThanOrEqual(incentiveTier900):
		m.IncentiveEarned = incentiveAmount900
		m.MilestoneReached = milestone(600)
	case m.TotalPoints.GreaterThanOrEqual(incentiveTier600):
		m.IncentiveEarned = incentiveAmount600
		m.MilestoneReached = milestone(400)
	case m.TotalPoints.GreaterThanOrEqual(incentiveTier300):
		m.IncentiveEarned = incentiveAmount300
		m.MilestoneReached = milestone(200)
	default:
		m.IncentiveEarned = decimal.Zero
		m.MilestoneReached = nil
	}
	m.BelowWarning = m.TotalPoints.LessThan(WarningThreshold)
}

func milestone(v int) *int { return &v }

// MonthStart normalizes any date to the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// PointRequest is a staff claim for points on work outside the regular flow,
// settled by a manager into the bonus category.
type PointRequest struct {
	ID              int64
	RequestCode     string
	StaffID         int64
	TaskTypeID      *int64
	PointsRequested decimal.Decimal
	DateCompleted   time.Time
	Reason          string
	ReasonDetails   string
	ProofRef        string
	Status          ApprovalStatus
	DecidedBy       *int64
	DecidedAt       *time.Time
	ManagerNotes    string
	PointsAwarded   decimal.Decimal
	PointsAwardedAt *time.Time
	CreatedAt       time.Time
}

// WarningLetter records a formal warning issued for a below-threshold month.
type WarningLetter struct {
	ID             int64
	StaffID        int64
	Month          time.Time
	Reason         string
	PointsAchieved decimal.Decimal
	Description    string
	IssuedBy       *int64
	IssuedAt       time.Time
	Acknowledged   bool
	AcknowledgedAt *time.Time
}
