package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/repository"
	"github.com/shopspring/decimal"
)

type pointsStore interface {
	GetDaily(ctx context.Context, staffID int64, day time.Time) (*domain.DailyPointEntry, error)
	ListDailyRange(ctx context.Context, staffID int64, from, to time.Time) ([]domain.DailyPointEntry, error)
	ListDailyForDate(ctx context.Context, day time.Time, branch string) ([]repository.TeamDailyRow, error)
	GetMonthly(ctx context.Context, staffID int64, month time.Time) (*domain.MonthlyIncentive, error)
	ListMonthlyForStaff(ctx context.Context, staffID int64, limit int) ([]domain.MonthlyIncentive, error)
	ListMonthlyForMonth(ctx context.Context, month time.Time, branch string) ([]repository.MonthlyIncentiveRow, error)
	MarkPaid(ctx context.Context, incentiveID int64, at time.Time) error
}

type PointsService struct {
	Points pointsStore
	Logger *slog.Logger
}

// Day returns the staff member's entry for one date. A day with no awards
// reads as an all-zero entry rather than an error.
func (s PointsService) Day(ctx context.Context, staffID int64, day time.Time) (*domain.DailyPointEntry, error) {
	e, err := s.Points.GetDaily(ctx, staffID, day)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.DailyPointEntry{StaffID: staffID, Date: day}, nil
		}
		return nil, err
	}
	return e, nil
}

func (s PointsService) Range(ctx context.Context, staffID int64, from, to time.Time) ([]domain.DailyPointEntry, error) {
	return s.Points.ListDailyRange(ctx, staffID, from, to)
}

func (s PointsService) TeamDay(ctx context.Context, day time.Time, branch string) ([]repository.TeamDailyRow, error) {
	return s.Points.ListDailyForDate(ctx, day, branch)
}

// Month returns the incentive record for one staff-month, synthesizing a zero
// record when no points landed in that month yet.
func (s PointsService) Month(ctx context.Context, staffID int64, month time.Time) (*domain.MonthlyIncentive, error) {
	inc, err := s.Points.GetMonthly(ctx, staffID, month)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			zero := &domain.MonthlyIncentive{StaffID: staffID, Month: domain.MonthStart(month)}
			zero.Recalculate()
			return zero, nil
		}
		return nil, err
	}
	return inc, nil
}

func (s PointsService) History(ctx context.Context, staffID int64, limit int) ([]domain.MonthlyIncentive, error) {
	return s.Points.ListMonthlyForStaff(ctx, staffID, limit)
}

func (s PointsService) MonthOverview(ctx context.Context, month time.Time, branch string) ([]repository.MonthlyIncentiveRow, error) {
	return s.Points.ListMonthlyForMonth(ctx, month, branch)
}

func (s PointsService) MarkPaid(ctx context.Context, incentiveID int64) error {
	return s.Points.MarkPaid(ctx, incentiveID, time.Now())
}

// Projection extrapolates a month in progress towards the incentive target.
type Projection struct {
	Month          time.Time
	TotalPoints    decimal.Decimal
	DaysElapsed    int
	DaysInMonth    int
	DailyAverage   decimal.Decimal
	ProjectedTotal decimal.Decimal
	RemainingToTop decimal.Decimal
	NeededPerDay   decimal.Decimal
	OnTrack        bool
}

// Project computes the month-end outlook for a running total at a point in
// time. Pure so the arithmetic is testable without a database.
func Project(total decimal.Decimal, now time.Time) Projection {
	monthStart := domain.MonthStart(now)
	daysInMonth := monthStart.AddDate(0, 1, -1).Day()
	elapsed := now.Day()

	p := Projection{
		Month:       monthStart,
		TotalPoints: total,
		DaysElapsed: elapsed,
		DaysInMonth: daysInMonth,
	}

	days := decimal.NewFromInt(int64(elapsed))
	p.DailyAverage = total.Div(days).Round(2)
	p.ProjectedTotal = p.DailyAverage.Mul(decimal.NewFromInt(int64(daysInMonth))).Round(2)

	p.RemainingToTop = domain.MonthlyTargetPoints.Sub(total)
	if p.RemainingToTop.IsNegative() {
		p.RemainingToTop = decimal.Zero
	}
	left := daysInMonth - elapsed
	if left > 0 {
		p.NeededPerDay = p.RemainingToTop.Div(decimal.NewFromInt(int64(left))).Round(2)
	} else {
		p.NeededPerDay = p.RemainingToTop
	}
	p.OnTrack = p.ProjectedTotal.GreaterThanOrEqual(domain.MonthlyTargetPoints)
	return p
}

// ProjectMonth builds the projection for one staff member's current month.
func (s PointsService) ProjectMonth(ctx context.Context, staffID int64, now time.Time) (*Projection, error) {
	inc, err := s.Month(ctx, staffID, now)
	if err != nil {
		return nil, err
	}
	p := Project(inc.TotalPoints, now)
	return &p, nil
}
