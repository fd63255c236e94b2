package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/metrics"
	"github.com/catzoCode/catzoteam-project/internal/repository"
)

type pendingStore interface {
	Create(ctx context.Context, in repository.CreatePendingInput) (*domain.PendingBooking, error)
	GetByID(ctx context.Context, id int64) (*domain.PendingBooking, error)
	ListByStatus(ctx context.Context, status domain.PendingBookingStatus, branch string) ([]domain.PendingBooking, error)
	ConfirmAndConvert(ctx context.Context, pendingID, managerID int64, proofRef string) (*domain.TaskPackage, error)
	Cancel(ctx context.Context, id, byID int64) (*domain.PendingBooking, error)
}

type PendingBookingService struct {
	Pending  pendingStore
	Catalog  catalogStore
	Cats     catStore
	Notify   notifier
	Activity activityRecorder
	Logger   *slog.Logger
}

type CreatePendingBookingInput struct {
	CatID          int64
	ServiceTypeIDs []int64
	ScheduledDate  time.Time
	ScheduledTime  string
	Notes          string
	Branch         string
	CreatedBy      int64
}

// CreatePendingBooking takes an appointment without payment evidence. Points
// stay entirely off the ledger until a manager confirms payment.
func (s PendingBookingService) CreatePendingBooking(ctx context.Context, in CreatePendingBookingInput) (*domain.PendingBooking, error) {
	if len(in.ServiceTypeIDs) == 0 {
		return nil, invalidf("at least one service is required")
	}
	today := time.Now()
	if dayOf(in.ScheduledDate).Before(dayOf(today)) {
		return nil, invalidf("scheduled date is in the past")
	}

	cat, err := s.Cats.GetCat(ctx, in.CatID)
	if err != nil {
		return nil, err
	}

	types, err := s.Catalog.GetTypes(ctx, in.ServiceTypeIDs)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalidf("unknown or inactive service in request")
		}
		return nil, err
	}
	total := 0
	for _, t := range types {
		if t.ComboSessions > 0 {
			return nil, invalidf("combo packages cannot be pre-booked without payment")
		}
		total += t.Points
	}

	b, err := s.Pending.Create(ctx, repository.CreatePendingInput{
		CustomerID:     cat.OwnerID,
		CatID:          in.CatID,
		ServiceTypeIDs: in.ServiceTypeIDs,
		TotalPoints:    total,
		ScheduledDate:  in.ScheduledDate,
		ScheduledTime:  in.ScheduledTime,
		Notes:          in.Notes,
		Branch:         in.Branch,
		CreatedBy:      in.CreatedBy,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Activity.Record(ctx, in.CreatedBy, "pending_booking.create", "pending_booking", b.BookingCode, ""); err != nil {
		s.Logger.Warn("activity log failed", "action", "pending_booking.create", "err", err)
	}
	return b, nil
}

// Confirm converts a paid pre-booking into a live Type A package.
func (s PendingBookingService) Confirm(ctx context.Context, pendingID, managerID int64, proofRef string) (*domain.TaskPackage, error) {
	if proofRef == "" {
		return nil, invalidf("payment proof is required to confirm")
	}
	pkg, err := s.Pending.ConfirmAndConvert(ctx, pendingID, managerID, proofRef)
	if err != nil {
		return nil, err
	}

	metrics.BookingsCreated.WithLabelValues(string(domain.BookingTypeA)).Inc()
	if pkg.PointsAwarded {
		metrics.PointsAwarded.WithLabelValues(string(domain.CategoryBooking)).Inc()
	}
	if err := s.Activity.Record(ctx, managerID, "pending_booking.confirm", "task_package", pkg.PackageCode, ""); err != nil {
		s.Logger.Warn("activity log failed", "action", "pending_booking.confirm", "err", err)
	}
	if pkg.PointsAwarded && pkg.CreatedBy != nil {
		msg := fmt.Sprintf("%d booking points credited for %s", pkg.TotalPoints, pkg.PackageCode)
		if _, err := s.Notify.Create(ctx, *pkg.CreatedBy, domain.NotifyPointsAwarded, "Points awarded", msg, ""); err != nil {
			s.Logger.Warn("notify award failed", "package", pkg.PackageCode, "err", err)
		}
	}
	return pkg, nil
}

func (s PendingBookingService) Cancel(ctx context.Context, id, byID int64) (*domain.PendingBooking, error) {
	b, err := s.Pending.Cancel(ctx, id, byID)
	if err != nil {
		return nil, err
	}
	if err := s.Activity.Record(ctx, byID, "pending_booking.cancel", "pending_booking", b.BookingCode, ""); err != nil {
		s.Logger.Warn("activity log failed", "action", "pending_booking.cancel", "err", err)
	}
	return b, nil
}

func (s PendingBookingService) Get(ctx context.Context, id int64) (*domain.PendingBooking, error) {
	return s.Pending.GetByID(ctx, id)
}

func (s PendingBookingService) List(ctx context.Context, status domain.PendingBookingStatus, branch string) ([]domain.PendingBooking, error) {
	return s.Pending.ListByStatus(ctx, status, branch)
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
