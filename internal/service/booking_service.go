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

// ValidationError marks problems with client-supplied input.
type ValidationError struct {
	msg string
}

func (e ValidationError) Error() string { return e.msg }

func invalidf(format string, args ...any) error {
	return ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err came from input validation.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

type bookingStore interface {
	Create(ctx context.Context, in repository.CreatePackageInput) (*domain.TaskPackage, error)
	ConfirmArrival(ctx context.Context, packageID, managerID int64) (*domain.TaskPackage, bool, error)
	MarkNoShow(ctx context.Context, packageID, managerID int64) (*domain.TaskPackage, error)
	GetPackage(ctx context.Context, id int64) (*domain.TaskPackage, error)
	ListPackages(ctx context.Context, f repository.PackageFilter) ([]domain.TaskPackage, error)
	ListArrivalQueue(ctx context.Context, branch string) ([]domain.TaskPackage, error)
}

type catalogStore interface {
	GetTypes(ctx context.Context, ids []int64) ([]domain.TaskType, error)
}

type comboStore interface {
	GetByID(ctx context.Context, id int64) (*domain.ComboPackageOwnership, error)
}

type catStore interface {
	GetCat(ctx context.Context, id int64) (*domain.Cat, error)
}

type notifier interface {
	Create(ctx context.Context, userID int64, typ domain.NotificationType, title, message, link string) (*domain.Notification, error)
}

type activityRecorder interface {
	Record(ctx context.Context, actorID int64, action, entity, entityID, detail string) error
}

type BookingService struct {
	Bookings bookingStore
	Catalog  catalogStore
	Combos   comboStore
	Cats     catStore
	Notify   notifier
	Activity activityRecorder
	Logger   *slog.Logger
}

type CreateBookingInput struct {
	CatID            int64
	CreatedBy        int64
	Branch           string
	BookingType      domain.BookingType
	ServiceTypeIDs   []int64
	ScheduledDate    *time.Time
	ScheduledTime    string
	Notes            string
	PaymentProofRef  string
	ComboOwnershipID *int64
}

// CreateBooking validates the booking type policy, prices the requested
// services from the catalog and settles the package in one shot. A Type A
// intake that contains a combo-front service also opens the session ownership
// for the cat's owner.
func (s BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*domain.TaskPackage, error) {
	if len(in.ServiceTypeIDs) == 0 {
		return nil, invalidf("at least one service is required")
	}

	switch in.BookingType {
	case domain.BookingTypeA:
		if in.PaymentProofRef == "" {
			return nil, invalidf("type_a booking requires payment proof")
		}
	case domain.BookingTypeB:
		if in.ComboOwnershipID == nil {
			return nil, invalidf("type_b booking requires a combo ownership")
		}
	case domain.BookingTypeC:
		if in.ScheduledDate == nil {
			return nil, invalidf("type_c booking requires a scheduled date")
		}
	default:
		return nil, invalidf("unknown booking type %q", in.BookingType)
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

	var comboSale *repository.ComboSaleSpec
	total := 0
	date := time.Now()
	if in.ScheduledDate != nil {
		date = *in.ScheduledDate
	}
	specs := make([]repository.TaskSpec, 0, len(types))
	for _, t := range types {
		total += t.Points
		specs = append(specs, repository.TaskSpec{
			TaskTypeID:    t.ID,
			Points:        t.Points,
			ScheduledDate: date,
			ScheduledTime: in.ScheduledTime,
		})
		if t.ComboSessions > 0 {
			if in.BookingType != domain.BookingTypeA {
				return nil, invalidf("combo packages are sold on type_a bookings only")
			}
			if comboSale != nil {
				return nil, invalidf("one combo package per booking")
			}
			comboSale = &repository.ComboSaleSpec{
				CustomerID:      cat.OwnerID,
				ComboTaskTypeID: t.ID,
				TotalSessions:   t.ComboSessions,
			}
		}
	}

	if in.BookingType == domain.BookingTypeB {
		combo, err := s.Combos.GetByID(ctx, *in.ComboOwnershipID)
		if err != nil {
			return nil, err
		}
		if combo.CatID != in.CatID {
			return nil, invalidf("combo %s belongs to a different cat", combo.OwnershipCode)
		}
		if !combo.HasSessions() {
			return nil, repository.ErrNoSessionsRemaining
		}
	}

	pkg, err := s.Bookings.Create(ctx, repository.CreatePackageInput{
		CatID:            in.CatID,
		CreatedBy:        in.CreatedBy,
		Branch:           in.Branch,
		BookingType:      in.BookingType,
		TotalPoints:      total,
		Notes:            in.Notes,
		ScheduledDate:    in.ScheduledDate,
		PaymentProofRef:  in.PaymentProofRef,
		ComboOwnershipID: in.ComboOwnershipID,
		Tasks:            specs,
		ComboSale:        comboSale,
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingsCreated.WithLabelValues(string(pkg.BookingType)).Inc()
	if pkg.PointsAwarded {
		metrics.PointsAwarded.WithLabelValues(string(domain.CategoryBooking)).Inc()
	}
	s.recordActivity(ctx, in.CreatedBy, "booking.create", pkg)
	if pkg.PointsAwarded {
		s.notifyAward(ctx, in.CreatedBy, pkg)
	}
	return pkg, nil
}

// ConfirmArrival releases a held Type C award once the cat shows up.
func (s BookingService) ConfirmArrival(ctx context.Context, packageID, managerID int64) (*domain.TaskPackage, error) {
	pkg, awarded, err := s.Bookings.ConfirmArrival(ctx, packageID, managerID)
	if err != nil {
		return nil, err
	}
	metrics.ArrivalDecisions.WithLabelValues("arrived").Inc()
	s.recordActivity(ctx, managerID, "booking.arrival_confirmed", pkg)
	if awarded {
		metrics.PointsAwarded.WithLabelValues(string(domain.CategoryBooking)).Inc()
		if pkg.CreatedBy != nil {
			s.notifyAward(ctx, *pkg.CreatedBy, pkg)
		}
	}
	return pkg, nil
}

// MarkNoShow forfeits a held award for good.
func (s BookingService) MarkNoShow(ctx context.Context, packageID, managerID int64) (*domain.TaskPackage, error) {
	pkg, err := s.Bookings.MarkNoShow(ctx, packageID, managerID)
	if err != nil {
		return nil, err
	}
	metrics.ArrivalDecisions.WithLabelValues("no_show").Inc()
	s.recordActivity(ctx, managerID, "booking.no_show", pkg)
	return pkg, nil
}

func (s BookingService) GetPackage(ctx context.Context, id int64) (*domain.TaskPackage, error) {
	return s.Bookings.GetPackage(ctx, id)
}

func (s BookingService) ListPackages(ctx context.Context, f repository.PackageFilter) ([]domain.TaskPackage, error) {
	return s.Bookings.ListPackages(ctx, f)
}

func (s BookingService) ArrivalQueue(ctx context.Context, branch string) ([]domain.TaskPackage, error) {
	return s.Bookings.ListArrivalQueue(ctx, branch)
}

// Notifications and the activity trail are best effort; the settlement already
// committed.
func (s BookingService) notifyAward(ctx context.Context, staffID int64, pkg *domain.TaskPackage) {
	msg := fmt.Sprintf("%d booking points credited for %s", pkg.TotalPoints, pkg.PackageCode)
	if _, err := s.Notify.Create(ctx, staffID, domain.NotifyPointsAwarded, "Points awarded", msg, ""); err != nil {
		s.Logger.Warn("notify award failed", "staff_id", staffID, "package", pkg.PackageCode, "err", err)
	}
}

func (s BookingService) recordActivity(ctx context.Context, actorID int64, action string, pkg *domain.TaskPackage) {
	if err := s.Activity.Record(ctx, actorID, action, "task_package", pkg.PackageCode, ""); err != nil {
		s.Logger.Warn("activity log failed", "action", action, "err", err)
	}
}
