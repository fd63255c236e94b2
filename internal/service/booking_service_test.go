package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBookings struct {
	created    *repository.CreatePackageInput
	pkg        *domain.TaskPackage
	confirmErr error
	awarded    bool
}

func (s *stubBookings) Create(_ context.Context, in repository.CreatePackageInput) (*domain.TaskPackage, error) {
	s.created = &in
	pkg := s.pkg
	if pkg == nil {
		pkg = &domain.TaskPackage{
			ID: 1, PackageCode: "PKG-260115-0001", CatID: in.CatID,
			BookingType: in.BookingType, TotalPoints: in.TotalPoints,
			PointsAwarded: in.BookingType == domain.BookingTypeA,
		}
	}
	return pkg, nil
}

func (s *stubBookings) ConfirmArrival(_ context.Context, packageID, managerID int64) (*domain.TaskPackage, bool, error) {
	if s.confirmErr != nil {
		return nil, false, s.confirmErr
	}
	creator := int64(7)
	return &domain.TaskPackage{ID: packageID, PackageCode: "PKG-260115-0002", CreatedBy: &creator,
		BookingType: domain.BookingTypeC, TotalPoints: 30, PointsAwarded: true,
		ArrivalStatus: domain.ArrivalArrived, ConfirmedBy: &managerID}, s.awarded, nil
}

func (s *stubBookings) MarkNoShow(_ context.Context, packageID, managerID int64) (*domain.TaskPackage, error) {
	return &domain.TaskPackage{ID: packageID, ArrivalStatus: domain.ArrivalNoShow, ConfirmedBy: &managerID}, nil
}

func (s *stubBookings) GetPackage(context.Context, int64) (*domain.TaskPackage, error) {
	return s.pkg, nil
}

func (s *stubBookings) ListPackages(context.Context, repository.PackageFilter) ([]domain.TaskPackage, error) {
	return nil, nil
}

func (s *stubBookings) ListArrivalQueue(context.Context, string) ([]domain.TaskPackage, error) {
	return nil, nil
}

type stubCatalog struct {
	types map[int64]domain.TaskType
}

func (s stubCatalog) GetTypes(_ context.Context, ids []int64) ([]domain.TaskType, error) {
	out := make([]domain.TaskType, 0, len(ids))
	for _, id := range ids {
		t, ok := s.types[id]
		if !ok {
			return nil, repository.ErrNotFound
		}
		out = append(out, t)
	}
	return out, nil
}

type stubCombos struct {
	combo *domain.ComboPackageOwnership
}

func (s stubCombos) GetByID(context.Context, int64) (*domain.ComboPackageOwnership, error) {
	if s.combo == nil {
		return nil, repository.ErrNotFound
	}
	return s.combo, nil
}

type stubCats struct{}

func (stubCats) GetCat(_ context.Context, id int64) (*domain.Cat, error) {
	return &domain.Cat{ID: id, OwnerID: 42, Name: "Mochi"}, nil
}

type stubNotifier struct {
	sent []domain.NotificationType
}

func (s *stubNotifier) Create(_ context.Context, _ int64, typ domain.NotificationType, _, _, _ string) (*domain.Notification, error) {
	s.sent = append(s.sent, typ)
	return &domain.Notification{Type: typ}, nil
}

type stubActivity struct {
	actions []string
}

func (s *stubActivity) Record(_ context.Context, _ int64, action, _, _, _ string) error {
	s.actions = append(s.actions, action)
	return nil
}

func newBookingService(b *stubBookings, c stubCatalog, combos stubCombos) (BookingService, *stubNotifier, *stubActivity) {
	n := &stubNotifier{}
	a := &stubActivity{}
	return BookingService{
		Bookings: b,
		Catalog:  c,
		Combos:   combos,
		Cats:     stubCats{},
		Notify:   n,
		Activity: a,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, n, a
}

func groomingCatalog() stubCatalog {
	return stubCatalog{types: map[int64]domain.TaskType{
		1: {ID: 1, Name: "Basic Grooming", Points: 10},
		2: {ID: 2, Name: "Full Grooming", Points: 20},
		5: {ID: 5, Name: "5-Session Combo", Points: 45, ComboSessions: 5},
	}}
}

func TestCreateBookingTypeAPolicy(t *testing.T) {
	svc, n, _ := newBookingService(&stubBookings{}, groomingCatalog(), stubCombos{})

	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		CatID: 1, CreatedBy: 7, BookingType: domain.BookingTypeA, ServiceTypeIDs: []int64{1, 2},
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err), "missing proof must be a validation error")

	pkg, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		CatID: 1, CreatedBy: 7, BookingType: domain.BookingTypeA,
		ServiceTypeIDs: []int64{1, 2}, PaymentProofRef: "receipt-77",
	})
	require.NoError(t, err)
	assert.Equal(t, 30, pkg.TotalPoints)
	assert.True(t, pkg.PointsAwarded)
	require.Len(t, n.sent, 1)
	assert.Equal(t, domain.NotifyPointsAwarded, n.sent[0])
}

func TestCreateBookingComboSale(t *testing.T) {
	store := &stubBookings{}
	svc, _, _ := newBookingService(store, groomingCatalog(), stubCombos{})

	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		CatID: 3, CreatedBy: 7, BookingType: domain.BookingTypeA,
		ServiceTypeIDs: []int64{5}, PaymentProofRef: "receipt-12",
	})
	require.NoError(t, err)
	require.NotNil(t, store.created.ComboSale)
	assert.Equal(t, int64(42), store.created.ComboSale.CustomerID, "sale goes to the cat's owner")
	assert.Equal(t, 5, store.created.ComboSale.TotalSessions)

	// Combos need payment evidence, so they cannot ride a Type C booking.
	when := time.Now().AddDate(0, 0, 1)
	_, err = svc.CreateBooking(context.Background(), CreateBookingInput{
		CatID: 3, CreatedBy: 7, BookingType: domain.BookingTypeC,
		ServiceTypeIDs: []int64{5}, ScheduledDate: &when,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestCreateBookingTypeBGuards(t *testing.T) {
	ownership := int64(9)

	t.Run("missing ownership", func(t *testing.T) {
		svc, _, _ := newBookingService(&stubBookings{}, groomingCatalog(), stubCombos{})
		_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
			CatID: 3, CreatedBy: 7, BookingType: domain.BookingTypeB, ServiceTypeIDs: []int64{1},
		})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("wrong cat", func(t *testing.T) {
		svc, _, _ := newBookingService(&stubBookings{}, groomingCatalog(), stubCombos{
			combo: &domain.ComboPackageOwnership{ID: 9, CatID: 99, Active: true, SessionsRemaining: 3},
		})
		_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
			CatID: 3, CreatedBy: 7, BookingType: domain.BookingTypeB,
			ServiceTypeIDs: []int64{1}, ComboOwnershipID: &ownership,
		})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("exhausted combo", func(t *testing.T) {
		svc, _, _ := newBookingService(&stubBookings{}, groomingCatalog(), stubCombos{
			combo: &domain.ComboPackageOwnership{ID: 9, CatID: 3, Active: false, SessionsRemaining: 0},
		})
		_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
			CatID: 3, CreatedBy: 7, BookingType: domain.BookingTypeB,
			ServiceTypeIDs: []int64{1}, ComboOwnershipID: &ownership,
		})
		assert.ErrorIs(t, err, repository.ErrNoSessionsRemaining)
	})

	t.Run("happy redemption", func(t *testing.T) {
		store := &stubBookings{}
		svc, n, _ := newBookingService(store, groomingCatalog(), stubCombos{
			combo: &domain.ComboPackageOwnership{ID: 9, CatID: 3, Active: true, SessionsRemaining: 2},
		})
		pkg, err := svc.CreateBooking(context.Background(), CreateBookingInput{
			CatID: 3, CreatedBy: 7, BookingType: domain.BookingTypeB,
			ServiceTypeIDs: []int64{1}, ComboOwnershipID: &ownership,
		})
		require.NoError(t, err)
		assert.False(t, pkg.PointsAwarded, "redemptions never award booking points")
		assert.Empty(t, n.sent)
	})
}

func TestCreateBookingTypeCRequiresDate(t *testing.T) {
	svc, _, _ := newBookingService(&stubBookings{}, groomingCatalog(), stubCombos{})
	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		CatID: 1, CreatedBy: 7, BookingType: domain.BookingTypeC, ServiceTypeIDs: []int64{1},
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestConfirmArrivalNotifiesOnAward(t *testing.T) {
	store := &stubBookings{awarded: true}
	svc, n, a := newBookingService(store, groomingCatalog(), stubCombos{})

	pkg, err := svc.ConfirmArrival(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.ArrivalArrived, pkg.ArrivalStatus)
	require.Len(t, n.sent, 1)
	assert.Equal(t, domain.NotifyPointsAwarded, n.sent[0])
	assert.Contains(t, a.actions, "booking.arrival_confirmed")
}

func TestConfirmArrivalAlreadyHandled(t *testing.T) {
	store := &stubBookings{confirmErr: repository.ErrAlreadyHandled}
	svc, n, _ := newBookingService(store, groomingCatalog(), stubCombos{})

	_, err := svc.ConfirmArrival(context.Background(), 5, 2)
	assert.ErrorIs(t, err, repository.ErrAlreadyHandled)
	assert.Empty(t, n.sent)
}
