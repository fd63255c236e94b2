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

type stubPending struct {
	created   *repository.CreatePendingInput
	converted *domain.TaskPackage
}

func (s *stubPending) Create(_ context.Context, in repository.CreatePendingInput) (*domain.PendingBooking, error) {
	s.created = &in
	return &domain.PendingBooking{ID: 1, BookingCode: "PB-260115-0001", CustomerID: in.CustomerID,
		CatID: in.CatID, TotalPoints: in.TotalPoints, Status: domain.PendingPayment,
		ScheduledDate: in.ScheduledDate, CreatedBy: &in.CreatedBy}, nil
}

func (s *stubPending) GetByID(context.Context, int64) (*domain.PendingBooking, error) {
	return nil, repository.ErrNotFound
}

func (s *stubPending) ListByStatus(context.Context, domain.PendingBookingStatus, string) ([]domain.PendingBooking, error) {
	return nil, nil
}

func (s *stubPending) ConfirmAndConvert(_ context.Context, pendingID, _ int64, _ string) (*domain.TaskPackage, error) {
	if s.converted == nil {
		return nil, repository.ErrBookingExpired
	}
	return s.converted, nil
}

func (s *stubPending) Cancel(_ context.Context, id, byID int64) (*domain.PendingBooking, error) {
	return &domain.PendingBooking{ID: id, Status: domain.PendingCancelled, ConfirmedBy: &byID}, nil
}

func newPendingService(store *stubPending) (PendingBookingService, *stubNotifier) {
	n := &stubNotifier{}
	return PendingBookingService{
		Pending:  store,
		Catalog:  groomingCatalog(),
		Cats:     stubCats{},
		Notify:   n,
		Activity: &stubActivity{},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, n
}

func TestCreatePendingBookingPricesFromCatalog(t *testing.T) {
	store := &stubPending{}
	svc, _ := newPendingService(store)

	b, err := svc.CreatePendingBooking(context.Background(), CreatePendingBookingInput{
		CatID: 3, CreatedBy: 7, ServiceTypeIDs: []int64{1, 2},
		ScheduledDate: time.Now().AddDate(0, 0, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, 30, b.TotalPoints)
	assert.Equal(t, int64(42), store.created.CustomerID, "owner resolved from the cat")
	assert.Equal(t, domain.PendingPayment, b.Status)
}

func TestCreatePendingBookingRejectsPastDate(t *testing.T) {
	svc, _ := newPendingService(&stubPending{})
	_, err := svc.CreatePendingBooking(context.Background(), CreatePendingBookingInput{
		CatID: 3, CreatedBy: 7, ServiceTypeIDs: []int64{1},
		ScheduledDate: time.Now().AddDate(0, 0, -1),
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestCreatePendingBookingRejectsCombo(t *testing.T) {
	svc, _ := newPendingService(&stubPending{})
	_, err := svc.CreatePendingBooking(context.Background(), CreatePendingBookingInput{
		CatID: 3, CreatedBy: 7, ServiceTypeIDs: []int64{5},
		ScheduledDate: time.Now().AddDate(0, 0, 3),
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestConfirmRequiresProof(t *testing.T) {
	svc, _ := newPendingService(&stubPending{})
	_, err := svc.Confirm(context.Background(), 1, 2, "")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestConfirmExpiredSurfaces(t *testing.T) {
	svc, n := newPendingService(&stubPending{})
	_, err := svc.Confirm(context.Background(), 1, 2, "receipt-5")
	assert.ErrorIs(t, err, repository.ErrBookingExpired)
	assert.Empty(t, n.sent)
}

func TestConfirmNotifiesOriginalTaker(t *testing.T) {
	creator := int64(7)
	store := &stubPending{converted: &domain.TaskPackage{
		ID: 11, PackageCode: "PKG-260115-0009", BookingType: domain.BookingTypeA,
		TotalPoints: 30, PointsAwarded: true, CreatedBy: &creator,
	}}
	svc, n := newPendingService(store)

	pkg, err := svc.Confirm(context.Background(), 1, 2, "receipt-5")
	require.NoError(t, err)
	assert.True(t, pkg.PointsAwarded)
	require.Len(t, n.sent, 1)
	assert.Equal(t, domain.NotifyPointsAwarded, n.sent[0])
}
