package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExpiry struct {
	expired []domain.PendingBooking
	calls   int
}

func (s *stubExpiry) ExpireDue(context.Context, time.Time) ([]domain.PendingBooking, error) {
	s.calls++
	return s.expired, nil
}

func TestRunSweepNotifiesCreators(t *testing.T) {
	creator := int64(7)
	store := &stubExpiry{expired: []domain.PendingBooking{
		{BookingCode: "PB-260110-0001", CreatedBy: &creator, ScheduledDate: time.Now().AddDate(0, 0, -2)},
		{BookingCode: "PB-260110-0002", CreatedBy: nil, ScheduledDate: time.Now().AddDate(0, 0, -1)},
	}}
	n := &stubNotifier{}
	svc := ExpiryService{
		Pending: store,
		Notify:  n,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tick:    time.Hour,
	}

	count, err := svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	// Walk-in pre-bookings without a creator have nobody to tell.
	require.Len(t, n.sent, 1)
	assert.Equal(t, domain.NotifyBookingExpired, n.sent[0])
}

func TestRunSweepEmpty(t *testing.T) {
	store := &stubExpiry{}
	n := &stubNotifier{}
	svc := ExpiryService{
		Pending: store,
		Notify:  n,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tick:    time.Hour,
	}

	count, err := svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, n.sent)
	assert.Equal(t, 1, store.calls)
}
