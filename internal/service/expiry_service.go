package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/metrics"
)

type expiryStore interface {
	ExpireDue(ctx context.Context, today time.Time) ([]domain.PendingBooking, error)
}

// ExpiryService closes unpaid pre-bookings whose appointment date has passed.
// It runs on a timer but can also be triggered by hand from the admin API.
type ExpiryService struct {
	Pending expiryStore
	Notify  notifier
	Logger  *slog.Logger
	Tick    time.Duration
}

// RunSweep expires everything due as of now and returns how many rows closed.
// No points are touched: expired bookings never reached the ledger.
func (s ExpiryService) RunSweep(ctx context.Context) (int, error) {
	expired, err := s.Pending.ExpireDue(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	metrics.ExpirySweeps.Inc()
	metrics.BookingsExpired.Add(float64(len(expired)))

	for _, b := range expired {
		if b.CreatedBy == nil {
			continue
		}
		msg := fmt.Sprintf("Pre-booking %s expired unpaid on %s", b.BookingCode, b.ScheduledDate.Format("2006-01-02"))
		if _, err := s.Notify.Create(ctx, *b.CreatedBy, domain.NotifyBookingExpired, "Booking expired", msg, ""); err != nil {
			s.Logger.Warn("notify expiry failed", "booking", b.BookingCode, "err", err)
		}
	}
	if len(expired) > 0 {
		s.Logger.Info("expiry sweep closed bookings", "count", len(expired))
	}
	return len(expired), nil
}

// Start runs the sweep on every tick until ctx is cancelled. One run happens
// immediately so a restart catches up right away.
func (s ExpiryService) Start(ctx context.Context) {
	if _, err := s.RunSweep(ctx); err != nil {
		s.Logger.Error("expiry sweep failed", "err", err)
	}

	ticker := time.NewTicker(s.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunSweep(ctx); err != nil {
				s.Logger.Error("expiry sweep failed", "err", err)
			}
		}
	}
}
