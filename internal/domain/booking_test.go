package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskPackageArrivalGuards(t *testing.T) {
	p := TaskPackage{BookingType: BookingTypeC, ArrivalStatus: ArrivalPending}
	assert.True(t, p.CanConfirmArrival())
	assert.True(t, p.AwardsOnArrival())

	p.ArrivalStatus = ArrivalArrived
	p.PointsAwarded = true
	assert.False(t, p.CanConfirmArrival())
	assert.False(t, p.AwardsOnArrival())

	p.ArrivalStatus = ArrivalNoShow
	assert.False(t, p.CanConfirmArrival())
}

func TestTaskPackageAwardDate(t *testing.T) {
	created := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	scheduled := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	p := TaskPackage{CreatedAt: created}
	assert.Equal(t, created, p.AwardDate())

	p.ScheduledDate = &scheduled
	assert.Equal(t, scheduled, p.AwardDate())
}

func TestComboReconcileConservation(t *testing.T) {
	c := ComboPackageOwnership{TotalSessions: 4, SessionsUsed: 1, Active: true}
	c.Reconcile()
	assert.Equal(t, 3, c.SessionsRemaining)
	assert.Equal(t, c.TotalSessions, c.SessionsUsed+c.SessionsRemaining)
	assert.True(t, c.HasSessions())

	c.SessionsUsed = 4
	c.Reconcile()
	assert.Equal(t, 0, c.SessionsRemaining)
	assert.True(t, c.FullyUsed)
	assert.False(t, c.Active)
	assert.False(t, c.HasSessions())

	// Overshoot clamps, remaining never goes negative.
	c.SessionsUsed = 6
	c.Reconcile()
	assert.Equal(t, 0, c.SessionsRemaining)
}

func TestPendingBookingExpiry(t *testing.T) {
	scheduled := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	b := PendingBooking{Status: PendingPayment, ScheduledDate: scheduled}

	onDay := time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)
	dayAfter := time.Date(2024, 3, 16, 0, 30, 0, 0, time.UTC)

	assert.False(t, b.IsExpired(onDay), "appointment day itself is still confirmable")
	assert.True(t, b.CanBeConfirmed(onDay))

	assert.True(t, b.IsExpired(dayAfter))
	assert.False(t, b.CanBeConfirmed(dayAfter))

	// A row the sweep already closed stays expired, even on the day itself.
	b.Status = PendingExpired
	assert.True(t, b.IsExpired(onDay))
	assert.False(t, b.CanBeConfirmed(onDay))

	// Confirmed and cancelled rows are done, not expired.
	b.Status = PendingConfirmed
	assert.False(t, b.IsExpired(dayAfter))
	assert.False(t, b.CanBeConfirmed(dayAfter))

	b.Status = PendingCancelled
	assert.False(t, b.IsExpired(dayAfter))
	assert.False(t, b.CanBeConfirmed(dayAfter))
}

func TestTaskTransitions(t *testing.T) {
	task := Task{Status: TaskPending}
	assert.True(t, task.CanTransition(TaskAssigned))
	assert.False(t, task.CanTransition(TaskCompleted))

	task.Status = TaskSubmitted
	assert.True(t, task.CanTransition(TaskCompleted))
	assert.True(t, task.CanTransition(TaskInProgress), "manager can send back for rework")

	task.Status = TaskCompleted
	assert.False(t, task.CanTransition(TaskInProgress))
	assert.False(t, task.CanTransition(TaskCancelled))
}

func TestCodeFormats(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "PKG-240315-0007", FormatPackageCode(day, 7))
	assert.Equal(t, "PB-240315-0001", FormatPendingBookingCode(day, 1))
	assert.Equal(t, "COMBO-240315-0012", FormatComboCode(day, 12))
	assert.Equal(t, "TSK-240315-0123", FormatTaskCode(day, 123))
	assert.Equal(t, "PR-240315-0002", FormatPointRequestCode(day, 2))
	assert.Equal(t, "CUST0042", FormatCustomerCode(42))
	assert.Len(t, FormatCatCode(5), 12)
}
