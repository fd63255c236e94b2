package domain

import "time"

// TaskPackage is one cat-visit's bundle of requested services. Its booking type
// fixes when the creating staff earns booking points:
//
//	type_a  proof at intake, points awarded at creation
//	type_c  no proof, points held until a manager confirms arrival
//	type_b  redemption of a purchased combo session, never awards points
type TaskPackage struct {
	ID            int64
	PackageCode   string
	CatID         int64
	CreatedBy     *int64
	Branch        string
	Status        PackageStatus
	BookingType   BookingType
	TotalPoints   int
	Notes         string
	ScheduledDate *time.Time

	// Type A evidence
	PaymentProofRef string

	// Type B linkage
	ComboOwnershipID   *int64
	ComboSessionNumber *int

	// Type C adjudication
	ArrivalStatus      ArrivalStatus
	ArrivalConfirmedAt *time.Time
	ConfirmedBy        *int64

	// Settlement idempotence flag. Once true it never flips back; every award
	// path checks it before touching the ledger.
	PointsAwarded   bool
	PointsAwardedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanConfirmArrival reports whether a manager decision is still open.
func (p *TaskPackage) CanConfirmArrival() bool {
	return p.ArrivalStatus == ArrivalPending
}

// AwardsOnArrival reports whether confirming arrival should release held points.
func (p *TaskPackage) AwardsOnArrival() bool {
	return p.BookingType == BookingTypeC && !p.PointsAwarded
}

// AwardDate is the ledger date for held points: the service date when known,
// otherwise the intake date. Incentives are month-bucketed by service date.
func (p *TaskPackage) AwardDate() time.Time {
	if p.ScheduledDate != nil {
		return *p.ScheduledDate
	}
	return p.CreatedAt
}

// Task is one workable unit inside a package, with its own lifecycle that is
// independent of the package-level points settlement.
type Task struct {
	ID            int64
	TaskCode      string
	PackageID     int64
	TaskTypeID    int64
	TaskTypeName  string
	Points        int
	ScheduledDate time.Time
	ScheduledTime string
	AssignedStaff *int64
	AssignedBy    *int64
	AssignedAt    *time.Time
	Status        TaskStatus
	Notes         string
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time
}

var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskPending:    {TaskAssigned, TaskCancelled},
	TaskAssigned:   {TaskInProgress, TaskCancelled},
	TaskInProgress: {TaskSubmitted, TaskCancelled},
	TaskSubmitted:  {TaskCompleted, TaskInProgress, TaskCancelled},
}

// CanTransition reports whether the task status machine permits the move.
func (t *Task) CanTransition(to TaskStatus) bool {
	for _, s := range taskTransitions[t.Status] {
		if s == to {
			return true
		}
	}
	return false
}

// TaskCompletion records an approved task and the one-time point award for it.
type TaskCompletion struct {
	ID              int64
	TaskID          int64
	CompletedBy     int64
	ApprovedBy      *int64
	CompletedAt     time.Time
	Notes           string
	ProofRefs       string
	PointsAwarded   int
	PointsAwardedAt *time.Time
}

// ComboPackageOwnership is the sole source of truth for a purchased multi-session
// package. PointsAwarded records the one-time sale award only; redemptions never
// add to it.
type ComboPackageOwnership struct {
	ID                int64
	OwnershipCode     string
	CustomerID        int64
	CatID             int64
	ComboTaskTypeID   int64
	TotalSessions     int
	SessionsUsed      int
	SessionsRemaining int
	PointsAwarded     int
	AwardedTo         *int64
	AwardedAt         *time.Time
	PurchasePackageID int64
	Active            bool
	FullyUsed         bool
	PurchasedAt       time.Time
	ExpiresAt         *time.Time
}

// Reconcile recomputes the derived session fields. Remaining never goes below
// zero; an exhausted combo deactivates.
func (c *ComboPackageOwnership) Reconcile() {
	c.SessionsRemaining = c.TotalSessions - c.SessionsUsed
	if c.SessionsRemaining <= 0 {
		c.SessionsRemaining = 0
		c.FullyUsed = true
		c.Active = false
	}
}

// HasSessions reports whether another redemption is possible.
func (c *ComboPackageOwnership) HasSessions() bool {
	return c.Active && c.SessionsRemaining > 0
}

// PendingBooking is a pre-booking placeholder taken without payment evidence.
// It holds the requested service types as IDs until conversion materializes
// real Task rows, and expires once the appointment date passes unconfirmed.
type PendingBooking struct {
	ID              int64
	BookingCode     string
	CustomerID      int64
	CatID           int64
	ServiceTypeIDs  []int64
	TotalPoints     int
	ScheduledDate   time.Time
	ScheduledTime   string
	Notes           string
	Status          PendingBookingStatus
	Branch          string
	CreatedBy       *int64
	ConfirmedAt     *time.Time
	ConfirmedBy     *int64
	PaymentProofRef string
	ExpiredAt       *time.Time
	ConvertedTo     *int64
	CreatedAt       time.Time
}

// IsExpired reports whether confirmation has been lost to expiry: the sweep
// already closed the row, or it is still unpaid past the appointment date.
func (b *PendingBooking) IsExpired(today time.Time) bool {
	switch b.Status {
	case PendingExpired:
		return true
	case PendingPayment:
		return dateOnly(today).After(dateOnly(b.ScheduledDate))
	default:
		return false
	}
}

// CanBeConfirmed reports whether conversion into a real booking is still open.
func (b *PendingBooking) CanBeConfirmed(today time.Time) bool {
	return b.Status == PendingPayment && !b.IsExpired(today)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
