package domain

import "time"

// Enumerations
const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleStaff   UserRole = "staff"

	BookingTypeA BookingType = "type_a" // payment proof present, award now
	BookingTypeB BookingType = "type_b" // combo session, no new points
	BookingTypeC BookingType = "type_c" // no proof, points held until arrival

	ArrivalPending ArrivalStatus = "pending"
	ArrivalArrived ArrivalStatus = "arrived"
	ArrivalNoShow  ArrivalStatus = "no_show"

	PackagePending    PackageStatus = "pending"
	PackageAssigned   PackageStatus = "assigned"
	PackageInProgress PackageStatus = "in_progress"
	PackageCompleted  PackageStatus = "completed"
	PackageCancelled  PackageStatus = "cancelled"

	TaskPending    TaskStatus = "pending"
	TaskAssigned   TaskStatus = "assigned"
	TaskInProgress TaskStatus = "in_progress"
	TaskSubmitted  TaskStatus = "submitted"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"

	PendingPayment   PendingBookingStatus = "pending_payment"
	PendingConfirmed PendingBookingStatus = "confirmed"
	PendingExpired   PendingBookingStatus = "expired"
	PendingCancelled PendingBookingStatus = "cancelled"

	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"

	NotifyTaskAssigned   NotificationType = "task_assigned"
	NotifyPointsAwarded  NotificationType = "points_awarded"
	NotifyPointRequest   NotificationType = "point_request"
	NotifyBookingExpired NotificationType = "booking_expired"
	NotifyWarning        NotificationType = "warning"
	NotifyGeneral        NotificationType = "general"

	ShiftMorning ShiftType = "morning"
	ShiftEvening ShiftType = "evening"
	ShiftFull    ShiftType = "full"
	ShiftOff     ShiftType = "off"
)

type UserRole string
type BookingType string
type ArrivalStatus string
type PackageStatus string
type TaskStatus string
type PendingBookingStatus string
type ApprovalStatus string
type NotificationType string
type ShiftType string

type StaffAccount struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	Branch       string
	Role         UserRole
	PasswordHash *string
	Active       bool
	JoinDate     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type Customer struct {
	ID           int64
	CustomerCode string
	Name         string
	Phone        string
	Email        string
	Address      string
	RegisteredBy *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Cat struct {
	ID           int64
	CatCode      string
	Name         string
	OwnerID      int64
	Breed        string
	Gender       string
	Age          int
	MedicalNotes string
	Active       bool
	RegisteredBy *int64
	CreatedAt    time.Time
}

type TaskGroup struct {
	ID        int64
	GroupCode string
	Name      string
	Active    bool
	SortOrder int
	CreatedAt time.Time
}

// TaskType is one orderable service from the catalog. ComboSessions > 0 marks a
// combo-front type whose sale grants the customer that many redeemable sessions.
type TaskType struct {
	ID            int64
	TypeCode      string
	GroupID       int64
	Name          string
	Points        int
	Price         *int64 // minor units (sen)
	ComboSessions int
	Active        bool
	SortOrder     int
	CreatedAt     time.Time
}

type Notification struct {
	ID        int64
	UserID    int64
	Type      NotificationType
	Title     string
	Message   string
	Link      string
	ReadAt    *time.Time
	CreatedAt time.Time
}

type Schedule struct {
	ID        int64
	StaffID   int64
	Date      time.Time
	Shift     ShiftType
	StartTime string
	EndTime   string
	Branch    string
	Notes     string
	CreatedBy *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ActivityLog struct {
	ID       int64
	ActorID  *int64
	Action   string
	Entity   string
	EntityID string
	Detail   string
	LoggedAt time.Time
}
