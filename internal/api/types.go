package api

import "time"

// Role is the account role returned by the auth endpoints.
type Role string

const (
	RoleClient Role = "CLIENT"
	RoleStaff  Role = "STAFF"
	RoleAdmin  Role = "ADMIN"
)

// AppointmentStatus is the server-owned appointment lifecycle state. The
// client never computes transitions; it only requests CANCELLED.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusNoShow    AppointmentStatus = "NO_SHOW"
)

// Terminal reports whether the status admits no further client action.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Label returns the user-facing status label.
func (s AppointmentStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pendiente"
	case StatusConfirmed:
		return "Confirmado"
	case StatusCompleted:
		return "Completado"
	case StatusCancelled:
		return "Cancelado"
	case StatusNoShow:
		return "No asistió"
	}
	return string(s)
}

// AuthUser is the authenticated account profile.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Service is a bookable service from the catalog.
type Service struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Duration    int     `json:"duration"`
	Price       int     `json:"price"`
	ImageURL    *string `json:"imageUrl"`
	IsActive    bool    `json:"isActive"`
}

// StaffMember is a barber from the roster.
type StaffMember struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          *string   `json:"phone"`
	Bio            *string   `json:"bio"`
	PhotoURL       *string   `json:"photoUrl"`
	Specialties    []string  `json:"specialties"`
	IsActive       bool      `json:"isActive"`
	Services       []Service `json:"services"`
	StaffProfileID string    `json:"staffProfileId"`
}

// AppointmentClient is the client summary embedded in an appointment.
type AppointmentClient struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone"`
}

// AppointmentService is the service summary embedded in an appointment.
type AppointmentService struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
	Price    int    `json:"price"`
}

// AppointmentStaff is the staff summary embedded in an appointment. Nil when
// the booking was made with no staff preference and none was assigned yet.
type AppointmentStaff struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Appointment is the server-owned appointment read model.
type Appointment struct {
	ID          string             `json:"id"`
	StartTime   time.Time          `json:"startTime"`
	EndTime     time.Time          `json:"endTime"`
	Status      AppointmentStatus  `json:"status"`
	ClientNotes *string            `json:"clientNotes"`
	StaffNotes  *string            `json:"staffNotes"`
	CreatedAt   time.Time          `json:"createdAt"`
	Client      AppointmentClient  `json:"client"`
	Service     AppointmentService `json:"service"`
	Staff       *AppointmentStaff  `json:"staff"`
}

// TimeSlot is one availability slot. Start/End are carried verbatim as RFC
// 3339 strings; Start is forwarded untouched as the booking startTime.
type TimeSlot struct {
	Time      string `json:"time"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

// HaircutRecord is one entry of the client's haircut history.
type HaircutRecord struct {
	ID               string            `json:"id"`
	Date             string            `json:"date"`
	Price            int               `json:"price"`
	OriginalPrice    *int              `json:"originalPrice"`
	DiscountAmount   *int              `json:"discountAmount"`
	PromotionApplied bool              `json:"promotionApplied"`
	Notes            *string           `json:"notes"`
	Tags             []string          `json:"tags"`
	PhotoURLs        []string          `json:"photoUrls"`
	Service          RecordService     `json:"service"`
	Staff            *AppointmentStaff `json:"staff"`
}

// RecordService is the service summary embedded in a haircut record.
type RecordService struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"imageUrl"`
}

// PromotionConfig is the shop-wide weekly promotion settings.
type PromotionConfig struct {
	Enabled    bool     `json:"enabled"`
	Day        int      `json:"day"`
	Discount   int      `json:"discount"`
	Message    string   `json:"message"`
	ServiceIDs []string `json:"serviceIds"`
}

// PaginationMeta describes one page of a paginated listing.
type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// LoginResponse is returned by the mobile login endpoint.
type LoginResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone,omitempty"`
}

// CreateAppointmentRequest is the booking payload produced by the wizard.
// StaffID is omitted entirely for the "no preference" booking.
type CreateAppointmentRequest struct {
	ServiceID   string  `json:"serviceId"`
	StaffID     *string `json:"staffId,omitempty"`
	StartTime   string  `json:"startTime"`
	ClientNotes *string `json:"clientNotes,omitempty"`
}

// UpdateAppointmentRequest is a partial appointment update. Cancellation is a
// status-transition request, never a delete.
type UpdateAppointmentRequest struct {
	Status      *AppointmentStatus `json:"status,omitempty"`
	ClientNotes *string            `json:"clientNotes,omitempty"`
}

// UpdateUserRequest is a partial profile update.
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// ChangePasswordRequest changes the account password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// AvailableSlotsRequest scopes an availability query. StaffID is omitted for
// "no preference".
type AvailableSlotsRequest struct {
	ServiceID string  `json:"serviceId"`
	StaffID   *string `json:"staffId,omitempty"`
	Date      string  `json:"date"`
}

// AppointmentQuery filters the appointment listing.
type AppointmentQuery struct {
	Status   []AppointmentStatus
	ClientID string
	StaffID  string
	Date     string
	From     string
	To       string
	Page     int
	Limit    int
}

// AppointmentsPage is one page of the appointment listing.
type AppointmentsPage struct {
	Appointments []Appointment   `json:"appointments"`
	Pagination   *PaginationMeta `json:"pagination,omitempty"`
}

// Narrow response envelopes for list endpoints.
type servicesResponse struct {
	Services []Service `json:"services"`
}

type staffResponse struct {
	Staff []StaffMember `json:"staff"`
}

type slotsResponse struct {
	Slots []TimeSlot `json:"slots"`
}

type recordsResponse struct {
	Records []HaircutRecord `json:"records"`
}

type promotionResponse struct {
	Promotion PromotionConfig `json:"promotion"`
}
