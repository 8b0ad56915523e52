package model

import (
	"fmt"
	"time"
)

type AppointmentType string

const (
	AppointmentTypeConsultation   AppointmentType = "Consultation"
	AppointmentTypeFollowUp       AppointmentType = "Follow-up"
	AppointmentTypeEmergency      AppointmentType = "Emergency"
	AppointmentTypeRoutineCheckup AppointmentType = "Routine Checkup"
	AppointmentTypeVaccination    AppointmentType = "Vaccination"
	AppointmentTypeHealthCheckup  AppointmentType = "Health Checkup"
)

func (t AppointmentType) Valid() bool {
	switch t {
	case AppointmentTypeConsultation, AppointmentTypeFollowUp, AppointmentTypeEmergency,
		AppointmentTypeRoutineCheckup, AppointmentTypeVaccination, AppointmentTypeHealthCheckup:
		return true
	}
	return false
}

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusInProgress AppointmentStatus = "in-progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no-show"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusInProgress,
		AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled || s == AppointmentStatusNoShow
}

// OccupiesSlot reports whether an appointment in this status holds its slot.
func (s AppointmentStatus) OccupiesSlot() bool {
	return s != AppointmentStatusCancelled
}

// Queued reports whether an appointment in this status appears in the queue.
func (s AppointmentStatus) Queued() bool {
	return s != AppointmentStatusCancelled && s != AppointmentStatusNoShow
}

type PaymentStatus string

const (
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusInsurance PaymentStatus = "insurance"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPaid || s == PaymentStatusPending || s == PaymentStatusInsurance
}

type PaymentMethod string

const (
	PaymentMethodCash      PaymentMethod = "cash"
	PaymentMethodCard      PaymentMethod = "card"
	PaymentMethodUPI       PaymentMethod = "upi"
	PaymentMethodInsurance PaymentMethod = "insurance"
	PaymentMethodPayLater  PaymentMethod = "pay_later"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI, PaymentMethodInsurance, PaymentMethodPayLater:
		return true
	}
	return false
}

// PaymentStatus derives the initial payment status of a booking.
func (m PaymentMethod) PaymentStatus() PaymentStatus {
	switch m {
	case PaymentMethodInsurance:
		return PaymentStatusInsurance
	case PaymentMethodPayLater:
		return PaymentStatusPending
	default:
		return PaymentStatusPaid
	}
}

type Appointment struct {
	ID             string            `json:"id" yaml:"id"`
	PatientID      string            `json:"patientId" yaml:"patient_id"`
	PatientName    string            `json:"patientName" yaml:"patient_name"`
	DoctorID       string            `json:"doctorId" yaml:"doctor_id"`
	Department     string            `json:"department" yaml:"department"`
	Date           string            `json:"date" yaml:"date"`
	StartTime      ClockTime         `json:"startTime" yaml:"start_time"`
	EndTime        ClockTime         `json:"endTime" yaml:"end_time"`
	Type           AppointmentType   `json:"type" yaml:"type"`
	Status         AppointmentStatus `json:"status" yaml:"status"`
	PaymentStatus  PaymentStatus     `json:"paymentStatus" yaml:"payment_status"`
	PaymentMethod  PaymentMethod     `json:"paymentMethod,omitempty" yaml:"payment_method"`
	Fee            float64           `json:"fee" yaml:"fee"`
	RoomNumber     string            `json:"roomNumber" yaml:"room_number"`
	ChiefComplaint string            `json:"chiefComplaint,omitempty" yaml:"chief_complaint"`
	Notes          string            `json:"notes,omitempty" yaml:"notes"`
	CreatedAt      time.Time         `json:"createdAt" yaml:"created_at"`
	UpdatedAt      time.Time         `json:"updatedAt" yaml:"updated_at"`
}

func (a *Appointment) Interval() TimeRange {
	return TimeRange{Start: a.StartTime, End: a.EndTime}
}

func (a *Appointment) DurationMinutes() int {
	return a.Interval().Minutes()
}

// Validate checks the record-level invariants every stored appointment holds.
func (a *Appointment) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("appointment id is required")
	}
	if _, err := ParseDate(a.Date); err != nil {
		return fmt.Errorf("appointment %s: %w", a.ID, err)
	}
	if err := a.Interval().Validate(); err != nil {
		return fmt.Errorf("appointment %s: %w", a.ID, err)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("appointment %s: unknown type %q", a.ID, a.Type)
	}
	if !a.Status.Valid() {
		return fmt.Errorf("appointment %s: unknown status %q", a.ID, a.Status)
	}
	if !a.PaymentStatus.Valid() {
		return fmt.Errorf("appointment %s: unknown payment status %q", a.ID, a.PaymentStatus)
	}
	return nil
}

func (a *Appointment) SearchFields() []string {
	return []string{a.ID, a.PatientID, a.PatientName, a.DoctorID, a.Department, a.RoomNumber, a.ChiefComplaint, a.Notes}
}

func (a *Appointment) Attribute(name string) (string, bool) {
	switch name {
	case "status":
		return string(a.Status), true
	case "department":
		return a.Department, true
	case "type":
		return string(a.Type), true
	case "payment_status":
		return string(a.PaymentStatus), true
	case "doctor_id":
		return a.DoctorID, true
	case "patient_id":
		return a.PatientID, true
	}
	return "", false
}

func (a *Appointment) RecordDate() string {
	return a.Date
}

// AppointmentFilterKeys lists the categorical filters appointments accept.
var AppointmentFilterKeys = []string{"status", "department", "type", "payment_status", "doctor_id", "patient_id"}

// UpdateAppointmentStatusRequest is the body of a status change.
type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" validate:"required,enum"`
}
