package booking

import (
	"math"

	"github.com/jwalitptl/hospital-ops/internal/model"
)

type PatientMode string

const (
	PatientModeExisting PatientMode = "existing"
	PatientModeNew      PatientMode = "new"
)

func (m PatientMode) Valid() bool {
	return m == PatientModeExisting || m == PatientModeNew
}

// NewPatient holds the identity fields collected when booking for a patient
// who is not yet registered.
type NewPatient struct {
	FirstName   string       `json:"firstName" validate:"required,max=60"`
	LastName    string       `json:"lastName" validate:"required,max=60"`
	Phone       string       `json:"phone" validate:"required,min=7,max=20"`
	Email       string       `json:"email" validate:"omitempty,email"`
	DateOfBirth string       `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Gender      model.Gender `json:"gender" validate:"omitempty,enum"`
}

type Notifications struct {
	SMS      bool   `json:"sms"`
	WhatsApp bool   `json:"whatsapp"`
	Email    bool   `json:"email"`
	Address  string `json:"emailAddress" validate:"omitempty,email"`
}

// Draft is the content of the booking form.
type Draft struct {
	DoctorID  string           `json:"doctorId" validate:"required"`
	Date      string           `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime *model.ClockTime `json:"startTime" validate:"required"`

	PatientMode PatientMode `json:"patientMode" validate:"required,enum"`
	PatientID   string      `json:"patientId" validate:"required_if=PatientMode existing"`
	NewPatient  *NewPatient `json:"newPatient" validate:"required_if=PatientMode new"`

	Type           model.AppointmentType `json:"type" validate:"required,enum"`
	ChiefComplaint string                `json:"chiefComplaint" validate:"required,max=500"`
	Notes          string                `json:"notes" validate:"max=1000"`

	PaymentMethod   model.PaymentMethod `json:"paymentMethod" validate:"required,enum"`
	DiscountPercent float64             `json:"discountPercent" validate:"gte=0,lte=100"`

	Notify Notifications `json:"notify"`
}

// dropUnusedPatient clears the patient section the mode ignores.
func (d *Draft) dropUnusedPatient() {
	if d.PatientMode == PatientModeExisting {
		d.NewPatient = nil
	}
}

// Fee applies the discount to the base fee, rounded to cents.
func Fee(base, discountPercent float64) float64 {
	return math.Round(base*(1-discountPercent/100)*100) / 100
}
