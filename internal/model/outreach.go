package model

import "time"

type Prescription struct {
	Medicine     string `json:"medicine" yaml:"medicine" validate:"required,max=120"`
	Dosage       string `json:"dosage" yaml:"dosage" validate:"required,max=60"`
	Frequency    string `json:"frequency" yaml:"frequency" validate:"required,max=60"`
	DurationDays int    `json:"durationDays" yaml:"duration_days" validate:"gte=1,lte=365"`
}

type Consultation struct {
	ID             string         `json:"id" yaml:"id"`
	AppointmentID  string         `json:"appointmentId,omitempty" yaml:"appointment_id"`
	PatientID      string         `json:"patientId" yaml:"patient_id"`
	DoctorID       string         `json:"doctorId" yaml:"doctor_id"`
	ChiefComplaint string         `json:"chiefComplaint" yaml:"chief_complaint"`
	Diagnosis      string         `json:"diagnosis" yaml:"diagnosis"`
	Notes          string         `json:"notes,omitempty" yaml:"notes"`
	Vitals         *VitalsReading `json:"vitals,omitempty" yaml:"vitals"`
	Prescriptions  []Prescription `json:"prescriptions" yaml:"prescriptions"`
	LabTests       []string       `json:"labTests" yaml:"lab_tests"`
	FollowUpDate   string         `json:"followUpDate,omitempty" yaml:"follow_up_date"`
	CreatedAt      time.Time      `json:"createdAt" yaml:"created_at"`
}

type CreateConsultationRequest struct {
	AppointmentID  string         `json:"appointmentId"`
	PatientID      string         `json:"patientId" validate:"required"`
	DoctorID       string         `json:"doctorId" validate:"required"`
	ChiefComplaint string         `json:"chiefComplaint" validate:"required,max=500"`
	Diagnosis      string         `json:"diagnosis" validate:"required,max=500"`
	Notes          string         `json:"notes" validate:"max=2000"`
	Vitals         *VitalsReading `json:"vitals"`
	Prescriptions  []Prescription `json:"prescriptions" validate:"dive"`
	LabTests       []string       `json:"labTests" validate:"dive,required,max=120"`
	FollowUpDate   string         `json:"followUpDate" validate:"omitempty,datetime=2006-01-02"`
}

type CampaignType string

const (
	CampaignTypeAwareness   CampaignType = "awareness"
	CampaignTypeScreening   CampaignType = "screening"
	CampaignTypeVaccination CampaignType = "vaccination"
	CampaignTypeFundraising CampaignType = "fundraising"
)

func (t CampaignType) Valid() bool {
	switch t {
	case CampaignTypeAwareness, CampaignTypeScreening, CampaignTypeVaccination, CampaignTypeFundraising:
		return true
	}
	return false
}

type CampaignStatus string

const (
	CampaignStatusPlanned   CampaignStatus = "planned"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusCompleted CampaignStatus = "completed"
)

func (s CampaignStatus) Valid() bool {
	return s == CampaignStatusPlanned || s == CampaignStatusActive || s == CampaignStatusCompleted
}

type Campaign struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	Type          CampaignType   `json:"type" yaml:"type"`
	Status        CampaignStatus `json:"status" yaml:"status"`
	StartDate     string         `json:"startDate" yaml:"start_date"`
	EndDate       string         `json:"endDate" yaml:"end_date"`
	Budget        float64        `json:"budget" yaml:"budget"`
	TargetSegment string         `json:"targetSegment,omitempty" yaml:"target_segment"`
	Channels      []string       `json:"channels" yaml:"channels"`
	Description   string         `json:"description,omitempty" yaml:"description"`
	CreatedAt     time.Time      `json:"createdAt" yaml:"created_at"`
}

func (c *Campaign) SearchFields() []string {
	return []string{c.ID, c.Name, c.Description, c.TargetSegment}
}

func (c *Campaign) Attribute(name string) (string, bool) {
	switch name {
	case "type":
		return string(c.Type), true
	case "status":
		return string(c.Status), true
	}
	return "", false
}

func (c *Campaign) RecordDate() string { return c.StartDate }

var CampaignFilterKeys = []string{"type", "status"}

type CreateCampaignRequest struct {
	Name          string         `json:"name" validate:"required,max=120"`
	Type          CampaignType   `json:"type" validate:"required,enum"`
	Status        CampaignStatus `json:"status" validate:"omitempty,enum"`
	StartDate     string         `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate       string         `json:"endDate" validate:"required,datetime=2006-01-02"`
	Budget        float64        `json:"budget" validate:"gte=0"`
	TargetSegment string         `json:"targetSegment" validate:"max=120"`
	Channels      []string       `json:"channels" validate:"dive,oneof=sms whatsapp email social print"`
	Description   string         `json:"description" validate:"max=2000"`
}

type Volunteer struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Email       string   `json:"email,omitempty" yaml:"email"`
	Phone       string   `json:"phone,omitempty" yaml:"phone"`
	Skills      []string `json:"skills" yaml:"skills"`
	ProgramID   string   `json:"programId" yaml:"program_id"`
	Status      string   `json:"status" yaml:"status"`
	HoursLogged float64  `json:"hoursLogged" yaml:"hours_logged"`
	JoinedAt    string   `json:"joinedAt" yaml:"joined_at"`
}

func (v *Volunteer) SearchFields() []string {
	fields := []string{v.ID, v.Name, v.Email, v.Phone}
	return append(fields, v.Skills...)
}

func (v *Volunteer) Attribute(name string) (string, bool) {
	switch name {
	case "status":
		return v.Status, true
	case "program_id":
		return v.ProgramID, true
	}
	return "", false
}

func (v *Volunteer) RecordDate() string { return v.JoinedAt }

var VolunteerFilterKeys = []string{"status", "program_id"}

type CSRProgram struct {
	ID            string  `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Category      string  `json:"category" yaml:"category"`
	Status        string  `json:"status" yaml:"status"`
	Budget        float64 `json:"budget" yaml:"budget"`
	Spent         float64 `json:"spent" yaml:"spent"`
	Beneficiaries int     `json:"beneficiaries" yaml:"beneficiaries"`
}

type ProgramHours struct {
	ProgramID   string  `json:"programId"`
	ProgramName string  `json:"programName"`
	Volunteers  int     `json:"volunteers"`
	Hours       float64 `json:"hours"`
}

type CSRAnalytics struct {
	TotalVolunteers   int            `json:"totalVolunteers"`
	ActiveVolunteers  int            `json:"activeVolunteers"`
	VolunteerHours    float64        `json:"volunteerHours"`
	Programs          int            `json:"programs"`
	ActivePrograms    int            `json:"activePrograms"`
	Beneficiaries     int            `json:"beneficiaries"`
	Budget            float64        `json:"budget"`
	Spent             float64        `json:"spent"`
	BudgetUtilization float64        `json:"budgetUtilization"`
	HoursByProgram    []ProgramHours `json:"hoursByProgram"`
}
