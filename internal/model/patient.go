package model

import (
	"strings"
	"time"
)

type PatientStatus string

const (
	PatientStatusActive     PatientStatus = "active"
	PatientStatusEmergency  PatientStatus = "emergency"
	PatientStatusAdmitted   PatientStatus = "admitted"
	PatientStatusDischarged PatientStatus = "discharged"
)

func (s PatientStatus) Valid() bool {
	switch s {
	case PatientStatusActive, PatientStatusEmergency, PatientStatusAdmitted, PatientStatusDischarged:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

type Patient struct {
	ID          string        `json:"patientId" yaml:"id"`
	PatientCode string        `json:"patientCode" yaml:"patient_code"`
	FirstName   string        `json:"firstName" yaml:"first_name"`
	LastName    string        `json:"lastName" yaml:"last_name"`
	Phone       string        `json:"phone" yaml:"phone"`
	Email       string        `json:"email,omitempty" yaml:"email"`
	DateOfBirth string        `json:"dateOfBirth" yaml:"date_of_birth"`
	Gender      Gender        `json:"gender,omitempty" yaml:"gender"`
	Status      PatientStatus `json:"status" yaml:"status"`
	Department  string        `json:"department,omitempty" yaml:"department"`
	Ward        string        `json:"ward,omitempty" yaml:"ward"`
	BloodGroup  string        `json:"bloodGroup,omitempty" yaml:"blood_group"`
	CreatedAt   time.Time     `json:"createdAt" yaml:"created_at"`
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Age in whole years on the given day; -1 when the birth date is unknown.
func (p *Patient) Age(on time.Time) int {
	dob, err := ParseDate(p.DateOfBirth)
	if err != nil {
		return -1
	}
	years := on.Year() - dob.Year()
	if on.Month() < dob.Month() || (on.Month() == dob.Month() && on.Day() < dob.Day()) {
		years--
	}
	return years
}

func (p *Patient) SearchFields() []string {
	return []string{p.ID, p.PatientCode, p.FirstName, p.LastName, p.FullName(), p.Phone, p.Email}
}

func (p *Patient) Attribute(name string) (string, bool) {
	switch name {
	case "status":
		return string(p.Status), true
	case "gender":
		return string(p.Gender), true
	case "department":
		return p.Department, true
	case "ward":
		return p.Ward, true
	case "blood_group":
		return p.BloodGroup, true
	}
	return "", false
}

func (p *Patient) RecordDate() string {
	return ""
}

var PatientFilterKeys = []string{"status", "gender", "department", "ward", "blood_group"}

// PatientSegment counts patients sharing one value of a dimension.
type PatientSegment struct {
	Dimension  string  `json:"dimension"`
	Segment    string  `json:"segment"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type PatientSegments struct {
	Total    int              `json:"total"`
	Segments []PatientSegment `json:"segments"`
}
