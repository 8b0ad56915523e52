package model

// Dashboard records. They are read-only at runtime and exist so the list
// pages can search and filter them.

type Bed struct {
	ID        string `json:"id" yaml:"id"`
	Ward      string `json:"ward" yaml:"ward"`
	BedNumber string `json:"bedNumber" yaml:"bed_number"`
	Type      string `json:"type" yaml:"type"`
	Status    string `json:"status" yaml:"status"`
	PatientID string `json:"patientId,omitempty" yaml:"patient_id"`
}

func (b *Bed) SearchFields() []string {
	return []string{b.ID, b.Ward, b.BedNumber, b.PatientID}
}

func (b *Bed) Attribute(name string) (string, bool) {
	switch name {
	case "ward":
		return b.Ward, true
	case "type":
		return b.Type, true
	case "status":
		return b.Status, true
	}
	return "", false
}

func (b *Bed) RecordDate() string { return "" }

var BedFilterKeys = []string{"ward", "type", "status"}

type Document struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Category    string `json:"category" yaml:"category"`
	PatientID   string `json:"patientId,omitempty" yaml:"patient_id"`
	PatientName string `json:"patientName,omitempty" yaml:"patient_name"`
	Status      string `json:"status" yaml:"status"`
	Date        string `json:"date" yaml:"date"`
}

func (d *Document) SearchFields() []string {
	return []string{d.ID, d.Title, d.PatientID, d.PatientName}
}

func (d *Document) Attribute(name string) (string, bool) {
	switch name {
	case "category":
		return d.Category, true
	case "status":
		return d.Status, true
	case "patient_id":
		return d.PatientID, true
	}
	return "", false
}

func (d *Document) RecordDate() string { return d.Date }

var DocumentFilterKeys = []string{"category", "status", "patient_id"}

type Task struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	Assignee   string `json:"assignee" yaml:"assignee"`
	Department string `json:"department" yaml:"department"`
	Priority   string `json:"priority" yaml:"priority"`
	Status     string `json:"status" yaml:"status"`
	DueDate    string `json:"dueDate" yaml:"due_date"`
}

func (t *Task) SearchFields() []string {
	return []string{t.ID, t.Title, t.Assignee}
}

func (t *Task) Attribute(name string) (string, bool) {
	switch name {
	case "department":
		return t.Department, true
	case "priority":
		return t.Priority, true
	case "status":
		return t.Status, true
	case "assignee":
		return t.Assignee, true
	}
	return "", false
}

func (t *Task) RecordDate() string { return t.DueDate }

var TaskFilterKeys = []string{"department", "priority", "status", "assignee"}

type VitalsReading struct {
	HeartRate       int     `json:"heartRate" yaml:"heart_rate"`
	BloodPressure   string  `json:"bloodPressure" yaml:"blood_pressure"`
	TemperatureC    float64 `json:"temperatureC" yaml:"temperature_c"`
	SpO2            int     `json:"spo2" yaml:"spo2"`
	RespiratoryRate int     `json:"respiratoryRate" yaml:"respiratory_rate"`
}

type VitalsRecord struct {
	ID          string        `json:"id" yaml:"id"`
	PatientID   string        `json:"patientId" yaml:"patient_id"`
	PatientName string        `json:"patientName" yaml:"patient_name"`
	Ward        string        `json:"ward" yaml:"ward"`
	Readings    VitalsReading `json:"readings" yaml:"readings"`
	RecordedAt  string        `json:"recordedAt" yaml:"recorded_at"`
	Status      string        `json:"status" yaml:"status"`
}

func (v *VitalsRecord) SearchFields() []string {
	return []string{v.ID, v.PatientID, v.PatientName}
}

func (v *VitalsRecord) Attribute(name string) (string, bool) {
	switch name {
	case "ward":
		return v.Ward, true
	case "status":
		return v.Status, true
	case "patient_id":
		return v.PatientID, true
	}
	return "", false
}

// RecordDate is the calendar part of RecordedAt.
func (v *VitalsRecord) RecordDate() string {
	if len(v.RecordedAt) >= len(DateLayout) {
		return v.RecordedAt[:len(DateLayout)]
	}
	return v.RecordedAt
}

var VitalsFilterKeys = []string{"ward", "status", "patient_id"}

type StaffLeave struct {
	ID         string `json:"id" yaml:"id"`
	StaffID    string `json:"staffId" yaml:"staff_id"`
	StaffName  string `json:"staffName" yaml:"staff_name"`
	Department string `json:"department" yaml:"department"`
	LeaveType  string `json:"leaveType" yaml:"leave_type"`
	Status     string `json:"status" yaml:"status"`
	From       string `json:"from" yaml:"from"`
	To         string `json:"to" yaml:"to"`
	Reason     string `json:"reason,omitempty" yaml:"reason"`
}

func (l *StaffLeave) SearchFields() []string {
	return []string{l.ID, l.StaffID, l.StaffName, l.Reason}
}

func (l *StaffLeave) Attribute(name string) (string, bool) {
	switch name {
	case "department":
		return l.Department, true
	case "leave_type":
		return l.LeaveType, true
	case "status":
		return l.Status, true
	}
	return "", false
}

func (l *StaffLeave) RecordDate() string { return l.From }

var StaffLeaveFilterKeys = []string{"department", "leave_type", "status"}
