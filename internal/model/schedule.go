package model

import (
	"fmt"
	"sort"
	"time"
)

// DoctorSchedule is static configuration describing when a doctor sees
// patients. Breaks apply to every working day.
type DoctorSchedule struct {
	DoctorID            string                 `json:"doctorId" yaml:"doctor_id"`
	DoctorName          string                 `json:"doctorName" yaml:"doctor_name"`
	Department          string                 `json:"department" yaml:"department"`
	Specialization      string                 `json:"specialization,omitempty" yaml:"specialization"`
	RoomNumber          string                 `json:"roomNumber" yaml:"room_number"`
	WorkingHours        map[string][]TimeRange `json:"workingHours" yaml:"working_hours"`
	Breaks              []TimeRange            `json:"breaks" yaml:"breaks"`
	SlotDurationMinutes int                    `json:"slotDurationMinutes" yaml:"slot_duration_minutes"`
	ConsultationFee     float64                `json:"consultationFee" yaml:"consultation_fee"`
}

// RangesFor returns the working ranges for the weekday of t, sorted by start.
func (s *DoctorSchedule) RangesFor(weekday time.Weekday) []TimeRange {
	ranges := append([]TimeRange(nil), s.WorkingHours[WeekdayKey(weekday)]...)
	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].Start < ranges[j].Start
	})
	return ranges
}

func (s *DoctorSchedule) Validate() error {
	if s.DoctorID == "" {
		return fmt.Errorf("doctor id is required")
	}
	if s.SlotDurationMinutes <= 0 {
		return fmt.Errorf("doctor %s: slot duration must be positive", s.DoctorID)
	}
	for day, ranges := range s.WorkingHours {
		if !validWeekday(day) {
			return fmt.Errorf("doctor %s: unknown weekday %q", s.DoctorID, day)
		}
		for _, r := range ranges {
			if err := r.Validate(); err != nil {
				return fmt.Errorf("doctor %s %s: %w", s.DoctorID, day, err)
			}
		}
	}
	for _, b := range s.Breaks {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("doctor %s break: %w", s.DoctorID, err)
		}
	}
	return nil
}

func validWeekday(day string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if day == WeekdayKey(d) {
			return true
		}
	}
	return false
}

func (s *DoctorSchedule) SearchFields() []string {
	return []string{s.DoctorID, s.DoctorName, s.Department, s.Specialization}
}

func (s *DoctorSchedule) Attribute(name string) (string, bool) {
	switch name {
	case "department":
		return s.Department, true
	case "specialization":
		return s.Specialization, true
	}
	return "", false
}

func (s *DoctorSchedule) RecordDate() string {
	return ""
}

var DoctorFilterKeys = []string{"department", "specialization"}

type SlotState string

const (
	SlotAvailable SlotState = "available"
	SlotBooked    SlotState = "booked"
	SlotBlocked   SlotState = "blocked"
)

// Slot is a derived, fixed-length bookable interval.
type Slot struct {
	Start          ClockTime `json:"start"`
	End            ClockTime `json:"end"`
	State          SlotState `json:"state"`
	AppointmentRef string    `json:"appointmentRef,omitempty"`
}

// QueueEntry is a derived position in a department's queue.
type QueueEntry struct {
	TokenNumber          int          `json:"tokenNumber"`
	Appointment          *Appointment `json:"appointment"`
	EstimatedWaitMinutes int          `json:"estimatedWaitMinutes"`
}

type DepartmentQueue struct {
	Department string       `json:"department"`
	Entries    []QueueEntry `json:"entries"`
}
