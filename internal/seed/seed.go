// Package seed loads the mock-data fixture the in-memory store starts from.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/repository/memory"
)

//go:embed mock_data.yaml
var defaultFixture []byte

type fixture struct {
	Doctors       []model.DoctorSchedule `yaml:"doctors"`
	Appointments  []model.Appointment    `yaml:"appointments"`
	Patients      []model.Patient        `yaml:"patients"`
	Beds          []model.Bed            `yaml:"beds"`
	Documents     []model.Document       `yaml:"documents"`
	Tasks         []model.Task           `yaml:"tasks"`
	Vitals        []model.VitalsRecord   `yaml:"vitals"`
	StaffLeaves   []model.StaffLeave     `yaml:"staff_leaves"`
	Consultations []model.Consultation   `yaml:"consultations"`
	Campaigns     []model.Campaign       `yaml:"campaigns"`
	Volunteers    []model.Volunteer      `yaml:"volunteers"`
	Programs      []model.CSRProgram     `yaml:"programs"`
}

// Load reads the fixture at path, or the embedded one when path is empty.
// Relative dates resolve against today.
func Load(path string, today time.Time) (memory.Dataset, error) {
	data := defaultFixture
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return memory.Dataset{}, fmt.Errorf("failed to read fixture: %w", err)
		}
		data = b
	}
	return Parse(data, today)
}

func Parse(data []byte, today time.Time) (memory.Dataset, error) {
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return memory.Dataset{}, fmt.Errorf("failed to parse fixture: %w", err)
	}

	r := resolver{today: today}
	for i := range f.Appointments {
		f.Appointments[i].Date = r.date(f.Appointments[i].Date)
	}
	for i := range f.Documents {
		f.Documents[i].Date = r.date(f.Documents[i].Date)
	}
	for i := range f.Tasks {
		f.Tasks[i].DueDate = r.date(f.Tasks[i].DueDate)
	}
	for i := range f.Vitals {
		f.Vitals[i].RecordedAt = r.timestamp(f.Vitals[i].RecordedAt)
	}
	for i := range f.StaffLeaves {
		f.StaffLeaves[i].From = r.date(f.StaffLeaves[i].From)
		f.StaffLeaves[i].To = r.date(f.StaffLeaves[i].To)
	}
	for i := range f.Consultations {
		f.Consultations[i].FollowUpDate = r.date(f.Consultations[i].FollowUpDate)
	}
	for i := range f.Campaigns {
		f.Campaigns[i].StartDate = r.date(f.Campaigns[i].StartDate)
		f.Campaigns[i].EndDate = r.date(f.Campaigns[i].EndDate)
	}
	if r.err != nil {
		return memory.Dataset{}, r.err
	}

	if err := validate(&f); err != nil {
		return memory.Dataset{}, err
	}

	return memory.Dataset{
		Doctors:       f.Doctors,
		Appointments:  f.Appointments,
		Patients:      f.Patients,
		Beds:          f.Beds,
		Documents:     f.Documents,
		Tasks:         f.Tasks,
		Vitals:        f.Vitals,
		StaffLeaves:   f.StaffLeaves,
		Consultations: f.Consultations,
		Campaigns:     f.Campaigns,
		Volunteers:    f.Volunteers,
		Programs:      f.Programs,
	}, nil
}

func validate(f *fixture) error {
	for i := range f.Doctors {
		if err := f.Doctors[i].Validate(); err != nil {
			return fmt.Errorf("invalid fixture: %w", err)
		}
	}
	for i := range f.Appointments {
		if err := f.Appointments[i].Validate(); err != nil {
			return fmt.Errorf("invalid fixture: %w", err)
		}
	}
	return nil
}

// resolver rewrites "today", "today+N" and "today-N" into calendar dates.
// It keeps the first error it meets.
type resolver struct {
	today time.Time
	err   error
}

func (r *resolver) date(s string) string {
	if !strings.HasPrefix(s, "today") {
		return s
	}
	offset := 0
	if rest := strings.TrimPrefix(s, "today"); rest != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(rest, "+"))
		if err != nil {
			if r.err == nil {
				r.err = fmt.Errorf("invalid relative date %q", s)
			}
			return s
		}
		offset = n
	}
	return r.today.AddDate(0, 0, offset).Format(model.DateLayout)
}

// timestamp resolves the date part of "today HH:MM".
func (r *resolver) timestamp(s string) string {
	day, clock, found := strings.Cut(s, " ")
	if !found {
		return r.date(s)
	}
	return r.date(day) + " " + clock
}
