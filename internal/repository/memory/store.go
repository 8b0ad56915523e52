package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/repository"
)

// Dataset is the initial content of a Store.
type Dataset struct {
	Doctors       []model.DoctorSchedule
	Appointments  []model.Appointment
	Patients      []model.Patient
	Beds          []model.Bed
	Documents     []model.Document
	Tasks         []model.Task
	Vitals        []model.VitalsRecord
	StaffLeaves   []model.StaffLeave
	Consultations []model.Consultation
	Campaigns     []model.Campaign
	Volunteers    []model.Volunteer
	Programs      []model.CSRProgram
}

// Store groups the in-memory repositories backing one application instance.
type Store struct {
	Appointments  *AppointmentRepository
	Schedules     *ScheduleRepository
	Patients      *PatientRepository
	Consultations *Collection[model.Consultation]
	Campaigns     *Collection[model.Campaign]
	Beds          *Collection[model.Bed]
	Documents     *Collection[model.Document]
	Tasks         *Collection[model.Task]
	Vitals        *Collection[model.VitalsRecord]
	StaffLeaves   *Collection[model.StaffLeave]
	Volunteers    *Collection[model.Volunteer]
	Programs      *Collection[model.CSRProgram]
}

func NewStore(ds Dataset) *Store {
	return &Store{
		Appointments: &AppointmentRepository{
			Collection: NewCollection("appointment", func(a *model.Appointment) string { return a.ID }, ds.Appointments),
		},
		Schedules: &ScheduleRepository{
			doctors: NewCollection("doctor", func(s *model.DoctorSchedule) string { return s.DoctorID }, ds.Doctors),
		},
		Patients: &PatientRepository{
			Collection: NewCollection("patient", func(p *model.Patient) string { return p.ID }, ds.Patients),
		},
		Consultations: NewCollection("consultation", func(c *model.Consultation) string { return c.ID }, ds.Consultations),
		Campaigns:     NewCollection("campaign", func(c *model.Campaign) string { return c.ID }, ds.Campaigns),
		Beds:          NewCollection("bed", func(b *model.Bed) string { return b.ID }, ds.Beds),
		Documents:     NewCollection("document", func(d *model.Document) string { return d.ID }, ds.Documents),
		Tasks:         NewCollection("task", func(t *model.Task) string { return t.ID }, ds.Tasks),
		Vitals:        NewCollection("vitals", func(v *model.VitalsRecord) string { return v.ID }, ds.Vitals),
		StaffLeaves:   NewCollection("staff leave", func(l *model.StaffLeave) string { return l.ID }, ds.StaffLeaves),
		Volunteers:    NewCollection("volunteer", func(v *model.Volunteer) string { return v.ID }, ds.Volunteers),
		Programs:      NewCollection("program", func(p *model.CSRProgram) string { return p.ID }, ds.Programs),
	}
}

type AppointmentRepository struct {
	*Collection[model.Appointment]
}

var _ repository.AppointmentRepository = (*AppointmentRepository)(nil)

func (r *AppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	now := time.Now()
	if appointment.CreatedAt.IsZero() {
		appointment.CreatedAt = now
	}
	appointment.UpdatedAt = now
	if err := r.Collection.Create(ctx, appointment); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	appointment.UpdatedAt = time.Now()
	if err := r.Collection.Update(ctx, appointment); err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) ListByDoctorDate(ctx context.Context, doctorID, date string) ([]*model.Appointment, error) {
	return r.Select(ctx, func(a *model.Appointment) bool {
		return a.DoctorID == doctorID && a.Date == date
	})
}

type ScheduleRepository struct {
	doctors *Collection[model.DoctorSchedule]
}

var _ repository.ScheduleRepository = (*ScheduleRepository)(nil)

func (r *ScheduleRepository) Get(ctx context.Context, doctorID string) (*model.DoctorSchedule, error) {
	return r.doctors.Get(ctx, doctorID)
}

func (r *ScheduleRepository) List(ctx context.Context) ([]*model.DoctorSchedule, error) {
	return r.doctors.List(ctx)
}

type PatientRepository struct {
	*Collection[model.Patient]
}

var _ repository.PatientRepository = (*PatientRepository)(nil)

// Create assigns the next sequential patient code when none is set.
func (r *PatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	err := r.create(ctx, patient, func(n int, p *model.Patient) {
		if p.PatientCode == "" {
			p.PatientCode = fmt.Sprintf("PAT-%05d", n+1)
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now()
		}
	})
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}
