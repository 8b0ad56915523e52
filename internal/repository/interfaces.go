package repository

import (
	"context"
	"errors"

	"github.com/jwalitptl/hospital-ops/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// All repository interfaces in one file
type (
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id string) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context) ([]*model.Appointment, error)
		ListByDoctorDate(ctx context.Context, doctorID, date string) ([]*model.Appointment, error)
	}

	// ScheduleRepository is read-only; schedules are static configuration.
	ScheduleRepository interface {
		Get(ctx context.Context, doctorID string) (*model.DoctorSchedule, error)
		List(ctx context.Context) ([]*model.DoctorSchedule, error)
	}

	PatientRepository interface {
		// Create assigns a patient code when the patient has none.
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id string) (*model.Patient, error)
		Delete(ctx context.Context, id string) error
		List(ctx context.Context) ([]*model.Patient, error)
	}

	ConsultationRepository interface {
		Create(ctx context.Context, consultation *model.Consultation) error
		List(ctx context.Context) ([]*model.Consultation, error)
	}

	CampaignRepository interface {
		Create(ctx context.Context, campaign *model.Campaign) error
		List(ctx context.Context) ([]*model.Campaign, error)
	}

	// ListRepository serves the read-only dashboard collections.
	ListRepository[T any] interface {
		List(ctx context.Context) ([]*T, error)
	}
)
