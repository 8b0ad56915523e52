package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-ops/internal/form"
	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/repository"
	"github.com/jwalitptl/hospital-ops/internal/service/appointment"
	"github.com/jwalitptl/hospital-ops/internal/service/notification"
	apperrors "github.com/jwalitptl/hospital-ops/pkg/errors"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
	"github.com/jwalitptl/hospital-ops/pkg/metrics"
	"github.com/jwalitptl/hospital-ops/pkg/validator"
)

const formName = "booking"

// Result is what a successful booking returns to the form.
type Result struct {
	Appointment *model.Appointment `json:"appointment"`
	Patient     *model.Patient     `json:"patient"`
	Conflicts   []string           `json:"conflicts,omitempty"`
	Form        form.State         `json:"formState"`
	Notified    []string           `json:"notified,omitempty"`
}

type Service struct {
	appointments *appointment.Service
	patients     repository.PatientRepository
	notifier     notification.Service
	validate     *validator.Validator
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

func NewService(
	appointments *appointment.Service,
	patients repository.PatientRepository,
	notifier notification.Service,
	validate *validator.Validator,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		appointments: appointments,
		patients:     patients,
		notifier:     notifier,
		validate:     validate,
		metrics:      m,
		logger:       log.With("booking"),
	}
}

// Book submits a booking draft. Invalid input leaves the form in its error
// state and stores nothing. A failure after validation rolls back anything
// already written, so the store is never left half-updated.
func (s *Service) Book(ctx context.Context, draft *Draft) (*Result, error) {
	var res *Result
	draft.dropUnusedPatient()

	f, err := form.Run(formName,
		func() error { return s.validate.Struct(draft) },
		func() error {
			var err error
			res, err = s.commit(ctx, draft)
			return err
		},
	)
	if err != nil {
		s.metrics.BookingRejections.WithLabelValues(formName, reason(err)).Inc()
		s.logger.Debug("booking rejected", "form_state", string(f.State()), "message", f.Message())
		return nil, err
	}

	res.Form = f.State()
	s.metrics.BookingsTotal.WithLabelValues(res.Appointment.Department, string(res.Appointment.Type)).Inc()
	res.Notified = s.notify(draft, res)

	return res, nil
}

func (s *Service) commit(ctx context.Context, draft *Draft) (*Result, error) {
	doctor, err := s.appointments.GetDoctor(ctx, draft.DoctorID)
	if err != nil {
		return nil, err
	}

	patient, isNew, err := s.resolvePatient(ctx, draft)
	if err != nil {
		return nil, err
	}

	start := *draft.StartTime
	apt := &model.Appointment{
		ID:             uuid.NewString(),
		PatientID:      patient.ID,
		PatientName:    patient.FullName(),
		DoctorID:       doctor.DoctorID,
		Department:     doctor.Department,
		Date:           draft.Date,
		StartTime:      start,
		EndTime:        start.Add(doctor.SlotDurationMinutes),
		Type:           draft.Type,
		Status:         model.AppointmentStatusScheduled,
		PaymentMethod:  draft.PaymentMethod,
		PaymentStatus:  draft.PaymentMethod.PaymentStatus(),
		Fee:            Fee(doctor.ConsultationFee, draft.DiscountPercent),
		RoomNumber:     doctor.RoomNumber,
		ChiefComplaint: strings.TrimSpace(draft.ChiefComplaint),
		Notes:          draft.Notes,
	}
	if err := apt.Interval().Validate(); err != nil {
		return nil, apperrors.Validation(err.Error(), []apperrors.FieldError{{Field: "startTime", Message: err.Error()}})
	}

	// fail before writing the patient when the slot would be refused
	if _, err := s.appointments.CheckConflicts(ctx, apt); err != nil {
		return nil, err
	}

	if isNew {
		if err := s.patients.Create(ctx, patient); err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	created, err := s.appointments.Create(ctx, apt)
	if err != nil {
		if isNew {
			if rbErr := s.patients.Delete(ctx, patient.ID); rbErr != nil {
				s.logger.Error(rbErr, "failed to roll back patient", "patient_id", patient.ID)
			}
		}
		return nil, err
	}

	return &Result{
		Appointment: created.Appointment,
		Patient:     patient,
		Conflicts:   created.Conflicts,
	}, nil
}

func (s *Service) resolvePatient(ctx context.Context, draft *Draft) (*model.Patient, bool, error) {
	if draft.PatientMode == PatientModeExisting {
		p, err := s.patients.Get(ctx, draft.PatientID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, false, apperrors.NotFound("patient", err)
			}
			return nil, false, apperrors.Internal(err)
		}
		return p, false, nil
	}

	np := draft.NewPatient
	return &model.Patient{
		ID:          uuid.NewString(),
		FirstName:   strings.TrimSpace(np.FirstName),
		LastName:    strings.TrimSpace(np.LastName),
		Phone:       np.Phone,
		Email:       np.Email,
		DateOfBirth: np.DateOfBirth,
		Gender:      np.Gender,
		Status:      model.PatientStatusActive,
		CreatedAt:   time.Now(),
	}, true, nil
}

// notify emits one request per enabled toggle that has somewhere to go.
func (s *Service) notify(draft *Draft, res *Result) []string {
	apt := res.Appointment
	msg := fmt.Sprintf("Your %s appointment is booked for %s at %s in room %s. Ref %s.",
		apt.Type, apt.Date, apt.StartTime, apt.RoomNumber, apt.ID)

	var sent []string
	send := func(channel model.NotificationChannel, recipient string) {
		if recipient == "" {
			s.logger.Warn("notification skipped, no recipient", "channel", string(channel), "appointment_id", apt.ID)
			return
		}
		s.notifier.Notify(model.NotificationRequest{
			Channel:       channel,
			Recipient:     recipient,
			Subject:       "Appointment confirmation",
			Message:       msg,
			AppointmentID: apt.ID,
		})
		sent = append(sent, string(channel))
	}

	if draft.Notify.SMS {
		send(model.NotificationChannelSMS, res.Patient.Phone)
	}
	if draft.Notify.WhatsApp {
		send(model.NotificationChannelWhatsApp, res.Patient.Phone)
	}
	if draft.Notify.Email {
		addr := draft.Notify.Address
		if addr == "" {
			addr = res.Patient.Email
		}
		send(model.NotificationChannelEmail, addr)
	}
	return sent
}

func reason(err error) string {
	appErr, ok := apperrors.As(err)
	if !ok {
		return "internal"
	}
	switch appErr.Code {
	case apperrors.ErrValidation:
		return "validation"
	case apperrors.ErrNotFound:
		return "not_found"
	case apperrors.ErrConflict:
		return "conflict"
	case apperrors.ErrBadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}
