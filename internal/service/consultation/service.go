package consultation

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-ops/internal/form"
	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/repository"
	apperrors "github.com/jwalitptl/hospital-ops/pkg/errors"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
	"github.com/jwalitptl/hospital-ops/pkg/metrics"
	"github.com/jwalitptl/hospital-ops/pkg/validator"
)

const formName = "consultation"

type Service struct {
	repo      repository.ConsultationRepository
	patients  repository.PatientRepository
	schedules repository.ScheduleRepository
	validate  *validator.Validator
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

func NewService(
	repo repository.ConsultationRepository,
	patients repository.PatientRepository,
	schedules repository.ScheduleRepository,
	validate *validator.Validator,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		patients:  patients,
		schedules: schedules,
		validate:  validate,
		metrics:   m,
		logger:    log.With("consultation"),
	}
}

// CreateConsultation records a consultation note for an existing patient
// and doctor.
func (s *Service) CreateConsultation(ctx context.Context, req *model.CreateConsultationRequest) (*model.Consultation, error) {
	var created *model.Consultation

	_, err := form.Run(formName,
		func() error { return s.validate.Struct(req) },
		func() error {
			var err error
			created, err = s.create(ctx, req)
			return err
		},
	)
	if err != nil {
		s.metrics.BookingRejections.WithLabelValues(formName, rejectReason(err)).Inc()
		return nil, err
	}

	s.logger.Info("consultation recorded", "consultation_id", created.ID, "patient_id", created.PatientID)
	return created, nil
}

func (s *Service) create(ctx context.Context, req *model.CreateConsultationRequest) (*model.Consultation, error) {
	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		return nil, lookupError("patient", err)
	}
	if _, err := s.schedules.Get(ctx, req.DoctorID); err != nil {
		return nil, lookupError("doctor", err)
	}

	c := &model.Consultation{
		ID:             uuid.NewString(),
		AppointmentID:  req.AppointmentID,
		PatientID:      req.PatientID,
		DoctorID:       req.DoctorID,
		ChiefComplaint: strings.TrimSpace(req.ChiefComplaint),
		Diagnosis:      strings.TrimSpace(req.Diagnosis),
		Notes:          req.Notes,
		Vitals:         req.Vitals,
		Prescriptions:  req.Prescriptions,
		LabTests:       req.LabTests,
		FollowUpDate:   req.FollowUpDate,
		CreatedAt:      time.Now(),
	}
	if c.Prescriptions == nil {
		c.Prescriptions = []model.Prescription{}
	}
	if c.LabTests == nil {
		c.LabTests = []string{}
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apperrors.Internal(err)
	}
	return c, nil
}

// ListConsultations returns consultations newest first, optionally for one
// patient.
func (s *Service) ListConsultations(ctx context.Context, patientID string) ([]*model.Consultation, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	out := make([]*model.Consultation, 0, len(all))
	for _, c := range all {
		if patientID == "" || c.PatientID == patientID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func lookupError(resource string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(resource, err)
	}
	return apperrors.Internal(err)
}

func rejectReason(err error) string {
	if appErr, ok := apperrors.As(err); ok {
		switch appErr.Code {
		case apperrors.ErrValidation:
			return "validation"
		case apperrors.ErrNotFound:
			return "not_found"
		}
	}
	return "internal"
}
