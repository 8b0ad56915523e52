package consultation

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/repository/memory"
	apperrors "github.com/jwalitptl/hospital-ops/pkg/errors"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
	"github.com/jwalitptl/hospital-ops/pkg/metrics"
	"github.com/jwalitptl/hospital-ops/pkg/validator"
)

func newTestService() (*Service, *memory.Store, *metrics.Metrics) {
	store := memory.NewStore(memory.Dataset{
		Doctors:  []model.DoctorSchedule{{DoctorID: "DOC001", DoctorName: "Dr. Priya Sharma", SlotDurationMinutes: 30}},
		Patients: []model.Patient{{ID: "PAT001", FirstName: "Ravi", LastName: "Kumar"}},
	})
	m := metrics.NewTestMetrics()
	svc := NewService(store.Consultations, store.Patients, store.Schedules, validator.New(), m, logger.Nop())
	return svc, store, m
}

func validRequest() *model.CreateConsultationRequest {
	return &model.CreateConsultationRequest{
		PatientID:      "PAT001",
		DoctorID:       "DOC001",
		ChiefComplaint: "Chest pain",
		Diagnosis:      "Stable angina",
		Prescriptions: []model.Prescription{
			{Medicine: "Aspirin", Dosage: "75mg", Frequency: "once daily", DurationDays: 30},
		},
		LabTests:     []string{"ECG"},
		FollowUpDate: "2024-04-01",
	}
}

func TestCreateConsultation(t *testing.T) {
	svc, store, _ := newTestService()

	c, err := svc.CreateConsultation(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Stable angina", c.Diagnosis)
	assert.Equal(t, 1, store.Consultations.Len())

	list, err := svc.ListConsultations(context.Background(), "PAT001")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)
}

func TestCreateConsultation_ValidationStoresNothing(t *testing.T) {
	svc, store, m := newTestService()
	req := validRequest()
	req.Diagnosis = ""
	req.Prescriptions[0].DurationDays = 0

	_, err := svc.CreateConsultation(context.Background(), req)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	fields := map[string]bool{}
	for _, fe := range appErr.Fields {
		fields[fe.Field] = true
	}
	assert.True(t, fields["diagnosis"])
	assert.True(t, fields["prescriptions[0].durationDays"])
	assert.Equal(t, 0, store.Consultations.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingRejections.WithLabelValues("consultation", "validation")))
}

func TestCreateConsultation_UnknownReferences(t *testing.T) {
	svc, store, _ := newTestService()

	req := validRequest()
	req.PatientID = "PAT404"
	_, err := svc.CreateConsultation(context.Background(), req)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	req = validRequest()
	req.DoctorID = "DOC404"
	_, err = svc.CreateConsultation(context.Background(), req)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	assert.Equal(t, 0, store.Consultations.Len())
}

func TestListConsultations_FiltersByPatient(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.CreateConsultation(context.Background(), validRequest())
	require.NoError(t, err)

	list, err := svc.ListConsultations(context.Background(), "PAT002")
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = svc.ListConsultations(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
