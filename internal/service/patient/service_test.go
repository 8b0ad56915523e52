package patient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-ops/internal/filter"
	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/repository/memory"
	apperrors "github.com/jwalitptl/hospital-ops/pkg/errors"
)

func newTestService() *Service {
	store := memory.NewStore(memory.Dataset{Patients: []model.Patient{
		{ID: "P1", FirstName: "Ravi", LastName: "Kumar", DateOfBirth: "1968-04-12", Gender: model.GenderMale, Status: model.PatientStatusEmergency},
		{ID: "P2", FirstName: "Anita", LastName: "Kumari", DateOfBirth: "1991-09-30", Gender: model.GenderFemale, Status: model.PatientStatusActive},
		{ID: "P3", FirstName: "Meera", LastName: "Shah", DateOfBirth: "2015-06-21", Gender: model.GenderFemale, Status: model.PatientStatusActive},
		{ID: "P4", FirstName: "Arjun", LastName: "Kumar", Status: model.PatientStatusEmergency},
	}})
	svc := NewService(store.Patients)
	svc.now = func() time.Time { return time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC) }
	return svc
}

func segmentCount(segs *model.PatientSegments, dim, name string) int {
	for _, s := range segs.Segments {
		if s.Dimension == dim && s.Segment == name {
			return s.Count
		}
	}
	return 0
}

func TestService_Segments(t *testing.T) {
	segs, err := newTestService().Segments(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, segs.Total)
	assert.Equal(t, 1, segmentCount(segs, "age_band", "50-64"))
	assert.Equal(t, 1, segmentCount(segs, "age_band", "18-34"))
	assert.Equal(t, 1, segmentCount(segs, "age_band", "0-17"))
	assert.Equal(t, 1, segmentCount(segs, "age_band", "unknown"))
	assert.Equal(t, 2, segmentCount(segs, "gender", "female"))
	assert.Equal(t, 1, segmentCount(segs, "gender", "unknown"))
	assert.Equal(t, 2, segmentCount(segs, "status", "emergency"))

	for _, s := range segs.Segments {
		if s.Dimension == "status" && s.Segment == "active" {
			assert.Equal(t, 50.0, s.Percentage)
		}
	}
}

func TestService_ListPatients_EmergencyKumar(t *testing.T) {
	got, err := newTestService().ListPatients(context.Background(), filter.Criteria{
		Query:   "KUMAR",
		Filters: map[string]string{"status": "Emergency"},
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "P1", got[0].ID)
	assert.Equal(t, "P4", got[1].ID)
}

func TestService_GetPatient(t *testing.T) {
	svc := newTestService()

	p, err := svc.GetPatient(context.Background(), "P2")
	require.NoError(t, err)
	assert.Equal(t, "Anita Kumari", p.FullName())

	_, err = svc.GetPatient(context.Background(), "P9")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestAge(t *testing.T) {
	p := &model.Patient{DateOfBirth: "2000-03-05"}
	assert.Equal(t, 23, p.Age(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 24, p.Age(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)))
}
