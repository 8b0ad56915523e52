package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/repository"
)

func newTestStore() *Store {
	return NewStore(Dataset{
		Appointments: []model.Appointment{
			{ID: "A1", DoctorID: "D1", Date: "2024-03-04", Status: model.AppointmentStatusScheduled},
			{ID: "A2", DoctorID: "D2", Date: "2024-03-04"},
			{ID: "A3", DoctorID: "D1", Date: "2024-03-05"},
		},
		Patients: []model.Patient{
			{ID: "P1", PatientCode: "PAT-00001", FirstName: "Ravi"},
		},
	})
}

func TestAppointmentRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	got, err := store.Appointments.Get(ctx, "A1")
	require.NoError(t, err)
	got.Status = model.AppointmentStatusCancelled

	again, err := store.Appointments.Get(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, again.Status)
}

func TestAppointmentRepository_ListByDoctorDate(t *testing.T) {
	store := newTestStore()

	got, err := store.Appointments.ListByDoctorDate(context.Background(), "D1", "2024-03-04")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A1", got[0].ID)
}

func TestAppointmentRepository_CreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	apt := &model.Appointment{ID: "A4", DoctorID: "D1", Date: "2024-03-04"}
	require.NoError(t, store.Appointments.Create(ctx, apt))
	assert.False(t, apt.CreatedAt.IsZero())

	err := store.Appointments.Create(ctx, &model.Appointment{ID: "A4"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	apt.Status = model.AppointmentStatusConfirmed
	require.NoError(t, store.Appointments.Update(ctx, apt))

	got, err := store.Appointments.Get(ctx, "A4")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, got.Status)

	err = store.Appointments.Update(ctx, &model.Appointment{ID: "missing"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPatientRepository_AssignsSequentialCode(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	p := &model.Patient{ID: "P2", FirstName: "Anita"}
	require.NoError(t, store.Patients.Create(ctx, p))
	assert.Equal(t, "PAT-00002", p.PatientCode)

	kept := &model.Patient{ID: "P3", PatientCode: "EXT-9"}
	require.NoError(t, store.Patients.Create(ctx, kept))
	assert.Equal(t, "EXT-9", kept.PatientCode)
}

func TestPatientRepository_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	require.NoError(t, store.Patients.Create(ctx, &model.Patient{ID: "P2"}))

	require.NoError(t, store.Patients.Delete(ctx, "P1"))

	_, err := store.Patients.Get(ctx, "P1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// index is rebuilt after the removal
	p2, err := store.Patients.Get(ctx, "P2")
	require.NoError(t, err)
	assert.Equal(t, "P2", p2.ID)
	assert.Equal(t, 1, store.Patients.Len())
}

func TestCollection_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestStore().Appointments.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
