package appointment

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-ops/internal/filter"
	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/repository"
	"github.com/jwalitptl/hospital-ops/internal/repository/memory"
	apperrors "github.com/jwalitptl/hospital-ops/pkg/errors"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
	"github.com/jwalitptl/hospital-ops/pkg/metrics"
)

func newTestService(t *testing.T, cfg Config) (*Service, *memory.Store, *metrics.Metrics) {
	t.Helper()
	store := memory.NewStore(memory.Dataset{
		Doctors: []model.DoctorSchedule{*morningSchedule(30)},
		Appointments: []model.Appointment{
			*deptAppt("A1", "Cardiology", "10:00", "10:30"),
		},
	})
	m := metrics.NewTestMetrics()
	return NewService(store.Appointments, store.Schedules, cfg, m, logger.Nop()), store, m
}

func TestService_GetSlotGrid(t *testing.T) {
	svc, _, m := newTestService(t, Config{})
	ctx := context.Background()

	grid, err := svc.GetSlotGrid(ctx, "DOC001", "2024-03-04")
	require.NoError(t, err)
	assert.Len(t, grid.Slots, 8)
	assert.Equal(t, 7, grid.Available)
	assert.Equal(t, 30, grid.SlotDurationMinutes)

	_, err = svc.GetSlotGrid(ctx, "DOC001", "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SlotCacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SlotCacheHits))
}

func TestService_GetSlotGrid_Errors(t *testing.T) {
	svc, _, _ := newTestService(t, Config{})
	ctx := context.Background()

	_, err := svc.GetSlotGrid(ctx, "DOC001", "04/03/2024")
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	_, err = svc.GetSlotGrid(ctx, "NOPE", "2024-03-04")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestService_CreateInvalidatesGrid(t *testing.T) {
	svc, _, _ := newTestService(t, Config{})
	ctx := context.Background()

	before, err := svc.GetSlotGrid(ctx, "DOC001", "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, model.SlotAvailable, states(before.Slots)["09:00"])

	_, err = svc.Create(ctx, deptAppt("A2", "Cardiology", "09:00", "09:30"))
	require.NoError(t, err)

	after, err := svc.GetSlotGrid(ctx, "DOC001", "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, model.SlotBooked, states(after.Slots)["09:00"])
}

// pausingRepo holds the first ListByDoctorDate call after it has read the
// store until release is closed.
type pausingRepo struct {
	repository.AppointmentRepository
	paused  atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func (r *pausingRepo) ListByDoctorDate(ctx context.Context, doctorID, date string) ([]*model.Appointment, error) {
	appts, err := r.AppointmentRepository.ListByDoctorDate(ctx, doctorID, date)
	if r.paused.CompareAndSwap(false, true) {
		close(r.read)
		<-r.release
	}
	return appts, err
}

func TestService_GridReadRacingCreateIsNotCached(t *testing.T) {
	store := memory.NewStore(memory.Dataset{
		Doctors: []model.DoctorSchedule{*morningSchedule(30)},
	})
	repo := &pausingRepo{
		AppointmentRepository: store.Appointments,
		read:                  make(chan struct{}),
		release:               make(chan struct{}),
	}
	svc := NewService(repo, store.Schedules, Config{}, metrics.NewTestMetrics(), logger.Nop())
	ctx := context.Background()

	stale := make(chan *SlotGrid, 1)
	go func() {
		grid, err := svc.GetSlotGrid(ctx, "DOC001", "2024-03-04")
		assert.NoError(t, err)
		stale <- grid
	}()

	<-repo.read
	_, err := svc.Create(ctx, deptAppt("A2", "Cardiology", "09:00", "09:30"))
	require.NoError(t, err)
	close(repo.release)

	// the in-flight read predates the booking
	assert.Equal(t, model.SlotAvailable, states((<-stale).Slots)["09:00"])

	grid, err := svc.GetSlotGrid(ctx, "DOC001", "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, model.SlotBooked, states(grid.Slots)["09:00"])
	assert.Equal(t, 7, grid.Available)
}

func TestService_CreateDoubleBookingReported(t *testing.T) {
	svc, _, m := newTestService(t, Config{})

	res, err := svc.Create(context.Background(), deptAppt("A2", "Cardiology", "10:15", "10:45"))

	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, res.Conflicts)
	assert.Equal(t, clock("10:15"), res.Appointment.StartTime)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DoubleBookings.WithLabelValues("DOC001")))
}

func TestService_CreateDoubleBookingRejected(t *testing.T) {
	svc, store, _ := newTestService(t, Config{RejectDoubleBooking: true})
	ctx := context.Background()

	_, err := svc.Create(ctx, deptAppt("A2", "Cardiology", "10:15", "10:45"))

	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	_, getErr := store.Appointments.Get(ctx, "A2")
	assert.Error(t, getErr)
}

func TestService_CreateRejectsInvertedTimes(t *testing.T) {
	svc, _, _ := newTestService(t, Config{})
	_, err := svc.Create(context.Background(), deptAppt("A2", "Cardiology", "10:00", "09:00"))

	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestService_UpdateStatus(t *testing.T) {
	svc, _, _ := newTestService(t, Config{})
	ctx := context.Background()

	apt, err := svc.UpdateStatus(ctx, "A1", model.AppointmentStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusInProgress, apt.Status)

	_, err = svc.UpdateStatus(ctx, "A1", model.AppointmentStatusCancelled)
	require.NoError(t, err)

	// cancelling frees the slot
	grid, err := svc.GetSlotGrid(ctx, "DOC001", "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, 8, grid.Available)

	_, err = svc.UpdateStatus(ctx, "A1", model.AppointmentStatusConfirmed)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	_, err = svc.UpdateStatus(ctx, "A1", "teleported")
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	_, err = svc.UpdateStatus(ctx, "missing", model.AppointmentStatusConfirmed)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestService_QueueReflectsStatusUpdates(t *testing.T) {
	svc, _, m := newTestService(t, Config{})
	ctx := context.Background()

	queues, err := svc.Queue(ctx, "2024-03-04", "")
	require.NoError(t, err)
	require.Len(t, queues, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueueLength.WithLabelValues("Cardiology")))

	_, err = svc.UpdateStatus(ctx, "A1", model.AppointmentStatusNoShow)
	require.NoError(t, err)

	queues, err = svc.Queue(ctx, "2024-03-04", "cardiology")
	require.NoError(t, err)
	assert.Empty(t, queues)
}

func TestService_QueueGaugeDropsEmptiedDepartment(t *testing.T) {
	svc, _, m := newTestService(t, Config{})
	ctx := context.Background()

	_, err := svc.Queue(ctx, "2024-03-04", "")
	require.NoError(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(m.QueueLength.WithLabelValues("Cardiology")))

	_, err = svc.UpdateStatus(ctx, "A1", model.AppointmentStatusCancelled)
	require.NoError(t, err)

	queues, err := svc.Queue(ctx, "2024-03-04", "")
	require.NoError(t, err)
	assert.Empty(t, queues)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.QueueLength.WithLabelValues("Cardiology")))
}

func TestService_ListAppointmentsFilters(t *testing.T) {
	svc, _, _ := newTestService(t, Config{})

	got, err := svc.ListAppointments(context.Background(), filter.Criteria{
		Filters: map[string]string{"department": "CARDIOLOGY"},
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.ListAppointments(context.Background(), filter.Criteria{Query: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, got)
}
