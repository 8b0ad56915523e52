package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/hospital-ops/internal/filter"
	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/repository"
	apperrors "github.com/jwalitptl/hospital-ops/pkg/errors"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
	"github.com/jwalitptl/hospital-ops/pkg/metrics"
)

type Config struct {
	// RejectDoubleBooking turns overlapping bookings for the same doctor
	// into a conflict error. When false they are stored and reported.
	RejectDoubleBooking bool
	SlotCacheTTL        time.Duration
}

type Service struct {
	appointments repository.AppointmentRepository
	schedules    repository.ScheduleRepository
	grids        *cache.Cache
	cfg          Config
	metrics      *metrics.Metrics
	logger       *logger.Logger

	// serialises conflict check and insert
	mu sync.Mutex

	// gens counts invalidations per grid key; a grid built from a read that
	// raced an invalidation is not cached.
	genMu sync.Mutex
	gens  map[string]uint64
}

func NewService(appointments repository.AppointmentRepository, schedules repository.ScheduleRepository, cfg Config, m *metrics.Metrics, log *logger.Logger) *Service {
	ttl := cfg.SlotCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		appointments: appointments,
		schedules:    schedules,
		grids:        cache.New(ttl, 2*ttl),
		cfg:          cfg,
		metrics:      m,
		logger:       log.With("appointment"),
		gens:         make(map[string]uint64),
	}
}

// SlotGrid is one doctor's slot grid for one day.
type SlotGrid struct {
	DoctorID            string       `json:"doctorId"`
	DoctorName          string       `json:"doctorName"`
	Department          string       `json:"department"`
	Date                string       `json:"date"`
	SlotDurationMinutes int          `json:"slotDurationMinutes"`
	Slots               []model.Slot `json:"slots"`
	Available           int          `json:"available"`
}

// CreateResult reports a stored appointment and the ids of any appointments
// of the same doctor it overlaps.
type CreateResult struct {
	Appointment *model.Appointment `json:"appointment"`
	Conflicts   []string           `json:"conflicts,omitempty"`
}

func (s *Service) ListDoctors(ctx context.Context, c filter.Criteria) ([]*model.DoctorSchedule, error) {
	doctors, err := s.schedules.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return filter.Apply(doctors, c), nil
}

func (s *Service) GetDoctor(ctx context.Context, doctorID string) (*model.DoctorSchedule, error) {
	schedule, err := s.schedules.Get(ctx, doctorID)
	if err != nil {
		return nil, mapRepoError("doctor", err)
	}
	return schedule, nil
}

// GetSlotGrid returns the memoized grid for doctorID on date, building it on
// a cache miss.
func (s *Service) GetSlotGrid(ctx context.Context, doctorID, date string) (*SlotGrid, error) {
	day, err := model.ParseDate(date)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	schedule, err := s.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	key := gridKey(doctorID, date)
	var slots []model.Slot
	if cached, ok := s.grids.Get(key); ok {
		s.metrics.SlotCacheHits.Inc()
		slots = cached.([]model.Slot)
	} else {
		s.metrics.SlotCacheMisses.Inc()
		gen := s.generation(key)
		appts, err := s.appointments.ListByDoctorDate(ctx, doctorID, date)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		slots = BuildSlotGrid(schedule, day, appts)
		s.storeGrid(key, gen, slots)
	}

	grid := &SlotGrid{
		DoctorID:            schedule.DoctorID,
		DoctorName:          schedule.DoctorName,
		Department:          schedule.Department,
		Date:                date,
		SlotDurationMinutes: schedule.SlotDurationMinutes,
		Slots:               append([]model.Slot(nil), slots...),
	}
	if grid.Slots == nil {
		grid.Slots = []model.Slot{}
	}
	for _, slot := range grid.Slots {
		if slot.State == model.SlotAvailable {
			grid.Available++
		}
	}
	return grid, nil
}

func (s *Service) ListAppointments(ctx context.Context, c filter.Criteria) ([]*model.Appointment, error) {
	appts, err := s.appointments.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return filter.Apply(appts, c), nil
}

func (s *Service) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError("appointment", err)
	}
	return apt, nil
}

// Conflicts lists the slot-holding appointments of the same doctor and day
// that overlap apt, excluding apt itself.
func (s *Service) Conflicts(ctx context.Context, apt *model.Appointment) ([]*model.Appointment, error) {
	if !apt.Status.OccupiesSlot() {
		return nil, nil
	}
	existing, err := s.appointments.ListByDoctorDate(ctx, apt.DoctorID, apt.Date)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	var out []*model.Appointment
	for _, other := range existing {
		if other.ID == apt.ID || !other.Status.OccupiesSlot() {
			continue
		}
		if apt.Interval().Overlaps(other.Interval()) {
			out = append(out, other)
		}
	}
	return out, nil
}

// CheckConflicts returns the ids apt would overlap, or a Conflict error when
// overlapping bookings are rejected.
func (s *Service) CheckConflicts(ctx context.Context, apt *model.Appointment) ([]string, error) {
	conflicts, err := s.Conflicts(ctx, apt)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(conflicts))
	for i, c := range conflicts {
		ids[i] = c.ID
	}
	if len(ids) > 0 && s.cfg.RejectDoubleBooking {
		return ids, apperrors.Conflict(fmt.Sprintf("doctor %s is already booked at %s on %s (%s)",
			apt.DoctorID, apt.StartTime, apt.Date, strings.Join(ids, ", ")))
	}
	return ids, nil
}

// Create stores apt. It never changes apt's times to resolve an overlap.
func (s *Service) Create(ctx context.Context, apt *model.Appointment) (*CreateResult, error) {
	if err := apt.Validate(); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conflicts, err := s.CheckConflicts(ctx, apt)
	if err != nil {
		return nil, err
	}

	if err := s.appointments.Create(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(fmt.Sprintf("appointment %s already exists", apt.ID))
		}
		return nil, apperrors.Internal(err)
	}
	s.invalidate(apt.DoctorID, apt.Date)

	if len(conflicts) > 0 {
		s.metrics.DoubleBookings.WithLabelValues(apt.DoctorID).Inc()
		s.logger.Warn("double booking stored",
			"appointment_id", apt.ID,
			"doctor_id", apt.DoctorID,
			"date", apt.Date,
			"conflicts", conflicts,
		)
	}

	return &CreateResult{Appointment: apt, Conflicts: conflicts}, nil
}

// UpdateStatus moves an appointment to status. Completed, cancelled and
// no-show appointments are final.
func (s *Service) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) (*model.Appointment, error) {
	if !status.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown status %q", status), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError("appointment", err)
	}
	if apt.Status == status {
		return apt, nil
	}
	if apt.Status.Terminal() {
		return nil, apperrors.Conflict(fmt.Sprintf("appointment %s is already %s", id, apt.Status))
	}

	apt.Status = status
	if err := s.appointments.Update(ctx, apt); err != nil {
		return nil, mapRepoError("appointment", err)
	}
	s.invalidate(apt.DoctorID, apt.Date)
	s.metrics.StatusUpdates.WithLabelValues(string(status)).Inc()

	return apt, nil
}

// Queue projects the queue for date, optionally narrowed to one department.
func (s *Service) Queue(ctx context.Context, date, department string) ([]model.DepartmentQueue, error) {
	if _, err := model.ParseDate(date); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	appts, err := s.appointments.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	queues := ProjectQueue(date, appts)
	// departments whose queue emptied must drop to zero, not keep their last value
	s.metrics.QueueLength.Reset()
	for _, q := range queues {
		s.metrics.QueueLength.WithLabelValues(q.Department).Set(float64(len(q.Entries)))
	}

	if department == "" {
		return queues, nil
	}
	for _, q := range queues {
		if strings.EqualFold(q.Department, department) {
			return []model.DepartmentQueue{q}, nil
		}
	}
	return []model.DepartmentQueue{}, nil
}

func (s *Service) generation(key string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gens[key]
}

// storeGrid caches slots only when no invalidation happened since gen was read.
func (s *Service) storeGrid(key string, gen uint64, slots []model.Slot) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.gens[key] != gen {
		return
	}
	s.grids.SetDefault(key, slots)
}

func (s *Service) invalidate(doctorID, date string) {
	key := gridKey(doctorID, date)
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.gens[key]++
	s.grids.Delete(key)
}

func gridKey(doctorID, date string) string {
	return doctorID + "|" + date
}

func mapRepoError(resource string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(resource, err)
	}
	return apperrors.Internal(err)
}
