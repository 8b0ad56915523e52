package patient

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jwalitptl/hospital-ops/internal/filter"
	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/repository"
	apperrors "github.com/jwalitptl/hospital-ops/pkg/errors"
)

type Service struct {
	repo repository.PatientRepository
	now  func() time.Time
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) ListPatients(ctx context.Context, c filter.Criteria) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return filter.Apply(patients, c), nil
}

func (s *Service) GetPatient(ctx context.Context, id string) (*model.Patient, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.Internal(err)
	}
	return p, nil
}

// Age bands used for segmentation.
var ageBands = []struct {
	name     string
	min, max int
}{
	{"0-17", 0, 17},
	{"18-34", 18, 34},
	{"35-49", 35, 49},
	{"50-64", 50, 64},
	{"65+", 65, 200},
}

const unknownSegment = "unknown"

// Segments counts patients by age band, gender and status.
func (s *Service) Segments(ctx context.Context) (*model.PatientSegments, error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	today := s.now()
	counts := map[string]map[string]int{
		"age_band": {},
		"gender":   {},
		"status":   {},
	}
	for _, p := range patients {
		counts["age_band"][ageBand(p.Age(today))]++
		counts["gender"][orUnknown(string(p.Gender))]++
		counts["status"][orUnknown(string(p.Status))]++
	}

	out := &model.PatientSegments{Total: len(patients), Segments: []model.PatientSegment{}}
	for _, dim := range []string{"age_band", "gender", "status"} {
		names := make([]string, 0, len(counts[dim]))
		for name := range counts[dim] {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			n := counts[dim][name]
			out.Segments = append(out.Segments, model.PatientSegment{
				Dimension:  dim,
				Segment:    name,
				Count:      n,
				Percentage: percentage(n, len(patients)),
			})
		}
	}
	return out, nil
}

func ageBand(age int) string {
	for _, b := range ageBands {
		if age >= b.min && age <= b.max {
			return b.name
		}
	}
	return unknownSegment
}

func orUnknown(s string) string {
	if s == "" {
		return unknownSegment
	}
	return s
}

func percentage(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n*10000/total) / 100
}
