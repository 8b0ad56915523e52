// Package outreach serves the marketing campaign and CSR volunteering pages.
package outreach

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-ops/internal/filter"
	"github.com/jwalitptl/hospital-ops/internal/form"
	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/repository"
	apperrors "github.com/jwalitptl/hospital-ops/pkg/errors"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
	"github.com/jwalitptl/hospital-ops/pkg/metrics"
	"github.com/jwalitptl/hospital-ops/pkg/validator"
)

const (
	campaignForm    = "campaign"
	volunteerActive = "active"
	programActive   = "active"
)

type Service struct {
	campaigns  repository.CampaignRepository
	volunteers repository.ListRepository[model.Volunteer]
	programs   repository.ListRepository[model.CSRProgram]
	validate   *validator.Validator
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

func NewService(
	campaigns repository.CampaignRepository,
	volunteers repository.ListRepository[model.Volunteer],
	programs repository.ListRepository[model.CSRProgram],
	validate *validator.Validator,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		campaigns:  campaigns,
		volunteers: volunteers,
		programs:   programs,
		validate:   validate,
		metrics:    m,
		logger:     log.With("outreach"),
	}
}

func (s *Service) ListCampaigns(ctx context.Context, c filter.Criteria) ([]*model.Campaign, error) {
	all, err := s.campaigns.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return filter.Apply(all, c), nil
}

func (s *Service) CreateCampaign(ctx context.Context, req *model.CreateCampaignRequest) (*model.Campaign, error) {
	var created *model.Campaign

	_, err := form.Run(campaignForm,
		func() error {
			if err := s.validate.Struct(req); err != nil {
				return err
			}
			return checkCampaignDates(req)
		},
		func() error {
			created = newCampaign(req)
			if err := s.campaigns.Create(ctx, created); err != nil {
				return apperrors.Internal(err)
			}
			return nil
		},
	)
	if err != nil {
		reason := "internal"
		if apperrors.Is(err, apperrors.ErrValidation) {
			reason = "validation"
		}
		s.metrics.BookingRejections.WithLabelValues(campaignForm, reason).Inc()
		return nil, err
	}

	s.logger.Info("campaign created", "campaign_id", created.ID, "type", string(created.Type))
	return created, nil
}

func checkCampaignDates(req *model.CreateCampaignRequest) error {
	// both dates already passed the datetime tag
	if req.EndDate < req.StartDate {
		msg := "must not be before startDate"
		return apperrors.Validation("endDate "+msg, []apperrors.FieldError{{Field: "endDate", Message: msg}})
	}
	return nil
}

func newCampaign(req *model.CreateCampaignRequest) *model.Campaign {
	status := req.Status
	if status == "" {
		status = model.CampaignStatusPlanned
	}
	channels := req.Channels
	if channels == nil {
		channels = []string{}
	}
	return &model.Campaign{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(req.Name),
		Type:          req.Type,
		Status:        status,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Budget:        req.Budget,
		TargetSegment: req.TargetSegment,
		Channels:      channels,
		Description:   req.Description,
		CreatedAt:     time.Now(),
	}
}

func (s *Service) ListVolunteers(ctx context.Context, c filter.Criteria) ([]*model.Volunteer, error) {
	all, err := s.volunteers.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return filter.Apply(all, c), nil
}

// Analytics aggregates volunteer and program totals for the CSR dashboard.
func (s *Service) Analytics(ctx context.Context) (*model.CSRAnalytics, error) {
	volunteers, err := s.volunteers.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	programs, err := s.programs.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	out := &model.CSRAnalytics{
		TotalVolunteers: len(volunteers),
		Programs:        len(programs),
		HoursByProgram:  []model.ProgramHours{},
	}

	byProgram := make(map[string]*model.ProgramHours, len(programs))
	for _, p := range programs {
		if strings.EqualFold(p.Status, programActive) {
			out.ActivePrograms++
		}
		out.Beneficiaries += p.Beneficiaries
		out.Budget += p.Budget
		out.Spent += p.Spent
		byProgram[p.ID] = &model.ProgramHours{ProgramID: p.ID, ProgramName: p.Name}
	}

	for _, v := range volunteers {
		if strings.EqualFold(v.Status, volunteerActive) {
			out.ActiveVolunteers++
		}
		out.VolunteerHours += v.HoursLogged
		ph, ok := byProgram[v.ProgramID]
		if !ok {
			// volunteers may reference a program that has since closed
			ph = &model.ProgramHours{ProgramID: v.ProgramID, ProgramName: v.ProgramID}
			byProgram[v.ProgramID] = ph
		}
		ph.Volunteers++
		ph.Hours += v.HoursLogged
	}

	if out.Budget > 0 {
		out.BudgetUtilization = math.Round(out.Spent/out.Budget*10000) / 100
	}
	for _, ph := range byProgram {
		out.HoursByProgram = append(out.HoursByProgram, *ph)
	}
	sort.Slice(out.HoursByProgram, func(i, j int) bool {
		return out.HoursByProgram[i].ProgramID < out.HoursByProgram[j].ProgramID
	})
	return out, nil
}
