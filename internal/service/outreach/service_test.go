package outreach

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-ops/internal/filter"
	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/repository/memory"
	apperrors "github.com/jwalitptl/hospital-ops/pkg/errors"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
	"github.com/jwalitptl/hospital-ops/pkg/metrics"
	"github.com/jwalitptl/hospital-ops/pkg/validator"
)

func newTestService() (*Service, *memory.Store) {
	store := memory.NewStore(memory.Dataset{
		Campaigns: []model.Campaign{
			{ID: "CMP001", Name: "Heart Health Month", Type: model.CampaignTypeAwareness, Status: model.CampaignStatusActive, StartDate: "2024-02-01", EndDate: "2024-02-29"},
			{ID: "CMP002", Name: "Flu Shots", Type: model.CampaignTypeVaccination, Status: model.CampaignStatusPlanned, StartDate: "2024-10-01", EndDate: "2024-10-31"},
		},
		Volunteers: []model.Volunteer{
			{ID: "VOL001", Name: "Asha Rao", ProgramID: "PRG001", Status: "active", HoursLogged: 40, Skills: []string{"first aid"}},
			{ID: "VOL002", Name: "Kiran Das", ProgramID: "PRG001", Status: "inactive", HoursLogged: 12.5},
			{ID: "VOL003", Name: "Neha Iyer", ProgramID: "PRG002", Status: "Active", HoursLogged: 20, Skills: []string{"counselling"}},
		},
		Programs: []model.CSRProgram{
			{ID: "PRG001", Name: "Rural Health Camps", Status: "active", Budget: 100000, Spent: 25000, Beneficiaries: 300},
			{ID: "PRG002", Name: "Blood Donation Drive", Status: "completed", Budget: 50000, Spent: 50000, Beneficiaries: 120},
		},
	})
	svc := NewService(store.Campaigns, store.Volunteers, store.Programs, validator.New(), metrics.NewTestMetrics(), logger.Nop())
	return svc, store
}

func TestAnalytics(t *testing.T) {
	svc, _ := newTestService()

	a, err := svc.Analytics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, a.TotalVolunteers)
	assert.Equal(t, 2, a.ActiveVolunteers)
	assert.Equal(t, 72.5, a.VolunteerHours)
	assert.Equal(t, 2, a.Programs)
	assert.Equal(t, 1, a.ActivePrograms)
	assert.Equal(t, 420, a.Beneficiaries)
	assert.Equal(t, 50.0, a.BudgetUtilization)
	require.Len(t, a.HoursByProgram, 2)
	assert.Equal(t, model.ProgramHours{ProgramID: "PRG001", ProgramName: "Rural Health Camps", Volunteers: 2, Hours: 52.5}, a.HoursByProgram[0])
}

func TestCreateCampaign_DefaultsToPlanned(t *testing.T) {
	svc, store := newTestService()

	c, err := svc.CreateCampaign(context.Background(), &model.CreateCampaignRequest{
		Name:      "Diabetes Screening",
		Type:      model.CampaignTypeScreening,
		StartDate: "2024-05-01",
		EndDate:   "2024-05-15",
		Channels:  []string{"sms", "email"},
	})
	require.NoError(t, err)

	assert.Equal(t, model.CampaignStatusPlanned, c.Status)
	assert.Equal(t, 3, store.Campaigns.Len())
}

func TestCreateCampaign_EndBeforeStart(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.CreateCampaign(context.Background(), &model.CreateCampaignRequest{
		Name:      "Backwards",
		Type:      model.CampaignTypeAwareness,
		StartDate: "2024-05-15",
		EndDate:   "2024-05-01",
	})

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	assert.Equal(t, "endDate", appErr.Fields[0].Field)
	assert.Equal(t, 2, store.Campaigns.Len())
}

func TestCreateCampaign_UnknownChannel(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateCampaign(context.Background(), &model.CreateCampaignRequest{
		Name:      "Fax blast",
		Type:      model.CampaignTypeAwareness,
		StartDate: "2024-05-01",
		EndDate:   "2024-05-02",
		Channels:  []string{"fax"},
	})

	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestListCampaignsAndVolunteers(t *testing.T) {
	svc, _ := newTestService()

	campaigns, err := svc.ListCampaigns(context.Background(), filter.Criteria{Filters: map[string]string{"type": "VACCINATION"}})
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, "CMP002", campaigns[0].ID)

	volunteers, err := svc.ListVolunteers(context.Background(), filter.Criteria{Query: "counsel"})
	require.NoError(t, err)
	require.Len(t, volunteers, 1)
	assert.Equal(t, "VOL003", volunteers[0].ID)
}
