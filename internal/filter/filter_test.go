package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/hospital-ops/internal/model"
)

func patients() []*model.Patient {
	return []*model.Patient{
		{ID: "P1", FirstName: "Ravi", LastName: "Kumar", Status: model.PatientStatusEmergency, Ward: "ICU"},
		{ID: "P2", FirstName: "Anita", LastName: "KUMARI", Status: model.PatientStatusActive, Ward: "General"},
		{ID: "P3", FirstName: "Sunil", LastName: "Kumar", Status: model.PatientStatusActive},
		{ID: "P4", FirstName: "Meera", LastName: "Shah", Status: model.PatientStatusEmergency},
		{ID: "P5", FirstName: "Arjun", LastName: "kumar", Status: "EMERGENCY"},
	}
}

func ids(ps []*model.Patient) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestApply_QueryAndStatus(t *testing.T) {
	got := Apply(patients(), Criteria{
		Query:   "kumar",
		Filters: map[string]string{"status": "emergency"},
	})

	assert.Equal(t, []string{"P1", "P5"}, ids(got))
}

func TestApply_EmptyCriteriaKeepsOrder(t *testing.T) {
	got := Apply(patients(), Criteria{})
	assert.Equal(t, []string{"P1", "P2", "P3", "P4", "P5"}, ids(got))
}

func TestApply_QueryIsSubstringFilterIsWholeValue(t *testing.T) {
	// "kuma" matches as a query but not as a ward filter value
	got := Apply(patients(), Criteria{Query: "KUMA"})
	assert.Equal(t, []string{"P1", "P2", "P3", "P5"}, ids(got))

	got = Apply(patients(), Criteria{Filters: map[string]string{"ward": "IC"}})
	assert.Empty(t, got)

	got = Apply(patients(), Criteria{Filters: map[string]string{"ward": "icu"}})
	assert.Equal(t, []string{"P1"}, ids(got))
}

func TestApply_UnknownAttributeNeverMatches(t *testing.T) {
	got := Apply(patients(), Criteria{Filters: map[string]string{"colour": "red"}})
	assert.Empty(t, got)
}

func TestApply_EmptyFilterValueIgnored(t *testing.T) {
	got := Apply(patients(), Criteria{Filters: map[string]string{"status": ""}})
	assert.Len(t, got, 5)
}

func TestApply_DateRangeInclusive(t *testing.T) {
	appts := []*model.Appointment{
		{ID: "A1", Date: "2024-03-01"},
		{ID: "A2", Date: "2024-03-05"},
		{ID: "A3", Date: "2024-03-10"},
		{ID: "A4", Date: "2024-03-11"},
	}

	got := Apply(appts, Criteria{DateFrom: "2024-03-05", DateTo: "2024-03-10"})

	assert.Len(t, got, 2)
	assert.Equal(t, "A2", got[0].ID)
	assert.Equal(t, "A3", got[1].ID)
}

func TestApply_DateRangeExcludesUndated(t *testing.T) {
	got := Apply(patients(), Criteria{DateFrom: "2024-01-01"})
	assert.Empty(t, got)
}

func TestCriteria_Validate(t *testing.T) {
	assert.NoError(t, Criteria{}.Validate())
	assert.NoError(t, Criteria{DateFrom: "2024-01-01", DateTo: "2024-01-01"}.Validate())
	assert.Error(t, Criteria{DateFrom: "01/01/2024"}.Validate())
	assert.Error(t, Criteria{DateFrom: "2024-02-01", DateTo: "2024-01-01"}.Validate())
}
