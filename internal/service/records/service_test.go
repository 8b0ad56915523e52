package records

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-ops/internal/filter"
	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/repository/memory"
)

func TestLister_FiltersBeds(t *testing.T) {
	store := memory.NewStore(memory.Dataset{Beds: []model.Bed{
		{ID: "B1", Ward: "ICU", BedNumber: "ICU-01", Status: "occupied"},
		{ID: "B2", Ward: "ICU", BedNumber: "ICU-02", Status: "available"},
		{ID: "B3", Ward: "General", BedNumber: "GEN-01", Status: "available"},
	}})
	beds := NewLister[model.Bed](store.Beds)

	got, err := beds.List(context.Background(), filter.Criteria{Filters: map[string]string{"ward": "icu", "status": "Available"}})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "B2", got[0].ID)
}

func TestLister_DateRange(t *testing.T) {
	store := memory.NewStore(memory.Dataset{Documents: []model.Document{
		{ID: "D1", Title: "Discharge summary", Date: "2024-03-01"},
		{ID: "D2", Title: "Lab report", Date: "2024-03-05"},
		{ID: "D3", Title: "Consent form"},
	}})
	docs := NewLister[model.Document](store.Documents)

	got, err := docs.List(context.Background(), filter.Criteria{DateFrom: "2024-03-02", DateTo: "2024-03-05"})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "D2", got[0].ID)
}
