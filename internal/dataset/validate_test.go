package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AcceptedRow(t *testing.T) {
	rows := []Row{
		row(1, map[string]string{
			"year": "2023", "month": "6", "day": "15",
			"temperature": "28.4", "humidity": "81",
		}),
	}

	result := Validate(rows, EnvironmentalSchema())

	require.Len(t, result.Accepted, 1)
	require.Empty(t, result.Rejected)

	typed := result.Accepted[0]
	assert.Equal(t, 1, typed.Position)
	assert.Equal(t, time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), typed.Date)
	assert.Equal(t, 28.4, typed.Numbers["temperature"])
	assert.Equal(t, 81.0, typed.Numbers["humidity"])

	// key columns are consumed into the date, not carried as metrics
	_, hasYear := typed.Numbers["year"]
	assert.False(t, hasYear)
}

func TestValidate_ReasonCodes(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		schema Schema
		reason string
	}{
		{
			name:   "missing day",
			values: map[string]string{"year": "2023", "month": "6", "temperature": "28"},
			schema: EnvironmentalSchema(),
			reason: "missing_field:day",
		},
		{
			name:   "month out of range",
			values: map[string]string{"year": "2023", "month": "13", "day": "1", "temperature": "28"},
			schema: EnvironmentalSchema(),
			reason: "range_error:month",
		},
		{
			name:   "year below floor",
			values: map[string]string{"year": "1999", "month": "6", "day": "1", "temperature": "28"},
			schema: EnvironmentalSchema(),
			reason: "range_error:year",
		},
		{
			name:   "non-numeric temperature",
			values: map[string]string{"year": "2023", "month": "6", "day": "1", "temperature": "hot"},
			schema: EnvironmentalSchema(),
			reason: "type_error:temperature",
		},
		{
			name:   "humidity above 100",
			values: map[string]string{"year": "2023", "month": "6", "day": "1", "humidity": "250"},
			schema: EnvironmentalSchema(),
			reason: "range_error:humidity",
		},
		{
			name:   "negative pest count",
			values: map[string]string{"year": "2023", "month": "6", "day": "1", "rbb_count": "-1"},
			schema: PestSchema(),
			reason: "range_error:rbb_count",
		},
		{
			name:   "calendar overflow",
			values: map[string]string{"year": "2023", "month": "2", "day": "31", "rbb_count": "1"},
			schema: PestSchema(),
			reason: "range_error:day",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate([]Row{row(5, tt.values)}, tt.schema)

			require.Empty(t, result.Accepted)
			require.Len(t, result.Rejected, 1)
			assert.Equal(t, 5, result.Rejected[0].Position)
			assert.Equal(t, tt.reason, result.Rejected[0].Reason)
		})
	}
}

// A row can be valid for one domain and invalid for another. After
// partitioning, each projection is judged on its own columns only.
func TestValidate_PerDomainIndependence(t *testing.T) {
	rows := []Row{
		row(1, map[string]string{
			"year": "2023", "month": "6", "day": "15",
			"temperature": "28.4", "rbb_count": "-1",
		}),
	}

	batches := Partition(rows, Schemas())

	env := Validate(batches[DomainEnvironmental], EnvironmentalSchema())
	pest := Validate(batches[DomainPest], PestSchema())

	assert.Len(t, env.Accepted, 1)
	require.Len(t, pest.Rejected, 1)
	assert.Equal(t, "range_error:rbb_count", pest.Rejected[0].Reason)
}

func TestValidate_RowGranular(t *testing.T) {
	rows := []Row{
		row(1, map[string]string{"year": "2023", "month": "6", "day": "1", "rbb_count": "4"}),
		row(2, map[string]string{"year": "2023", "month": "6", "day": "2", "rbb_count": "bad"}),
		row(3, map[string]string{"year": "2023", "month": "6", "day": "3", "rbb_count": "0"}),
	}

	result := Validate(rows, PestSchema())

	// a bad row never aborts its siblings, and zero counts are valid
	require.Len(t, result.Accepted, 2)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, 2, result.Rejected[0].Position)
	assert.Equal(t, len(rows), len(result.Accepted)+len(result.Rejected))
	assert.Equal(t, 0.0, result.Accepted[1].Numbers["rbb_count"])
}
