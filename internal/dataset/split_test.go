package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(position int, values map[string]string) Row {
	return Row{Position: position, Values: values}
}

func TestPartition_Membership(t *testing.T) {
	rows := []Row{
		row(1, map[string]string{"year": "2023", "month": "6", "day": "1", "temperature": "28.0"}),
		row(2, map[string]string{"year": "2023", "month": "6", "day": "2", "rbb_count": "5"}),
		row(3, map[string]string{"year": "2023", "month": "6", "day": "3", "temperature": "29.1", "wsb_count": "2"}),
		row(4, map[string]string{"year": "2023", "month": "6", "day": "4", "week_number": "23"}),
	}

	batches := Partition(rows, Schemas())

	envPositions := positions(batches[DomainEnvironmental])
	pestPositions := positions(batches[DomainPest])
	metaPositions := positions(batches[DomainMetadata])

	assert.Equal(t, []int{1, 3}, envPositions)
	assert.Equal(t, []int{2, 3}, pestPositions)
	// metadata claims every row
	assert.Equal(t, []int{1, 2, 3, 4}, metaPositions)
}

func TestPartition_RowInTwoDomainsSharesKey(t *testing.T) {
	rows := []Row{
		row(7, map[string]string{
			"year": "2023", "month": "7", "day": "12",
			"temperature": "30.2", "rbb_count": "8",
		}),
	}

	batches := Partition(rows, Schemas())

	require.Len(t, batches[DomainEnvironmental], 1)
	require.Len(t, batches[DomainPest], 1)

	env := batches[DomainEnvironmental][0]
	pest := batches[DomainPest][0]

	assert.Equal(t, 7, env.Position)
	assert.Equal(t, 7, pest.Position)
	assert.Equal(t, env.Values["year"], pest.Values["year"])

	// each projection keeps only its own metric columns
	_, envHasPest := env.Values["rbb_count"]
	assert.False(t, envHasPest)
	_, pestHasTemp := pest.Values["temperature"]
	assert.False(t, pestHasTemp)
}

func TestPartition_PestProjectionKeepsDensity(t *testing.T) {
	rows := []Row{
		row(1, map[string]string{
			"year": "2023", "month": "7", "day": "1",
			"rbb_count": "3", "density": "0.4",
		}),
	}

	batches := Partition(rows, Schemas())

	require.Len(t, batches[DomainPest], 1)
	assert.Equal(t, "0.4", batches[DomainPest][0].Values["density"])
}

func TestPartition_MetadataKeepsUnclaimedColumns(t *testing.T) {
	rows := []Row{
		row(1, map[string]string{
			"year": "2023", "month": "7", "day": "1",
			"temperature": "28.0", "week_number": "27", "notes": "transplanting",
		}),
	}

	batches := Partition(rows, Schemas())

	require.Len(t, batches[DomainMetadata], 1)
	meta := batches[DomainMetadata][0]

	assert.Equal(t, "27", meta.Values["week_number"])
	assert.Equal(t, "transplanting", meta.Values["notes"])
	// temperature belongs to the environmental projection
	_, hasTemp := meta.Values["temperature"]
	assert.False(t, hasTemp)
}

func TestPartition_Deterministic(t *testing.T) {
	rows := []Row{
		row(1, map[string]string{"year": "2023", "month": "1", "day": "1", "rbb_count": "1"}),
		row(2, map[string]string{"year": "2023", "month": "1", "day": "2", "rbb_count": "2"}),
		row(3, map[string]string{"year": "2023", "month": "1", "day": "3", "rbb_count": "3"}),
	}

	first := positions(Partition(rows, Schemas())[DomainPest])
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, positions(Partition(rows, Schemas())[DomainPest]))
	}
}

func positions(rows []Row) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Position)
	}
	return out
}
