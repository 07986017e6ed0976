package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Year", "year"},
		{"YR", "year"},
		{"  Month ", "month"},
		{"T2M", "temperature"},
		{"Temp", "temperature"},
		{"Mean Temperature", "temperature"},
		{"T2M_MAX", "temperature_max"},
		{"Max. Temp", "temperature_max"},
		{"RH2M", "humidity"},
		{"Relative Humidity (%)", "humidity"},
		{"PRECTOTCORR", "precipitation"},
		{"Rainfall (mm)", "precipitation"},
		{"WS2M", "wind_speed"},
		{"GWETTOP", "soil_moisture"},
		{"RBB", "rbb_count"},
		{"Rice Black Bug", "rbb_count"},
		{"WSB", "wsb_count"},
		{"wsb_count", "wsb_count"},
		{"Area Code", "area_point_id"},
		{"Week No.", "week_number"},
		{"Remarks", "notes"},
		{"Something Else", "something_else"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeColumn(tt.in))
		})
	}
}

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"Year,Month,Day,T2M,RBB,Remarks",
		"2023,6,15,28.4,12,field A",
		"",
		"2023,6,16,,3,",
	}, "\n")

	rows, columns, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"year", "month", "day", "temperature", "rbb_count", "notes"}, columns)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, "28.4", rows[0].Values["temperature"])
	assert.Equal(t, "field A", rows[0].Values["notes"])

	// the fully empty line advances the position but yields no row
	assert.Equal(t, 3, rows[1].Position)
	_, hasTemp := rows[1].Values["temperature"]
	assert.False(t, hasTemp, "empty cells must be omitted, not stored as empty strings")
	assert.Equal(t, "3", rows[1].Values["rbb_count"])
}

func TestReadCSV_Empty(t *testing.T) {
	_, _, err := ReadCSV(strings.NewReader(""))
	require.Error(t, err)
}

func TestReadCSV_RaggedRows(t *testing.T) {
	input := "year,month,day,rbb_count\n2023,6,15\n2023,6,16,4,extra\n"

	rows, _, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	_, ok := rows[0].Values["rbb_count"]
	assert.False(t, ok)
	assert.Equal(t, "4", rows[1].Values["rbb_count"])
}
