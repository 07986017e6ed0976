package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Row is one source row after column normalization: canonical column name
// to raw string value. Position is the 1-based data row number in the
// source file (the header line is not counted).
type Row struct {
	Position int
	Values   map[string]string
}

// columnSynonyms maps already-munged header names to canonical columns.
// Sources are inconsistent: field sheets say "RBB", NASA POWER exports say
// "T2M", manual encodes say "Temp". All of them must land on one name.
var columnSynonyms = map[string]string{
	"yr":                "year",
	"mon":               "month",
	"temp":              "temperature",
	"t2m":               "temperature",
	"mean_temperature":  "temperature",
	"avg_temperature":   "temperature",
	"t2m_max":           "temperature_max",
	"tmax":              "temperature_max",
	"max_temp":          "temperature_max",
	"max_temperature":   "temperature_max",
	"t2m_min":           "temperature_min",
	"tmin":              "temperature_min",
	"min_temp":          "temperature_min",
	"min_temperature":   "temperature_min",
	"rh2m":              "humidity",
	"rh":                "humidity",
	"relative_humidity": "humidity",
	"prectot":           "precipitation",
	"prectotcorr":       "precipitation",
	"precip":            "precipitation",
	"rain":              "precipitation",
	"rainfall":          "precipitation",
	"ws2m":              "wind_speed",
	"wind":              "wind_speed",
	"windspeed":         "wind_speed",
	"solar":             "solar_radiation",
	"clrsky_sfc_par_tot": "solar_radiation",
	"allsky_sfc_sw_dwn":  "solar_radiation",
	"gwettop":           "soil_moisture",
	"soil_wetness":      "soil_moisture",
	"rbb":               "rbb_count",
	"rice_black_bug":    "rbb_count",
	"wsb":               "wsb_count",
	"white_stem_borer":  "wsb_count",
	"area":              "area_point_id",
	"area_code":         "area_point_id",
	"area_point":        "area_point_id",
	"point_id":          "area_point_id",
	"week":              "week_number",
	"week_no":           "week_number",
	"wk":                "week_number",
	"remarks":           "notes",
	"comment":           "notes",
	"comments":          "notes",
}

// NormalizeColumn folds a raw header name to its canonical form: lower-case,
// runs of whitespace and punctuation collapsed to a single underscore, then
// known synonyms mapped.
func NormalizeColumn(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSep = true
	}

	normalized := b.String()
	if canonical, ok := columnSynonyms[normalized]; ok {
		return canonical
	}
	return normalized
}

// ReadCSV reads a delimited dataset with a header line into normalized rows.
// Column order is not significant. Fully empty lines are skipped but still
// advance the row position so reported positions match the source file.
func ReadCSV(r io.Reader) ([]Row, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("dataset is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = NormalizeColumn(name)
	}

	var rows []Row
	position := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row %d: %w", position+1, err)
		}

		position++

		values := make(map[string]string, len(columns))
		empty := true
		for i, raw := range record {
			if i >= len(columns) {
				break
			}
			value := strings.TrimSpace(raw)
			if value == "" {
				continue
			}
			empty = false
			values[columns[i]] = value
		}
		if empty {
			continue
		}

		rows = append(rows, Row{Position: position, Values: values})
	}

	return rows, columns, nil
}
