package dataset

import (
	"sort"
	"strconv"
	"time"
)

// Rejection reason kinds. A reason code is "<kind>:<column>", e.g.
// "range_error:month".
const (
	ReasonMissingField = "missing_field"
	ReasonTypeError    = "type_error"
	ReasonRangeError   = "range_error"
)

// Reason builds a reason code for a column
func Reason(kind, column string) string {
	return kind + ":" + column
}

// TypedRow is an accepted row after validation: the assembled date key plus
// parsed numeric and pass-through text columns.
type TypedRow struct {
	Position int
	Date     time.Time
	Numbers  map[string]float64
	Text     map[string]string
}

// RowError ties a failure to one source row
type RowError struct {
	Position int    `json:"row"`
	Reason   string `json:"reason"`
}

// ValidationResult holds the two disjoint outcomes of validating a batch.
// Input order is preserved within each, and
// len(Accepted) + len(Rejected) equals the number of rows attempted.
type ValidationResult struct {
	Accepted []TypedRow
	Rejected []RowError
}

// Validate checks each row of a domain batch against the schema. Validation
// is row-granular: a bad row is rejected with a reason code and never aborts
// its siblings.
func Validate(rows []Row, s Schema) ValidationResult {
	result := ValidationResult{
		Accepted: make([]TypedRow, 0, len(rows)),
		Rejected: make([]RowError, 0),
	}

	for _, row := range rows {
		typed, reason := validateRow(row, s)
		if reason != "" {
			result.Rejected = append(result.Rejected, RowError{Position: row.Position, Reason: reason})
			continue
		}
		result.Accepted = append(result.Accepted, typed)
	}

	return result
}

func validateRow(row Row, s Schema) (TypedRow, string) {
	for _, col := range s.Required {
		if row.Values[col] == "" {
			return TypedRow{}, Reason(ReasonMissingField, col)
		}
	}

	numbers := make(map[string]float64)
	text := make(map[string]string)

	// deterministic rejection reason: check columns in sorted order
	columns := make([]string, 0, len(row.Values))
	for col := range row.Values {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	for _, col := range columns {
		raw := row.Values[col]
		constraint, numeric := s.Numeric[col]
		if !numeric {
			text[col] = raw
			continue
		}

		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return TypedRow{}, Reason(ReasonTypeError, col)
		}
		if !constraint.contains(value) {
			return TypedRow{}, Reason(ReasonRangeError, col)
		}
		numbers[col] = value
	}

	year := int(numbers["year"])
	month := int(numbers["month"])
	day := int(numbers["day"])
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 31 becomes Mar 2); treat that as an
	// out-of-range day rather than silently shifting the key
	if date.Day() != day || int(date.Month()) != month {
		return TypedRow{}, Reason(ReasonRangeError, "day")
	}

	delete(numbers, "year")
	delete(numbers, "month")
	delete(numbers, "day")

	return TypedRow{
		Position: row.Position,
		Date:     date,
		Numbers:  numbers,
		Text:     text,
	}, ""
}
