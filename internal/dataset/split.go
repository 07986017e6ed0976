package dataset

// Partition projects normalized rows into per-domain batches. Domains are
// column projections, not a partition of rows: a row carrying both a
// temperature and a pest count contributes to the environmental and the pest
// batch, sharing the same key. The metadata schema has no metric columns
// and therefore claims every row.
//
// The projection for a metric-bearing domain keeps the key columns plus that
// domain's declared columns. The metadata projection keeps the key plus the
// columns no metric domain declared. Input order is preserved within each
// batch, so the same dataset always yields the same batches.
func Partition(rows []Row, schemas []Schema) map[Domain][]Row {
	claimed := make(map[string]bool)
	for _, s := range schemas {
		for _, col := range s.Metrics {
			claimed[col] = true
		}
	}

	batches := make(map[Domain][]Row, len(schemas))
	for _, s := range schemas {
		batch := make([]Row, 0, len(rows))
		for _, row := range rows {
			if !memberOf(row, s) {
				continue
			}
			batch = append(batch, project(row, s, claimed))
		}
		batches[s.Domain] = batch
	}

	return batches
}

// memberOf reports whether a row belongs to a schema's domain: always for a
// schema with no metric columns, otherwise only when at least one metric
// column is present.
func memberOf(row Row, s Schema) bool {
	if len(s.Metrics) == 0 {
		return true
	}
	for _, col := range s.Metrics {
		if _, ok := row.Values[col]; ok {
			return true
		}
	}
	return false
}

func project(row Row, s Schema, claimed map[string]bool) Row {
	keep := make(map[string]bool, len(s.Required)+len(s.Metrics)+len(s.Numeric))
	for _, col := range s.Required {
		keep[col] = true
	}
	for _, col := range s.Metrics {
		keep[col] = true
	}
	for col := range s.Numeric {
		keep[col] = true
	}

	values := make(map[string]string, len(keep))
	for col, v := range row.Values {
		if keep[col] {
			values[col] = v
			continue
		}
		// metadata keeps whatever the metric domains left unclaimed
		if len(s.Metrics) == 0 && !claimed[col] {
			values[col] = v
		}
	}

	return Row{Position: row.Position, Values: values}
}
