package core

// Summarize validates that t carries every required equipment column and derives
// the dataset statistics from it. The table is not modified.
//
// A missing required column yields a ValidationError naming all missing columns.
// A non-numeric value in a numeric column yields a ValidationError of kind
// KindAggregation. Either way no Stats are produced.
func Summarize(t *Table) (Stats, error) {
	if missing := t.MissingColumns(RequiredColumns()); len(missing) > 0 {
		return Stats{}, newMissingColumnsError(missing)
	}

	stats := Stats{TotalCount: t.Len()}

	averages := map[string]*float64{
		ColFlowrate:    &stats.AvgFlowrate,
		ColPressure:    &stats.AvgPressure,
		ColTemperature: &stats.AvgTemperature,
	}
	for _, spec := range EquipmentFieldSpecs {
		if spec.Type != FieldNumeric {
			continue
		}
		mean, err := t.Mean(spec.Name)
		if err != nil {
			return Stats{}, err
		}
		if dst, ok := averages[spec.Name]; ok {
			*dst = mean
		}
	}

	dist, err := t.CountBy(ColType)
	if err != nil {
		return Stats{}, err
	}
	stats.TypeDistribution = dist

	return stats, nil
}

// SummarizeCSV parses data and summarizes it in one step.
func SummarizeCSV(data []byte) (*Table, Stats, error) {
	t, err := ParseTable(data)
	if err != nil {
		return nil, Stats{}, err
	}
	stats, err := Summarize(t)
	if err != nil {
		return nil, Stats{}, err
	}
	return t, stats, nil
}
