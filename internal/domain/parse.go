package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numberPrefixRe matches the leading decimal number of a cell once the
// Brazilian separators are rewritten, e.g. "12.5 mm" -> "12.5".
var numberPrefixRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber parses a Brazilian-formatted number ("1.234,56" -> 1234.56).
// Blank, non-numeric and non-finite values return nil.
func ParseNumber(s string) *float64 {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)

	m := numberPrefixRe.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// BuildObservations maps a table's rows onto observations for region.
// Columns whose header cannot be resolved yield nil for every row, and rows
// without municipality, station and precipitation are dropped.
func BuildObservations(region string, t Table) []Observation {
	idx := NewHeaderIndex(t.Headers)

	cols := make(map[Field]int, len(Fields))
	for _, f := range Fields {
		if i, ok := idx.Resolve(f); ok {
			cols[f] = i
		}
	}

	out := make([]Observation, 0, len(t.Rows))
	for _, cells := range t.Rows {
		cell := func(f Field) *string {
			i, ok := cols[f]
			if !ok || i >= len(cells) {
				return nil
			}
			v := cells[i]
			return &v
		}

		obs := Observation{
			Region:           region,
			Municipality:     cell(FieldMunicipality),
			Station:          cell(FieldStation),
			StationType:      cell(FieldStationType),
			MeasurementHours: cell(FieldMeasurementHours),
		}
		if raw := cell(FieldPrecipitation); raw != nil {
			obs.PrecipitationMM = ParseNumber(*raw)
		}

		if deref(obs.Municipality) == "" && deref(obs.Station) == "" && obs.PrecipitationMM == nil {
			continue
		}
		out = append(out, obs)
	}
	return out
}
