package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field is a logical observation column, independent of how a given day's
// table spells its header.
type Field int

const (
	FieldMunicipality Field = iota
	FieldStation
	FieldStationType
	FieldMeasurementHours
	FieldPrecipitation
)

// Fields lists every logical column in CSV order.
var Fields = []Field{
	FieldMunicipality,
	FieldStation,
	FieldStationType,
	FieldMeasurementHours,
	FieldPrecipitation,
}

// fieldAliases holds the accepted header spellings per field, already
// normalized, in priority order.
var fieldAliases = map[Field][]string{
	FieldMunicipality:     {"municipio"},
	FieldStation:          {"posto"},
	FieldStationType:      {"tipo de posto", "tipo"},
	FieldMeasurementHours: {"horas contabilizadas", "horas"},
	FieldPrecipitation:    {"precipitacao (mm)", "precipitacao", "chuva (mm)", "chuva"},
}

// Aliases returns the header spellings accepted for f, most specific first.
func (f Field) Aliases() []string {
	return fieldAliases[f]
}

func (f Field) String() string {
	switch f {
	case FieldMunicipality:
		return "municipality"
	case FieldStation:
		return "station"
	case FieldStationType:
		return "station_type"
	case FieldMeasurementHours:
		return "measurement_hours"
	case FieldPrecipitation:
		return "precipitation_mm"
	default:
		return "unknown"
	}
}

// NormalizeHeader collapses whitespace, lowercases and strips diacritics so
// "  Precipitação\n(mm) " and "precipitacao (mm)" compare equal.
// NormalizeHeader(NormalizeHeader(s)) == NormalizeHeader(s).
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	// Chain keeps per-call state, so it is built fresh each time.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(fold, s)
	if err != nil {
		return s
	}
	return out
}

// HeaderIndex maps normalized header names to their column position.
// Later duplicates win.
type HeaderIndex map[string]int

// NewHeaderIndex builds the index for one table's header cells.
func NewHeaderIndex(headers []string) HeaderIndex {
	idx := make(HeaderIndex, len(headers))
	for i, h := range headers {
		idx[NormalizeHeader(h)] = i
	}
	return idx
}

// Resolve returns the column of the first alias of f present in the index.
func (h HeaderIndex) Resolve(f Field) (int, bool) {
	for _, alias := range f.Aliases() {
		if i, ok := h[NormalizeHeader(alias)]; ok {
			return i, true
		}
	}
	return -1, false
}
