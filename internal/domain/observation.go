package domain

// Observation is a single rain-gauge reading scraped from a bulletin table.
// Nil fields were absent from the table or could not be parsed.
type Observation struct {
	Region           string   `json:"region"`
	Municipality     *string  `json:"municipality"`
	Station          *string  `json:"station"`
	StationType      *string  `json:"station_type"`
	MeasurementHours *string  `json:"measurement_hours"`
	PrecipitationMM  *float64 `json:"precipitation_mm"`

	// Geocoding enrichment fields, never part of the CSV output.
	Lat       *float64 `json:"lat,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
	PlaceName string   `json:"place_name,omitempty"`
}

// CSVHeader is the fixed column order of the scraped CSV output.
var CSVHeader = []string{
	"region",
	"municipality",
	"station",
	"station_type",
	"measurement_hours",
	"precipitation_mm",
}

// Key identifies the gauge that produced the observation.
func (o Observation) Key() string {
	return o.Region + "|" + deref(o.Municipality) + "|" + deref(o.Station)
}

// Table holds the raw text of a rendered bulletin table.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ExportKind is the file type of an official bulletin export.
type ExportKind string

const (
	ExportCSV ExportKind = "csv"
	ExportTXT ExportKind = "txt"
)

// Export is a downloaded official export, kept verbatim.
type Export struct {
	Kind ExportKind
	URL  string
	Body []byte
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
