// Command validate checks that the scraped outputs in a data directory are
// internally consistent: latest.json and latest.csv describe the same
// observations, rows satisfy the bulletin invariants, and the CSV is byte
// identical to what the fetcher would write for the JSON.
//
// Usage:
//
//	go run ./cmd/validate -dir data
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/pluviorn/emparn-fetch/internal/adapter/filesystem"
	"github.com/pluviorn/emparn-fetch/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dir := flag.String("dir", "data", "output directory containing latest.json and latest.csv")
	flag.Parse()

	if code := run(*dir, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(dir string, out io.Writer) int {
	fmt.Fprintln(out, "=== Rainfall Bulletin Output Validation ===")
	fmt.Fprintln(out)

	jsonPath := filepath.Join(dir, "latest.json")
	csvPath := filepath.Join(dir, "latest.csv")

	observations, err := loadJSON(jsonPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load %s: %v\n", jsonPath, err)
		return 1
	}
	rawCSV, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load %s: %v\n", csvPath, err)
		return 1
	}
	records, err := csv.NewReader(bytes.NewReader(rawCSV)).ReadAll()
	if err != nil {
		fmt.Fprintf(out, "FATAL: parse %s: %v\n", csvPath, err)
		return 1
	}

	phases := []*phase{
		validateRows(observations),
		validateParity(observations, records),
		validateEncoding(observations, rawCSV),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-32s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d JSON, %d CSV\n", len(observations), max(len(records)-1, 0))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

func loadJSON(path string) ([]domain.Observation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var obs []domain.Observation
	if err := json.Unmarshal(data, &obs); err != nil {
		return nil, err
	}
	return obs, nil
}

// validateRows checks each observation against the scrape invariants.
func validateRows(obs []domain.Observation) *phase {
	p := &phase{name: "Row invariants"}
	labels := make([]string, 0, len(domain.Regions))
	for _, r := range domain.Regions {
		labels = append(labels, r.Label)
	}

	if len(obs) == 0 {
		p.errorf("latest.json has no observations")
	}
	for i, o := range obs {
		if !slices.Contains(labels, o.Region) {
			p.errorf("row %d: unknown region %q", i, o.Region)
		}
		if isBlank(o.Municipality) && isBlank(o.Station) && o.PrecipitationMM == nil {
			p.errorf("row %d: municipality, station and precipitation are all empty", i)
		}
		if v := o.PrecipitationMM; v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0) {
			p.errorf("row %d: invalid precipitation %v", i, *v)
		}
	}
	return p
}

// validateParity compares latest.json with the parsed latest.csv row by row.
func validateParity(obs []domain.Observation, records [][]string) *phase {
	p := &phase{name: "JSON/CSV parity"}
	if len(records) == 0 {
		p.errorf("latest.csv is empty")
		return p
	}
	if !slices.Equal(records[0], domain.CSVHeader) {
		p.errorf("csv header = %v, want %v", records[0], domain.CSVHeader)
		return p
	}
	rows := records[1:]
	if len(rows) != len(obs) {
		p.errorf("row count: json=%d csv=%d", len(obs), len(rows))
	}

	for i := range min(len(rows), len(obs)) {
		o, row := obs[i], rows[i]
		want := []string{o.Region, ptrStr(o.Municipality), ptrStr(o.Station), ptrStr(o.StationType), ptrStr(o.MeasurementHours)}
		for j, w := range want {
			if row[j] != w {
				p.errorf("row %d %s: json=%q csv=%q", i, domain.CSVHeader[j], w, row[j])
			}
		}
		if !precipitationEq(o.PrecipitationMM, row[5]) {
			p.errorf("row %d precipitation_mm: json=%s csv=%q", i, ptrFloat(o.PrecipitationMM), row[5])
		}
	}
	return p
}

// validateEncoding re-encodes the JSON rows and compares the bytes with
// latest.csv, catching line-ending and quoting drift.
func validateEncoding(obs []domain.Observation, rawCSV []byte) *phase {
	p := &phase{name: "CSV encoding"}
	want, err := filesystem.EncodeCSV(obs)
	if err != nil {
		p.errorf("encode csv: %v", err)
		return p
	}
	if bytes.Contains(rawCSV, []byte("\r\n")) {
		p.errorf("latest.csv uses CRLF line endings")
	}
	if !bytes.Equal(want, rawCSV) {
		p.errorf("latest.csv differs from the encoding of latest.json (%d vs %d bytes)", len(rawCSV), len(want))
	}
	return p
}

func precipitationEq(v *float64, cell string) bool {
	if v == nil {
		return cell == ""
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return false
	}
	return math.Abs(f-*v) < 1e-9
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}

func ptrStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptrFloat(f *float64) string {
	if f == nil {
		return "<nil>"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
