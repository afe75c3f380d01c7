// Package filesystem persists bulletin artifacts under an output directory:
//
//	<dir>/latest.csv | latest.txt   official export, verbatim
//	<dir>/archive/<YYYY-MM-DD>.<ext> dated copy of the export
//	<dir>/latest.json + latest.csv   scraped observations
//	<dir>/rendered.html              markup kept when nothing could be extracted
package filesystem

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pluviorn/emparn-fetch/internal/domain"
)

const (
	latestJSON     = "latest.json"
	latestCSV      = "latest.csv"
	diagnosticHTML = "rendered.html"
	archiveDir     = "archive"
)

// Store writes artifacts to disk. It implements pipeline.Store.
type Store struct {
	dir     string
	archive bool
	logger  *slog.Logger
}

// NewStore creates a Store rooted at dir. When archive is true, exports are
// also copied to a date-stamped file.
func NewStore(dir string, archive bool, logger *slog.Logger) *Store {
	return &Store{dir: dir, archive: archive, logger: logger}
}

// SaveExport writes an official export verbatim to latest.<kind> and,
// if archiving is on, to archive/<date>.<kind>. It returns the written paths.
func (s *Store) SaveExport(_ context.Context, exp domain.Export) ([]string, error) {
	latest := filepath.Join(s.dir, "latest."+string(exp.Kind))
	if err := writeFileAtomic(latest, exp.Body); err != nil {
		return nil, err
	}
	paths := []string{latest}

	if s.archive {
		archived := filepath.Join(s.dir, archiveDir, domain.BulletinDate()+"."+string(exp.Kind))
		if err := writeFileAtomic(archived, exp.Body); err != nil {
			return paths, err
		}
		paths = append(paths, archived)
	}

	s.logger.Info("export saved", "kind", exp.Kind, "bytes", len(exp.Body), "paths", paths)
	return paths, nil
}

// SaveObservations writes latest.json and latest.csv.
func (s *Store) SaveObservations(_ context.Context, obs []domain.Observation) ([]string, error) {
	data, err := json.MarshalIndent(obs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode observations json: %w", err)
	}
	jsonPath := filepath.Join(s.dir, latestJSON)
	if err := writeFileAtomic(jsonPath, data); err != nil {
		return nil, err
	}

	csvData, err := EncodeCSV(obs)
	if err != nil {
		return []string{jsonPath}, err
	}
	csvPath := filepath.Join(s.dir, latestCSV)
	if err := writeFileAtomic(csvPath, csvData); err != nil {
		return []string{jsonPath}, err
	}

	s.logger.Info("observations saved", "rows", len(obs), "json", jsonPath, "csv", csvPath)
	return []string{jsonPath, csvPath}, nil
}

// SaveDiagnostic keeps the page markup for inspection after a failed run.
func (s *Store) SaveDiagnostic(_ context.Context, markup string) (string, error) {
	path := filepath.Join(s.dir, diagnosticHTML)
	if err := writeFileAtomic(path, []byte(markup)); err != nil {
		return "", err
	}
	s.logger.Info("diagnostic markup saved", "path", path, "bytes", len(markup))
	return path, nil
}

// EncodeCSV serializes observations with the fixed domain.CSVHeader column
// order and "\n" line endings. Nil values become empty cells.
func EncodeCSV(obs []domain.Observation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(domain.CSVHeader); err != nil {
		return nil, fmt.Errorf("encode csv header: %w", err)
	}
	for _, o := range obs {
		record := []string{
			o.Region,
			str(o.Municipality),
			str(o.Station),
			str(o.StationType),
			str(o.MeasurementHours),
			num(o.PrecipitationMM),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("encode csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}

// writeFileAtomic replaces path with data via a temp file and rename so
// readers never observe a half-written artifact.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func num(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
