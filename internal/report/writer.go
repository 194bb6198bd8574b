package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Format is a report serialization.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (want csv or json)", ErrUnknownFormat, s)
	}
}

// Report is the ordered record set of one fleet run.
type Report struct {
	GeneratedAt time.Time
	Vehicles    []Record
}

type jsonDocument struct {
	GeneratedAt   string   `json:"generated_at"`
	TotalVehicles int      `json:"total_vehicles"`
	Vehicles      []Record `json:"vehicles"`
}

// WriteCSV writes a header row and one row per vehicle.
func WriteCSV(w io.Writer, rep *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	row := make([]string, len(Fields))
	for i := range rep.Vehicles {
		for j, f := range Fields {
			row[j] = f.Format(&rep.Vehicles[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the report as a single indented JSON document.
func WriteJSON(w io.Writer, rep *Report) error {
	doc := jsonDocument{
		GeneratedAt:   rep.GeneratedAt.UTC().Format(time.RFC3339),
		TotalVehicles: len(rep.Vehicles),
		Vehicles:      rep.Vehicles,
	}
	if doc.Vehicles == nil {
		doc.Vehicles = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Write serializes rep in the given format.
func Write(w io.Writer, format Format, rep *Report) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rep)
	case FormatJSON:
		return WriteJSON(w, rep)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile serializes rep to path. The report is written to a temporary
// file in the same directory and renamed into place, so a failure never
// leaves a partial report at path.
func WriteFile(path string, format Format, rep *Report) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".report-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := Write(tmp, format, rep); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}

	success = true
	return nil
}
