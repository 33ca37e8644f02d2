// Package export serializes a completed run's record set for external tools.
// The engine only exposes measurements in completion order; the formats live
// here so it never has to know about them.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/studiowebux/stresscli/internal/engine"
)

// runExport is the JSON document shape: the summary first, then every record.
type runExport struct {
	Report       *engine.Report        `json:"report"`
	Measurements []*engine.Measurement `json:"measurements"`
}

// WriteJSON writes the report and the full measurement collection as an
// indented JSON document.
func WriteJSON(w io.Writer, report *engine.Report, measurements []*engine.Measurement) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(runExport{Report: report, Measurements: measurements}); err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"user", "sequence", "started_at", "latency_ms", "outcome",
	"status_code", "response_size", "error",
}

// WriteCSV writes one row per measurement, in completion order.
func WriteCSV(w io.Writer, measurements []*engine.Measurement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, m := range measurements {
		latencyMs := float64(m.Latency.Microseconds()) / 1000.0
		row := []string{
			strconv.Itoa(m.User),
			strconv.Itoa(m.Sequence),
			m.StartedAt.Format("2006-01-02T15:04:05.000Z07:00"),
			strconv.FormatFloat(latencyMs, 'f', 3, 64),
			string(m.Outcome),
			strconv.Itoa(m.StatusCode),
			strconv.FormatInt(m.ResponseSize, 10),
			m.Error,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write measurement: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
