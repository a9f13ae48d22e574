// Package export renders the register's state into its interchange formats
// (CSV per date, JSON backup, printable document) and publishes the results
// as artifacts. JSON backup is the only format that is also read back.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"

	"rollbook/pkg/register"
)

// Format identifies one export rendering.
type Format string

const (
	// FormatCSV is one date's bucket as comma-separated text.
	FormatCSV Format = "csv"
	// FormatBackup is the full lossless JSON snapshot, re-importable.
	FormatBackup Format = "backup"
	// FormatDoc is one date's bucket as a printable word-processor document.
	// One-way; never parsed back.
	FormatDoc Format = "doc"
)

// ContentType returns the MIME type artifacts of this format are stored with.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatBackup:
		return "application/json"
	case FormatDoc:
		return "application/msword"
	default:
		return "application/octet-stream"
	}
}

// csvHeader is the fixed column contract for per-date CSV exports.
var csvHeader = []string{"date", "roll", "name", "present", "notes"}

// Source is the register surface the exporter reads from and, on restore,
// overwrites.
type Source interface {
	Day(dateKey string) []register.Entry
	SnapshotState() register.Snapshot
	ReplaceState(ctx context.Context, snap register.Snapshot) error
}

// Exporter renders register state. It never materializes dates: exporting a
// never-loaded date yields a header-only sheet, reflecting that nothing was
// recorded.
type Exporter struct {
	src Source
}

// NewExporter binds an exporter to a register.
func NewExporter(src Source) *Exporter {
	return &Exporter{src: src}
}

// CSV renders one date bucket with RFC4180 quoting, present as 1/0, rows in
// bucket order.
func (e *Exporter) CSV(dateKey string) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, entry := range e.src.Day(dateKey) {
		present := "0"
		if entry.Present {
			present = "1"
		}
		if err := w.Write([]string{dateKey, entry.Roll, entry.Name, present, entry.Notes}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Backup renders the full snapshot: roster plus every date bucket. The output
// round-trips through Restore without loss.
func (e *Exporter) Backup() ([]byte, error) {
	snap := e.src.SnapshotState()
	if snap.Students == nil {
		snap.Students = []register.Student{}
	}
	if snap.Records == nil {
		snap.Records = map[string][]register.Entry{}
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return payload, nil
}

// ParseBackup validates the document structurally (both top-level fields must
// be present; entries are not deep-validated) and decodes it.
func ParseBackup(payload []byte) (register.Snapshot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return register.Snapshot{}, fmt.Errorf("decode backup: %w", err)
	}
	for _, field := range []string{"students", "records"} {
		if _, ok := fields[field]; !ok {
			return register.Snapshot{}, register.ErrInvalidBackup{Missing: field}
		}
	}
	var snap register.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return register.Snapshot{}, fmt.Errorf("decode backup: %w", err)
	}
	return snap, nil
}

// Restore parses the document and replaces the register's entire state with
// its content. The prior state is untouched on any failure; on success there
// is no undo, so callers own user confirmation.
func (e *Exporter) Restore(ctx context.Context, payload []byte) error {
	snap, err := ParseBackup(payload)
	if err != nil {
		return err
	}
	return e.src.ReplaceState(ctx, snap)
}

// PrintableDoc renders one date bucket as a minimal styled HTML table that
// word processors open directly.
func (e *Exporter) PrintableDoc(dateKey string) []byte {
	b := &strings.Builder{}
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>Attendance ")
	b.WriteString(html.EscapeString(dateKey))
	b.WriteString("</title><style>table{border-collapse:collapse}td,th{border:1px solid #444;padding:4px 8px}</style></head><body>")
	b.WriteString("<h3>Attendance &mdash; ")
	b.WriteString(html.EscapeString(dateKey))
	b.WriteString("</h3><table><thead><tr><th>#</th><th>Name</th><th>Roll/ID</th><th>Status</th><th>Notes</th></tr></thead><tbody>")
	for i, entry := range e.src.Day(dateKey) {
		status := "Absent"
		if entry.Present {
			status = "Present"
		}
		b.WriteString("<tr><td>")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("</td><td>")
		b.WriteString(html.EscapeString(entry.Name))
		b.WriteString("</td><td>")
		b.WriteString(html.EscapeString(entry.Roll))
		b.WriteString("</td><td>")
		b.WriteString(status)
		b.WriteString("</td><td>")
		b.WriteString(html.EscapeString(entry.Notes))
		b.WriteString("</td></tr>")
	}
	b.WriteString("</tbody></table></body></html>")
	return []byte(b.String())
}
