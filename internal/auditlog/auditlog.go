// Package auditlog appends every committed economic event to a CSV file
// next to the data, so edits and deletes of batches stay traceable.
package auditlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Actions recorded in the log.
const (
	ActionDistribute = "distribute"
	ActionTransfer   = "transfer"
	ActionPayout     = "payout"
	ActionEditBatch  = "edit_batch"
	ActionDelete     = "delete"
	ActionRecord     = "record"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp      time.Time
	Actor          string
	Action         string
	BatchID        string
	TransactionIDs []string
	Details        string
}

// Header is the CSV header for audit-log.csv.
var Header = []string{"timestamp", "actor", "action", "batch_id", "transaction_ids", "details"}

// File is the log path relative to the data directory.
const File = "logs/audit-log.csv"

const (
	numFields  = 6
	idSep      = ";"
	colTime    = 0
	colActor   = 1
	colAction  = 2
	colBatch   = 3
	colTxIDs   = 4
	colDetails = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colActor] = e.Actor
	row[colAction] = e.Action
	row[colBatch] = e.BatchID
	row[colTxIDs] = strings.Join(e.TransactionIDs, idSep)
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}

	var ids []string
	if record[colTxIDs] != "" {
		ids = strings.Split(record[colTxIDs], idSep)
	}
	return Entry{
		Timestamp:      ts,
		Actor:          record[colActor],
		Action:         record[colAction],
		BatchID:        record[colBatch],
		TransactionIDs: ids,
		Details:        record[colDetails],
	}, nil
}

// Log appends to the audit log of one data directory.
type Log struct {
	Dir   string
	Actor string
	Now   func() time.Time
}

// New returns a Log for dir attributed to actor.
func New(dir, actor string) *Log {
	return &Log{Dir: dir, Actor: actor, Now: time.Now}
}

// Record stamps e with the log's actor and clock and appends it.
func (l *Log) Record(e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = l.Now()
	}
	if e.Actor == "" {
		e.Actor = l.Actor
	}
	return Append(l.Dir, []Entry{e})
}

// Append writes entries to <dir>/logs/audit-log.csv, creating the file and
// header if needed.
func Append(dir string, entries []Entry) error {
	path := filepath.Join(dir, File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries of dir's audit log, or nothing if there is none.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, File))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
