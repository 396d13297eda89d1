// Package store holds the ordered in-memory working set of pipeline records
// for one session. Positions are 1-based at the API boundary. Every mutating
// operation either fully succeeds or leaves the store untouched; the store
// assumes a single owner and does no locking of its own.
package store

import (
	"fmt"

	"flowledger/internal/record"
)

// MaxRecords caps how many rows Load accepts. Rows beyond the cap are
// silently truncated, matching the dataset's historical load behavior.
const MaxRecords = 100

// Row is one unvalidated input pair handed to Load by a row source.
type Row struct {
	Throughput        string
	AvailableCapacity string
}

// Entry pairs a Record with its 1-based position at snapshot time.
type Entry struct {
	Position int
	Record   record.Record
}

// Store is the ordered record sequence. The zero value is ready to use.
type Store struct {
	records []record.Record
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Len returns the number of records currently held.
func (s *Store) Len() int {
	return len(s.records)
}

// Reset drops all records, returning the store to its freshly-loaded state.
func (s *Store) Reset() {
	s.records = s.records[:0]
}

// Load replaces the working set with the given rows, in input order, up to
// MaxRecords. Rows that fail validation are skipped and reported in the
// returned RowError slice; loading continues past them. Returns the number of
// records loaded.
func (s *Store) Load(rows []Row) (int, []RowError) {
	s.Reset()
	var rowErrs []RowError
	for i, row := range rows {
		if len(s.records) >= MaxRecords {
			break
		}
		r, err := record.New(row.Throughput, row.AvailableCapacity)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: i + 1, Err: err})
			continue
		}
		s.records = append(s.records, r)
	}
	return len(s.records), rowErrs
}

// Append validates both quantities and adds the record to the end of the
// sequence. On validation failure the store is unchanged and the
// *record.ValidationError is returned.
func (s *Store) Append(throughput, availableCapacity string) (record.Record, error) {
	r, err := record.New(throughput, availableCapacity)
	if err != nil {
		return record.Record{}, err
	}
	s.records = append(s.records, r)
	return r, nil
}

// Read returns the record at the 1-based position without mutating anything.
func (s *Store) Read(pos int) (record.Record, error) {
	if pos < 1 || pos > len(s.records) {
		return record.Record{}, &NotFoundError{Position: pos, Length: len(s.records)}
	}
	return s.records[pos-1], nil
}

// Update overwrites both quantities at the 1-based position. Bounds are
// checked before the field values, so an out-of-range position reports
// NotFound even when the new values are also bad. The display variant follows
// from the new throughput from here on. Either fully succeeds or has no
// effect.
func (s *Store) Update(pos int, throughput, availableCapacity string) (record.Record, error) {
	if pos < 1 || pos > len(s.records) {
		return record.Record{}, &NotFoundError{Position: pos, Length: len(s.records)}
	}
	r, err := record.New(throughput, availableCapacity)
	if err != nil {
		return record.Record{}, err
	}
	s.records[pos-1] = r
	return r, nil
}

// Delete removes the record at the 1-based position, shifting later records
// down by one. Returns the removed record.
func (s *Store) Delete(pos int) (record.Record, error) {
	if pos < 1 || pos > len(s.records) {
		return record.Record{}, &NotFoundError{Position: pos, Length: len(s.records)}
	}
	removed := s.records[pos-1]
	s.records = append(s.records[:pos-1], s.records[pos:]...)
	return removed, nil
}

// All returns a snapshot of the sequence as (position, record) entries in
// store order. The snapshot is independent of the store: mutations performed
// after the call are not visible through it, and it can be ranged any number
// of times.
func (s *Store) All() []Entry {
	entries := make([]Entry, len(s.records))
	for i, r := range s.records {
		entries[i] = Entry{Position: i + 1, Record: r}
	}
	return entries
}

// Records returns a snapshot copy of the record values in store order, the
// shape the aggregator and the dataset sink consume.
func (s *Store) Records() []record.Record {
	out := make([]record.Record, len(s.records))
	copy(out, s.records)
	return out
}

// =============================================================================
// ERRORS
// =============================================================================

// NotFoundError reports a positional reference outside [1, length].
type NotFoundError struct {
	Position int
	Length   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %d not found: store holds %d records", e.Position, e.Length)
}

// RowError reports one skipped row from a lenient Load. Row is the 1-based
// index within the input rows.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }
