package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"flowledger/internal/record"
)

func TestAppendKeepsOrder(t *testing.T) {
	s := New()
	for i := 1; i <= 5; i++ {
		if _, err := s.Append(fmt.Sprintf("%d", i*10), "1"); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}
	if s.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", s.Len())
	}
	for _, e := range s.All() {
		want := fmt.Sprintf("%d", e.Position*10)
		if e.Record.Throughput != want {
			t.Fatalf("position %d throughput = %s, want %s", e.Position, e.Record.Throughput, want)
		}
	}
}

func TestAppendRejectsInvalidLeavingStoreUnchanged(t *testing.T) {
	s := New()
	s.Append("10", "1")
	before := s.Records()

	_, err := s.Append("not-a-number", "1")
	var verr *record.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	_, err = s.Append("10", "-2")
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for negative capacity, got %v", err)
	}

	if diff := cmp.Diff(before, s.Records()); diff != "" {
		t.Fatalf("store mutated by failed Append (-before +after):\n%s", diff)
	}
}

func TestReadBounds(t *testing.T) {
	s := New()
	s.Append("10", "1")

	if _, err := s.Read(1); err != nil {
		t.Fatalf("Read(1) failed: %v", err)
	}
	for _, pos := range []int{0, -1, 2, 100} {
		_, err := s.Read(pos)
		var nerr *NotFoundError
		if !errors.As(err, &nerr) {
			t.Fatalf("Read(%d): expected NotFoundError, got %v", pos, err)
		}
		if nerr.Position != pos || nerr.Length != 1 {
			t.Fatalf("Read(%d): error context %+v", pos, nerr)
		}
	}
}

func TestUpdateRederivesVariant(t *testing.T) {
	s := New()
	s.Append("10", "1")

	r, err := s.Update(1, "60", "2")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !r.Formatted() {
		t.Fatalf("updated record with throughput 60 should be formatted")
	}

	r, err = s.Update(1, "50", "2")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if r.Formatted() {
		t.Fatalf("updated record with throughput 50 should be plain")
	}
}

func TestUpdateFailuresLeaveStoreUnchanged(t *testing.T) {
	s := New()
	s.Append("10", "1")
	before := s.Records()

	// Bounds are checked before values: bad position plus bad values is
	// still NotFound.
	_, err := s.Update(9, "bad", "bad")
	var nerr *NotFoundError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	_, err = s.Update(1, "bad", "1")
	var verr *record.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	if diff := cmp.Diff(before, s.Records()); diff != "" {
		t.Fatalf("store mutated by failed Update (-before +after):\n%s", diff)
	}
}

func TestDeleteCompacts(t *testing.T) {
	s := New()
	for _, v := range []string{"10", "20", "30", "40"} {
		s.Append(v, "1")
	}

	removed, err := s.Delete(2)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if removed.Throughput != "20" {
		t.Fatalf("Delete(2) removed %s, want 20", removed.Throughput)
	}
	if s.Len() != 3 {
		t.Fatalf("Len() after delete = %d, want 3", s.Len())
	}

	var got []string
	for _, e := range s.All() {
		got = append(got, e.Record.Throughput)
	}
	if diff := cmp.Diff([]string{"10", "30", "40"}, got); diff != "" {
		t.Fatalf("unexpected order after delete (-want +got):\n%s", diff)
	}

	// The deleted record is unreachable at every now-valid position.
	for pos := 1; pos <= s.Len(); pos++ {
		r, err := s.Read(pos)
		if err != nil {
			t.Fatalf("Read(%d) failed: %v", pos, err)
		}
		if r.Throughput == "20" {
			t.Fatalf("deleted record still reachable at position %d", pos)
		}
	}

	_, err = s.Delete(4)
	var nerr *NotFoundError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NotFoundError after compaction, got %v", err)
	}
}

func TestLoadLenientWithRowErrors(t *testing.T) {
	s := New()
	n, rowErrs := s.Load([]Row{
		{"10", "5"},
		{"not-a-number", "5"},
		{"20", "90"},
	})
	if n != 2 || s.Len() != 2 {
		t.Fatalf("loaded %d records (Len %d), want 2", n, s.Len())
	}
	if len(rowErrs) != 1 {
		t.Fatalf("expected 1 row error, got %d: %v", len(rowErrs), rowErrs)
	}
	if rowErrs[0].Row != 2 {
		t.Fatalf("row error at row %d, want 2", rowErrs[0].Row)
	}
	var verr *record.ValidationError
	if !errors.As(rowErrs[0], &verr) {
		t.Fatalf("row error should wrap ValidationError, got %v", rowErrs[0].Err)
	}
}

func TestLoadCapsAtMaxRecords(t *testing.T) {
	rows := make([]Row, MaxRecords+20)
	for i := range rows {
		rows[i] = Row{fmt.Sprintf("%d", i), "1"}
	}
	s := New()
	n, rowErrs := s.Load(rows)
	if n != MaxRecords {
		t.Fatalf("loaded %d records, want cap %d", n, MaxRecords)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("truncation is silent, got errors: %v", rowErrs)
	}
	// First MaxRecords rows survive, in order.
	last, err := s.Read(MaxRecords)
	if err != nil {
		t.Fatalf("Read(%d) failed: %v", MaxRecords, err)
	}
	if last.Throughput != fmt.Sprintf("%d", MaxRecords-1) {
		t.Fatalf("unexpected final record: %s", last.Throughput)
	}
}

func TestLoadReplacesWorkingSet(t *testing.T) {
	s := New()
	s.Append("99", "99")
	n, _ := s.Load([]Row{{"1", "2"}})
	if n != 1 || s.Len() != 1 {
		t.Fatalf("Load should replace prior records, Len = %d", s.Len())
	}
	r, _ := s.Read(1)
	if r.Throughput != "1" {
		t.Fatalf("old record survived reload: %s", r.Throughput)
	}
}

func TestAllSnapshotIsolation(t *testing.T) {
	s := New()
	s.Append("10", "1")
	s.Append("20", "2")

	snapshot := s.All()
	s.Delete(1)
	s.Append("30", "3")

	if len(snapshot) != 2 {
		t.Fatalf("snapshot length changed after mutation: %d", len(snapshot))
	}
	if snapshot[0].Record.Throughput != "10" || snapshot[1].Record.Throughput != "20" {
		t.Fatalf("snapshot observed mutation: %+v", snapshot)
	}

	// Restartable: ranging twice sees identical entries.
	first := fmt.Sprint(snapshot)
	second := fmt.Sprint(snapshot)
	if first != second {
		t.Fatalf("snapshot not stable across iterations")
	}
}
