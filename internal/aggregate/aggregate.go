// Package aggregate buckets record quantities into the three fixed categories
// used by the bar chart. Aggregation is pure: it never mutates its inputs and
// its result depends only on the record slice and the chosen field.
package aggregate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"flowledger/internal/record"
)

// Field selects which record quantity to aggregate.
type Field string

const (
	FieldThroughput        Field = record.FieldThroughput
	FieldAvailableCapacity Field = record.FieldAvailableCapacity
)

// ParseField validates a user-supplied field name.
func ParseField(s string) (Field, error) {
	switch Field(s) {
	case FieldThroughput:
		return FieldThroughput, nil
	case FieldAvailableCapacity:
		return FieldAvailableCapacity, nil
	default:
		return "", &InvalidFieldError{Field: s}
	}
}

// Label returns the human form used in chart titles.
func (f Field) Label() string {
	switch f {
	case FieldThroughput:
		return "Throughput"
	case FieldAvailableCapacity:
		return "Available Capacity"
	default:
		return string(f)
	}
}

// Bucket labels, in display order. Boundary values belong to the lower
// bucket: exactly 20 is Low, exactly 50 is Medium.
const (
	LabelLow    = "Low (0-20)"
	LabelMedium = "Medium (20-50)"
	LabelHigh   = "High (50+)"
)

var (
	lowMax    = decimal.NewFromInt(20)
	mediumMax = decimal.NewFromInt(50)
)

// Bucket is one labeled count.
type Bucket struct {
	Label string
	Count int
}

// BucketSet holds the three category counts. All three buckets are always
// present; renderers depend on the fixed Low, Medium, High order of
// Buckets().
type BucketSet struct {
	Low    int
	Medium int
	High   int
}

// Buckets returns the counts in fixed display order.
func (b BucketSet) Buckets() []Bucket {
	return []Bucket{
		{Label: LabelLow, Count: b.Low},
		{Label: LabelMedium, Count: b.Medium},
		{Label: LabelHigh, Count: b.High},
	}
}

// Total returns the number of records aggregated.
func (b BucketSet) Total() int {
	return b.Low + b.Medium + b.High
}

// Aggregate buckets the chosen field of every record. An unknown field is an
// *InvalidFieldError before any record is touched. A record whose field does
// not parse fails the whole call with that record's position wrapped around
// the *record.ValidationError; no partial BucketSet is returned.
func Aggregate(records []record.Record, field Field) (BucketSet, error) {
	switch field {
	case FieldThroughput, FieldAvailableCapacity:
	default:
		return BucketSet{}, &InvalidFieldError{Field: string(field)}
	}

	var set BucketSet
	for i, r := range records {
		raw := r.Throughput
		if field == FieldAvailableCapacity {
			raw = r.AvailableCapacity
		}
		v, err := record.ParseQuantity(string(field), raw)
		if err != nil {
			return BucketSet{}, fmt.Errorf("record %d: %w", i+1, err)
		}
		switch {
		case v.LessThanOrEqual(lowMax):
			set.Low++
		case v.LessThanOrEqual(mediumMax):
			set.Medium++
		default:
			set.High++
		}
	}
	return set, nil
}

// InvalidFieldError reports an aggregation request for a field that does not
// exist on a record.
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("unknown aggregation field %q (valid: %s, %s)",
		e.Field, FieldThroughput, FieldAvailableCapacity)
}
