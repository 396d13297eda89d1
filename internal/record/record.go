// Package record defines the pipeline measurement value shared across
// flowledger packages. A Record keeps its two quantities as the raw text read
// from the dataset so that saving writes back exactly what was loaded; numeric
// interpretation happens through exact decimal parsing at validation and
// threshold-check time, never through binary floats.
package record

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Field names used in validation errors and aggregation selectors.
const (
	FieldThroughput        = "throughput"
	FieldAvailableCapacity = "available_capacity"
)

// formattedAt is the throughput threshold above which a record renders in its
// formatted variant. The comparison is strict: exactly 50 stays plain.
var formattedAt = decimal.NewFromInt(50)

// Record is one pipeline measurement pair. Both fields hold the raw text form
// of a decimal quantity in 1000 m3/d. Construct through New to guarantee both
// parse as non-negative numbers; the zero value renders plain and fails
// quantity parsing.
type Record struct {
	Throughput        string
	AvailableCapacity string
}

// New validates both quantities and returns the Record with trimmed field
// text. Each field must parse as a non-negative decimal; the first offending
// field is reported as a *ValidationError and no Record is produced.
func New(throughput, availableCapacity string) (Record, error) {
	t := strings.TrimSpace(throughput)
	c := strings.TrimSpace(availableCapacity)
	if _, err := parseNonNegative(FieldThroughput, t); err != nil {
		return Record{}, err
	}
	if _, err := parseNonNegative(FieldAvailableCapacity, c); err != nil {
		return Record{}, err
	}
	return Record{Throughput: t, AvailableCapacity: c}, nil
}

// Formatted reports the record's display variant: true when throughput
// exceeds 50. The variant is derived from current field state on every call
// and is never cached. Unparseable throughput renders plain rather than
// failing; display is not a validation boundary.
func (r Record) Formatted() bool {
	v, err := decimal.NewFromString(strings.TrimSpace(r.Throughput))
	if err != nil {
		return false
	}
	return v.GreaterThan(formattedAt)
}

// String renders the record in its derived display variant.
func (r Record) String() string {
	if r.Formatted() {
		return r.Fancy()
	}
	return r.Plain()
}

// Plain renders the single-line form used for ordinary records.
func (r Record) Plain() string {
	return fmt.Sprintf("Throughput: %s (1000 m3/d), Available Capacity: %s (1000 m3/d)",
		r.Throughput, r.AvailableCapacity)
}

// Fancy renders the boxed multi-line form used for high-throughput records.
func (r Record) Fancy() string {
	return fmt.Sprintf(
		"\n********** Formatted Pipeline Record **********\n"+
			"🚀 Throughput       : %s (1000 m3/d)\n"+
			"💧 Available Capacity: %s (1000 m3/d)\n"+
			"***********************************************",
		r.Throughput, r.AvailableCapacity)
}

// =============================================================================
// QUANTITY PARSING
// =============================================================================

// ParseQuantity parses a raw field value as an exact decimal quantity. The
// field name is carried into the error so callers can report which column was
// bad. Sign is not checked here; mutation boundaries layer that on via New.
func ParseQuantity(field, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, &ValidationError{Field: field, Value: raw, Err: err}
	}
	return v, nil
}

func parseNonNegative(field, raw string) (decimal.Decimal, error) {
	v, err := ParseQuantity(field, raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if v.IsNegative() {
		return decimal.Decimal{}, &ValidationError{Field: field, Value: raw, Err: errNegativeQuantity}
	}
	return v, nil
}

// =============================================================================
// ERRORS
// =============================================================================

// errNegativeQuantity is the wrapped cause when a quantity parses but is
// below zero.
var errNegativeQuantity = fmt.Errorf("quantity is negative")

// ValidationError reports a field value that could not be accepted as a
// numeric quantity. Match with errors.As; Unwrap exposes the parse cause.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
