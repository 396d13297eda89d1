package record

import (
	"errors"
	"strings"
	"testing"
)

func TestNewTrimsAndKeepsRawText(t *testing.T) {
	r, err := New("  585.6 ", " 248.30\t")
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}
	if r.Throughput != "585.6" {
		t.Fatalf("unexpected throughput text: %q", r.Throughput)
	}
	if r.AvailableCapacity != "248.30" {
		t.Fatalf("unexpected capacity text: %q", r.AvailableCapacity)
	}
}

func TestNewRejectsBadQuantities(t *testing.T) {
	tests := []struct {
		name      string
		thru      string
		cap       string
		wantField string
	}{
		{"non-numeric throughput", "abc", "10", FieldThroughput},
		{"non-numeric capacity", "10", "n/a", FieldAvailableCapacity},
		{"empty throughput", "", "10", FieldThroughput},
		{"negative throughput", "-1", "10", FieldThroughput},
		{"negative capacity", "10", "-0.5", FieldAvailableCapacity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.thru, tt.cap)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Fatalf("expected error on field %s, got %s", tt.wantField, verr.Field)
			}
		})
	}
}

func TestFormattedThreshold(t *testing.T) {
	tests := []struct {
		thru string
		want bool
	}{
		{"0", false},
		{"20", false},
		{"50", false},
		{"50.0001", true},
		{"585.6", true},
		{"garbage", false},
	}
	for _, tt := range tests {
		r := Record{Throughput: tt.thru, AvailableCapacity: "10"}
		if got := r.Formatted(); got != tt.want {
			t.Errorf("Formatted() for throughput %q = %v, want %v", tt.thru, got, tt.want)
		}
	}
}

func TestStringSelectsVariant(t *testing.T) {
	plain := Record{Throughput: "42", AvailableCapacity: "7"}
	want := "Throughput: 42 (1000 m3/d), Available Capacity: 7 (1000 m3/d)"
	if got := plain.String(); got != want {
		t.Fatalf("unexpected plain rendering:\nwant: %s\ngot:  %s", want, got)
	}

	fancy := Record{Throughput: "51", AvailableCapacity: "7"}
	got := fancy.String()
	if !strings.Contains(got, "********** Formatted Pipeline Record **********") {
		t.Fatalf("formatted rendering missing banner: %q", got)
	}
	if !strings.Contains(got, "🚀 Throughput       : 51 (1000 m3/d)") {
		t.Fatalf("formatted rendering missing throughput line: %q", got)
	}
	if !strings.Contains(got, "💧 Available Capacity: 7 (1000 m3/d)") {
		t.Fatalf("formatted rendering missing capacity line: %q", got)
	}
}

func TestParseQuantity(t *testing.T) {
	v, err := ParseQuantity(FieldThroughput, " 12.5 ")
	if err != nil {
		t.Fatalf("unexpected ParseQuantity error: %v", err)
	}
	if v.String() != "12.5" {
		t.Fatalf("unexpected parsed value: %s", v)
	}

	// Sign is a mutation-boundary rule, not a parse rule.
	if _, err := ParseQuantity(FieldThroughput, "-3"); err != nil {
		t.Fatalf("ParseQuantity should accept negative values: %v", err)
	}

	_, err = ParseQuantity(FieldAvailableCapacity, "12,5")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != FieldAvailableCapacity || verr.Value != "12,5" {
		t.Fatalf("error lost field context: %+v", verr)
	}
	if verr.Unwrap() == nil {
		t.Fatalf("expected wrapped parse cause")
	}
}
