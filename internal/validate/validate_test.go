package validate

import (
	"strings"
	"testing"
)

func TestLength(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		max     int
		want    string
		wantErr bool
	}{
		{name: "within limit", input: "hello", max: 10, want: "hello"},
		{name: "trims whitespace", input: "  hello  ", max: 10, want: "hello"},
		{name: "exactly at limit", input: "12345", max: 5, want: "12345"},
		{name: "over limit", input: strings.Repeat("x", 101), max: 100, wantErr: true},
		{name: "over limit before trim is fine", input: "  1234  ", max: 4, want: "1234"},
		{name: "multibyte counts characters not bytes", input: strings.Repeat("é", 60), max: 100, want: strings.Repeat("é", 60)},
		{name: "multibyte over limit", input: strings.Repeat("é", 101), max: 100, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Length("Title", tt.input, tt.max)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "at most") {
					t.Errorf("unexpected message: %s", err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLengthErrorIncludesObservedLength(t *testing.T) {
	_, err := Length("Title", strings.Repeat("x", 130), 100)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "(got 130)") {
		t.Errorf("message should report the observed length: %s", err.Error())
	}

	// The reported count is characters, even when the input is multibyte.
	_, err = Length("Title", strings.Repeat("é", 130), 100)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "(got 130)") {
		t.Errorf("message should count characters, not bytes: %s", err.Error())
	}
}

func TestRequired(t *testing.T) {
	if _, err := Required("Title", "   "); err == nil {
		t.Error("whitespace-only value should be rejected")
	}
	got, err := Required("Title", " ok ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q, want %q", got, "ok")
	}
}

func TestHours(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "empty means zero", input: "", want: 0},
		{name: "integer", input: "8", want: 8},
		{name: "fractional", input: "2.5", want: 2.5},
		{name: "lower bound", input: "0", want: 0},
		{name: "upper bound", input: "999", want: 999},
		{name: "above range", input: "1000", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Hours(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDate(t *testing.T) {
	if d, ok := Date("2025-06-15"); !ok || d == nil || d.Format("2006-01-02") != "2025-06-15" {
		t.Errorf("valid date should parse, got %v ok=%v", d, ok)
	}
	if d, ok := Date(""); !ok || d != nil {
		t.Errorf("empty date is unset, not a failure, got %v ok=%v", d, ok)
	}
	// Garbage reports ok=false so callers can apply the lenient fallback.
	if d, ok := Date("15/06/2025"); ok || d != nil {
		t.Errorf("unparsable date should report ok=false, got %v ok=%v", d, ok)
	}
}
