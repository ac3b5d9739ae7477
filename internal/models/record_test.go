package models

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  string
		want   time.Time
		wantOk bool
	}{
		{
			name:   "rfc3339 with offset",
			value:  "2025-06-16T10:30:00+02:00",
			want:   time.Date(2025, 6, 16, 10, 30, 0, 0, time.FixedZone("", 2*3600)),
			wantOk: true,
		},
		{
			name:   "rfc3339 utc",
			value:  "2025-06-16T10:30:00Z",
			want:   time.Date(2025, 6, 16, 10, 30, 0, 0, time.UTC),
			wantOk: true,
		},
		{
			name:   "rfc3339 nano",
			value:  "2025-06-16T10:30:00.123456789Z",
			want:   time.Date(2025, 6, 16, 10, 30, 0, 123456789, time.UTC),
			wantOk: true,
		},
		{
			name:   "naive datetime",
			value:  "2025-06-16T10:30:00",
			want:   time.Date(2025, 6, 16, 10, 30, 0, 0, time.UTC),
			wantOk: true,
		},
		{
			name:   "bare date",
			value:  "2025-06-16",
			want:   time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
			wantOk: true,
		},
		{
			name:   "empty",
			value:  "",
			wantOk: false,
		},
		{
			name:   "garbage",
			value:  "yesterday-ish",
			wantOk: false,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseTimestamp(test.value)
			if ok != test.wantOk {
				t.Fatalf("ParseTimestamp(%q) ok = %v, want %v", test.value, ok, test.wantOk)
			}
			if ok && !got.Equal(test.want) {
				t.Fatalf("ParseTimestamp(%q) = %v, want %v", test.value, got, test.want)
			}
		})
	}
}

func TestRecordString(t *testing.T) {
	t.Parallel()

	record := Record{"substance": "bcd", "amount": 2.5, "flag": true}

	if got := record.String("substance"); got != "bcd" {
		t.Fatalf("String(substance) = %q, want %q", got, "bcd")
	}
	if got := record.String("amount"); got != "" {
		t.Fatalf("String(amount) on a float = %q, want empty", got)
	}
	if got := record.String("missing"); got != "" {
		t.Fatalf("String(missing) = %q, want empty", got)
	}
}

func TestRecordTimestamp(t *testing.T) {
	t.Parallel()

	record := Record{"timestamp": "2025-06-16T10:30:00Z"}
	got, ok := record.Timestamp()
	if !ok {
		t.Fatal("Timestamp() ok = false, want true")
	}
	want := time.Date(2025, 6, 16, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Timestamp() = %v, want %v", got, want)
	}

	if _, ok := (Record{}).Timestamp(); ok {
		t.Fatal("Timestamp() on a record without the field should not parse")
	}
}

func TestNewSupplementRecordDefaults(t *testing.T) {
	t.Parallel()

	record := NewSupplementRecord("magnesium", "400", "mg", "", "", "", "")

	if got := record.String("frequency"); got != "daily" {
		t.Fatalf("frequency = %q, want %q", got, "daily")
	}
	if got := record.String("time_of_day"); got != "morning" {
		t.Fatalf("time_of_day = %q, want %q", got, "morning")
	}
	if got := record.String("category"); got != CategorySupplement {
		t.Fatalf("category = %q, want %q", got, CategorySupplement)
	}
}

func TestNewIntakeRecordFillsTimestamp(t *testing.T) {
	t.Parallel()

	record := NewIntakeRecord("caffeine", "80", "mg", "", "", "")

	if got := record.String("category"); got != CategorySupplement {
		t.Fatalf("category = %q, want %q", got, CategorySupplement)
	}
	if _, ok := record.Timestamp(); !ok {
		t.Fatal("expected a generated timestamp to parse")
	}
}

func TestNewControlledUseRecordCarriesFlags(t *testing.T) {
	t.Parallel()

	record := NewControlledUseRecord("bcd", "1", "unit", true, false, true, "2h cooldown", "2025-06-16T10:00:00Z")

	if got := record.String("category"); got != CategoryControlledUse {
		t.Fatalf("category = %q, want %q", got, CategoryControlledUse)
	}
	if got, _ := record["work_hours_violation"].(bool); !got {
		t.Fatal("work_hours_violation = false, want true")
	}
	if got, _ := record["cooldown_violation"].(bool); got {
		t.Fatal("cooldown_violation = true, want false")
	}
	if got, _ := record["daily_ceiling_exceeded"].(bool); !got {
		t.Fatal("daily_ceiling_exceeded = false, want true")
	}
}
