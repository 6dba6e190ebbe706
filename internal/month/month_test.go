package month

import (
	"testing"
	"time"
)

func TestFromDateAllMonths(t *testing.T) {
	want := []string{
		"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember",
	}
	for m := 1; m <= 12; m++ {
		date := time.Date(2024, time.Month(m), 15, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		got, err := FromDate(date)
		if err != nil {
			t.Fatalf("FromDate(%q): %v", date, err)
		}
		if got != want[m-1] {
			t.Errorf("FromDate(%q) = %q, want %q", date, got, want[m-1])
		}
	}
}

func TestFromDateRFC3339(t *testing.T) {
	got, err := FromDate("2024-03-15T00:00:00.000Z")
	if err != nil {
		t.Fatalf("FromDate: %v", err)
	}
	if got != "Maret" {
		t.Errorf("got %q, want %q", got, "Maret")
	}
}

func TestFromDateInvalid(t *testing.T) {
	if _, err := FromDate("15-03-2024"); err == nil {
		t.Error("expected error for non-ISO date")
	}
	if _, err := FromDate(""); err == nil {
		t.Error("expected error for empty date")
	}
}

func TestFormatShortDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-03-15", "15 Mar 2024"},
		{"2024-05-01", "01 Mei 2024"},
		{"2024-08-20T00:00:00.000Z", "20 Agu 2024"},
		{"2024-12-09", "09 Des 2024"},
	}
	for _, tc := range cases {
		if got := FormatShortDate(tc.in); got != tc.want {
			t.Errorf("FormatShortDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatShortDatePassthrough(t *testing.T) {
	// Unparseable stored values render as-is instead of vanishing.
	if got := FormatShortDate("garbage"); got != "garbage" {
		t.Errorf("got %q, want passthrough", got)
	}
}
