// Package month renders calendar dates with Indonesian month names.
//
// The long form ("Maret") is the authoritative derived Month field stored on
// every record; the short form ("02 Mar 2024") is display-only and used by
// the table, the search filter, and the spreadsheet export.
package month

import (
	"fmt"
	"time"
)

var longNames = [12]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var shortNames = [12]string{
	"Jan", "Feb", "Mar", "Apr", "Mei", "Jun",
	"Jul", "Agu", "Sep", "Okt", "Nov", "Des",
}

// ParseDate accepts an RFC3339 timestamp (what the browser form submits) or
// a bare YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Long returns the Indonesian long month name for t.
func Long(t time.Time) string {
	return longNames[t.Month()-1]
}

// FromDate derives the Indonesian long month name from a raw date string.
func FromDate(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return Long(t), nil
}

// FormatShort renders t as "02 Jan 2006" with Indonesian short month names.
func FormatShort(t time.Time) string {
	return fmt.Sprintf("%02d %s %d", t.Day(), shortNames[t.Month()-1], t.Year())
}

// FormatShortDate is FormatShort over a raw date string. The input is
// returned unchanged when it does not parse, so unparseable stored dates
// still render rather than disappearing from the table.
func FormatShortDate(s string) string {
	t, err := ParseDate(s)
	if err != nil {
		return s
	}
	return FormatShort(t)
}
