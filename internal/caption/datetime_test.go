package caption

import (
	"testing"
	"time"
)

func TestParseDateString(t *testing.T) {
	now := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"16th February 2024", time.Date(2024, time.February, 16, 0, 0, 0, 0, time.UTC), true},
		{"16 February, 2024", time.Date(2024, time.February, 16, 0, 0, 0, 0, time.UTC), true},
		{"2nd March", time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC), true},
		{"3 Jun 2024", time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC), true},
		{"February 16, 2024", time.Date(2024, time.February, 16, 0, 0, 0, 0, time.UTC), true},
		{"16/2/2024", time.Date(2024, time.February, 16, 0, 0, 0, 0, time.UTC), true},
		{"2024-2-16", time.Date(2024, time.February, 16, 0, 0, 0, 0, time.UTC), true},
		{"not a date", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tc := range tests {
		got, ok := parseDateString(tc.raw, now)
		if ok != tc.ok {
			t.Errorf("parseDateString(%q) ok = %v, want %v", tc.raw, ok, tc.ok)
			continue
		}
		if ok && !got.Equal(tc.want) {
			t.Errorf("parseDateString(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestCombineDateTime(t *testing.T) {
	date := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		timeStr    string
		wantHour   int
		wantMinute int
	}{
		{"6 PM", 18, 0},
		{"6 pm", 18, 0},
		{"10:30 AM", 10, 30},
		{"14:00", 14, 0},
		{"7.30 PM", 19, 30},
		{"gibberish", 10, 0},
		{"", 10, 0},
	}
	for _, tc := range tests {
		got := combineDateTime(date, tc.timeStr, 10)
		if got.Hour() != tc.wantHour || got.Minute() != tc.wantMinute {
			t.Errorf("combineDateTime(%q) = %02d:%02d, want %02d:%02d",
				tc.timeStr, got.Hour(), got.Minute(), tc.wantHour, tc.wantMinute)
		}
	}
}

func TestExtractTimeFromText(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"doors open at 10:30 AM sharp", "10:30 AM"},
		{"screening starts 19:45 tonight", "19:45"},
		{"see you at 6 PM!", "6 PM"},
		{"no clock here", ""},
	}
	for _, tc := range tests {
		if got := extractTimeFromText(tc.text); got != tc.want {
			t.Errorf("extractTimeFromText(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}
