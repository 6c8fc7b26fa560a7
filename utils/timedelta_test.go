package utils

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateDelta(t *testing.T) {
	tests := []struct {
		name                string
		from, to            time.Time
		years, months, days int
	}{
		{"same day", date(2020, 5, 1), date(2020, 5, 1), 0, 0, 0},
		{"one day", date(2020, 5, 1), date(2020, 5, 2), 0, 0, 1},
		{"borrow days across month", date(2023, 2, 1), date(2023, 3, 3), 0, 1, 2},
		{"borrow months across year", date(2022, 11, 15), date(2023, 1, 10), 0, 1, 26},
		{"exact years", date(1964, 1, 1), date(2024, 1, 1), 60, 0, 0},
		{"day before anniversary", date(1990, 6, 15), date(2024, 6, 14), 33, 11, 30},
		{"month-end clamp", date(2024, 1, 31), date(2024, 3, 1), 0, 1, 1},
		{"month-end to short february", date(2023, 1, 31), date(2023, 2, 28), 0, 1, 0},
		{"month-end to thirty-day month", date(2023, 3, 31), date(2023, 4, 30), 0, 1, 0},
		{"month-end to leap february", date(2024, 1, 31), date(2024, 2, 29), 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateDelta(tt.from, tt.to)
			if got.Years != tt.years || got.Months != tt.months || got.Days != tt.days {
				t.Fatalf("DateDelta(%v, %v) = %dy %dm %dd, want %dy %dm %dd",
					tt.from, tt.to, got.Years, got.Months, got.Days, tt.years, tt.months, tt.days)
			}
			if got.Hours != nil || got.Minutes != nil || got.Seconds != nil {
				t.Fatalf("DateDelta must not populate clock components")
			}
		})
	}
}

func TestDateDeltaMatchesCalendarWalk(t *testing.T) {
	// cross-check against an independent computation: adding the delta back
	// to the reference date must not overshoot the target
	from := date(1964, 1, 1)
	to := date(2026, 8, 29)
	got := DateDelta(from, to)
	if got.Years <= 0 || got.Months < 0 || got.Days < 0 {
		t.Fatalf("expected positive components, got %+v", got)
	}
	rebuilt := from.AddDate(got.Years, got.Months, got.Days)
	if !rebuilt.Equal(to) {
		t.Fatalf("adding delta back gives %v, want %v", rebuilt, to)
	}
}

func TestTimeDelta(t *testing.T) {
	from := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)
	to := time.Date(2023, 7, 16, 22, 45, 30, 0, time.UTC)

	got := TimeDelta(from, to)
	if got.Years != 3 || got.Months != 6 || got.Days != 15 {
		t.Fatalf("date part = %dy %dm %dd, want 3y 6m 15d", got.Years, got.Months, got.Days)
	}
	if got.Hours == nil || got.Minutes == nil || got.Seconds == nil {
		t.Fatal("TimeDelta must populate clock components")
	}
	if *got.Hours != 10 || *got.Minutes != 45 || *got.Seconds != 30 {
		t.Fatalf("clock part = %dh %dm %ds, want 10h 45m 30s", *got.Hours, *got.Minutes, *got.Seconds)
	}
}

func TestTimeDeltaBorrowsFromDays(t *testing.T) {
	from := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)
	to := time.Date(2024, 3, 11, 1, 0, 0, 0, time.UTC)

	got := TimeDelta(from, to)
	if got.Years != 0 || got.Months != 0 || got.Days != 0 {
		t.Fatalf("date part = %dy %dm %dd, want zero", got.Years, got.Months, got.Days)
	}
	if *got.Hours != 1 || *got.Minutes != 30 || *got.Seconds != 0 {
		t.Fatalf("clock part = %dh %dm %ds, want 1h 30m 0s", *got.Hours, *got.Minutes, *got.Seconds)
	}
}

func TestDateDeltaToNowNil(t *testing.T) {
	if got := DateDeltaToNow(nil); got != nil {
		t.Fatalf("expected nil for unset date, got %+v", got)
	}
	past := date(2000, 1, 1)
	got := DateDeltaToNow(&past)
	if got == nil || got.Years < 24 {
		t.Fatalf("expected at least 24 years since 2000-01-01, got %+v", got)
	}
}
