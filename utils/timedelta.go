package utils

import "time"

// Delta is a calendar-aware elapsed-time breakdown between two moments.
// Hours/Minutes/Seconds are only populated for sub-day precision inputs and
// are omitted from JSON otherwise.
type Delta struct {
	Years   int  `json:"years"`
	Months  int  `json:"months"`
	Days    int  `json:"days"`
	Hours   *int `json:"hours,omitempty"`
	Minutes *int `json:"minutes,omitempty"`
	Seconds *int `json:"seconds,omitempty"`
}

// DateDelta computes the difference between two calendar dates using
// calendar-field subtraction with borrowing, not a day-count divide.
// Feb 1 to Mar 3 is 0 years, 1 month, 2 days. Time-of-day is ignored;
// `to` must not precede `from`.
func DateDelta(from, to time.Time) Delta {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	anchor := addMonthsClamped(from, months)
	// the clamped anchor may overshoot when `to` sits late in a short
	// month; back off until it doesn't
	for midnightUTC(anchor).After(midnightUTC(to)) {
		months--
		anchor = addMonthsClamped(from, months)
	}
	days := int(midnightUTC(to).Sub(midnightUTC(anchor)).Hours() / 24)

	return Delta{Years: months / 12, Months: months % 12, Days: days}
}

// TimeDelta computes the difference between two points in time, including
// hours, minutes and seconds. The clock components borrow from the day count
// the same way the day count borrows from months.
func TimeDelta(from, to time.Time) Delta {
	toDate := to
	fromClock := from.Hour()*3600 + from.Minute()*60 + from.Second()
	toClock := to.Hour()*3600 + to.Minute()*60 + to.Second()
	if toClock < fromClock {
		toClock += 24 * 3600
		toDate = toDate.AddDate(0, 0, -1)
	}

	delta := DateDelta(from, toDate)
	clock := toClock - fromClock
	hours := clock / 3600
	minutes := (clock % 3600) / 60
	seconds := clock % 60
	delta.Hours = &hours
	delta.Minutes = &minutes
	delta.Seconds = &seconds
	return delta
}

// DateDeltaToNow returns the elapsed time since a stored calendar date, or
// nil when the date is unset.
func DateDeltaToNow(d *time.Time) *Delta {
	if d == nil {
		return nil
	}
	delta := DateDelta(*d, time.Now())
	return &delta
}

// addMonthsClamped advances t by the given number of months, clamping the day
// to the target month's length (Jan 31 + 1 month = Feb 28/29), unlike
// time.AddDate which rolls over.
func addMonthsClamped(t time.Time, months int) time.Time {
	year := t.Year()
	month := int(t.Month()) - 1 + months
	year += month / 12
	month %= 12
	if month < 0 {
		month += 12
		year--
	}
	day := t.Day()
	if dim := daysInMonth(year, time.Month(month+1)); day > dim {
		day = dim
	}
	return time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// day zero of the next month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
