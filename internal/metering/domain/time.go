package metering

import "time"

// DateRange is an inclusive calendar day range.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range with both bounds truncated to midnight UTC.
func NewDateRange(start, end time.Time) (DateRange, error) {
	if start.IsZero() || end.IsZero() {
		return DateRange{}, ErrInvalidDateRange
	}
	start = DayStart(start)
	end = DayStart(end)
	if end.Before(start) {
		return DateRange{}, ErrInvalidDateRange
	}
	return DateRange{Start: start, End: end}, nil
}

// Days returns the inclusive day count.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Contains reports whether a date falls within the range.
func (r DateRange) Contains(date time.Time) bool {
	date = DayStart(date)
	return !date.Before(r.Start) && !date.After(r.End)
}

// IsZero reports whether the range is unset.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// DayStart truncates a timestamp to midnight UTC.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
