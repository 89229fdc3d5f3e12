package domain

import "time"

// DateLayout is the CLI date format.
const DateLayout = "2006-01-02"

// TimestampLayout is the 14-digit MediaWiki timestamp format (YYYYMMDDHHMMSS).
const TimestampLayout = "20060102150405"

// Window is a reporting window of whole days.
// Start is inclusive and End exclusive at day granularity.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window from start and an optional end.
// A zero end defaults to start plus one day.
func NewWindow(start, end time.Time) Window {
	start = truncateDay(start)
	if end.IsZero() {
		end = start.AddDate(0, 0, 1)
	}
	return Window{Start: start, End: truncateDay(end)}
}

// Bounds returns the window edges as MediaWiki timestamps.
func (w Window) Bounds() (string, string) {
	return w.Start.Format(TimestampLayout), w.End.Format(TimestampLayout)
}

// String returns a human readable representation of the window.
func (w Window) String() string {
	return w.Start.Format(DateLayout) + "/" + w.End.Format(DateLayout)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
