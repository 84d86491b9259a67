package fundamental

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the layout of report dates.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for a report date that does not match DateLayout.
var ErrInvalidDate = errors.New("invalid report date")

// ReportDate is a report date with its fractional-year companion.
type ReportDate struct {
	Date string  `json:"date"`
	Year float64 `json:"year"`
}

// ParseReportDate parses a "2006-01-02" date.
func ParseReportDate(s string) (ReportDate, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return ReportDate{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	return ReportDate{Date: s, Year: FractionalYear(t)}, nil
}

// MustParseReportDate is ParseReportDate for literals known to be valid.
func MustParseReportDate(s string) ReportDate {
	d, err := ParseReportDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FractionalYear converts t to year + (day of year - 1) / days in year.
func FractionalYear(t time.Time) float64 {
	year := t.Year()
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := end.Sub(start).Hours() / 24
	return float64(year) + float64(t.YearDay()-1)/days
}
