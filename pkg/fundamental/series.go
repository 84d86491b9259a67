package fundamental

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/panbanda/fundgrowth/pkg/models"
)

// quarterSpanInYears is the distance between the first and the last of four
// consecutive quarterly report dates.
const quarterSpanInYears = 0.75

// SeriesOptions controls ExtractSeries.
type SeriesOptions struct {
	// TrailingTwelveMonths sums each quarterly value with the three
	// preceding ones.
	TrailingTwelveMonths bool
	// MaxDateErrorInDays is the tolerance on the trailing-twelve-month span.
	MaxDateErrorInDays float64
}

// ExtractSeries returns the points of path present at dates, in the order
// of dates. Dates whose value is missing are skipped.
//
// With TrailingTwelveMonths, dates must be most recent first; a point needs
// the date itself and the three following dates, all present and spanning no
// more than three quarters plus the date tolerance.
func ExtractSeries(l Lookup, path FieldPath, dates []ReportDate, opts SeriesOptions) []models.SamplePoint {
	points := make([]models.SamplePoint, 0, len(dates))
	tol := opts.MaxDateErrorInDays / models.DaysPerYear

	for i, d := range dates {
		if !opts.TrailingTwelveMonths {
			if v, ok := l.Lookup(path, d.Date).Get(); ok {
				points = append(points, models.SamplePoint{Date: d.Date, Year: d.Year, Value: v})
			}
			continue
		}

		if i+3 >= len(dates) {
			break
		}
		if math.Abs(d.Year-dates[i+3].Year) > quarterSpanInYears+tol {
			continue
		}
		sum, ok := 0.0, true
		for _, q := range dates[i : i+4] {
			v, present := l.Lookup(path, q.Date).Get()
			if !present {
				ok = false
				break
			}
			sum += v
		}
		if ok {
			points = append(points, models.SamplePoint{Date: d.Date, Year: d.Year, Value: sum})
		}
	}
	return points
}

// Fingerprint returns a stable 64-bit digest of a series, used to key
// cached results.
func Fingerprint(points []models.SamplePoint) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, p := range points {
		_, _ = d.WriteString(p.Date)
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p.Year))
		_, _ = d.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p.Value))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
