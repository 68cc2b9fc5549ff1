package storage

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidPeriod = errors.New("invalid period")

const dateLayout = "2006-01-02"

// DateRange is the half-open interval [From, To). A zero bound is unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// ParsePeriod turns the listing query parameters into a range. Explicit
// start/end dates (YYYY-MM-DD, end inclusive) take precedence over period,
// which is one of week, month, year or all.
func ParsePeriod(period, start, end string, now time.Time) (DateRange, error) {
	var r DateRange
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start != "" || end != "" {
		if start != "" {
			t, err := time.ParseInLocation(dateLayout, start, now.Location())
			if err != nil {
				return DateRange{}, ErrInvalidPeriod
			}
			r.From = t
		}
		if end != "" {
			t, err := time.ParseInLocation(dateLayout, end, now.Location())
			if err != nil {
				return DateRange{}, ErrInvalidPeriod
			}
			r.To = t.AddDate(0, 0, 1)
		}
		if !r.From.IsZero() && !r.To.IsZero() && !r.From.Before(r.To) {
			return DateRange{}, ErrInvalidPeriod
		}
		return r, nil
	}

	switch strings.ToLower(strings.TrimSpace(period)) {
	case "week":
		r.From = now.AddDate(0, 0, -7)
	case "month":
		r.From = now.AddDate(0, 0, -30)
	case "year":
		r.From = now.AddDate(0, 0, -365)
	case "all", "":
	default:
		return DateRange{}, ErrInvalidPeriod
	}
	return r, nil
}
