// Package period defines the calendar-month period type used to scope
// reconciliations, and the financial-year bounds they must fall within.
package period

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidPeriodFormat = errors.New("period must be in YYYY-MM format")

// Period identifies a single calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// Parse parses a period from its wire format, e.g. "2026-04".
func Parse(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, ErrInvalidPeriodFormat
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// FromTime returns the period containing the given instant.
func FromTime(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start returns midnight UTC on the first day of the month.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant of the following month; the period covers
// [Start, End).
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Next returns the immediately following month.
func (p Period) Next() Period {
	return FromTime(p.End())
}

// Compare returns -1, 0 or 1 as p sorts before, equal to, or after other.
func (p Period) Compare(other Period) int {
	switch {
	case p.Year != other.Year:
		if p.Year < other.Year {
			return -1
		}
		return 1
	case p.Month != other.Month:
		if p.Month < other.Month {
			return -1
		}
		return 1
	default:
		return 0
	}
}

func (p Period) Before(other Period) bool {
	return p.Compare(other) < 0
}

func (p Period) After(other Period) bool {
	return p.Compare(other) > 0
}

// Contains reports whether the given date falls inside the month.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// IsZero reports whether the period is the zero value.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// MarshalJSON encodes the period in its YYYY-MM wire format.
func (p Period) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON decodes the YYYY-MM wire format.
func (p *Period) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return ErrInvalidPeriodFormat
	}
	parsed, err := Parse(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
