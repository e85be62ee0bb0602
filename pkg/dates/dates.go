// Package dates models civil calendar days and inclusive day ranges.
package dates

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// Layout is the ISO calendar day format used on every boundary.
const Layout = "2006-01-02"

var (
	ErrEndBeforeStart = errors.New("end date is before start date")
	ErrRangeTooLong   = errors.New("date range is too long")
)

var weekConfig = &now.Config{
	WeekStartDay: time.Monday,
	TimeLocation: time.UTC,
}

// Date is a calendar day with no time component, pinned to UTC midnight.
type Date struct {
	t time.Time
}

// New builds a Date from its parts.
func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime drops the clock portion of t, keeping its calendar day.
func FromTime(t time.Time) Date {
	return New(t.Year(), t.Month(), t.Day())
}

// Today returns the current UTC calendar day.
func Today() Date {
	return FromTime(time.Now().UTC())
}

// Parse reads an ISO calendar day (YYYY-MM-DD).
func Parse(value string) (Date, error) {
	t, err := time.ParseInLocation(Layout, value, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected %s", value, Layout)
	}
	return Date{t: t}, nil
}

func (d Date) Time() time.Time        { return d.t }
func (d Date) IsZero() bool           { return d.t.IsZero() }
func (d Date) String() string         { return d.t.Format(Layout) }
func (d Date) AddDays(n int) Date     { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Range is an inclusive span of calendar days.
type Range struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// WeekOf returns the Monday-first week containing d.
func WeekOf(d Date) Range {
	start := FromTime(weekConfig.With(d.t).BeginningOfWeek())
	return Range{Start: start, End: start.AddDays(6)}
}

// Validate rejects inverted ranges and, when maxDays > 0, ranges spanning
// more than maxDays days.
func (r Range) Validate(maxDays int) error {
	if r.End.Before(r.Start) {
		return ErrEndBeforeStart
	}
	if maxDays > 0 && r.Len() > maxDays {
		return fmt.Errorf("%w: %d days exceeds %d", ErrRangeTooLong, r.Len(), maxDays)
	}
	return nil
}

// Contains reports whether d falls within the range, bounds included.
func (r Range) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Len is the number of days covered, or zero for an inverted range.
func (r Range) Len() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return int(r.End.t.Sub(r.Start.t)/(24*time.Hour)) + 1
}

// Days lists every day in the range in order.
func (r Range) Days() []Date {
	n := r.Len()
	out := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.Start.AddDays(i))
	}
	return out
}

func (r Range) String() string {
	return r.Start.String() + " – " + r.End.String()
}
