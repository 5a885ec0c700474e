package booking

import (
	"fmt"
	"sort"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

const minutesPerDay = 24 * 60

// Range is a half-open [Start, End) interval in minutes since midnight.
type Range struct {
	Start int
	End   int
}

func (r Range) Empty() bool { return r.End <= r.Start }

// CalendarInput holds everything the slot walk needs for one barber/date.
type CalendarInput struct {
	Working  []Range
	Breaks   []Range
	Busy     []Range
	Duration int
	Step     int
	// NotBefore drops candidate starts earlier than this minute (today's slots).
	NotBefore int
}

// ParseClock parses "15:04". "24:00" is accepted as end of day.
func ParseClock(hm string) (int, error) {
	if hm == "24:00" {
		return minutesPerDay, nil
	}
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", hm, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func FormatClock(m int) string {
	if m >= minutesPerDay {
		return "24:00"
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ClockOf returns the wall-clock minutes since midnight of t on day, read in
// day's location. Instants on a later day clamp to 24:00 so a booking ending
// at midnight stays in its day; earlier instants clamp to 00:00.
func ClockOf(t, day time.Time) int {
	loc := day.Location()
	y, m, d := day.Date()
	if t.Before(time.Date(y, m, d, 0, 0, 0, 0, loc)) {
		return 0
	}

	t = t.In(loc)
	if ty, tm, td := t.Date(); ty != y || tm != m || td != d {
		return minutesPerDay
	}
	h, mins, _ := t.Clock()
	return h*60 + mins
}

// parseRange parses a start/end pair. An end of "00:00" after a later start
// means midnight.
func parseRange(start, end string) (Range, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Range{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Range{}, err
	}
	if e == 0 && s > 0 {
		e = minutesPerDay
	}
	return Range{Start: s, End: e}, nil
}

// WorkingRanges converts the enabled template rows into ranges.
func WorkingRanges(rows []models.BarberAvailability) ([]Range, error) {
	out := make([]Range, 0, len(rows))
	for _, row := range rows {
		if !row.IsAvailable {
			continue
		}
		r, err := parseRange(row.StartTime, row.EndTime)
		if err != nil {
			return nil, err
		}
		if !r.Empty() {
			out = append(out, r)
		}
	}
	return out, nil
}

// BreakAppliesOn reports whether br excludes time on date.
func BreakAppliesOn(br models.BarberBreak, date time.Time) bool {
	switch {
	case br.BreakDate != nil:
		y1, m1, d1 := br.BreakDate.Date()
		y2, m2, d2 := date.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case br.DayOfWeek != nil:
		return *br.DayOfWeek == int(date.Weekday())
	default:
		return true
	}
}

func BreakRanges(breaks []models.BarberBreak, date time.Time) ([]Range, error) {
	out := make([]Range, 0, len(breaks))
	for _, br := range breaks {
		if !BreakAppliesOn(br, date) {
			continue
		}
		r, err := parseRange(br.StartTime, br.EndTime)
		if err != nil {
			return nil, err
		}
		if !r.Empty() {
			out = append(out, r)
		}
	}
	return out, nil
}

// BusyRanges converts the blocking bookings of day into ranges.
func BusyRanges(bookings []models.Booking, day time.Time) []Range {
	out := make([]Range, 0, len(bookings))
	for _, b := range bookings {
		if !BlocksSlot(Status(b.Status)) {
			continue
		}
		r := Range{Start: ClockOf(b.StartTime, day), End: ClockOf(b.EndTime, day)}
		if !r.Empty() {
			out = append(out, r)
		}
	}
	return out
}

// ComputeOpenSlots returns every grid-aligned start s, ascending, such that
// [s, s+Duration) lies inside one free range of the day.
func ComputeOpenSlots(in CalendarInput) []int {
	if in.Duration <= 0 || in.Step <= 0 {
		return []int{}
	}

	free := union(in.Working)
	free = subtract(free, in.Breaks)
	free = subtract(free, in.Busy)

	slots := []int{}
	for _, r := range free {
		first := r.Start
		if first < in.NotBefore {
			first = in.NotBefore
		}
		s := ceilTo(first, in.Step)
		for ; s+in.Duration <= r.End && s+in.Duration <= minutesPerDay; s += in.Step {
			slots = append(slots, s)
		}
	}
	return slots
}

func ceilTo(m, step int) int {
	if rem := m % step; rem != 0 {
		return m + step - rem
	}
	return m
}

// union sorts and merges ranges; touching ranges merge into one.
func union(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

func subtract(free []Range, blocked []Range) []Range {
	for _, b := range blocked {
		next := make([]Range, 0, len(free)+1)
		for _, f := range free {
			if b.End <= f.Start || b.Start >= f.End {
				next = append(next, f)
				continue
			}
			if b.Start > f.Start {
				next = append(next, Range{Start: f.Start, End: b.Start})
			}
			if b.End < f.End {
				next = append(next, Range{Start: b.End, End: f.End})
			}
		}
		free = next
	}
	return free
}

// FitsSchedule reports whether r lies inside the working time left after
// removing breaks.
func FitsSchedule(working, breaks []Range, r Range) bool {
	if r.Empty() || r.End > minutesPerDay {
		return false
	}
	for _, free := range subtract(union(working), breaks) {
		if free.Start <= r.Start && r.End <= free.End {
			return true
		}
	}
	return false
}
