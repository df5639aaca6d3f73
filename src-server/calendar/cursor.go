package calendar

import (
	"fmt"
	"time"
)

type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

func ParseDirection(s string) (Direction, error) {
	switch s {
	case "prev":
		return Prev, nil
	case "next":
		return Next, nil
	default:
		return 0, fmt.Errorf("unknown direction %q, want prev or next", s)
	}
}

func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}
	return "next"
}

// Cursor is the (year, month) pair that picks which month grid is shown.
type Cursor struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func CursorOf(t time.Time) Cursor {
	return Cursor{Year: t.Year(), Month: t.Month()}
}

func (c Cursor) first() time.Time {
	return time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC)
}

// NavigateMonth moves one month; time.Date carries the year over.
func (c Cursor) NavigateMonth(dir Direction) Cursor {
	return CursorOf(c.first().AddDate(0, int(dir), 0))
}

func (c Cursor) NavigateYear(dir Direction) Cursor {
	return CursorOf(c.first().AddDate(int(dir), 0, 0))
}

func (c Cursor) Days() []Date {
	return DaysInMonth(c.Year, c.Month)
}

func (c Cursor) Contains(d Date) bool {
	return d.Year == c.Year && d.Month == c.Month
}

func (c Cursor) String() string {
	return c.first().Format("January 2006")
}
