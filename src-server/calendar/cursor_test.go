package calendar_test

import (
	"teamcal/src-server/calendar"
	"testing"
	"time"
)

func TestCursorNavigateMonth(t *testing.T) {
	cases := []struct {
		from calendar.Cursor
		dir  calendar.Direction
		want calendar.Cursor
	}{
		{calendar.Cursor{Year: 2024, Month: time.December}, calendar.Next, calendar.Cursor{Year: 2025, Month: time.January}},
		{calendar.Cursor{Year: 2025, Month: time.January}, calendar.Prev, calendar.Cursor{Year: 2024, Month: time.December}},
		{calendar.Cursor{Year: 2024, Month: time.June}, calendar.Next, calendar.Cursor{Year: 2024, Month: time.July}},
		{calendar.Cursor{Year: 1, Month: time.January}, calendar.Prev, calendar.Cursor{Year: 0, Month: time.December}},
	}
	for _, c := range cases {
		if got := c.from.NavigateMonth(c.dir); got != c.want {
			t.Errorf("%s %s: got %s, want %s", c.from, c.dir, got, c.want)
		}
	}
}

func TestCursorNavigateYear(t *testing.T) {
	c := calendar.Cursor{Year: 2024, Month: time.February}
	if got := c.NavigateYear(calendar.Next); got != (calendar.Cursor{Year: 2025, Month: time.February}) {
		t.Errorf("next year: got %s", got)
	}
	if got := c.NavigateYear(calendar.Prev); got != (calendar.Cursor{Year: 2023, Month: time.February}) {
		t.Errorf("prev year: got %s", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	c := calendar.Cursor{Year: 2024, Month: time.March}
	got := c
	for i := 0; i < 30; i++ {
		got = got.NavigateMonth(calendar.Next)
	}
	for i := 0; i < 30; i++ {
		got = got.NavigateMonth(calendar.Prev)
	}
	if got != c {
		t.Errorf("30 months forward and back: got %s, want %s", got, c)
	}
}

func TestModelNavigationStartsFromEndOfMonth(t *testing.T) {
	// The 31st must not skip a short month.
	m := calendar.New(time.Date(2025, time.January, 31, 12, 0, 0, 0, time.UTC))
	if got := m.NavigateMonth(calendar.Next); got != (calendar.Cursor{Year: 2025, Month: time.February}) {
		t.Errorf("got %s, want February 2025", got)
	}
	if n := len(m.DaysInMonth()); n != 6+28 {
		t.Errorf("February 2025 grid has %d cells, want %d", n, 6+28)
	}
}

func TestParseDirection(t *testing.T) {
	if d, err := calendar.ParseDirection("prev"); err != nil || d != calendar.Prev {
		t.Errorf("prev: %v %v", d, err)
	}
	if d, err := calendar.ParseDirection("next"); err != nil || d != calendar.Next {
		t.Errorf("next: %v %v", d, err)
	}
	if _, err := calendar.ParseDirection("sideways"); err == nil {
		t.Error("sideways should fail")
	}
}

func TestCursorContains(t *testing.T) {
	c := calendar.Cursor{Year: 2024, Month: time.December}
	if !c.Contains(calendar.Date{Year: 2024, Month: time.December, Day: 31}) {
		t.Error("Dec 31 is in December 2024")
	}
	for _, d := range []calendar.Date{
		{Year: 2025, Month: time.January, Day: 1},
		{Year: 2023, Month: time.December, Day: 15},
		{},
	} {
		if c.Contains(d) {
			t.Errorf("%q is not in December 2024", d)
		}
	}
}
