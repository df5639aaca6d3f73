package utils_test

import (
	"teamcal/src-server/calendar"
	"teamcal/src-server/utils"
	"testing"
	"time"
)

func TestParseNaturalDate(t *testing.T) {
	w := utils.NewWhen()
	// a Sunday
	now := time.Date(2024, time.December, 15, 9, 0, 0, 0, time.UTC)

	cases := map[string]calendar.Date{
		"2024-12-25": {Year: 2024, Month: time.December, Day: 25},
		"tomorrow":   {Year: 2024, Month: time.December, Day: 16},
		"today":      {Year: 2024, Month: time.December, Day: 15},
	}
	for text, want := range cases {
		got, err := utils.ParseNaturalDate(w, text, now)
		if err != nil {
			t.Errorf("%q: %v", text, err)
			continue
		}
		if got != want {
			t.Errorf("%q: got %s, want %s", text, got, want)
		}
	}

	for _, bad := range []string{"", "   ", "banana"} {
		if _, err := utils.ParseNaturalDate(w, bad, now); err == nil {
			t.Errorf("%q: expected an error", bad)
		}
	}
}

func TestCalendarName(t *testing.T) {
	cases := map[string]string{
		"team-launch_plans": "Team Launch Plans",
		"general":           "General",
		"  ":                "Untitled",
	}
	for in, want := range cases {
		if got := utils.CalendarName(in); got != want {
			t.Errorf("CalendarName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMetricObserveNeverBlocks(t *testing.T) {
	m := utils.NewMetric()
	for i := 0; i < 100; i++ {
		m.Observe(m.DatabaseRead, time.Now())
	}
	var nilMetric *utils.Metric
	nilMetric.Observe(nil, time.Now())
}
