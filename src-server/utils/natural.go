package utils

import (
	"fmt"
	"strings"
	"teamcal/src-server/calendar"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

func NewWhen() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseNaturalDate accepts an ISO date or English like "next friday",
// relative to now.
func ParseNaturalDate(w *when.Parser, text string, now time.Time) (calendar.Date, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return calendar.Date{}, fmt.Errorf("ParseNaturalDate: text is blank")
	}
	if d, err := calendar.ParseDate(text); err == nil {
		return d, nil
	}

	result, err := w.Parse(text, now)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("ParseNaturalDate: %w", err)
	}
	if result == nil {
		return calendar.Date{}, fmt.Errorf("ParseNaturalDate: no date found in %q", text)
	}
	return calendar.DateOf(result.Time.In(now.Location())), nil
}
