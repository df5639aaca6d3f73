package calendar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xyedo/rrule"
)

// MaxSeriesLength caps how many events one recurring series may create.
const MaxSeriesLength = 366

// maxOccurrences bounds the raw rule occurrences walked for one series,
// counting every BYHOUR/BYMINUTE hit on the same day.
const maxOccurrences = MaxSeriesLength * 24

var (
	ErrSeriesTooLong = fmt.Errorf("series has more than %d dates", MaxSeriesLength)
	ErrSubDailyRule  = errors.New("series rules repeat at most daily")
)

// SeriesDates expands an RRULE such as "FREQ=WEEKLY;BYDAY=MO" starting on
// from, keeping dates up to and including until. Each date appears once.
func SeriesDates(rule string, from, until Date) ([]Date, error) {
	rule = strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")
	switch {
	case rule == "":
		return nil, errors.New("SeriesDates: rule is blank")
	case !from.Valid() || !until.Valid():
		return nil, fmt.Errorf("SeriesDates: %w", ErrInvalidDate)
	case until.Before(from):
		return nil, fmt.Errorf("SeriesDates: until %s is before %s", until, from)
	}

	set, err := rrule.StrToRRuleSet(fmt.Sprintf(
		"DTSTART:%s\nRRULE:%s",
		from.Time().Format("20060102T150405Z"),
		rule,
	))
	if err != nil {
		return nil, fmt.Errorf("SeriesDates: invalid rule: %w", err)
	}
	if r := set.GetRRule(); r != nil && r.OrigOptions.Freq > rrule.DAILY {
		return nil, fmt.Errorf("SeriesDates: %w", ErrSubDailyRule)
	}

	// dates arrive in order, so a repeat is always the previous date
	end := until.AddDays(1).Time()
	dates := make([]Date, 0)
	next := set.Iterator()
	for walked := 0; ; walked++ {
		t, ok := next()
		if !ok || !t.Before(end) {
			break
		}
		if walked >= maxOccurrences {
			return nil, ErrSeriesTooLong
		}
		d := DateOf(t.UTC())
		if len(dates) > 0 && dates[len(dates)-1] == d {
			continue
		}
		if len(dates) == MaxSeriesLength {
			return nil, ErrSeriesTooLong
		}
		dates = append(dates, d)
	}
	return dates, nil
}
