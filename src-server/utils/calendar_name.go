package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CalendarName turns a channel name like "team-launch_plans" into "Team Launch Plans".
func CalendarName(channelName string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(channelName)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "Untitled"
	}
	return cases.Title(language.English).String(s)
}
