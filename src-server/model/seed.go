package model

import (
	"fmt"
	"os"
	"teamcal/src-server/calendar"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Events []calendar.Event `yaml:"events"`
}

// LoadSeed reads the events every new calendar starts with, e.g.
//
//	events:
//	  - title: Team Meeting
//	    date: 2024-12-15
//	    time: 2:00 PM
//	    type: meeting
func LoadSeed(path string) ([]calendar.Event, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadSeed: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("LoadSeed: %w", err)
	}
	for i, e := range seed.Events {
		if e.Date.IsZero() {
			return nil, fmt.Errorf("LoadSeed: event %d (%q) has no date", i, e.Title)
		}
		if e.Type != "" && !e.Type.Valid() {
			return nil, fmt.Errorf("LoadSeed: event %d (%q): %w", i, e.Title, calendar.ErrUnknownEventType)
		}
	}
	return seed.Events, nil
}
