package calendar

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrUnknownEventType = errors.New("unknown event type")

// EventType only decides how an event is colored.
type EventType string

const (
	Meeting  EventType = "meeting"
	Deadline EventType = "deadline"
	Launch   EventType = "launch"
	Reminder EventType = "reminder"
)

// EventTypes lists every type in the order pickers show them.
var EventTypes = []EventType{Meeting, Deadline, Launch, Reminder}

func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownEventType, s)
	}
	return t, nil
}

func (t EventType) Valid() bool {
	return slices.Contains(EventTypes, t)
}

func (t EventType) Color() string {
	switch t {
	case Launch:
		return "red"
	case Meeting:
		return "blue"
	case Deadline:
		return "yellow"
	default:
		return "green"
	}
}

func (t EventType) Label() string {
	return cases.Title(language.English).String(string(t))
}

type Event struct {
	ID          string    `json:"id" yaml:"id,omitempty"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description,omitempty"`
	Date        Date      `json:"date" yaml:"date"`
	Time        string    `json:"time" yaml:"time,omitempty"`
	Type        EventType `json:"type" yaml:"type,omitempty"`
}

// Draft is an event being edited before it is saved. Empty fields take
// their defaults at save time: "" for text and Meeting for Type.
type Draft struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Time        string    `json:"time"`
	Type        EventType `json:"type"`
}

// DraftOf starts a draft from an existing event, for editing.
func DraftOf(e Event) Draft {
	return Draft{
		Title:       e.Title,
		Description: e.Description,
		Time:        e.Time,
		Type:        e.Type,
	}
}

func (d Draft) typeOrDefault() EventType {
	if d.Type == "" {
		return Meeting
	}
	return d.Type
}

func (d Draft) validate() error {
	if t := d.typeOrDefault(); !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEventType, t)
	}
	return nil
}

// Build turns the draft into a complete event on date.
func (d Draft) Build(id string, date Date) Event {
	return Event{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Date:        date,
		Time:        d.Time,
		Type:        d.typeOrDefault(),
	}
}

// PreviewLimit is how many events a grid cell shows before "+N more".
const PreviewLimit = 2

// Preview returns at most limit events and how many were left out.
func Preview(events []Event, limit int) ([]Event, int) {
	if limit < 0 {
		limit = 0
	}
	if len(events) <= limit {
		return events, 0
	}
	return events[:limit], len(events) - limit
}
