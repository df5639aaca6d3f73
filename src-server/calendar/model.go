package calendar

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoDateSelected = errors.New("no date selected")
	ErrEventNotFound  = errors.New("event not found")
)

// Model holds the month cursor, the selected date and the event collection.
// It is not safe for concurrent use; persistence is up to the caller.
type Model struct {
	cursor   Cursor
	selected Date
	events   []Event
	newID    func() string
}

type Option func(*Model)

// WithIDGenerator replaces the uuid generator used for new events.
func WithIDGenerator(fn func() string) Option {
	return func(m *Model) {
		m.newID = fn
	}
}

// WithEvents seeds the collection, keeping the given order.
func WithEvents(events []Event) Option {
	return func(m *Model) {
		m.events = append(m.events, events...)
	}
}

// New returns a model with the cursor on the month of now.
func New(now time.Time, opts ...Option) *Model {
	m := &Model{
		cursor: CursorOf(now),
		events: make([]Event, 0),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) Cursor() Cursor {
	return m.cursor
}

func (m *Model) SetCursor(c Cursor) {
	m.cursor = CursorOf(c.first())
}

func (m *Model) NavigateMonth(dir Direction) Cursor {
	m.cursor = m.cursor.NavigateMonth(dir)
	return m.cursor
}

func (m *Model) NavigateYear(dir Direction) Cursor {
	m.cursor = m.cursor.NavigateYear(dir)
	return m.cursor
}

// DaysInMonth is the grid for the current cursor.
func (m *Model) DaysInMonth() []Date {
	return m.cursor.Days()
}

// Select highlights a single date. It does not move the cursor.
func (m *Model) Select(d Date) {
	m.selected = d
}

func (m *Model) ClearSelection() {
	m.selected = Date{}
}

func (m *Model) SelectedDate() (Date, bool) {
	return m.selected, !m.selected.IsZero()
}

// Events returns a copy of the collection in insertion order.
func (m *Model) Events() []Event {
	return slices.Clone(m.events)
}

func (m *Model) Event(id string) (Event, bool) {
	if i := m.indexOf(id); i >= 0 {
		return m.events[i], true
	}
	return Event{}, false
}

// EventsForDate returns the events on d in insertion order, never nil.
func (m *Model) EventsForDate(d Date) []Event {
	out := make([]Event, 0)
	for _, e := range m.events {
		if e.Date == d {
			out = append(out, e)
		}
	}
	return out
}

// SaveEvent commits a draft on target. With editing nil a new event with a
// fresh ID is appended; otherwise the event with editing.ID is replaced in
// place, and if it is gone the collection is left alone and
// ErrEventNotFound is returned.
func (m *Model) SaveEvent(draft Draft, target Date, editing *Event) (Event, error) {
	if target.IsZero() {
		return Event{}, ErrNoDateSelected
	}
	if !target.Valid() {
		return Event{}, ErrInvalidDate
	}
	if err := draft.validate(); err != nil {
		return Event{}, err
	}

	if editing == nil {
		e := draft.Build(m.uniqueID(), target)
		m.events = append(m.events, e)
		return e, nil
	}

	i := m.indexOf(editing.ID)
	if i < 0 {
		return Event{}, ErrEventNotFound
	}
	e := draft.Build(editing.ID, target)
	m.events[i] = e
	return e, nil
}

// SaveSeries creates one event per date. Nothing is added unless every
// date is usable.
func (m *Model) SaveSeries(draft Draft, dates []Date) ([]Event, error) {
	if len(dates) == 0 {
		return nil, ErrNoDateSelected
	}
	if err := draft.validate(); err != nil {
		return nil, err
	}
	for _, d := range dates {
		if !d.Valid() {
			return nil, ErrInvalidDate
		}
	}

	created := make([]Event, 0, len(dates))
	for _, d := range dates {
		e := draft.Build(m.uniqueID(), d)
		m.events = append(m.events, e)
		created = append(created, e)
	}
	return created, nil
}

// DeleteEvent removes the event with id and reports whether one was removed.
func (m *Model) DeleteEvent(id string) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	m.events = slices.Delete(m.events, i, i+1)
	return true
}

func (m *Model) indexOf(id string) int {
	return slices.IndexFunc(m.events, func(e Event) bool {
		return e.ID == id
	})
}

func (m *Model) uniqueID() string {
	for {
		id := m.newID()
		if m.indexOf(id) < 0 {
			return id
		}
	}
}
