package model

import (
	"context"
	"fmt"
	"teamcal/src-server/calendar"
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string `bun:"id,pk"`              // required
	ChannelID   string `bun:"channel_id,notnull"` // required
	Title       string `bun:"title,notnull"`
	Description string `bun:"description"`
	Date        string `bun:"date,notnull"` // required, YYYY-MM-DD
	Time        string `bun:"time"`
	Type        string `bun:"type,notnull"` // required

	// unix nano, keeps insertion order across updates
	CreatedAt int64 `bun:"created_at,notnull"`
	UpdatedAt int64 `bun:"updated_at"`

	Calendar *Calendar `bun:"rel:belongs-to,join:channel_id=channel_id"`
}

func EventFromCalendar(channelID string, e calendar.Event) *Event {
	return &Event{
		ID:          e.ID,
		ChannelID:   channelID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date.String(),
		Time:        e.Time,
		Type:        string(e.Type),
	}
}

func (e *Event) ToCalendar() (calendar.Event, error) {
	date, err := calendar.ParseDate(e.Date)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("(*Event).ToCalendar: %w", err)
	}
	eventType, err := calendar.ParseEventType(e.Type)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("(*Event).ToCalendar: %w", err)
	}
	return calendar.Event{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        date,
		Time:        e.Time,
		Type:        eventType,
	}, nil
}

// Upsert inserts the event or, when the ID exists, overwrites its fields
// while keeping created_at.
func (e *Event) Upsert(ctx context.Context, db bun.IDB) error {
	switch {
	case e.ID == "":
		return fmt.Errorf("(*Event).Upsert: event id is blank")
	case e.ChannelID == "":
		return fmt.Errorf("(*Event).Upsert: channel id is blank")
	}
	if _, err := e.ToCalendar(); err != nil {
		return fmt.Errorf("(*Event).Upsert: %w", err)
	}

	now := time.Now().UTC().UnixNano()
	if e.CreatedAt == 0 {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	if _, err := db.NewInsert().
		Model(e).
		On("CONFLICT (id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("description = EXCLUDED.description").
		Set(`"date" = EXCLUDED."date"`).
		Set(`"time" = EXCLUDED."time"`).
		Set(`"type" = EXCLUDED."type"`).
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Event).Upsert: %w", err)
	}
	return nil
}

// DeleteEvent removes an event of a channel; a missing event is not an error.
func DeleteEvent(ctx context.Context, db bun.IDB, channelID, id string) error {
	if _, err := db.NewDelete().
		Model((*Event)(nil)).
		Where("id = ?", id).
		Where("channel_id = ?", channelID).
		Exec(ctx); err != nil {
		return fmt.Errorf("DeleteEvent: %w", err)
	}
	return nil
}

// LoadModel reads every event of a channel into a calendar.Model whose
// cursor sits on the month of now.
func LoadModel(ctx context.Context, db bun.IDB, channelID string, now time.Time) (*calendar.Model, error) {
	eventModels := make([]Event, 0)
	if err := db.NewSelect().
		Model(&eventModels).
		Where("channel_id = ?", channelID).
		Order("created_at ASC").
		OrderExpr("rowid ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("LoadModel: can't get events: %w", err)
	}

	events := make([]calendar.Event, 0, len(eventModels))
	for _, eventModel := range eventModels {
		e, err := eventModel.ToCalendar()
		if err != nil {
			return nil, fmt.Errorf("LoadModel: event %s: %w", eventModel.ID, err)
		}
		events = append(events, e)
	}
	return calendar.New(now, calendar.WithEvents(events)), nil
}

// EventsOn returns the events on date across all channels, grouped by channel.
func EventsOn(ctx context.Context, db bun.IDB, date calendar.Date) (map[string][]calendar.Event, error) {
	eventModels := make([]Event, 0)
	if err := db.NewSelect().
		Model(&eventModels).
		Where(`?TableAlias."date" = ?`, date.String()).
		Order("created_at ASC").
		OrderExpr("rowid ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("EventsOn: %w", err)
	}

	out := make(map[string][]calendar.Event)
	for _, eventModel := range eventModels {
		e, err := eventModel.ToCalendar()
		if err != nil {
			return nil, fmt.Errorf("EventsOn: event %s: %w", eventModel.ID, err)
		}
		out[eventModel.ChannelID] = append(out[eventModel.ChannelID], e)
	}
	return out, nil
}
