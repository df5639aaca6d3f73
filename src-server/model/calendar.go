package model

import (
	"context"
	"database/sql"
	"fmt"
	"teamcal/src-server/calendar"
	"time"

	"github.com/uptrace/bun"
)

type Calendar struct {
	bun.BaseModel `bun:"table:calendars"`

	ChannelID string `bun:"channel_id,pk"` // required
	Name      string `bun:"name,notnull"`  // required

	Events []*Event `bun:"rel:has-many,join:channel_id=channel_id"`
}

// EnsureCalendar creates the calendar of a channel on first use, copying
// the seed events into it with fresh IDs.
func EnsureCalendar(ctx context.Context, db *bun.DB, channelID, name string, seed []calendar.Event) error {
	if channelID == "" {
		return fmt.Errorf("EnsureCalendar: channel id is blank")
	}
	if name == "" {
		name = "Untitled"
	}

	return db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*Calendar)(nil)).
			Where("channel_id = ?", channelID).
			Exists(ctx)
		switch {
		case err != nil:
			return fmt.Errorf("EnsureCalendar: can't check if calendar exists: %w", err)
		case exists:
			return nil
		}

		if _, err := tx.NewInsert().
			Model(&Calendar{ChannelID: channelID, Name: name}).
			Exec(ctx); err != nil {
			return fmt.Errorf("EnsureCalendar: can't create calendar: %w", err)
		}

		seeded := calendar.New(time.Now())
		for _, e := range seed {
			created, err := seeded.SaveEvent(calendar.DraftOf(e), e.Date, nil)
			if err != nil {
				return fmt.Errorf("EnsureCalendar: bad seed event %q: %w", e.Title, err)
			}
			if err := EventFromCalendar(channelID, created).Upsert(ctx, tx); err != nil {
				return fmt.Errorf("EnsureCalendar: %w", err)
			}
		}
		return nil
	})
}
