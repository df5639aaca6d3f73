package model

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type SessionModelPurposeType string

const (
	// for user to use to login
	SESSION_MODEL_PURPOSE_TEMP = SessionModelPurposeType("temp")
	// for the web client to keep the session
	SESSION_MODEL_PURPOSE_SESSION = SessionModelPurposeType("session")
)

type Session struct {
	bun.BaseModel `bun:"table:sessions"`

	Secret           string                  `bun:"secret,pk"`                    // required
	Purpose          SessionModelPurposeType `bun:"purpose,notnull,type:varchar"` // required
	UserID           string                  `bun:"user_id,notnull"`              // required
	ChannelID        string                  `bun:"channel_id,notnull"`           // required
	CreatedAtUnixUTC int64                   `bun:"created_at,notnull"`           // required
}

func (s *Session) Expired(ttl time.Duration, now time.Time) bool {
	return time.Unix(s.CreatedAtUnixUTC, 0).UTC().Add(ttl).Before(now)
}

// FindSession looks up a session by secret and purpose; it returns nil
// without error when there is none.
func FindSession(ctx context.Context, db bun.IDB, secret string, purpose SessionModelPurposeType) (*Session, error) {
	sessionModels := make([]Session, 0, 1)
	if err := db.NewSelect().
		Model(&sessionModels).
		Where("secret = ?", secret).
		Where("purpose = ?", purpose).
		Limit(1).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("FindSession: %w", err)
	}
	if len(sessionModels) == 0 {
		return nil, nil
	}
	return &sessionModels[0], nil
}

func DeleteSession(ctx context.Context, db bun.IDB, secret string) error {
	if _, err := db.NewDelete().
		Model((*Session)(nil)).
		Where("secret = ?", secret).
		Exec(ctx); err != nil {
		return fmt.Errorf("DeleteSession: %w", err)
	}
	return nil
}
