package metric

import (
	"context"
	"fmt"
	"teamcal/src-server/model"
	"teamcal/src-server/utils"
	"time"
)

// loadLatencyTimeout keeps a locked database from stalling the ticker.
const loadLatencyTimeout = 5 * time.Second

// calendarLoadLatency times the same load a REST request does, against the
// blank channel ID, which no calendar can have.
func calendarLoadLatency(as *utils.AppState) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), loadLatencyTimeout)
	defer cancel()

	start := time.Now()
	m, err := model.LoadModel(ctx, as.BunDB, "", start)
	if err != nil {
		return 0, fmt.Errorf("calendarLoadLatency: %w", err)
	}
	if n := len(m.Events()); n != 0 {
		return 0, fmt.Errorf("calendarLoadLatency: %d events stored without a channel", n)
	}
	return time.Since(start), nil
}
