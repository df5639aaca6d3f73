package metric

import (
	"log/slog"
	"teamcal/src-server/utils"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func newGauge(name, help string) prometheus.Gauge {
	gauge := promauto.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	})
	slog.Debug("metric registered", "name", name)
	return gauge
}

func unregister(name string, gauge prometheus.Gauge) {
	switch prometheus.Unregister(gauge) {
	case true:
		slog.Debug("metric unregistered", "name", name)
	case false:
		slog.Warn("metric not registered", "name", name)
	}
}

// fedGauge shows the last latency sent on ch, falling back to 0 when
// nothing arrives for clearInterval.
func fedGauge(as *utils.AppState, name, help string, ch <-chan float64, clearInterval time.Duration) {
	gauge := newGauge(name, help)
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		clearTicker := time.NewTicker(clearInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				unregister(name, gauge)
				return
			case latency := <-ch:
				gauge.Set(latency)
				clearTicker.Reset(clearInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}

// polledGauge samples check every interval.
func polledGauge(as *utils.AppState, name, help string, interval time.Duration, check func() (time.Duration, error)) {
	gauge := newGauge(name, help)
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				unregister(name, gauge)
				return
			case <-ticker.C:
				latency, err := check()
				if err != nil {
					slog.Error("can't collect metric", "name", name, "error", err)
					continue
				}
				gauge.Set(float64(latency.Microseconds()))
			}
		}
	}()
}

func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := tickerInterval * 2

	polledGauge(as, "teamcal_calendar_empty_load_microsec",
		"The latency of loading an empty calendar in microseconds",
		tickerInterval, func() (time.Duration, error) { return calendarLoadLatency(as) })
	fedGauge(as, "teamcal_database_read_microsec",
		"The latency of loading a calendar in microseconds",
		as.MetricChans.DatabaseRead, clearTickerInterval)
	fedGauge(as, "teamcal_database_write_microsec",
		"The latency of saving or deleting events in microseconds",
		as.MetricChans.DatabaseWrite, clearTickerInterval)
	fedGauge(as, "teamcal_discord_send_message_microsec",
		"The latency of a discord message send in microseconds",
		as.MetricChans.DiscordSendMessage, clearTickerInterval)
	if as.DgSession != nil {
		polledGauge(as, "teamcal_discord_heartbeat_latency_microsec",
			"The latency of a discord heartbeat in microseconds",
			tickerInterval, func() (time.Duration, error) { return as.DgSession.HeartbeatLatency(), nil })
	}
}
