package utils

import "time"

type Metric struct {
	DatabaseRead       chan float64
	DatabaseWrite      chan float64
	DiscordSendMessage chan float64
}

func NewMetric() *Metric {
	return &Metric{
		DatabaseRead:       make(chan float64, 16),
		DatabaseWrite:      make(chan float64, 16),
		DiscordSendMessage: make(chan float64, 16),
	}
}

// Observe sends the microseconds since start to ch, dropping the sample
// when nobody is collecting.
func (m *Metric) Observe(ch chan float64, start time.Time) {
	if m == nil || ch == nil {
		return
	}
	select {
	case ch <- float64(time.Since(start).Microseconds()):
	default:
	}
}
