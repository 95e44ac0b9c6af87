package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// Session is the plotting state of one Start/Stop pair.
type Session struct {
	ID      string
	Started time.Time

	cfg     PlotConfig
	ring    *Ring
	refresh *refresher
	surface Surface
}

func newSession(cfg PlotConfig, surface Surface) *Session {
	return &Session{
		ID:      uuid.NewString(),
		Started: time.Now(),
		cfg:     cfg,
		ring:    NewRing(cfg.Channels, cfg.Window),
		refresh: newRefresher(cfg),
		surface: surface,
	}
}

func (s *Session) Config() PlotConfig { return s.cfg }

func (s *Session) close() error {
	s.ring = nil
	if s.surface == nil {
		return nil
	}
	return s.surface.Close()
}
