// Package device talks to the stabilizer, or to something that behaves
// like one: a closed-loop simulator or a recorded capture.
package device

import (
	"context"
	"errors"

	"github.com/san-kum/stabctl/internal/control"
	"github.com/san-kum/stabctl/internal/servo"
	"github.com/san-kum/stabctl/internal/stream"
	"github.com/san-kum/stabctl/internal/telemetry"
)

var ErrNotConfigured = errors.New("device: not configured")

// Device accepts a filter configuration and streams telemetry.
type Device interface {
	Name() string
	Channels() []servo.Channel
	Configure(ctx context.Context, ba control.Coefficients, out control.Bounds, res stream.Resolved) error
	OpenStream(ctx context.Context) (telemetry.Source, error)
}
