// Package stream negotiates telemetry capture windows against the
// device's sampling frequency and batch size.
package stream

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/stabctl/internal/servo"
)

type Unit int

const (
	Frames Unit = iota
	Seconds
	Milliseconds
)

func (u Unit) String() string {
	switch u {
	case Frames:
		return "frames"
	case Seconds:
		return "seconds"
	case Milliseconds:
		return "milliseconds"
	default:
		return fmt.Sprintf("unit(%d)", int(u))
	}
}

// ParseUnit accepts frames, seconds/s and milliseconds/ms.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "frames", "frame":
		return Frames, nil
	case "seconds", "second", "s":
		return Seconds, nil
	case "milliseconds", "millisecond", "ms":
		return Milliseconds, nil
	}
	return 0, servo.InvalidParameter("stream_request_unit", s, "expected frames, seconds or milliseconds")
}

// Request is a capture length in user units plus the device constraints.
type Request struct {
	Length       float64
	Unit         Unit
	SamplingFreq float64
	BatchSize    int

	// Decimation is an explicit plot thinning factor; 0 means 1.
	Decimation int
	// TargetPoints, when positive, overrides Decimation with
	// ceil(frames / TargetPoints).
	TargetPoints int
}

// Resolved is a device-valid capture.
type Resolved struct {
	Frames     int
	Decimation int
}

// PlottedPoints is the number of points drawn per channel for a full window.
func (r Resolved) PlottedPoints() int {
	if r.Decimation <= 1 {
		return r.Frames
	}
	return (r.Frames + r.Decimation - 1) / r.Decimation
}

// Duration is the wall-clock span of the capture in seconds.
func (r Resolved) Duration(samplingFreq float64) float64 {
	if samplingFreq <= 0 {
		return 0
	}
	return float64(r.Frames) / samplingFreq
}

const (
	snapTolerance = 1e-9
	// largest count a float64 still represents exactly
	maxFrames = 1 << 53
)

// Resolve converts req into whole batches, rounding up so the capture is
// never shorter than requested.
func Resolve(req Request) (Resolved, error) {
	if err := req.validate(); err != nil {
		return Resolved{}, err
	}

	raw, err := RawFrames(req)
	if err != nil {
		return Resolved{}, err
	}

	batch := float64(req.BatchSize)
	frames := math.Ceil(raw/batch) * batch
	if frames < batch {
		frames = batch
	}
	if frames > maxFrames {
		return Resolved{}, servo.InvalidParameter("stream_request_length", req.Length, "capture too long")
	}

	res := Resolved{Frames: int(frames), Decimation: 1}
	switch {
	case req.TargetPoints > 0:
		res.Decimation = (res.Frames + req.TargetPoints - 1) / req.TargetPoints
	case req.Decimation > 1:
		res.Decimation = req.Decimation
	}
	if res.Decimation < 1 {
		res.Decimation = 1
	}
	return res, nil
}

// RawFrames is the unrounded frame count for req.
func RawFrames(req Request) (float64, error) {
	var raw float64
	switch req.Unit {
	case Frames:
		raw = req.Length
	case Seconds:
		raw = req.Length * req.SamplingFreq
	case Milliseconds:
		raw = req.Length * req.SamplingFreq / 1000
	default:
		return 0, servo.InvalidParameter("stream_request_unit", req.Unit, "unknown unit")
	}
	if r := math.Round(raw); r > 0 && math.Abs(raw-r) <= snapTolerance*math.Max(1, r) {
		raw = r
	}
	return raw, nil
}

func (r Request) validate() error {
	if math.IsNaN(r.Length) || math.IsInf(r.Length, 0) || r.Length <= 0 {
		return servo.InvalidParameter("stream_request_length", r.Length, "must be a finite value > 0")
	}
	if math.IsNaN(r.SamplingFreq) || math.IsInf(r.SamplingFreq, 0) || r.SamplingFreq <= 0 {
		return servo.InvalidParameter("sampling_freq", r.SamplingFreq, "must be a finite value > 0")
	}
	if r.BatchSize <= 0 {
		return servo.InvalidParameter("batch_size", r.BatchSize, "must be > 0")
	}
	if r.Decimation < 0 {
		return servo.InvalidParameter("stream_decimation", r.Decimation, "must be >= 0")
	}
	if r.TargetPoints < 0 {
		return servo.InvalidParameter("stream_target_points", r.TargetPoints, "must be >= 0")
	}
	return nil
}
