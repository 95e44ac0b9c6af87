package servo

import (
	"errors"
	"fmt"
)

// Domain errors for configuration, synthesis and streaming.
var (
	// ErrInvalidParameter indicates an out-of-range numeric input to synthesis or negotiation.
	ErrInvalidParameter = errors.New("servo: invalid parameter")

	// ErrConfig indicates a malformed plot configuration or an unknown parameter.
	ErrConfig = errors.New("servo: configuration error")

	// ErrParse indicates a malformed offline trace file.
	ErrParse = errors.New("servo: parse error")

	// ErrSample indicates a single malformed live sample.
	ErrSample = errors.New("servo: malformed sample")
)

// InvalidParameterError names the offending parameter and why it was rejected.
type InvalidParameterError struct {
	Param  string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("servo: invalid parameter %s=%v: %s", e.Param, e.Value, e.Reason)
}

func (e *InvalidParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// InvalidParameter is a shorthand constructor.
func InvalidParameter(param string, value any, reason string) error {
	return &InvalidParameterError{Param: param, Value: value, Reason: reason}
}

// ConfigError reports a setup-time configuration problem.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return "servo: config: " + e.Reason
	}
	return fmt.Sprintf("servo: config %q: %s", e.Key, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// Configf builds a ConfigError for key.
func Configf(key, format string, args ...any) error {
	return &ConfigError{Key: key, Reason: fmt.Sprintf(format, args...)}
}

// ParseError reports a malformed row in an offline trace.
type ParseError struct {
	Path string
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("servo: parse %s", e.Path)
	if e.Line > 0 {
		msg += fmt.Sprintf(" line %d", e.Line)
	}
	if e.Text != "" {
		msg += fmt.Sprintf(" (%q)", e.Text)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}

// SampleError reports a live sample that lacks a configured channel.
// It is transient: the capture continues.
type SampleError struct {
	Seq     uint64
	Channel Channel
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("servo: sample %d: missing channel %s", e.Seq, e.Channel)
}

func (e *SampleError) Unwrap() error {
	return ErrSample
}
