// Package diag provides leveled reporting for configuration
// diagnostics.
//
// Diagnostics never change behavior.  They are only produced when
// Enabled is true, which is the case unless the binary is built with
// the "production" build tag.
package diag

import (
	"context"
	"log/slog"
	"sync"
)

// Level is the severity of a Diagnostic.
type Level int

const (
	LevelInfo    Level = 9
	LevelWarning Level = 13
	LevelError   Level = 17
)

func (l Level) String() string {
	switch {
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	default:
		return "ERROR"
	}
}

// SlogLevel maps this level to the corresponding slog.Level.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Code identifies the kind of Diagnostic.
type Code string

const (
	// MissingDefaultPropType: an auto-controlled field has no
	// validator for its default<Field> prop.
	MissingDefaultPropType Code = "missing-default-prop-type"

	// MissingPropType: an auto-controlled field has no validator.
	MissingPropType Code = "missing-prop-type"

	// AutoControlledDefaultProp: an auto-controlled field is also a
	// static default prop, so it could never be reconciled.
	AutoControlledDefaultProp Code = "auto-controlled-default-prop"

	// DefaultPrefixedAutoControlled: an auto-controlled field's name
	// starts with "default".
	DefaultPrefixedAutoControlled Code = "default-prefixed-auto-controlled"

	// ControlledAndDefault: both <field> and default<Field> were
	// given.
	ControlledAndDefault Code = "controlled-and-default"
)

// Diagnostic is a report about a misconfiguration.
type Diagnostic struct {
	Code      Code
	Level     Level
	Component string
	Fields    []string
	Message   string
}

// Reporter receives Diagnostics.
type Reporter interface {
	Report(ctx context.Context, d Diagnostic)
}

// NopReporter discards all Diagnostics.
type NopReporter struct{}

func (NopReporter) Report(ctx context.Context, d Diagnostic) {}

// SlogReporter writes Diagnostics to a slog.Logger.
type SlogReporter struct {
	logger *slog.Logger
}

// NewSlogReporter makes a SlogReporter.  A nil logger means
// slog.Default().
func NewSlogReporter(logger *slog.Logger) *SlogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogReporter{logger: logger}
}

func (r *SlogReporter) Report(ctx context.Context, d Diagnostic) {
	r.logger.LogAttrs(ctx, d.Level.SlogLevel(), d.Message,
		slog.String("code", string(d.Code)),
		slog.String("component", d.Component),
		slog.Any("fields", d.Fields))
}

// Collector remembers Diagnostics.  Handy for tests.
type Collector struct {
	sync.Mutex
	Diagnostics []Diagnostic
}

func (c *Collector) Report(ctx context.Context, d Diagnostic) {
	c.Lock()
	c.Diagnostics = append(c.Diagnostics, d)
	c.Unlock()
}

// Codes returns the codes of the collected Diagnostics in order.
func (c *Collector) Codes() []Code {
	c.Lock()
	defer c.Unlock()
	acc := make([]Code, len(c.Diagnostics))
	for i, d := range c.Diagnostics {
		acc[i] = d.Code
	}
	return acc
}

// Reset forgets everything collected.
func (c *Collector) Reset() {
	c.Lock()
	c.Diagnostics = nil
	c.Unlock()
}
