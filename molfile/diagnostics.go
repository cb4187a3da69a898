package molfile

import (
	"fmt"
	"log/slog"
)

// Diagnostics receives non-fatal format deviations: bond order 0, skipped
// S-group blocks, unknown property prefixes, and the like. Reporting never
// aborts the parse; fatal conditions are errors, not diagnostics.
type Diagnostics interface {
	Warnf(format string, args ...any)
}

type slogDiagnostics struct {
	log *slog.Logger
}

func (d slogDiagnostics) Warnf(format string, args ...any) {
	d.log.Warn(fmt.Sprintf(format, args...))
}

// SlogDiagnostics routes warnings to a slog logger. Passing nil uses
// slog.Default.
func SlogDiagnostics(l *slog.Logger) Diagnostics {
	if l == nil {
		l = slog.Default()
	}
	return slogDiagnostics{log: l}
}

// Collector accumulates warnings in order; useful in tests and for the CLI
// to surface deviations alongside results.
type Collector struct {
	Warnings []string
}

func (c *Collector) Warnf(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

type discardDiagnostics struct{}

func (discardDiagnostics) Warnf(string, ...any) {}

// DiscardDiagnostics drops all warnings.
func DiscardDiagnostics() Diagnostics { return discardDiagnostics{} }
