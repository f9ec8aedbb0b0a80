// Package logging gates solver diagnostics by importance.
//
// Solver code calls [Emitter.Emit] with an importance level; the message is
// handed to the underlying slog.Logger only when its importance exceeds the
// configured verbosity threshold.
package logging

import (
	"context"
	"io"
	"log/slog"
)

// Importance levels, lowest first.
const (
	Trace = 1
	Debug = 2
	Info  = 3
	Warn  = 4
)

// DefaultVerbosity lets Info and Warn through and silences the rest.
const DefaultVerbosity = Debug

// Emitter is safe for concurrent use when its slog handler is.
type Emitter struct {
	log       *slog.Logger
	verbosity int
}

func New(log *slog.Logger, verbosity int) Emitter {
	if log == nil {
		log = slog.Default()
	}
	return Emitter{log: log, verbosity: verbosity}
}

// NewText builds an emitter writing slog text records to w.
func NewText(w io.Writer, verbosity int) Emitter {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	return New(slog.New(h), verbosity)
}

// Discard drops every message.
func Discard() Emitter {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), Warn)
}

func (e Emitter) Verbosity() int { return e.verbosity }

// WithVerbosity returns a copy using a different threshold.
func (e Emitter) WithVerbosity(v int) Emitter {
	e.verbosity = v
	return e
}

// With returns a copy whose records carry the given attributes.
func (e Emitter) With(args ...any) Emitter {
	e.log = e.log.With(args...)
	return e
}

// Enabled reports whether a message of this importance would be emitted.
func (e Emitter) Enabled(importance int) bool {
	return e.log != nil && importance > e.verbosity
}

// Emit logs msg with key/value args if importance exceeds the verbosity.
func (e Emitter) Emit(importance int, msg string, args ...any) {
	if !e.Enabled(importance) {
		return
	}
	e.log.Log(context.Background(), level(importance), msg, args...)
}

func level(importance int) slog.Level {
	switch {
	case importance >= Warn:
		return slog.LevelWarn
	case importance == Info:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
