// Package engine runs a transformation script against a record source and a
// record sink.
//
// The script sees the engine through the Host interface: GetNext pulls the
// next input record and Emit appends a record to the output.  Records are
// processed strictly one at a time and the engine never emits anything on
// its own.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/arnodel/jsonscript/document"
	"github.com/arnodel/jsonscript/stream"
)

var (
	// ErrAlreadyRun is returned by Run when the engine has already run.
	ErrAlreadyRun = errors.New("engine has already run")

	// ErrNotRunning is returned by Host methods called outside of Run.
	ErrNotRunning = errors.New("engine is not running")
)

// EndOfStream is returned by Host.GetNext when there are no more records.
var EndOfStream = stream.EndOfStream

// Host is what a running script can do.
type Host interface {
	// GetNext returns the next input record, or EndOfStream.
	GetNext() (document.Value, error)

	// Emit writes v to the output.  It is serialized before Emit returns, so
	// the caller may keep mutating v.
	Emit(v document.Value) error
}

// A Script is run once by an Engine.
type Script interface {
	Run(host Host) error
}

// ScriptFunc adapts a Go function to the Script interface.
type ScriptFunc func(host Host) error

func (f ScriptFunc) Run(host Host) error {
	return f(host)
}

// RecordSource is satisfied by *stream.Source.
type RecordSource interface {
	Next() (document.Value, error)
}

// RecordSink is satisfied by *stream.Sink.
type RecordSink interface {
	Emit(v document.Value) error
}

// State is the lifecycle state of an Engine.
type State int

const (
	Idle State = iota
	Running
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Stats describes a run.
type Stats struct {
	RecordsRead    int
	RecordsEmitted int
	Duration       time.Duration
}

// An Engine binds a source and a sink for a single run of a script.
type Engine struct {
	source RecordSource
	sink   RecordSink
	logger *slog.Logger

	state State
	fatal error
	stats Stats
}

var _ Host = (*Engine)(nil)

// An Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for run diagnostics.  By default nothing is
// logged.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New returns an idle engine reading from source and writing to sink.
func New(source RecordSource, sink RecordSink, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		sink:   sink,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run runs script to completion.  It can only be called once.
//
// A malformed input record or an output error fails the run: Run returns
// that error even if the script handled it and returned normally.
func (e *Engine) Run(script Script) error {
	if e.state != Idle {
		return ErrAlreadyRun
	}
	e.state = Running
	start := time.Now()
	err := script.Run(e)
	e.state = Terminated
	e.stats.Duration = time.Since(start)

	if e.fatal != nil && (err == nil || !errors.Is(err, e.fatal)) {
		err = e.fatal
	}

	attrs := []any{
		slog.Int("records_read", e.stats.RecordsRead),
		slog.Int("records_emitted", e.stats.RecordsEmitted),
		slog.Duration("duration", e.stats.Duration),
	}
	if err != nil {
		e.logger.Debug("run failed", append(attrs, slog.Any("error", err))...)
	} else {
		e.logger.Debug("run finished", attrs...)
	}
	return err
}

// GetNext implements Host.
func (e *Engine) GetNext() (document.Value, error) {
	if e.state != Running {
		return nil, ErrNotRunning
	}
	if e.fatal != nil {
		return nil, e.fatal
	}
	v, err := e.source.Next()
	switch {
	case err == nil:
		e.stats.RecordsRead++
		return v, nil
	case err == EndOfStream:
		return nil, EndOfStream
	default:
		e.fatal = err
		return nil, err
	}
}

// Emit implements Host.
func (e *Engine) Emit(v document.Value) error {
	if e.state != Running {
		return ErrNotRunning
	}
	if e.fatal != nil {
		return e.fatal
	}
	if err := e.sink.Emit(v); err != nil {
		e.fatal = err
		return err
	}
	e.stats.RecordsEmitted++
	return nil
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Stats returns the statistics of the run so far.
func (e *Engine) Stats() Stats {
	return e.stats
}
