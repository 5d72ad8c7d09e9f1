// Package luascript runs transformation scripts written in Lua.
//
// A script drives the record loop itself:
//
//	sum = 0
//	while true do
//	    local doc = get_next()
//	    if doc == nil then break end
//	    doc.foo = 42
//	    doc.nested.bar = "changed"
//	    doc.arr[2] = 99
//	    sum = sum + doc.arr[3]
//	    emit(doc)
//	end
//	emit({sum = sum})
//
// Records are exposed as handles: userdata giving live access to the
// containers of the record, so that nested assignments mutate the record in
// place.  Sequence indices are 1-based as everywhere else in Lua.  JSON null
// is json.null, distinct from nil which get_next returns at the end of the
// input.
package luascript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/arnodel/jsonscript/engine"
)

// A Script is a compiled Lua chunk.  Each call to Run executes it in a fresh
// Lua state, so nothing is shared between runs.
type Script struct {
	name  string
	proto *lua.FunctionProto
	opts  options
}

var _ engine.Script = (*Script)(nil)

type options struct {
	ctx    context.Context
	stderr io.Writer
	logger *slog.Logger
}

// An Option configures a Script.
type Option func(*options)

// WithContext makes the script stop with an error when ctx is done.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// WithStderr sets where print writes.  It defaults to os.Stderr.
func WithStderr(w io.Writer) Option {
	return func(o *options) {
		o.stderr = w
	}
}

// WithLogger sets the logger used by the log function.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New compiles source.  The name is used in error messages and stack traces.
func New(source, name string, opts ...Option) (*Script, error) {
	o := options{stderr: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(o.stderr, nil))
	}
	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	return &Script{name: name, proto: proto, opts: o}, nil
}

// Name returns the name the script was compiled with.
func (s *Script) Name() string {
	return s.name
}

// Run executes the script with host providing get_next and emit.  A failure
// is returned as an *Error.
func (s *Script) Run(host engine.Host) error {
	L := lua.NewState()
	defer L.Close()
	if s.opts.ctx != nil {
		L.SetContext(s.opts.ctx)
	}
	rt := newRuntime(L, host, s.opts.stderr, s.opts.logger.With(slog.String("script", s.name)))
	rt.install()

	L.Push(L.NewFunctionFromProto(s.proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return s.newError(err)
	}
	return nil
}

// Error is a script failure.  It unwraps to the error that caused it, so
// errors.Is can tell e.g. document.ErrKeyNotFound from
// stream.ErrMalformedRecord.
type Error struct {
	Kind  string // KeyNotFound, IndexOutOfRange, PathTypeError, MalformedRecord or Error
	Err   error
	Trace string // Lua stack trace
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (s *Script) newError(err error) *Error {
	if s.opts.ctx != nil && s.opts.ctx.Err() != nil {
		return &Error{Kind: kindError, Err: fmt.Errorf("%s: %w", s.name, s.opts.ctx.Err())}
	}
	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) {
		return &Error{Kind: kindError, Err: err}
	}
	e := &Error{Kind: kindError, Trace: apiErr.StackTrace}
	if ud, ok := apiErr.Object.(*lua.LUserData); ok {
		if r, ok := ud.Value.(*raisedError); ok {
			e.Kind = r.kind
			e.Err = r.err
			return e
		}
	}
	switch {
	case apiErr.Object != nil:
		e.Err = errors.New(apiErr.Object.String())
	case apiErr.Cause != nil:
		e.Err = apiErr.Cause
	default:
		e.Err = err
	}
	return e
}
