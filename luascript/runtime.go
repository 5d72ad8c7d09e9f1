package luascript

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/arnodel/jsonscript/document"
	"github.com/arnodel/jsonscript/engine"
)

// runtime holds the state of one run of a script.  L is the main thread and
// is only used to install the globals: callbacks work on the thread they are
// called from, which differs from L inside coroutines.
type runtime struct {
	L      *lua.LState
	host   engine.Host
	stderr io.Writer
	logger *slog.Logger

	null     *lua.LUserData
	handleMT *lua.LTable
	errorMT  *lua.LTable
}

func newRuntime(L *lua.LState, host engine.Host, stderr io.Writer, logger *slog.Logger) *runtime {
	return &runtime{L: L, host: host, stderr: stderr, logger: logger}
}

func (rt *runtime) install() {
	L := rt.L
	rt.errorMT = rt.newErrorMetatable()
	rt.handleMT = rt.newHandleMetatable()
	rt.null = rt.newNull()

	basePairs := L.GetGlobal("pairs")
	baseIpairs := L.GetGlobal("ipairs")

	L.SetGlobal("get_next", L.NewFunction(rt.getNext))
	L.SetGlobal("emit", L.NewFunction(rt.emit))
	L.SetGlobal("records", L.NewFunction(rt.records))
	L.SetGlobal("print", L.NewFunction(rt.print))
	L.SetGlobal("log", L.NewFunction(rt.log))
	L.SetGlobal("pairs", L.NewFunction(rt.pairs(basePairs)))
	L.SetGlobal("ipairs", L.NewFunction(rt.ipairs(baseIpairs)))
	L.SetGlobal("json", rt.newJSONLib())
}

// get_next() returns the next record, or nil at the end of the input.
func (rt *runtime) getNext(L *lua.LState) int {
	v, err := rt.host.GetNext()
	if err == engine.EndOfStream {
		L.Push(lua.LNil)
		return 1
	}
	if err != nil {
		rt.raise(L, err)
	}
	L.Push(rt.toLua(L, v, nil))
	return 1
}

// emit(v) writes v to the output.
func (rt *runtime) emit(L *lua.LState) int {
	v, err := rt.fromLua(L.CheckAny(1))
	if err != nil {
		L.ArgError(1, err.Error())
	}
	if err := rt.host.Emit(v); err != nil {
		rt.raise(L, err)
	}
	return 0
}

// records() iterates over the remaining records: for doc in records() do ... end
func (rt *runtime) records(L *lua.LState) int {
	L.Push(L.NewFunction(rt.getNext))
	return 1
}

func (rt *runtime) print(L *lua.LState) int {
	var b strings.Builder
	joinArgs(L, &b)
	b.WriteByte('\n')
	if _, err := io.WriteString(rt.stderr, b.String()); err != nil {
		rt.raise(L, err)
	}
	return 0
}

func (rt *runtime) log(L *lua.LState) int {
	var b strings.Builder
	joinArgs(L, &b)
	rt.logger.Info(b.String())
	return 0
}

func joinArgs(L *lua.LState, b *strings.Builder) {
	for i := 1; i <= L.GetTop(); i++ {
		if i > 1 {
			b.WriteByte('\t')
		}
		b.WriteString(L.ToStringMeta(L.Get(i)).String())
	}
}

// pairs iterates over the entries of handles.  Keys are snapshotted when the
// iteration starts; entries removed meanwhile are skipped.
func (rt *runtime) pairs(base lua.LValue) lua.LGFunction {
	return func(L *lua.LState) int {
		h := toHandle(L.Get(1))
		if h == nil {
			return callBase(L, base)
		}
		switch c := h.c.(type) {
		case *document.Mapping:
			L.Push(rt.mappingIterator(L, h, c))
		case *document.Sequence:
			L.Push(rt.sequenceIterator(L, h, c))
		}
		L.Push(L.Get(1))
		L.Push(lua.LNil)
		return 3
	}
}

// ipairs iterates over the items of sequence handles.  A mapping handle has
// no items.
func (rt *runtime) ipairs(base lua.LValue) lua.LGFunction {
	return func(L *lua.LState) int {
		h := toHandle(L.Get(1))
		if h == nil {
			return callBase(L, base)
		}
		if s, ok := h.c.(*document.Sequence); ok {
			L.Push(rt.sequenceIterator(L, h, s))
		} else {
			L.Push(L.NewFunction(func(L *lua.LState) int {
				L.Push(lua.LNil)
				return 1
			}))
		}
		L.Push(L.Get(1))
		L.Push(lua.LNumber(0))
		return 3
	}
}

func callBase(L *lua.LState, base lua.LValue) int {
	L.Push(base)
	L.Push(L.Get(1))
	L.Call(1, 3)
	return 3
}

func (rt *runtime) mappingIterator(L *lua.LState, h *handle, m *document.Mapping) *lua.LFunction {
	keys := m.Keys()
	next := 0
	return L.NewFunction(func(L *lua.LState) int {
		for next < len(keys) {
			k := keys[next]
			next++
			if v, ok := m.Get(k); ok {
				L.Push(lua.LString(k))
				L.Push(rt.toLua(L, v, h.path.Append(document.Key(k))))
				return 2
			}
		}
		L.Push(lua.LNil)
		return 1
	})
}

func (rt *runtime) sequenceIterator(L *lua.LState, h *handle, s *document.Sequence) *lua.LFunction {
	i := 0
	return L.NewFunction(func(L *lua.LState) int {
		if i >= s.Len() {
			L.Push(lua.LNil)
			return 1
		}
		i++
		L.Push(lua.LNumber(i))
		L.Push(rt.toLua(L, s.At(i-1), h.path.Append(document.Index(i))))
		return 2
	})
}

// rebase makes the path of a *document.PathError relative to the record
// rather than to the handle it was raised on.
func rebase(err error, prefix document.Path) error {
	var perr *document.PathError
	if len(prefix) == 0 || !errors.As(err, &perr) {
		return err
	}
	full := make(document.Path, 0, len(prefix)+len(perr.Path))
	full = append(append(full, prefix...), perr.Path...)
	perr.Path = full
	return err
}
