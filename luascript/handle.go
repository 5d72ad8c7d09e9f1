package luascript

import (
	"bytes"
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/arnodel/jsonscript/document"
	"github.com/arnodel/jsonscript/encoding/json"
)

const handleTypeName = "jsonscript.document"

// A handle is a live view of a container inside a record.  The path is only
// used to report errors relative to the record.
type handle struct {
	c    document.Value // *document.Mapping or *document.Sequence
	path document.Path
}

func (rt *runtime) newHandle(L *lua.LState, c document.Value, path document.Path) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = &handle{c: c, path: path}
	ud.Metatable = rt.handleMT
	return ud
}

func toHandle(lv lua.LValue) *handle {
	if ud, ok := lv.(*lua.LUserData); ok {
		if h, ok := ud.Value.(*handle); ok {
			return h
		}
	}
	return nil
}

func checkHandle(L *lua.LState, n int) *handle {
	h := toHandle(L.Get(n))
	if h == nil {
		L.ArgError(n, "document expected, got "+L.Get(n).Type().String())
	}
	return h
}

func (rt *runtime) newHandleMetatable() *lua.LTable {
	mt := rt.L.NewTypeMetatable(handleTypeName)
	rt.L.SetFuncs(mt, map[string]lua.LGFunction{
		"__index":    rt.handleIndex,
		"__newindex": rt.handleNewIndex,
		"__len":      rt.handleLen,
		"__tostring": rt.handleToString,
		"__eq":       rt.handleEq,
	})
	return mt
}

func (rt *runtime) handleIndex(L *lua.LState) int {
	h := checkHandle(L, 1)
	acc, err := accessorOf(L.Get(2))
	if err != nil {
		rt.raise(L, err)
	}
	v, err := document.Get(h.c, document.Path{acc})
	if err != nil {
		rt.raise(L, rebase(err, h.path))
	}
	L.Push(rt.toLua(L, v, h.path.Append(acc)))
	return 1
}

func (rt *runtime) handleNewIndex(L *lua.LState) int {
	h := checkHandle(L, 1)
	acc, err := accessorOf(L.Get(2))
	if err != nil {
		rt.raise(L, err)
	}
	v, err := rt.fromLua(L.Get(3))
	if err != nil {
		L.ArgError(3, err.Error())
	}
	if err := document.Set(h.c, document.Path{acc}, v); err != nil {
		rt.raise(L, rebase(err, h.path))
	}
	return 0
}

func (rt *runtime) handleLen(L *lua.LState) int {
	h := checkHandle(L, 1)
	switch c := h.c.(type) {
	case *document.Mapping:
		L.Push(lua.LNumber(c.Len()))
	case *document.Sequence:
		L.Push(lua.LNumber(c.Len()))
	}
	return 1
}

func (rt *runtime) handleToString(L *lua.LState) int {
	h := checkHandle(L, 1)
	L.Push(lua.LString(rt.encode(L, h.c)))
	return 1
}

// Two handles are equal when they view the same container.
func (rt *runtime) handleEq(L *lua.LState) int {
	a, b := toHandle(L.Get(1)), toHandle(L.Get(2))
	L.Push(lua.LBool(a != nil && b != nil && a.c == b.c))
	return 1
}

func (rt *runtime) encode(L *lua.LState, v document.Value) string {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf, 0).Encode(v); err != nil {
		rt.raise(L, err)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}))
}

// accessorOf turns a Lua key into an Accessor: strings are keys and integral
// numbers are 1-based indices.
func accessorOf(k lua.LValue) (document.Accessor, error) {
	switch x := k.(type) {
	case lua.LString:
		return document.Key(x), nil
	case lua.LNumber:
		f := float64(x)
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
			return nil, fmt.Errorf("invalid index %s: %w", x, document.ErrPathType)
		}
		return document.Index(int(f)), nil
	default:
		return nil, fmt.Errorf("cannot index a document with a %s: %w", k.Type(), document.ErrPathType)
	}
}
