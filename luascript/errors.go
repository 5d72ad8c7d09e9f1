package luascript

import (
	"errors"

	lua "github.com/yuin/gopher-lua"

	"github.com/arnodel/jsonscript/document"
	"github.com/arnodel/jsonscript/stream"
)

const (
	kindKeyNotFound     = "KeyNotFound"
	kindIndexOutOfRange = "IndexOutOfRange"
	kindPathType        = "PathTypeError"
	kindMalformed       = "MalformedRecord"
	kindError           = "Error"
)

const errorTypeName = "jsonscript.error"

// raisedError is the Lua error value for Go errors, so that pcall sees e.kind
// and e.message.
type raisedError struct {
	kind string
	err  error
}

func classify(err error) string {
	switch {
	case errors.Is(err, document.ErrKeyNotFound):
		return kindKeyNotFound
	case errors.Is(err, document.ErrIndexOutOfRange):
		return kindIndexOutOfRange
	case errors.Is(err, document.ErrPathType):
		return kindPathType
	case errors.Is(err, stream.ErrMalformedRecord):
		return kindMalformed
	default:
		return kindError
	}
}

// raise raises err in the thread L, which is the one running the callback
// rather than always the main thread.
func (rt *runtime) raise(L *lua.LState, err error) {
	ud := L.NewUserData()
	ud.Value = &raisedError{kind: classify(err), err: err}
	ud.Metatable = rt.errorMT
	L.Error(ud, 1)
}

func (rt *runtime) newErrorMetatable() *lua.LTable {
	mt := rt.L.NewTypeMetatable(errorTypeName)
	rt.L.SetFuncs(mt, map[string]lua.LGFunction{
		"__index": func(L *lua.LState) int {
			r := checkRaised(L)
			switch L.CheckString(2) {
			case "kind":
				L.Push(lua.LString(r.kind))
			case "message":
				L.Push(lua.LString(r.err.Error()))
			default:
				L.Push(lua.LNil)
			}
			return 1
		},
		"__tostring": func(L *lua.LState) int {
			r := checkRaised(L)
			L.Push(lua.LString(r.kind + ": " + r.err.Error()))
			return 1
		},
	})
	return mt
}

func checkRaised(L *lua.LState) *raisedError {
	ud := L.CheckUserData(1)
	r, ok := ud.Value.(*raisedError)
	if !ok {
		L.ArgError(1, "error expected")
	}
	return r
}
