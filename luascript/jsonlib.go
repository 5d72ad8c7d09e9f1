package luascript

import (
	"errors"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/arnodel/jsonscript/document"
	"github.com/arnodel/jsonscript/stream"
)

func (rt *runtime) newJSONLib() *lua.LTable {
	L := rt.L
	lib := L.NewTable()
	L.SetFuncs(lib, map[string]lua.LGFunction{
		"object": rt.jsonObject,
		"array":  rt.jsonArray,
		"get":    rt.jsonGet,
		"set":    rt.jsonSet,
		"has":    rt.jsonHas,
		"remove": rt.jsonRemove,
		"append": rt.jsonAppend,
		"clone":  rt.jsonClone,
		"type":   rt.jsonType,
		"encode": rt.jsonEncode,
		"decode": rt.jsonDecode,
	})
	L.SetField(lib, "null", rt.null)
	return lib
}

// json.object() returns a new empty object.
func (rt *runtime) jsonObject(L *lua.LState) int {
	L.Push(rt.newHandle(L, document.NewMapping(), nil))
	return 1
}

// json.array(...) returns a new array containing the arguments.
func (rt *runtime) jsonArray(L *lua.LState) int {
	s := document.NewSequence()
	for i := 1; i <= L.GetTop(); i++ {
		v, err := rt.fromLua(L.Get(i))
		if err != nil {
			L.ArgError(i, err.Error())
		}
		s.Append(v)
	}
	L.Push(rt.newHandle(L, s, nil))
	return 1
}

func checkPath(L *lua.LState, n int) document.Path {
	p, err := document.ParsePath(L.CheckString(n))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return p
}

// json.get(doc, path) returns the value at path, e.g. json.get(doc, "a.b[2]").
func (rt *runtime) jsonGet(L *lua.LState) int {
	h := checkHandle(L, 1)
	p := checkPath(L, 2)
	v, err := document.Get(h.c, p)
	if err != nil {
		rt.raise(L, rebase(err, h.path))
	}
	L.Push(rt.toLua(L, v, append(h.path[:len(h.path):len(h.path)], p...)))
	return 1
}

// json.set(doc, path, v) sets the value at path to a copy of v.
func (rt *runtime) jsonSet(L *lua.LState) int {
	h := checkHandle(L, 1)
	p := checkPath(L, 2)
	v, err := rt.fromLua(L.Get(3))
	if err != nil {
		L.ArgError(3, err.Error())
	}
	if err := document.Set(h.c, p, v); err != nil {
		rt.raise(L, rebase(err, h.path))
	}
	return 0
}

func (rt *runtime) checkMapping(L *lua.LState, n int, key string) *document.Mapping {
	h := checkHandle(L, n)
	m, ok := h.c.(*document.Mapping)
	if !ok {
		rt.raise(L, &document.PathError{Path: h.path.Append(document.Key(key)), On: h.c.Kind(), Err: document.ErrPathType})
	}
	return m
}

// json.has(obj, key) reports whether obj has an entry for key.
func (rt *runtime) jsonHas(L *lua.LState) int {
	key := L.CheckString(2)
	L.Push(lua.LBool(rt.checkMapping(L, 1, key).Has(key)))
	return 1
}

// json.remove(obj, key) removes the entry for key and reports whether there
// was one.
func (rt *runtime) jsonRemove(L *lua.LState) int {
	key := L.CheckString(2)
	L.Push(lua.LBool(rt.checkMapping(L, 1, key).Delete(key)))
	return 1
}

// json.append(arr, v) appends a copy of v to arr.
func (rt *runtime) jsonAppend(L *lua.LState) int {
	h := checkHandle(L, 1)
	s, ok := h.c.(*document.Sequence)
	if !ok {
		rt.raise(L, &document.PathError{Path: h.path.Append(document.Index(h.c.(*document.Mapping).Len() + 1)), On: h.c.Kind(), Err: document.ErrPathType})
	}
	v, err := rt.fromLua(L.Get(2))
	if err != nil {
		L.ArgError(2, err.Error())
	}
	s.Append(v)
	return 0
}

// json.clone(v) returns a deep copy of v, detached from its record.
func (rt *runtime) jsonClone(L *lua.LState) int {
	v, err := rt.fromLua(L.CheckAny(1))
	if err != nil {
		L.ArgError(1, err.Error())
	}
	L.Push(rt.toLua(L, document.Clone(v), nil))
	return 1
}

// json.type(v) returns the JSON kind of v: null, boolean, number, string,
// array or object.  Lua values without a JSON counterpart give their Lua
// type name.
func (rt *runtime) jsonType(L *lua.LState) int {
	lv := L.CheckAny(1)
	v, err := rt.fromLua(lv)
	if err != nil {
		L.Push(lua.LString(lv.Type().String()))
		return 1
	}
	L.Push(lua.LString(v.Kind().String()))
	return 1
}

// json.encode(v) returns the compact JSON text of v.
func (rt *runtime) jsonEncode(L *lua.LState) int {
	v, err := rt.fromLua(L.CheckAny(1))
	if err != nil {
		L.ArgError(1, err.Error())
	}
	L.Push(lua.LString(rt.encode(L, v)))
	return 1
}

var errTrailingData = errors.New("json.decode: unexpected data after value")

// json.decode(s) parses a single JSON value.
func (rt *runtime) jsonDecode(L *lua.LState) int {
	src := stream.NewSource(strings.NewReader(L.CheckString(1)))
	v, err := src.Next()
	if err == stream.EndOfStream {
		err = errors.New("json.decode: no value")
	}
	if err != nil {
		rt.raise(L, err)
	}
	if _, err := src.Next(); err != stream.EndOfStream {
		rt.raise(L, errTrailingData)
	}
	L.Push(rt.toLua(L, v, nil))
	return 1
}
