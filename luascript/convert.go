package luascript

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/arnodel/jsonscript/document"
)

var errCycle = errors.New("cannot convert a table that contains itself")

// nullValue is the Value of the json.null userdata.
type nullValue struct{}

func (rt *runtime) newNull() *lua.LUserData {
	L := rt.L
	mt := L.NewTable()
	L.SetFuncs(mt, map[string]lua.LGFunction{
		"__tostring": func(L *lua.LState) int {
			L.Push(lua.LString("null"))
			return 1
		},
	})
	ud := L.NewUserData()
	ud.Value = nullValue{}
	ud.Metatable = mt
	return ud
}

// toLua converts a document value.  Containers become handles viewing v,
// path is where v sits in its record.
func (rt *runtime) toLua(L *lua.LState, v document.Value, path document.Path) lua.LValue {
	switch x := v.(type) {
	case nil, document.Null:
		return rt.null
	case document.Bool:
		return lua.LBool(x)
	case document.Number:
		return lua.LNumber(x.Float64())
	case document.String:
		return lua.LString(x)
	default:
		return rt.newHandle(L, v, path)
	}
}

// fromLua converts a Lua value.  Handles are returned as is (callers storing
// them copy them).  nil and json.null become null, a table whose keys are
// exactly 1..n becomes a sequence (so an empty table is []), any other table
// becomes a mapping in iteration order.
func (rt *runtime) fromLua(lv lua.LValue) (document.Value, error) {
	return rt.convert(lv, map[*lua.LTable]bool{})
}

func (rt *runtime) convert(lv lua.LValue, active map[*lua.LTable]bool) (document.Value, error) {
	switch x := lv.(type) {
	case *lua.LNilType:
		return document.Null{}, nil
	case lua.LBool:
		return document.Bool(x), nil
	case lua.LNumber:
		return document.Float(float64(x)), nil
	case lua.LString:
		return document.String(x), nil
	case *lua.LUserData:
		switch v := x.Value.(type) {
		case *handle:
			return v.c, nil
		case nullValue:
			return document.Null{}, nil
		}
	case *lua.LTable:
		if active[x] {
			return nil, errCycle
		}
		active[x] = true
		defer delete(active, x)
		if isSequence(x) {
			return rt.convertSequence(x, active)
		}
		return rt.convertMapping(x, active)
	}
	return nil, fmt.Errorf("cannot convert a %s to JSON", lv.Type())
}

func isSequence(t *lua.LTable) bool {
	n := 0
	for k, _ := t.Next(lua.LNil); k != lua.LNil; k, _ = t.Next(k) {
		if _, ok := k.(lua.LNumber); !ok {
			return false
		}
		n++
	}
	for i := 1; i <= n; i++ {
		if t.RawGetInt(i) == lua.LNil {
			return false
		}
	}
	return true
}

func (rt *runtime) convertSequence(t *lua.LTable, active map[*lua.LTable]bool) (document.Value, error) {
	s := document.NewSequence()
	for i := 1; ; i++ {
		item := t.RawGetInt(i)
		if item == lua.LNil {
			return s, nil
		}
		v, err := rt.convert(item, active)
		if err != nil {
			return nil, err
		}
		s.Append(v)
	}
}

func (rt *runtime) convertMapping(t *lua.LTable, active map[*lua.LTable]bool) (document.Value, error) {
	m := document.NewMapping()
	for k, item := t.Next(lua.LNil); k != lua.LNil; k, item = t.Next(k) {
		key, err := mappingKey(k)
		if err != nil {
			return nil, err
		}
		v, err := rt.convert(item, active)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	return m, nil
}

func mappingKey(k lua.LValue) (string, error) {
	switch x := k.(type) {
	case lua.LString:
		return string(x), nil
	case lua.LNumber:
		f := float64(x)
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return strconv.FormatInt(int64(f), 10), nil
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("cannot use a %s as an object key", k.Type())
	}
}
