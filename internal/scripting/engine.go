package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/l1jgo/attrs/internal/attribute"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding designer hooks for attributes
// and buffs. Scripts register hooks in two global tables:
//
//	attributes["max_health"] = { derived_from = {...}, compute_value = function(ctx) ... end }
//	buffs["drain"] = { applies_to = {...}, operate = function(values, names) ... end }
//
// Single-goroutine access only (simulation loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua VM and loads every script of scriptsDir, then of its
// attributes/ and buffs/ subdirectories. Missing directories are skipped.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("attributes", vm.NewTable())
	vm.SetGlobal("buffs", vm.NewTable())

	e := &Engine{vm: vm, log: log}
	for _, dir := range []string{
		scriptsDir,
		filepath.Join(scriptsDir, "attributes"),
		filepath.Join(scriptsDir, "buffs"),
	} {
		if err := e.loadDir(dir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// BindDefinition installs the derived_from and compute_value hooks registered
// for def's name. It reports whether any hook was bound.
func (e *Engine) BindDefinition(def *attribute.Definition) bool {
	name := def.AttributeName()
	entry := e.entry("attributes", name)
	if entry == nil {
		return false
	}
	bound := false
	if v := entry.RawGetString("derived_from"); v != lua.LNil {
		def.DerivedFrom = e.derivedFrom(name, v)
		bound = true
	}
	if fn, ok := entry.RawGetString("compute_value").(*lua.LFunction); ok {
		def.ComputeValue = e.computeValue(name, fn)
		bound = true
	}
	return bound
}

// BindBuff installs the applies_to and operate hooks registered under id. A
// buff with operate becomes multi-target.
func (e *Engine) BindBuff(id string, b *attribute.BuffDefinition) bool {
	entry := e.entry("buffs", id)
	if entry == nil {
		return false
	}
	bound := false
	if v := entry.RawGetString("applies_to"); v != lua.LNil {
		b.AppliesTo = attribute.AppliesToFunc(e.derivedFrom(id, v))
		bound = true
	}
	if fn, ok := entry.RawGetString("operate").(*lua.LFunction); ok {
		b.Operate = e.operate(id, fn)
		bound = true
	}
	return bound
}

func (e *Engine) entry(global, key string) *lua.LTable {
	tbl, ok := e.vm.GetGlobal(global).(*lua.LTable)
	if !ok {
		return nil
	}
	entry, _ := tbl.RawGetString(key).(*lua.LTable)
	return entry
}

// derivedFrom accepts a list of attribute names or a function(names) that
// returns one. Unknown names resolve to nothing.
func (e *Engine) derivedFrom(owner string, decl lua.LValue) attribute.DerivedFromFunc {
	return func(set *attribute.Set) []*attribute.Definition {
		if set == nil {
			return nil
		}
		list := decl
		if fn, ok := decl.(*lua.LFunction); ok {
			ret, err := e.call(fn, e.stringList(set.Names()))
			if err != nil {
				e.log.Error("lua dependency hook error", zap.String("owner", owner), zap.Error(err))
				return nil
			}
			list = ret
		}
		tbl, ok := list.(*lua.LTable)
		if !ok {
			e.log.Error("lua dependency hook returned non-table", zap.String("owner", owner))
			return nil
		}
		var out []*attribute.Definition
		tbl.ForEach(func(_, v lua.LValue) {
			name := lua.LVAsString(v)
			if d := set.FindByName(name); d != nil {
				out = append(out, d)
			} else {
				e.log.Warn("lua dependency names unknown attribute",
					zap.String("owner", owner), zap.String("attribute", name))
			}
		})
		return out
	}
}

// computeValue falls back to the operated value when the script fails.
func (e *Engine) computeValue(name string, fn *lua.LFunction) attribute.ComputeValueFunc {
	return func(c *attribute.Computation) float64 {
		ret, err := e.call(fn, e.computationTable(c))
		if err != nil {
			e.log.Error("lua compute_value error", zap.String("attribute", name), zap.Error(err))
			return c.OperatedValue
		}
		n, ok := ret.(lua.LNumber)
		if !ok {
			e.log.Error("lua compute_value returned non-number",
				zap.String("attribute", name), zap.String("type", ret.Type().String()))
			return c.OperatedValue
		}
		return float64(n)
	}
}

// operate expects a list of {op = "add", value = n} tables, one per target.
// Any failure yields no operations, which the container rejects.
func (e *Engine) operate(id string, fn *lua.LFunction) attribute.OperateFunc {
	return func(values []float64, set *attribute.Set) []attribute.Operation {
		vals := e.vm.NewTable()
		for _, v := range values {
			vals.Append(lua.LNumber(v))
		}
		var names []string
		if set != nil {
			names = set.Names()
		}
		ret, err := e.call(fn, vals, e.stringList(names))
		if err != nil {
			e.log.Error("lua operate error", zap.String("buff", id), zap.Error(err))
			return nil
		}
		tbl, ok := ret.(*lua.LTable)
		if !ok {
			e.log.Error("lua operate returned non-table", zap.String("buff", id))
			return nil
		}
		ops := make([]attribute.Operation, 0, tbl.Len())
		for i := 1; i <= tbl.Len(); i++ {
			op, err := parseOperation(tbl.RawGetInt(i))
			if err != nil {
				e.log.Error("lua operate returned bad operation", zap.String("buff", id), zap.Int("index", i), zap.Error(err))
				return nil
			}
			ops = append(ops, op)
		}
		return ops
	}
}

func parseOperation(v lua.LValue) (attribute.Operation, error) {
	t, ok := v.(*lua.LTable)
	if !ok {
		return attribute.Operation{}, fmt.Errorf("expected table, got %s", v.Type())
	}
	kind, err := attribute.ParseOperationKind(lStr(t, "op"))
	if err != nil {
		return attribute.Operation{}, err
	}
	return attribute.Operation{Kind: kind, Operand: lNum(t, "value")}, nil
}

// computationTable packs a Computation for compute_value:
//
//	ctx.attribute, ctx.value, ctx.previous, ctx.operated_value
//	ctx.buff = { name, attribute, op, value } or nil on a dependency refresh
//	ctx.parents[name] = buffed value
//	ctx.get(name) -> base, buffed
func (e *Engine) computationTable(c *attribute.Computation) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("operated_value", lua.LNumber(c.OperatedValue))
	if ra := c.Attribute; ra != nil {
		t.RawSetString("attribute", lua.LString(ra.Name()))
		t.RawSetString("value", lua.LNumber(ra.Value()))
		t.RawSetString("previous", lua.LNumber(ra.PreviousValue()))
	}
	if b := c.Buff; b != nil {
		bt := e.vm.NewTable()
		bt.RawSetString("name", lua.LString(b.DisplayName))
		bt.RawSetString("attribute", lua.LString(b.AttributeName))
		bt.RawSetString("op", lua.LString(b.Operation.Kind.String()))
		bt.RawSetString("value", lua.LNumber(b.Operation.Operand))
		t.RawSetString("buff", bt)
	}

	parents := e.vm.NewTable()
	for _, p := range c.Parents() {
		parents.RawSetString(p.Name(), lua.LNumber(p.BuffedValue()))
	}
	t.RawSetString("parents", parents)

	container := c.Container
	t.RawSetString("get", e.vm.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if container == nil || !container.Has(name) {
			L.Push(lua.LNil)
			L.Push(lua.LNil)
			return 2
		}
		L.Push(lua.LNumber(container.Value(name)))
		L.Push(lua.LNumber(container.BuffedValue(name)))
		return 2
	}))
	return t
}

// call runs fn in protected mode and returns its first result.
func (e *Engine) call(fn *lua.LFunction, args ...lua.LValue) (lua.LValue, error) {
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		return lua.LNil, err
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	return ret, nil
}

func (e *Engine) stringList(items []string) *lua.LTable {
	t := e.vm.NewTable()
	for _, s := range items {
		t.Append(lua.LString(s))
	}
	return t
}

// --- Lua helpers ---

func lNum(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}

func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
