package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// GlobalScope is the reserved scope for shared scripts loaded via LoadGlobal.
// CallHook falls back to it when no VM is loaded for the requested scope.
const GlobalScope = "__global__"

// FighterInfo is a snapshot of a fighter passed to Lua preconditions as a table
// with the same field names in snake_case.
type FighterInfo struct {
	ID          string
	Name        string
	IsPlayer    bool
	Health      int
	MaxHealth   int
	Energy      int
	MaxEnergy   int
	Attack      int
	Defense     int
	Speed       int
	CanAct      bool
	Alterations []string
	Actions     []string
}

// vm is one sandboxed LState. LStates are single-threaded, so every use holds mu.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per scope (one per AI domain, plus the
// global scope) and exposes hook dispatch. Safe for concurrent use: calls
// into the same scope are serialised, different scopes run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no scopes loaded.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		logger: logger,
	}
}

// LoadScope creates a sandboxed VM for scope, registers the arena module,
// then executes every *.lua file in scriptDir in lexicographic order. A VM
// already loaded for scope is replaced.
//
// Precondition: scope must be non-empty; scriptDir must be a readable directory.
// Postcondition: returns error on read or Lua load failure, leaving any previous VM in place.
func (m *Manager) LoadScope(scope, scriptDir string, instLimit int) error {
	if scope == "" {
		return fmt.Errorf("scripting: scope must not be empty")
	}
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, scope, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState(instLimit)
	m.RegisterModules(L, scope)
	for _, path := range luaFiles {
		cancel := Arm(L, instLimit)
		err := L.DoFile(path)
		cancel()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, scope, err)
		}
	}

	m.mu.Lock()
	old := m.vms[scope]
	m.vms[scope] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()
	if old != nil {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.logger.Debug("scripting: scope loaded", zap.String("scope", scope), zap.Int("files", len(luaFiles)))
	return nil
}

// LoadGlobal loads the shared scripts every scope falls back to.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.LoadScope(GlobalScope, scriptDir, instLimit)
}

// Scopes returns the loaded scope names in sorted order.
func (m *Manager) Scopes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.vms))
	for s := range m.vms {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (m *Manager) lookup(scope string) *vm {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.vms[scope]; ok {
		return v
	}
	return m.vms[GlobalScope]
}

// HasHook reports whether hook resolves to a Lua function in scope, using
// the same global fallback as CallHook.
func (m *Manager) HasHook(scope, hook string) bool {
	v := m.lookup(scope)
	if v == nil {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.L.IsClosed() {
		return false
	}
	return v.L.GetGlobal(hook).Type() == lua.LTFunction
}

// CallHook calls the named Lua global function in scope's VM, falling back to
// the global VM. Returns (LNil, nil) if the hook is not defined or no VM
// exists. Lua runtime errors, including an exhausted instruction budget, are
// logged at Warn level and never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	return m.call(scope, hook, func(*lua.LState) []lua.LValue { return args })
}

// Check evaluates the precondition hook with (self, opponent, turn) and
// reports whether it returned a truthy value. Missing hooks and Lua errors
// count as false.
func (m *Manager) Check(scope, hook string, turn int, self, opponent *FighterInfo) (bool, error) {
	ret, err := m.call(scope, hook, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{fighterTable(L, self), fighterTable(L, opponent), lua.LNumber(turn)}
	})
	if err != nil {
		return false, err
	}
	return lua.LVAsBool(ret), nil
}

func (m *Manager) call(scope, hook string, build func(*lua.LState) []lua.LValue) (lua.LValue, error) {
	v := m.lookup(scope)
	if v == nil {
		m.logger.Debug("scripting: no VM for scope", zap.String("scope", scope), zap.String("hook", hook))
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.L.IsClosed() {
		return lua.LNil, nil
	}
	fn := v.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	cancel := Arm(v.L, v.limit)
	defer cancel()
	if err := v.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, build(v.L)...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

// Close releases every VM. Calls made after Close return LNil.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
	}
}

func fighterTable(L *lua.LState, f *FighterInfo) lua.LValue {
	if f == nil {
		return lua.LNil
	}
	t := L.NewTable()
	L.SetField(t, "id", lua.LString(f.ID))
	L.SetField(t, "name", lua.LString(f.Name))
	L.SetField(t, "is_player", lua.LBool(f.IsPlayer))
	L.SetField(t, "health", lua.LNumber(f.Health))
	L.SetField(t, "max_health", lua.LNumber(f.MaxHealth))
	L.SetField(t, "energy", lua.LNumber(f.Energy))
	L.SetField(t, "max_energy", lua.LNumber(f.MaxEnergy))
	L.SetField(t, "attack", lua.LNumber(f.Attack))
	L.SetField(t, "defense", lua.LNumber(f.Defense))
	L.SetField(t, "speed", lua.LNumber(f.Speed))
	L.SetField(t, "can_act", lua.LBool(f.CanAct))

	alts := L.NewTable()
	for _, kind := range f.Alterations {
		L.SetField(alts, kind, lua.LTrue)
	}
	L.SetField(t, "alterations", alts)

	acts := L.NewTable()
	for _, id := range f.Actions {
		acts.Append(lua.LString(id))
	}
	L.SetField(t, "actions", acts)
	return t
}
