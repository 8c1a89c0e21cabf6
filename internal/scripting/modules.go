package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the arena global table into L:
//
//	arena.log.debug/info/warn/error(msg)  write to the manager's logger
//	arena.scope()                         name of the scope the VM serves
//
// Precondition: L must be from NewSandboxedState.
func (m *Manager) RegisterModules(L *lua.LState, scope string) {
	arena := L.NewTable()
	logger := m.logger.With(zap.String("scope", scope))

	logTable := L.NewTable()
	for name, fn := range map[string]func(string, ...zap.Field){
		"debug": logger.Debug,
		"info":  logger.Info,
		"warn":  logger.Warn,
		"error": logger.Error,
	} {
		L.SetField(logTable, name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	L.SetField(arena, "log", logTable)

	L.SetField(arena, "scope", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(scope))
		return 1
	}))

	L.SetGlobal("arena", arena)
}
