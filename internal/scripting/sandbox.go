// Package scripting provides a sandboxed GopherLua environment for the AI
// precondition scripts of monster behaviour domains. It has no dependency on
// the fight engine; fighters are passed in as FighterInfo snapshots.
package scripting

import (
	"context"
	"errors"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes one script
// execution may run when no override is configured.
const DefaultInstructionLimit = 100_000

// ErrBudgetExhausted is the error a script is aborted with once it has used
// its whole opcode budget.
var ErrBudgetExhausted = errors.New("lua opcode budget exhausted")

// strippedGlobals are removed from every sandbox after the safe libraries
// are opened: they would let a script read files or load unchecked code.
var strippedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require"}

// opBudget is the context installed on an LState for one execution.
// GopherLua polls Done once per opcode, so counting those polls bounds the
// execution to exactly limit opcodes. The LState is single-threaded; only
// stop may be reached from another goroutine.
type opBudget struct {
	context.Context
	remaining int
	done      chan struct{}
	once      sync.Once
}

func newOpBudget(limit int) *opBudget {
	return &opBudget{Context: context.Background(), remaining: limit, done: make(chan struct{})}
}

func (b *opBudget) Done() <-chan struct{} {
	b.remaining--
	if b.remaining == 0 {
		b.stop()
	}
	return b.done
}

func (b *opBudget) Err() error {
	select {
	case <-b.done:
		if b.remaining <= 0 {
			return ErrBudgetExhausted
		}
		return context.Canceled
	default:
		return nil
	}
}

func (b *opBudget) stop() { b.once.Do(func() { close(b.done) }) }

// Arm gives L a fresh budget of limit opcodes for its next execution. The
// returned func ends the budget; code run on L afterwards, without a new
// Arm, aborts at its first opcode.
//
// Precondition: limit >= 0; 0 uses DefaultInstructionLimit.
func Arm(L *lua.LState, limit int) context.CancelFunc {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	b := newOpBudget(limit)
	L.SetContext(b)
	return b.stop
}

// NewSandboxedState creates an LState with only the base, table, string and
// math libraries, strippedGlobals removed, and a first budget of instLimit
// opcodes (see Arm).
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns a non-nil LState ready for RegisterModules and DoFile.
// The caller owns the LState and must call L.Close() when done.
func NewSandboxedState(instLimit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range strippedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	Arm(L, instLimit)
	return L
}
