package ai

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/scripting"
)

// ScriptCaller is the interface required by the Planner to evaluate Lua preconditions.
type ScriptCaller interface {
	// Check calls the named precondition in scope's VM with (self, opponent, turn).
	// Missing hooks report false.
	Check(scope, hook string, turn int, self, opponent *scripting.FighterInfo) (bool, error)
}

// PlannedAction is one primitive action produced by the planner.
type PlannedAction struct {
	// Method is the method whose decomposition emitted the step; empty for
	// an operator named directly as the root task.
	Method   string
	Operator string
	// Action is the resolved action ID; empty when a selector matched nothing affordable.
	Action string
}

// Planner evaluates an HTN domain for a single monster and produces an
// ordered list of candidate actions for the current turn.
//
// Invariant: domain and caller must not be nil.
type Planner struct {
	domain *Domain
	caller ScriptCaller
	scope  string
}

// NewPlanner constructs a Planner evaluating preconditions in scope.
//
// Precondition: domain and caller must not be nil.
func NewPlanner(domain *Domain, caller ScriptCaller, scope string) *Planner {
	if domain == nil {
		panic("ai.NewPlanner: domain must not be nil")
	}
	if caller == nil {
		panic("ai.NewPlanner: caller must not be nil")
	}
	return &Planner{domain: domain, caller: caller, scope: scope}
}

// Domain returns the planner's domain.
func (p *Planner) Domain() *Domain { return p.domain }

// Plan evaluates the HTN domain against state and returns an ordered plan.
// The provider uses the first affordable entry.
//
// Precondition: state, state.Self and state.Opponent must not be nil.
// Postcondition: returns non-nil slice (may be empty); never returns error for Lua failures
// (they are treated as precondition-false).
func (p *Planner) Plan(state *WorldState) ([]PlannedAction, error) {
	if state == nil || state.Self == nil || state.Opponent == nil {
		return nil, fmt.Errorf("ai.Planner.Plan: state, state.Self and state.Opponent must not be nil")
	}
	ev := &evaluation{p: p, turn: state.Turn, self: state.Self.Info(), opp: state.Opponent.Info(), seen: make(map[string]bool)}

	type queued struct{ task, method string }
	taskQueue := []queued{{task: RootTask}}
	var result []PlannedAction

	const maxDepth = 32 // guard against infinite loops
	steps := 0

	for len(taskQueue) > 0 && steps < maxDepth {
		steps++
		current := taskQueue[0]
		taskQueue = taskQueue[1:]

		if op, ok := p.domain.OperatorByID(current.task); ok {
			result = append(result, PlannedAction{Method: current.method, Operator: op.ID, Action: state.ResolveAction(op.Action)})
			continue
		}

		method := ev.applicableMethod(current.task)
		if method == nil {
			continue
		}

		// Prepend subtasks (preserves ordered decomposition).
		next := make([]queued, 0, len(method.Subtasks)+len(taskQueue))
		for _, sub := range method.Subtasks {
			next = append(next, queued{task: sub, method: method.ID})
		}
		taskQueue = append(next, taskQueue...)
	}

	if result == nil {
		result = []PlannedAction{}
	}
	return result, nil
}

// evaluation is the precondition cache of one Plan call. Hooks see the same
// fighters for the whole call, so each is run at most once.
type evaluation struct {
	p         *Planner
	turn      int
	self, opp *scripting.FighterInfo
	seen      map[string]bool
}

// applicableMethod returns the first Method for taskID whose precondition passes,
// or nil if none applies.
//
// Methods are tried in declaration order. An empty Precondition always passes.
// A hook error counts as false.
func (e *evaluation) applicableMethod(taskID string) *Method {
	for _, m := range e.p.domain.MethodsForTask(taskID) {
		if m.Precondition == "" || e.holds(m.Precondition) {
			return m
		}
	}
	return nil
}

func (e *evaluation) holds(hook string) bool {
	if v, ok := e.seen[hook]; ok {
		return v
	}
	ok, err := e.p.caller.Check(e.p.scope, hook, e.turn, e.self, e.opp)
	v := err == nil && ok
	e.seen[hook] = v
	return v
}
