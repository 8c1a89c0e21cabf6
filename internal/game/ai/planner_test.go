package ai_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/action"
	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/scripting"
)

// mockScriptCaller returns result for every hook and records the hooks called.
type mockScriptCaller struct {
	result bool
	calls  []string
}

func (m *mockScriptCaller) Check(scope, hook string, _ int, _, _ *scripting.FighterInfo) (bool, error) {
	m.calls = append(m.calls, scope+":"+hook)
	return m.result, nil
}

var (
	bite  = &action.Action{ID: "bite", Name: "Bite", Cost: 0, BasePower: 8, Target: action.TargetOpponent, Category: action.CategoryAttack}
	maul  = &action.Action{ID: "maul", Name: "Maul", Cost: 15, BasePower: 20, Target: action.TargetOpponent, Category: action.CategoryAttack}
	howl  = &action.Action{ID: "howl", Name: "Howl", Cost: 5, Target: action.TargetOpponent, Category: action.CategoryDebuff, Alteration: "weak", AlterationChance: 1}
	lick  = &action.Action{ID: "lick", Name: "Lick Wounds", Cost: 10, BasePower: 10, Target: action.TargetSelf, Category: action.CategoryHeal}
	snarl = &action.Action{ID: "snarl", Name: "Snarl", Cost: 5, Target: action.TargetSelf, Category: action.CategoryBuff, Alteration: "protected", AlterationChance: 1}
)

func wolfDomain() *ai.Domain {
	return &ai.Domain{
		ID: "wolf",
		Tasks: []*ai.Task{
			{ID: "behave"},
			{ID: "fight"},
		},
		Methods: []*ai.Method{
			{TaskID: "behave", ID: "recover", Precondition: "wounded", Subtasks: []string{"do_heal", "fight"}},
			{TaskID: "behave", ID: "hunt", Subtasks: []string{"fight"}},
			{TaskID: "fight", ID: "brawl", Subtasks: []string{"big_hit", "small_hit"}},
		},
		Operators: []*ai.Operator{
			{ID: "do_heal", Action: ai.SelectHeal},
			{ID: "big_hit", Action: ai.SelectBestAttack},
			{ID: "small_hit", Action: "bite"},
		},
	}
}

func wolfState(energy int) *ai.WorldState {
	return &ai.WorldState{
		Turn: 1,
		Self: &ai.FighterState{ID: "wolf-1", Health: 10, MaxHealth: 40, Energy: energy, Actions: []*action.Action{bite, maul, howl, lick, snarl}},
		Opponent: &ai.FighterState{ID: "alice", Health: 50, MaxHealth: 50, IsPlayer: true},
	}
}

func TestPlanner_Plan_TakesPreconditionBranch(t *testing.T) {
	caller := &mockScriptCaller{result: true}
	planner := ai.NewPlanner(wolfDomain(), caller, "wolf")

	plan, err := planner.Plan(wolfState(20))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	got := actionIDs(plan)
	want := []string{"lick", "maul", "bite"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if len(caller.calls) != 1 || caller.calls[0] != "wolf:wounded" {
		t.Fatalf("unexpected precondition calls %v", caller.calls)
	}
}

func TestPlanner_Plan_FallsThroughWhenPreconditionFalse(t *testing.T) {
	planner := ai.NewPlanner(wolfDomain(), &mockScriptCaller{result: false}, "wolf")

	plan, err := planner.Plan(wolfState(20))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan) != 2 || plan[0].Action != "maul" || plan[1].Action != "bite" {
		t.Fatalf("expected [maul bite], got %v", actionIDs(plan))
	}
}

func TestPlanner_Plan_SelectorsRespectEnergy(t *testing.T) {
	planner := ai.NewPlanner(wolfDomain(), &mockScriptCaller{result: true}, "wolf")

	plan, err := planner.Plan(wolfState(5))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	// lick costs 10 and maul 15: both selectors come back empty.
	if plan[0].Action != "" || plan[1].Action != "bite" || plan[2].Action != "bite" {
		t.Fatalf("unexpected plan %v", actionIDs(plan))
	}
}

func TestPlanner_Plan_RecordsMethodAndCachesHooks(t *testing.T) {
	domain := &ai.Domain{
		ID:    "cautious",
		Tasks: []*ai.Task{{ID: "behave"}, {ID: "fight"}},
		Methods: []*ai.Method{
			{TaskID: "behave", ID: "open", Precondition: "wounded", Subtasks: []string{"fight"}},
			{TaskID: "fight", ID: "careful", Precondition: "wounded", Subtasks: []string{"small_hit"}},
		},
		Operators: []*ai.Operator{{ID: "small_hit", Action: "bite"}},
	}
	caller := &mockScriptCaller{result: true}
	plan, err := ai.NewPlanner(domain, caller, "cautious").Plan(wolfState(0))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan) != 1 || plan[0].Method != "careful" || plan[0].Operator != "small_hit" {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if len(caller.calls) != 1 {
		t.Fatalf("expected one hook call per plan, got %v", caller.calls)
	}
}

func TestPlanner_Plan_RejectsNilState(t *testing.T) {
	planner := ai.NewPlanner(wolfDomain(), &mockScriptCaller{}, "wolf")
	if _, err := planner.Plan(&ai.WorldState{}); err == nil {
		t.Fatal("expected error for empty state")
	}
}

func TestPlanner_Plan_EmptyDomainReturnsEmpty(t *testing.T) {
	domain := &ai.Domain{ID: "empty", Tasks: []*ai.Task{{ID: "behave"}}}
	planner := ai.NewPlanner(domain, &mockScriptCaller{}, "empty")
	plan, err := planner.Plan(wolfState(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan) != 0 {
		t.Fatalf("expected empty plan, got %v", plan)
	}
}

func TestPlanner_Plan_RecursiveDomainIsBounded(t *testing.T) {
	domain := &ai.Domain{
		ID:        "loop",
		Tasks:     []*ai.Task{{ID: "behave"}},
		Methods:   []*ai.Method{{TaskID: "behave", ID: "again", Subtasks: []string{"hit", "behave"}}},
		Operators: []*ai.Operator{{ID: "hit", Action: "bite"}},
	}
	planner := ai.NewPlanner(domain, &mockScriptCaller{}, "loop")
	plan, err := planner.Plan(wolfState(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan) == 0 || len(plan) > 32 {
		t.Fatalf("expected a bounded non-empty plan, got %d steps", len(plan))
	}
}

func TestNewPlanner_PanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	ai.NewPlanner(nil, &mockScriptCaller{}, "x")
}

func TestProperty_Planner_NeverReturnsNilSlice(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		caller := &mockScriptCaller{result: rapid.Bool().Draw(rt, "precond")}
		planner := ai.NewPlanner(wolfDomain(), caller, "wolf")
		plan, err := planner.Plan(wolfState(rapid.IntRange(0, 30).Draw(rt, "energy")))
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if plan == nil {
			rt.Fatal("Plan must return non-nil slice")
		}
	})
}

func actionIDs(plan []ai.PlannedAction) []string {
	out := make([]string, len(plan))
	for i, p := range plan {
		out[i] = p.Action
	}
	return out
}
