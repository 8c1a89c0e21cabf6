package fight

// EventKind discriminates Event.
type EventKind int

const (
	EventTurnStarted EventKind = iota
	// EventAction carries the ResolvedEffect of one fighter's action, including passes and blocked turns.
	EventAction
	// EventTick reports end-of-turn alteration damage and expiry for one fighter.
	EventTick
	EventFinished
)

func (k EventKind) String() string {
	switch k {
	case EventTurnStarted:
		return "turn_started"
	case EventAction:
		return "action"
	case EventTick:
		return "tick"
	case EventFinished:
		return "finished"
	}
	return "unknown"
}

// Event is one observable step of a fight, in the order it happened.
type Event struct {
	Kind EventKind
	Turn int
	// Actor is the fighter index (0 or 1), or -1 for fight-level events.
	Actor  int
	Effect *ResolvedEffect
	// Damage is the periodic damage of an EventTick.
	Damage  int
	Expired []string
	// Err is the recovered error when an action was replaced by a pass.
	Err     error
	Summary *Summary
}

// Observer receives events synchronously from the goroutine driving the fight.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }
