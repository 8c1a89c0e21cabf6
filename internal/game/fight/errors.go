package fight

import (
	"errors"
	"fmt"
)

// ErrProviderTimeout may be returned by an ActionProvider that gave up
// waiting for a decision. The controller turns it into a pass.
var ErrProviderTimeout = errors.New("fight: action provider timed out")

// ErrFighterBusy is returned by Arena.Launch when a fighter is already in a running fight.
var ErrFighterBusy = errors.New("fight: fighter already in a running fight")

// ErrUnknownFight is returned by Arena lookups for an id that is not running.
var ErrUnknownFight = errors.New("fight: unknown fight")

// InvalidActionError reports a choice the acting fighter cannot perform. The
// controller recovers by substituting a pass for that turn.
type InvalidActionError struct {
	Turn      int
	FighterID string
	ActionID  string
	Reason    string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("fight: turn %d: fighter %q cannot use action %q: %s", e.Turn, e.FighterID, e.ActionID, e.Reason)
}

// ProviderTimeoutError reports an action provider that did not answer in time
// or failed. The controller recovers by substituting a pass for that turn.
type ProviderTimeoutError struct {
	Turn      int
	FighterID string
	Err       error
}

func (e *ProviderTimeoutError) Error() string {
	return fmt.Sprintf("fight: turn %d: no action from fighter %q: %v", e.Turn, e.FighterID, e.Err)
}

func (e *ProviderTimeoutError) Unwrap() error { return e.Err }

// Is matches ErrProviderTimeout so callers can test with errors.Is.
func (e *ProviderTimeoutError) Is(target error) bool { return target == ErrProviderTimeout }

// IllegalStateError reports an operation attempted in a state that forbids it,
// e.g. playing a turn of a finished fight. It is a contract violation and is
// never absorbed by the controller.
type IllegalStateError struct {
	Op    string
	State State
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("fight: %s not allowed in state %s", e.Op, e.State)
}

// ConfigurationError reports a reference to content that is not registered.
// It is raised at content load or fight setup, before any turn runs.
type ConfigurationError struct {
	Kind  string // "action", "alteration", "monster", "ai_domain", "hook" or "fighter"
	Ref   string
	Owner string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("fight: configuration: %s %q referenced by %q is not registered", e.Kind, e.Ref, e.Owner)
}
