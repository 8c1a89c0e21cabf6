package fight

import (
	"context"
	"fmt"
	"sync"

	"github.com/cory-johannsen/arena/internal/game/action"
)

// Choice is a provider's decision: an action, or a surrender.
type Choice struct {
	Action    *action.Action
	Surrender bool
}

// Use returns a Choice for a.
func Use(a *action.Action) Choice { return Choice{Action: a} }

// SurrenderChoice ends the fight with the choosing fighter as loser.
var SurrenderChoice = Choice{Surrender: true}

// ActionProvider supplies a fighter's decision for the current turn. The
// controller bounds every call with Rules.ProviderTimeout via ctx; a provider
// that returns an error, returns late, or returns an action that is not the
// fighter's own registered definition passes its turn.
type ActionProvider interface {
	ChooseAction(ctx context.Context, view View) (Choice, error)
}

// ProviderFunc adapts a function to ActionProvider.
type ProviderFunc func(ctx context.Context, view View) (Choice, error)

func (f ProviderFunc) ChooseAction(ctx context.Context, view View) (Choice, error) {
	return f(ctx, view)
}

// SequenceProvider replays a fixed list of actions, repeating the last one.
// An empty sequence always passes.
type SequenceProvider struct {
	mu      sync.Mutex
	actions []*action.Action
	next    int
}

// NewSequenceProvider returns a provider replaying actions in order.
func NewSequenceProvider(actions ...*action.Action) *SequenceProvider {
	return &SequenceProvider{actions: actions}
}

func (p *SequenceProvider) ChooseAction(_ context.Context, _ View) (Choice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.actions) == 0 {
		return Use(action.Pass), nil
	}
	a := p.actions[min(p.next, len(p.actions)-1)]
	p.next++
	return Use(a), nil
}

// ChannelProvider forwards decisions submitted from another goroutine, e.g.
// a client connection handler.
type ChannelProvider struct {
	choices chan Choice
}

// NewChannelProvider returns a provider buffering at most one pending choice.
func NewChannelProvider() *ChannelProvider {
	return &ChannelProvider{choices: make(chan Choice, 1)}
}

// Submit hands a choice to the fight, blocking until it is buffered or ctx ends.
func (p *ChannelProvider) Submit(ctx context.Context, c Choice) error {
	select {
	case p.choices <- c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *ChannelProvider) ChooseAction(ctx context.Context, _ View) (Choice, error) {
	select {
	case c := <-p.choices:
		return c, nil
	case <-ctx.Done():
		return Choice{}, fmt.Errorf("%w: %w", ErrProviderTimeout, ctx.Err())
	}
}
