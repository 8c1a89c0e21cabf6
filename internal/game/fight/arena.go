package fight

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// running tracks one launched fight.
type running struct {
	ctrl    *Controller
	done    chan struct{}
	summary *Summary
	err     error
}

// Arena runs many fights concurrently, one goroutine each, and keeps a
// fighter in at most one running fight at a time. Safe for concurrent use.
type Arena struct {
	mu     sync.RWMutex
	fights map[string]*running
	// busy maps fighter ID to the fight ID it is engaged in.
	busy   map[string]string
	logger *zap.Logger
}

// NewArena creates an empty Arena. A nil logger discards output.
func NewArena(logger *zap.Logger) *Arena {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Arena{
		fights: make(map[string]*running),
		busy:   make(map[string]string),
		logger: logger,
	}
}

// Launch starts ctrl.Run in a new goroutine and returns the fight ID.
//
// Precondition: ctrl must be in StateNotStarted.
// Postcondition: Returns ErrFighterBusy if either fighter is already fighting.
func (a *Arena) Launch(ctx context.Context, ctrl *Controller) (string, error) {
	if s := ctrl.State(); s != StateNotStarted {
		return "", &IllegalStateError{Op: "Launch", State: s}
	}
	a.mu.Lock()
	if _, exists := a.fights[ctrl.ID()]; exists {
		a.mu.Unlock()
		return "", fmt.Errorf("fight %q already launched", ctrl.ID())
	}
	for _, f := range ctrl.Fighters() {
		if other, ok := a.busy[f.ID()]; ok {
			a.mu.Unlock()
			return "", fmt.Errorf("fighter %q in fight %q: %w", f.ID(), other, ErrFighterBusy)
		}
	}
	r := &running{ctrl: ctrl, done: make(chan struct{})}
	a.fights[ctrl.ID()] = r
	for _, f := range ctrl.Fighters() {
		a.busy[f.ID()] = ctrl.ID()
	}
	a.mu.Unlock()

	go func() {
		r.summary, r.err = ctrl.Run(ctx)
		if r.err != nil {
			a.logger.Error("fight failed", zap.String("fight_id", ctrl.ID()), zap.Error(r.err))
		}
		a.mu.Lock()
		for _, f := range ctrl.Fighters() {
			if a.busy[f.ID()] == ctrl.ID() {
				delete(a.busy, f.ID())
			}
		}
		a.mu.Unlock()
		close(r.done)
	}()
	return ctrl.ID(), nil
}

// Wait blocks until the fight finishes or ctx ends, then forgets the fight.
//
// Postcondition: Returns ErrUnknownFight if id was never launched or was already collected.
func (a *Arena) Wait(ctx context.Context, id string) (*Summary, error) {
	a.mu.RLock()
	r, ok := a.fights[id]
	a.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFight, id)
	}
	select {
	case <-r.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	a.mu.Lock()
	delete(a.fights, id)
	a.mu.Unlock()
	return r.summary, r.err
}

// Controller returns the controller of a launched fight.
func (a *Arena) Controller(id string) (*Controller, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	r, ok := a.fights[id]
	if !ok {
		return nil, false
	}
	return r.ctrl, true
}

// FightOf returns the ID of the running fight fighterID is engaged in.
func (a *Arena) FightOf(fighterID string) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	id, ok := a.busy[fighterID]
	return id, ok
}

// Surrender forwards a surrender of fighter index to fight id.
func (a *Arena) Surrender(id string, index int) error {
	ctrl, ok := a.Controller(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFight, id)
	}
	return ctrl.Surrender(index)
}

// Disconnect cancels the running fight of fighterID on its behalf.
//
// Postcondition: Returns ErrUnknownFight if the fighter is not fighting.
func (a *Arena) Disconnect(fighterID string) error {
	id, ok := a.FightOf(fighterID)
	if !ok {
		return fmt.Errorf("%w: fighter %q is not fighting", ErrUnknownFight, fighterID)
	}
	ctrl, ok := a.Controller(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFight, id)
	}
	for i, f := range ctrl.Fighters() {
		if f.ID() == fighterID {
			a.logger.Info("fighter disconnected", zap.String("fight_id", id), zap.String("fighter", fighterID))
			return ctrl.Cancel(i)
		}
	}
	return fmt.Errorf("%w: fighter %q is not in fight %q", ErrUnknownFight, fighterID, id)
}

// AbortAll aborts every running fight, e.g. on shutdown.
func (a *Arena) AbortAll() {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, r := range a.fights {
		_ = r.ctrl.Abort()
	}
}

// Running returns the number of fights launched and not yet collected by Wait.
func (a *Arena) Running() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.fights)
}
