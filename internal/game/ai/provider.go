package ai

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/action"
	"github.com/cory-johannsen/arena/internal/game/fight"
)

// Provider chooses monster actions. It implements fight.ActionProvider.
//
// With a planner, the first planned action the monster owns and can afford
// is used. Without one, or when the plan yields nothing usable, the monster
// uses its first affordable attack, then its first attack of any cost, then
// passes.
type Provider struct {
	planner *Planner
	logger  *zap.Logger
}

// NewProvider returns a Provider. planner may be nil; a nil logger discards output.
func NewProvider(planner *Planner, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{planner: planner, logger: logger}
}

// ChooseAction plans against view and never fails; it does not block.
func (p *Provider) ChooseAction(ctx context.Context, view fight.View) (fight.Choice, error) {
	if err := ctx.Err(); err != nil {
		return fight.Choice{}, err
	}
	owned := make(map[string]*action.Action, len(view.Self.Actions))
	for _, a := range view.Self.Actions {
		owned[a.ID] = a
	}

	if p.planner != nil {
		plan, err := p.planner.Plan(BuildWorldState(view))
		if err != nil {
			p.logger.Warn("ai: planning failed", zap.String("fighter", view.Self.ID), zap.Error(err))
		}
		for _, step := range plan {
			if step.Action == action.PassID {
				return fight.Use(action.Pass), nil
			}
			a, ok := owned[step.Action]
			if !ok || a.Cost > view.Self.Energy {
				continue
			}
			p.logger.Debug("ai: planned action",
				zap.String("fighter", view.Self.ID),
				zap.Int("turn", view.Turn),
				zap.String("method", step.Method),
				zap.String("operator", step.Operator),
				zap.String("action", a.ID),
			)
			return fight.Use(a), nil
		}
	}
	return fight.Use(Fallback(view.Self)), nil
}

// Fallback returns the first affordable attack of self, else its first
// attack, else Pass.
func Fallback(self fight.FighterView) *action.Action {
	var firstAttack *action.Action
	for _, a := range self.Actions {
		if a.Category != action.CategoryAttack {
			continue
		}
		if a.Cost <= self.Energy {
			return a
		}
		if firstAttack == nil {
			firstAttack = a
		}
	}
	if firstAttack != nil {
		return firstAttack
	}
	return action.Pass
}
