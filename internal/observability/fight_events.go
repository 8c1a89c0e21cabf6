package observability

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/fight"
)

// FightEventLogger returns an observer writing one log entry per fight event.
// Turn starts, actions and ticks are logged at Debug; recovered provider
// failures at Warn; the final summary at Info.
//
// Precondition: logger must not be nil.
func FightEventLogger(logger *zap.Logger) fight.Observer {
	return fight.ObserverFunc(func(e fight.Event) {
		fields := []zap.Field{zap.String("event", e.Kind.String()), zap.Int("turn", e.Turn)}
		if e.Actor >= 0 {
			fields = append(fields, zap.Int("actor", e.Actor))
		}
		switch e.Kind {
		case fight.EventAction:
			if eff := e.Effect; eff != nil {
				fields = append(fields,
					zap.String("action", eff.ActionID),
					zap.String("outcome", eff.Outcome.String()),
					zap.Int("damage", eff.DamageDealt),
					zap.Int("healed", eff.Healed),
				)
				if eff.AlterationInflicted != "" {
					fields = append(fields, zap.String("alteration", eff.AlterationInflicted))
				}
			}
			if e.Err != nil {
				logger.Warn("fight action replaced by pass", append(fields, zap.Error(e.Err))...)
				return
			}
		case fight.EventTick:
			fields = append(fields, zap.Int("damage", e.Damage), zap.Strings("expired", e.Expired))
		case fight.EventFinished:
			if s := e.Summary; s != nil {
				logger.Info("fight summary",
					zap.String("fight_id", s.FightID()),
					zap.String("reason", s.Reason().String()),
					zap.Int("winner", s.Winner()),
					zap.Int("turns", s.Turns()),
					zap.Int("delta_0", s.ScoreDelta(0)),
					zap.Int("delta_1", s.ScoreDelta(1)),
				)
				return
			}
		}
		logger.Debug("fight event", fields...)
	})
}
