package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/content"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/fight"
	"github.com/cory-johannsen/arena/internal/observability"
	"github.com/cory-johannsen/arena/internal/storage/postgres"
)

// options are the simulator's command-line choices.
type options struct {
	PlayerID    string
	OpponentID  string
	Monster     string
	Level       int
	PlayerAI    string
	HeroActions []string
	Seed        uint64
	Friendly    bool
	Fights      int
}

// loadedPlayer is a player fighter plus the profile version it was loaded at.
type loadedPlayer struct {
	fighter *fight.PlayerFighter
	version int64
}

// match is one prepared fight.
type match struct {
	ctrl    *fight.Controller
	players []loadedPlayer
	monster *fight.MonsterFighter
	seed    uint64
}

func run(ctx context.Context, cfg config.Config, opts options, logger *zap.Logger, out io.Writer) error {
	if opts.Fights < 1 {
		return fmt.Errorf("fights must be >= 1, got %d", opts.Fights)
	}
	persistent := opts.PlayerID != "" || opts.OpponentID != ""
	if persistent && !cfg.Database.Enabled {
		return errors.New("profile IDs require database.enabled")
	}
	if persistent && opts.Fights > 1 {
		return errors.New("a profile can only be in one fight at a time; use -fights 1")
	}

	bundle, err := content.Load(cfg.Content, logger)
	if err != nil {
		return err
	}
	defer bundle.Close()

	var st *postgres.Store
	if cfg.Database.Enabled {
		st, err = postgres.Open(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	arena := fight.NewArena(logger)
	defer arena.AbortAll()

	seed := opts.Seed
	if seed == 0 {
		seed = dice.NewSeed()
	}

	matches := make(map[string]*match, opts.Fights)
	order := make([]string, 0, opts.Fights)
	for i := range opts.Fights {
		m, err := prepare(ctx, cfg, opts, i, seed+uint64(i), bundle, st, logger)
		if err != nil {
			return err
		}
		id, err := arena.Launch(ctx, m.ctrl)
		if err != nil {
			return err
		}
		matches[id] = m
		order = append(order, id)
	}

	for _, id := range order {
		sum, err := arena.Wait(ctx, id)
		if err != nil {
			return err
		}
		m := matches[id]
		printSummary(out, m, sum)
		if st != nil {
			if err := persist(ctx, st, m, sum, logger); err != nil {
				return err
			}
		}
	}
	return nil
}

// prepare builds fighters, providers and the controller of fight number n.
func prepare(ctx context.Context, cfg config.Config, opts options, n int, seed uint64, b *content.Bundle, st *postgres.Store, logger *zap.Logger) (*match, error) {
	m := &match{seed: seed}

	first, err := loadPlayer(ctx, opts.PlayerID, n, opts, b, st)
	if err != nil {
		return nil, err
	}
	m.players = append(m.players, first)
	firstProvider, err := b.Provider(opts.PlayerAI)
	if err != nil {
		return nil, err
	}

	var (
		second         fight.Fighter
		secondProvider fight.ActionProvider
	)
	if opts.OpponentID != "" {
		opp, err := loadPlayer(ctx, opts.OpponentID, n, opts, b, st)
		if err != nil {
			return nil, err
		}
		m.players = append(m.players, opp)
		second = opp.fighter
		if secondProvider, err = b.Provider(opts.PlayerAI); err != nil {
			return nil, err
		}
	} else {
		mon, err := b.Monster(fmt.Sprintf("%s-%d", opts.Monster, n+1), opts.Monster, opts.Level)
		if err != nil {
			return nil, err
		}
		m.monster = mon
		second = mon
		if secondProvider, err = b.MonsterProvider(mon); err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	flog := observability.FightLogger(logger, id, seed)
	var src dice.Source = dice.NewSeededSource(seed)
	if cfg.Fight.LogDraws {
		src = dice.NewLoggedSource(src, flog)
	}

	ctrl, err := fight.NewController(fight.Setup{
		ID:          id,
		Fighters:    [2]fight.Fighter{first.fighter, second},
		Providers:   [2]fight.ActionProvider{firstProvider, secondProvider},
		Friendly:    opts.Friendly,
		Rules:       cfg.Fight.Rules(),
		Alterations: b.Alterations,
		Source:      src,
		Logger:      logger,
		Observer:    observability.FightEventLogger(flog),
	})
	if err != nil {
		return nil, err
	}
	m.ctrl = ctrl
	return m, nil
}

func loadPlayer(ctx context.Context, profileID string, n int, opts options, b *content.Bundle, st *postgres.Store) (loadedPlayer, error) {
	if profileID == "" {
		f, err := b.Player(builtinHero(n, opts.HeroActions))
		return loadedPlayer{fighter: f}, err
	}
	snap, version, err := st.Profiles().Load(ctx, profileID)
	if err != nil {
		return loadedPlayer{}, fmt.Errorf("loading profile %q: %w", profileID, err)
	}
	f, err := b.Player(snap)
	if err != nil {
		return loadedPlayer{}, err
	}
	return loadedPlayer{fighter: f, version: version}, nil
}

func builtinHero(n int, actions []string) fight.PlayerSnapshot {
	return fight.PlayerSnapshot{
		ID:        fmt.Sprintf("hero-%d", n+1),
		Name:      "Hero",
		Class:     "knight",
		Score:     1000,
		Stats:     fight.Stats{MaxHealth: 100, Attack: 15, Defense: 8, Speed: 10, MaxEnergy: 40},
		Energy:    40,
		ActionIDs: actions,
	}
}

// persist commits player profiles and writes the fight log. Built-in heroes
// have no profile and are not committed.
func persist(ctx context.Context, st *postgres.Store, m *match, sum *fight.Summary, logger *zap.Logger) error {
	for _, p := range m.players {
		if p.version == 0 {
			continue
		}
		idx := 0
		if sum.FighterID(1) == p.fighter.ID() {
			idx = 1
		}
		version, err := st.Profiles().Commit(ctx, postgres.CommitRequest{
			Snapshot:   p.fighter.Snapshot(),
			Version:    p.version,
			ScoreDelta: sum.ScoreDelta(idx),
			Friendly:   sum.Friendly(),
		})
		if err != nil {
			return fmt.Errorf("committing profile %q: %w", p.fighter.ID(), err)
		}
		logger.Info("profile committed", zap.String("profile", p.fighter.ID()), zap.Int64("version", version))
	}

	var (
		logID int64
		err   error
	)
	if m.monster != nil {
		logID, err = st.FightLogs().LogPveFight(ctx, sum, m.players[0].fighter.Class(), m.monster)
	} else {
		logID, err = st.FightLogs().LogFight(ctx, sum, [2]string{m.players[0].fighter.Class(), m.players[1].fighter.Class()})
	}
	if err != nil {
		return err
	}
	logger.Info("fight logged", zap.String("fight_id", sum.FightID()), zap.Int64("log_id", logID))
	return nil
}

func printSummary(w io.Writer, m *match, sum *fight.Summary) {
	fmt.Fprintf(w, "fight %s (seed %d): %s after %d turns\n", sum.FightID(), m.seed, sum.Reason(), sum.Turns())
	for i := range 2 {
		f := m.ctrl.Fighter(i)
		marker := " "
		if sum.Winner() == i {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-16s health %3d/%-3d score %4d %+d\n",
			marker, f.ID(), sum.FinalHealth(i), f.BaseStats().MaxHealth, sum.PreScore(i), sum.ScoreDelta(i))
	}
	if sum.IsDraw() {
		fmt.Fprintln(w, "  draw")
	}
}
