package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/arena/internal/game/fight"
)

// ErrWrongFightKind is returned when a summary does not match the log it is written to.
var ErrWrongFightKind = errors.New("fight kind does not match log")

// FightLogRepository records finished fights.
type FightLogRepository struct {
	db *pgxpool.Pool
}

// NewFightLogRepository creates a FightLogRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewFightLogRepository(db *pgxpool.Pool) *FightLogRepository {
	return &FightLogRepository{db: db}
}

// winnerCode maps a summary winner to the stored code: 0 draw, 1 for first, 2 for second.
func winnerCode(s *fight.Summary, first int) int16 {
	switch {
	case s.IsDraw():
		return 0
	case s.Winner() == first:
		return 1
	default:
		return 2
	}
}

// LogFight records a PvP fight and the actions each player used.
// classes holds the class of fighter 0 and fighter 1; actions are keyed by (name, class).
//
// Precondition: both fighters of s are players.
// Postcondition: Returns the fights_results row ID, or ErrWrongFightKind.
func (r *FightLogRepository) LogFight(ctx context.Context, s *fight.Summary, classes [2]string) (int64, error) {
	if !s.IsPlayer(0) || !s.IsPlayer(1) {
		return 0, fmt.Errorf("logging fight %s: %w", s.FightID(), ErrWrongFightKind)
	}
	var id int64
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO fights_results
				(fight_id, player_1_id, player_1_points, player_2_id, player_2_points,
				 turn, winner, friendly, reason)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			RETURNING id`,
			s.FightID(), s.FighterID(0), s.PreScore(0), s.FighterID(1), s.PreScore(1),
			s.Turns(), winnerCode(s, 0), s.Friendly(), s.Reason().String(),
		).Scan(&id); err != nil {
			return fmt.Errorf("inserting fight result: %w", err)
		}
		for i := range 2 {
			for _, u := range sortedUsage(s.ActionUsage(i)) {
				actionID, err := actionRef(ctx, tx, u.name, classes[i])
				if err != nil {
					return err
				}
				if _, err := tx.Exec(ctx, `
					INSERT INTO fights_actions_used (fight_id, player, action_id, count)
					VALUES ($1,$2,$3,$4)`,
					id, i+1, actionID, u.count,
				); err != nil {
					return fmt.Errorf("inserting action usage: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// LogPveFight records a player-versus-monster fight with the monster's level and
// base stats, plus the actions the player used.
//
// Precondition: exactly one fighter of s is a player and m is the other one.
// Postcondition: Returns the pve_fights_results row ID, or ErrWrongFightKind.
func (r *FightLogRepository) LogPveFight(ctx context.Context, s *fight.Summary, playerClass string, m *fight.MonsterFighter) (int64, error) {
	player := -1
	for i := range 2 {
		if s.IsPlayer(i) && s.FighterID(1-i) == m.ID() && !s.IsPlayer(1-i) {
			player = i
		}
	}
	if player < 0 {
		return 0, fmt.Errorf("logging pve fight %s: %w", s.FightID(), ErrWrongFightKind)
	}
	stats := m.BaseStats()
	var id int64
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO pve_fights_results
				(fight_id, player_id, monster_id, monster_level, monster_fight_points,
				 monster_attack, monster_defense, monster_speed, turn, winner, reason)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			RETURNING id`,
			s.FightID(), s.FighterID(player), m.Template().ID, m.Level(), stats.MaxHealth,
			stats.Attack, stats.Defense, stats.Speed, s.Turns(), winnerCode(s, player), s.Reason().String(),
		).Scan(&id); err != nil {
			return fmt.Errorf("inserting pve fight result: %w", err)
		}
		for _, u := range sortedUsage(s.ActionUsage(player)) {
			actionID, err := actionRef(ctx, tx, u.name, playerClass)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO pve_fights_actions_used (pve_fight_id, action_id, count)
				VALUES ($1,$2,$3)`,
				id, actionID, u.count,
			); err != nil {
				return fmt.Errorf("inserting pve action usage: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// actionRef returns the fights_actions ID for (name, class), creating the row if needed.
func actionRef(ctx context.Context, tx pgx.Tx, name, class string) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO fights_actions (name, class_id) VALUES ($1, $2)
		ON CONFLICT (name, class_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		name, class,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolving fight action %q: %w", name, err)
	}
	return id, nil
}

type usage struct {
	name  string
	count int
}

func sortedUsage(m map[string]int) []usage {
	out := make([]usage, 0, len(m))
	for name, count := range m {
		out = append(out, usage{name: name, count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
