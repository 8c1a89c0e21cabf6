package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/arena/internal/game/fight"
)

// ErrProfileNotFound is returned when a profile lookup yields no results.
var ErrProfileNotFound = errors.New("profile not found")

// ErrProfileExists is returned when creating a profile whose ID is taken.
var ErrProfileExists = errors.New("profile already exists")

// ErrStaleProfile is returned by Commit when the profile changed after it was loaded.
var ErrStaleProfile = errors.New("profile was modified concurrently")

// alterationRow is the JSONB shape of a carried alteration.
type alterationRow struct {
	Kind           string `json:"kind"`
	RemainingTurns int    `json:"remaining_turns"`
}

// CommitRequest is the post-fight state of one player.
type CommitRequest struct {
	// Snapshot is the player's state after the fight; Score is the pre-fight score.
	Snapshot fight.PlayerSnapshot
	// Version is the version returned by Load.
	Version    int64
	ScoreDelta int
	// Friendly fights persist health, energy and alterations but never touch the score.
	Friendly bool
}

// ProfileRepository persists player profiles.
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a ProfileRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a new profile at version 1.
//
// Precondition: snap.ID and snap.Name must be non-empty.
// Postcondition: Returns ErrProfileExists when snap.ID is taken.
func (r *ProfileRepository) Create(ctx context.Context, snap fight.PlayerSnapshot) error {
	s := snap.Stats
	_, err := r.db.Exec(ctx, `
		INSERT INTO profiles
			(id, name, class, score, max_health, attack, defense, speed, max_energy,
			 health, energy, actions, alterations)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		snap.ID, snap.Name, snap.Class, snap.Score,
		s.MaxHealth, s.Attack, s.Defense, s.Speed, s.MaxEnergy,
		snap.Health, snap.Energy, actionIDs(snap.ActionIDs), toRows(snap.Alterations),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrProfileExists
		}
		return fmt.Errorf("inserting profile: %w", err)
	}
	return nil
}

// Load returns the snapshot a fight starts from plus the version to commit against.
//
// Postcondition: Returns ErrProfileNotFound when id is unknown.
func (r *ProfileRepository) Load(ctx context.Context, id string) (fight.PlayerSnapshot, int64, error) {
	var (
		snap    fight.PlayerSnapshot
		rows    []alterationRow
		version int64
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, name, class, score, max_health, attack, defense, speed, max_energy,
		       health, energy, actions, alterations, version
		FROM profiles WHERE id = $1`,
		id,
	).Scan(
		&snap.ID, &snap.Name, &snap.Class, &snap.Score,
		&snap.Stats.MaxHealth, &snap.Stats.Attack, &snap.Stats.Defense, &snap.Stats.Speed, &snap.Stats.MaxEnergy,
		&snap.Health, &snap.Energy, &snap.ActionIDs, &rows, &version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fight.PlayerSnapshot{}, 0, ErrProfileNotFound
		}
		return fight.PlayerSnapshot{}, 0, fmt.Errorf("querying profile: %w", err)
	}
	for _, row := range rows {
		snap.Alterations = append(snap.Alterations, fight.AlterationState{Kind: row.Kind, RemainingTurns: row.RemainingTurns})
	}
	return snap, version, nil
}

// Commit writes the post-fight state if the profile is still at req.Version.
//
// Postcondition: Returns the new version, ErrStaleProfile when the stored
// version moved, or ErrProfileNotFound when the profile is gone.
func (r *ProfileRepository) Commit(ctx context.Context, req CommitRequest) (int64, error) {
	delta := req.ScoreDelta
	if req.Friendly {
		delta = 0
	}
	snap := req.Snapshot
	var version int64
	err := r.db.QueryRow(ctx, `
		UPDATE profiles
		SET health = $3, energy = $4, alterations = $5, score = score + $6,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version`,
		snap.ID, req.Version, snap.Health, snap.Energy, toRows(snap.Alterations), delta,
	).Scan(&version)
	if err == nil {
		return version, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("committing profile: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE id = $1)`, snap.ID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("checking profile: %w", err)
	}
	if !exists {
		return 0, ErrProfileNotFound
	}
	return 0, ErrStaleProfile
}

func toRows(alts []fight.AlterationState) []alterationRow {
	rows := make([]alterationRow, 0, len(alts))
	for _, a := range alts {
		rows = append(rows, alterationRow{Kind: a.Kind, RemainingTurns: a.RemainingTurns})
	}
	return rows
}

func actionIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// uniqueViolation is the SQLSTATE of a unique constraint violation.
const uniqueViolation = "23505"

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
