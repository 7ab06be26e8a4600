package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/campaign/internal/game/state"
)

// ErrProgressNotFound is returned when a quest progress lookup yields no rows.
var ErrProgressNotFound = errors.New("quest progress not found")

// ProgressRepository persists per-character quest progress and game flags.
// Quest progress rows are keyed by (character, quest) and upserted on save,
// so Save is safe to call after every tracker event.
type ProgressRepository struct {
	db *pgxpool.Pool
}

// NewProgressRepository creates a ProgressRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewProgressRepository(db *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// SaveQuest upserts the progress row for one quest.
//
// Precondition: characterID must be non-empty; p must be non-nil.
// Postcondition: A subsequent Quest call returns the saved progress.
func (r *ProgressRepository) SaveQuest(ctx context.Context, characterID string, p *state.QuestProgress) error {
	counts := make([]int32, len(p.ObjectiveCounts))
	for i, c := range p.ObjectiveCounts {
		counts[i] = int32(c)
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO quest_progress (character_id, quest_id, stage, objective_counts, completed, completions, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (character_id, quest_id)
		 DO UPDATE SET stage = $3, objective_counts = $4, completed = $5, completions = $6, updated_at = NOW()`,
		characterID, p.QuestID, p.Stage, counts, p.Completed, p.Completions,
	)
	if err != nil {
		return fmt.Errorf("upserting quest progress: %w", err)
	}
	return nil
}

// Quest retrieves the progress row for one quest.
//
// Precondition: characterID must be non-empty.
// Postcondition: Returns the progress or ErrProgressNotFound.
func (r *ProgressRepository) Quest(ctx context.Context, characterID string, questID int) (*state.QuestProgress, error) {
	var p state.QuestProgress
	var counts []int32
	err := r.db.QueryRow(ctx,
		`SELECT quest_id, stage, objective_counts, completed, completions
		 FROM quest_progress WHERE character_id = $1 AND quest_id = $2`,
		characterID, questID,
	).Scan(&p.QuestID, &p.Stage, &counts, &p.Completed, &p.Completions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("querying quest progress: %w", err)
	}

	p.ObjectiveCounts = make([]int, len(counts))
	for i, c := range counts {
		p.ObjectiveCounts[i] = int(c)
	}
	return &p, nil
}

// Quests retrieves all quest progress rows for a character, ordered by quest ID.
//
// Precondition: characterID must be non-empty.
// Postcondition: Returns zero or more progress rows; a character with no
// recorded progress yields an empty slice, not an error.
func (r *ProgressRepository) Quests(ctx context.Context, characterID string) ([]*state.QuestProgress, error) {
	rows, err := r.db.Query(ctx,
		`SELECT quest_id, stage, objective_counts, completed, completions
		 FROM quest_progress WHERE character_id = $1 ORDER BY quest_id`,
		characterID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying quest progress: %w", err)
	}
	defer rows.Close()

	var out []*state.QuestProgress
	for rows.Next() {
		var p state.QuestProgress
		var counts []int32
		if err := rows.Scan(&p.QuestID, &p.Stage, &counts, &p.Completed, &p.Completions); err != nil {
			return nil, fmt.Errorf("scanning quest progress: %w", err)
		}
		p.ObjectiveCounts = make([]int, len(counts))
		for i, c := range counts {
			p.ObjectiveCounts[i] = int(c)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quest progress: %w", err)
	}
	return out, nil
}

// SetFlag persists a game flag for a character. Setting value to false
// deletes the row; only set flags are stored.
//
// Precondition: characterID and flag must be non-empty.
func (r *ProgressRepository) SetFlag(ctx context.Context, characterID, flag string, value bool) error {
	if !value {
		_, err := r.db.Exec(ctx,
			`DELETE FROM game_flags WHERE character_id = $1 AND flag = $2`,
			characterID, flag,
		)
		if err != nil {
			return fmt.Errorf("clearing flag: %w", err)
		}
		return nil
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO game_flags (character_id, flag)
		 VALUES ($1, $2)
		 ON CONFLICT (character_id, flag) DO NOTHING`,
		characterID, flag,
	)
	if err != nil {
		return fmt.Errorf("setting flag: %w", err)
	}
	return nil
}

// Flags retrieves all set flags for a character.
//
// Postcondition: Returns the set of flags; a character with no flags yields
// an empty map.
func (r *ProgressRepository) Flags(ctx context.Context, characterID string) (map[string]bool, error) {
	rows, err := r.db.Query(ctx,
		`SELECT flag FROM game_flags WHERE character_id = $1`,
		characterID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying flags: %w", err)
	}
	defer rows.Close()

	flags := make(map[string]bool)
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("scanning flag: %w", err)
		}
		flags[f] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating flags: %w", err)
	}
	return flags, nil
}

// Restore populates a game-state handle with the character's persisted
// progress and flags.
//
// Precondition: h must be non-nil.
// Postcondition: Every persisted quest row and flag is applied to h.
func (r *ProgressRepository) Restore(ctx context.Context, characterID string, h state.Handle) error {
	quests, err := r.Quests(ctx, characterID)
	if err != nil {
		return err
	}
	for _, p := range quests {
		h.PutQuest(p)
	}

	flags, err := r.Flags(ctx, characterID)
	if err != nil {
		return err
	}
	for f := range flags {
		h.SetFlag(f, true)
	}
	return nil
}
