package goal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Repo is the data gateway for the goal collection.
type Repo interface {
	ListByOwner(ctx context.Context, ownerId string) ([]Goal, error)
	Create(ctx context.Context, ownerId string, draft Goal) (Goal, error)
	Update(ctx context.Context, ownerId string, id string, patch Goal) (Goal, bool, error)
	Delete(ctx context.Context, ownerId string, id string) (bool, error)
	FindByID(ctx context.Context, ownerId string, id string) (Goal, bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewGoalRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) ListByOwner(ctx context.Context, ownerId string) ([]Goal, error) {
	query := `SELECT id, name, target_amount, current_amount, created_at
				FROM goals WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, ownerId)
	if err != nil {
		err := fmt.Errorf("could not query goals: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.CreatedAt); err != nil {
			err := fmt.Errorf("could not scan goal: %w", err)
			log.Error(err)
			return nil, err
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return goals, nil
}

func (r *RepoImpl) Create(ctx context.Context, ownerId string, draft Goal) (Goal, error) {
	draft.ID = uuid.NewString()

	query := `INSERT INTO goals (id, user_id, name, target_amount, current_amount, created_at)
				VALUES ($1, $2, $3, $4, $5, now())
				RETURNING id, name, target_amount, current_amount, created_at`
	row := r.db.QueryRowContext(ctx, query, draft.ID, ownerId, draft.Name, draft.TargetAmount, draft.CurrentAmount)

	var created Goal
	if err := row.Scan(&created.ID, &created.Name, &created.TargetAmount, &created.CurrentAmount, &created.CreatedAt); err != nil {
		err := fmt.Errorf("could not insert goal: %w", err)
		log.Error(err)
		return Goal{}, err
	}
	return created, nil
}

func (r *RepoImpl) Update(ctx context.Context, ownerId string, id string, patch Goal) (Goal, bool, error) {
	query := `UPDATE goals SET name = $1, target_amount = $2, current_amount = $3
				WHERE id = $4 AND user_id = $5
				RETURNING id, name, target_amount, current_amount, created_at`
	row := r.db.QueryRowContext(ctx, query, patch.Name, patch.TargetAmount, patch.CurrentAmount, id, ownerId)

	var updated Goal
	err := row.Scan(&updated.ID, &updated.Name, &updated.TargetAmount, &updated.CurrentAmount, &updated.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Goal{}, false, nil
	}
	if err != nil {
		err := fmt.Errorf("could not update goal: %w", err)
		log.Error(err)
		return Goal{}, false, err
	}
	return updated, true, nil
}

func (r *RepoImpl) Delete(ctx context.Context, ownerId string, id string) (bool, error) {
	query := `DELETE FROM goals WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, ownerId)
	if err != nil {
		err := fmt.Errorf("could not delete goal: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *RepoImpl) FindByID(ctx context.Context, ownerId string, id string) (Goal, bool, error) {
	query := `SELECT id, name, target_amount, current_amount, created_at
				FROM goals WHERE id = $1 AND user_id = $2`
	row := r.db.QueryRowContext(ctx, query, id, ownerId)

	var g Goal
	err := row.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Goal{}, false, nil
	}
	if err != nil {
		err := fmt.Errorf("could not scan goal: %w", err)
		log.Error(err)
		return Goal{}, false, err
	}
	return g, true, nil
}
