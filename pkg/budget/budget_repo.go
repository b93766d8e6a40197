package budget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Repo is the data gateway for the budget collection.
type Repo interface {
	ListByOwner(ctx context.Context, ownerId string) ([]Budget, error)
	Create(ctx context.Context, ownerId string, draft Budget) (Budget, error)
	Update(ctx context.Context, ownerId string, id string, patch Budget) (Budget, bool, error)
	Delete(ctx context.Context, ownerId string, id string) (bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewBudgetRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) ListByOwner(ctx context.Context, ownerId string) ([]Budget, error) {
	query := `SELECT id, category_id, amount, month, year, created_at
				FROM budgets WHERE user_id = $1 ORDER BY year, month, created_at`
	rows, err := r.db.QueryContext(ctx, query, ownerId)
	if err != nil {
		err := fmt.Errorf("could not query budgets: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var budgets []Budget
	for rows.Next() {
		var b Budget
		if err := rows.Scan(&b.ID, &b.CategoryID, &b.Amount, &b.Month, &b.Year, &b.CreatedAt); err != nil {
			err := fmt.Errorf("could not scan budget: %w", err)
			log.Error(err)
			return nil, err
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return budgets, nil
}

func (r *RepoImpl) Create(ctx context.Context, ownerId string, draft Budget) (Budget, error) {
	draft.ID = uuid.NewString()

	query := `INSERT INTO budgets (id, user_id, category_id, amount, month, year, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, now())
				RETURNING id, category_id, amount, month, year, created_at`
	row := r.db.QueryRowContext(ctx, query, draft.ID, ownerId, draft.CategoryID, draft.Amount, draft.Month, draft.Year)

	var created Budget
	if err := row.Scan(&created.ID, &created.CategoryID, &created.Amount, &created.Month, &created.Year, &created.CreatedAt); err != nil {
		err := fmt.Errorf("could not insert budget: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	return created, nil
}

func (r *RepoImpl) Update(ctx context.Context, ownerId string, id string, patch Budget) (Budget, bool, error) {
	query := `UPDATE budgets SET category_id = $1, amount = $2, month = $3, year = $4
				WHERE id = $5 AND user_id = $6
				RETURNING id, category_id, amount, month, year, created_at`
	row := r.db.QueryRowContext(ctx, query, patch.CategoryID, patch.Amount, patch.Month, patch.Year, id, ownerId)

	var updated Budget
	err := row.Scan(&updated.ID, &updated.CategoryID, &updated.Amount, &updated.Month, &updated.Year, &updated.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Budget{}, false, nil
	}
	if err != nil {
		err := fmt.Errorf("could not update budget: %w", err)
		log.Error(err)
		return Budget{}, false, err
	}
	return updated, true, nil
}

func (r *RepoImpl) Delete(ctx context.Context, ownerId string, id string) (bool, error) {
	query := `DELETE FROM budgets WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, ownerId)
	if err != nil {
		err := fmt.Errorf("could not delete budget: %w", err)
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
