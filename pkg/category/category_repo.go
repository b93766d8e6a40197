package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Repo is the data gateway for the category collection. Implementations
// scope every operation to the owning user.
type Repo interface {
	ListByOwner(ctx context.Context, ownerId string) ([]Category, error)
	Create(ctx context.Context, ownerId string, draft Category) (Category, error)
	Update(ctx context.Context, ownerId string, id string, patch Category) (Category, bool, error)
	Delete(ctx context.Context, ownerId string, id string) (bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) ListByOwner(ctx context.Context, ownerId string) ([]Category, error) {
	query := `SELECT id, name, kind, created_at FROM categories WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, ownerId)
	if err != nil {
		err := fmt.Errorf("could not query categories: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind, &c.CreatedAt); err != nil {
			err := fmt.Errorf("could not scan category: %w", err)
			log.Error(err)
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return categories, nil
}

func (r *RepoImpl) Create(ctx context.Context, ownerId string, draft Category) (Category, error) {
	draft.ID = uuid.NewString()

	query := `INSERT INTO categories (id, user_id, name, kind, created_at)
				VALUES ($1, $2, $3, $4, now())
				RETURNING id, name, kind, created_at`
	row := r.db.QueryRowContext(ctx, query, draft.ID, ownerId, draft.Name, string(draft.Kind))

	var created Category
	if err := row.Scan(&created.ID, &created.Name, &created.Kind, &created.CreatedAt); err != nil {
		err := fmt.Errorf("could not insert category: %w", err)
		log.Error(err)
		return Category{}, err
	}
	return created, nil
}

func (r *RepoImpl) Update(ctx context.Context, ownerId string, id string, patch Category) (Category, bool, error) {
	query := `UPDATE categories SET name = $1, kind = $2
				WHERE id = $3 AND user_id = $4
				RETURNING id, name, kind, created_at`
	row := r.db.QueryRowContext(ctx, query, patch.Name, string(patch.Kind), id, ownerId)

	var updated Category
	err := row.Scan(&updated.ID, &updated.Name, &updated.Kind, &updated.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, false, nil
	}
	if err != nil {
		err := fmt.Errorf("could not update category: %w", err)
		log.Error(err)
		return Category{}, false, err
	}
	return updated, true, nil
}

func (r *RepoImpl) Delete(ctx context.Context, ownerId string, id string) (bool, error) {
	query := `DELETE FROM categories WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, ownerId)
	if err != nil {
		err := fmt.Errorf("could not delete category: %w", err)
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
