package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/uangsakti/uangsakti/pkg/category"
)

// Repo is the data gateway for the transaction collection. List, Create and
// Update resolve the category reference into an embedded name through a
// join; a dangling reference comes back with an empty name.
type Repo interface {
	ListByOwner(ctx context.Context, ownerId string) ([]Transaction, error)
	Create(ctx context.Context, ownerId string, draft Transaction) (Transaction, error)
	Update(ctx context.Context, ownerId string, id string, patch Transaction) (Transaction, bool, error)
	Delete(ctx context.Context, ownerId string, id string) (bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

const selectColumns = `t.id, t.category_id, COALESCE(c.name, ''), t.amount, t.kind, t.description,
		t.transaction_date, t.proof_url, t.created_at`

func (r *RepoImpl) ListByOwner(ctx context.Context, ownerId string) ([]Transaction, error) {
	query := fmt.Sprintf(`SELECT %s
				FROM transactions t
				LEFT JOIN categories c ON c.id = t.category_id AND c.user_id = t.user_id
				WHERE t.user_id = $1
				ORDER BY t.transaction_date DESC, t.created_at DESC`, selectColumns)
	rows, err := r.db.QueryContext(ctx, query, ownerId)
	if err != nil {
		err := fmt.Errorf("could not query transactions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			log.Error(err)
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return transactions, nil
}

func (r *RepoImpl) Create(ctx context.Context, ownerId string, draft Transaction) (Transaction, error) {
	draft.ID = uuid.NewString()

	query := `INSERT INTO transactions (id, user_id, category_id, amount, kind, description, transaction_date, proof_url, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`
	_, err := r.db.ExecContext(ctx, query,
		draft.ID,
		ownerId,
		nullableID(draft.CategoryID),
		draft.Amount,
		string(draft.Kind),
		draft.Description,
		draft.Date,
		nullableID(draft.ProofURL),
	)
	if err != nil {
		err := fmt.Errorf("could not insert transaction: %w", err)
		log.Error(err)
		return Transaction{}, err
	}

	created, found, err := r.findByID(ctx, ownerId, draft.ID)
	if err != nil {
		return Transaction{}, err
	}
	if !found {
		return Transaction{}, fmt.Errorf("inserted transaction %s not found", draft.ID)
	}
	return created, nil
}

func (r *RepoImpl) Update(ctx context.Context, ownerId string, id string, patch Transaction) (Transaction, bool, error) {
	query := `UPDATE transactions SET
				category_id = $1,
				amount = $2,
				kind = $3,
				description = $4,
				transaction_date = $5,
				proof_url = $6
			WHERE id = $7 AND user_id = $8`
	result, err := r.db.ExecContext(ctx, query,
		nullableID(patch.CategoryID),
		patch.Amount,
		string(patch.Kind),
		patch.Description,
		patch.Date,
		nullableID(patch.ProofURL),
		id,
		ownerId,
	)
	if err != nil {
		err := fmt.Errorf("could not update transaction: %w", err)
		log.Error(err)
		return Transaction{}, false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return Transaction{}, false, err
	}
	if rowsAffected != 1 {
		return Transaction{}, false, nil
	}

	return r.findByID(ctx, ownerId, id)
}

func (r *RepoImpl) Delete(ctx context.Context, ownerId string, id string) (bool, error) {
	query := `DELETE FROM transactions WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, ownerId)
	if err != nil {
		err := fmt.Errorf("could not delete transaction: %w", err)
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

func (r *RepoImpl) findByID(ctx context.Context, ownerId string, id string) (Transaction, bool, error) {
	query := fmt.Sprintf(`SELECT %s
				FROM transactions t
				LEFT JOIN categories c ON c.id = t.category_id AND c.user_id = t.user_id
				WHERE t.id = $1 AND t.user_id = $2`, selectColumns)
	row := r.db.QueryRowContext(ctx, query, id, ownerId)

	t, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Transaction{}, false, nil
	}
	if err != nil {
		log.Error(err)
		return Transaction{}, false, err
	}
	return t, true, nil
}

func scanTransaction(scan func(dest ...any) error) (Transaction, error) {
	var t Transaction
	var categoryId, proofUrl sql.NullString
	var amount decimal.Decimal
	var kind string
	if err := scan(
		&t.ID,
		&categoryId,
		&t.CategoryName,
		&amount,
		&kind,
		&t.Description,
		&t.Date,
		&proofUrl,
		&t.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Transaction{}, err
		}
		return Transaction{}, fmt.Errorf("could not scan transaction: %w", err)
	}
	t.CategoryID = categoryId.String
	t.ProofURL = proofUrl.String
	t.Amount = amount
	t.Kind = category.Kind(kind)
	return t, nil
}

// nullableID maps an empty string to NULL so optional references do not
// trip foreign keys.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
