package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"financas/internal/core"
)

// CreateTransactionType inserts a new user-owned transaction type.
func (r *SQLiteRepository) CreateTransactionType(ctx context.Context, t core.TransactionType) (core.TransactionType, error) {
	t.CreatedAt = now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transaction_types (user_id, name, nature, description, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.UserID, t.Name, string(t.Nature), t.Description, encodeTimestamp(t.CreatedAt))
	if err != nil {
		return core.TransactionType{}, fmt.Errorf("insert transaction type: %w", mapConstraintErr(err))
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.TransactionType{}, fmt.Errorf("transaction type insert id: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) GetTransactionType(ctx context.Context, userID, id int64) (core.TransactionType, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, nature, description, created_at
		FROM transaction_types WHERE id = ?`, id)
	t, err := scanTransactionType(row)
	if err != nil {
		return core.TransactionType{}, err
	}
	if t.UserID != userID {
		return core.TransactionType{}, core.ErrNotOwner
	}
	return t, nil
}

func (r *SQLiteRepository) ListTransactionTypes(ctx context.Context, userID int64) ([]core.TransactionType, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, nature, description, created_at
		FROM transaction_types WHERE user_id = ? ORDER BY name, nature`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transaction types: %w", err)
	}
	defer rows.Close()

	var out []core.TransactionType
	for rows.Next() {
		t, err := scanTransactionType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTransactionType rewrites name, nature and description. Changing
// the nature retroactively flips the sign of every movement that
// references the type; balances are replayed, so the change takes effect
// on the next read.
func (r *SQLiteRepository) UpdateTransactionType(ctx context.Context, t core.TransactionType) error {
	if _, err := r.GetTransactionType(ctx, t.UserID, t.ID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE transaction_types SET name = ?, nature = ?, description = ?
		WHERE id = ?`,
		t.Name, string(t.Nature), t.Description, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction type: %w", mapConstraintErr(err))
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransactionType(ctx context.Context, userID, id int64) error {
	if _, err := r.GetTransactionType(ctx, userID, id); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transaction_types WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction type: %w", err)
	}
	return nil
}

func scanTransactionType(row rowScanner) (core.TransactionType, error) {
	var (
		t             core.TransactionType
		nature, stamp string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &nature, &t.Description, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TransactionType{}, ErrNotFound
	}
	if err != nil {
		return core.TransactionType{}, fmt.Errorf("scan transaction type: %w", err)
	}
	t.Nature = core.Nature(nature)
	if t.CreatedAt, err = decodeTimestamp(stamp); err != nil {
		return core.TransactionType{}, err
	}
	return t, nil
}
