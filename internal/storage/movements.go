package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"financas/internal/core"
	"financas/internal/ledger"
)

// CreateAccountMovement inserts one movement. The referenced account and
// transaction type must belong to the same user.
func (r *SQLiteRepository) CreateAccountMovement(ctx context.Context, m core.AccountMovement) (core.AccountMovement, error) {
	if _, err := r.GetAccount(ctx, m.UserID, m.AccountID); err != nil {
		return core.AccountMovement{}, err
	}
	if _, err := r.GetTransactionType(ctx, m.UserID, m.TransactionTypeID); err != nil {
		return core.AccountMovement{}, err
	}

	m.CreatedAt = now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO account_movements (user_id, account_id, transaction_type_id,
			date, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.UserID, m.AccountID, m.TransactionTypeID,
		encodeDate(m.Date), encodeMoney(m.Amount), m.Description,
		encodeTimestamp(m.CreatedAt))
	if err != nil {
		return core.AccountMovement{}, fmt.Errorf("insert movement: %w", mapConstraintErr(err))
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return core.AccountMovement{}, fmt.Errorf("movement insert id: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) GetAccountMovement(ctx context.Context, userID, id int64) (core.AccountMovement, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, account_id, transaction_type_id, date, amount,
			description, created_at
		FROM account_movements WHERE id = ?`, id)
	m, err := scanMovement(row)
	if err != nil {
		return core.AccountMovement{}, err
	}
	if m.UserID != userID {
		return core.AccountMovement{}, core.ErrNotOwner
	}
	return m, nil
}

// ListAccountMovements returns every movement on one account, ordered the
// way the replayer consumes them.
func (r *SQLiteRepository) ListAccountMovements(ctx context.Context, userID, accountID int64) ([]core.AccountMovement, error) {
	if _, err := r.GetAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, account_id, transaction_type_id, date, amount,
			description, created_at
		FROM account_movements
		WHERE account_id = ?
		ORDER BY date, created_at, id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []core.AccountMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListAccountIDsWithTransactionType returns the accounts holding at
// least one movement of the given transaction type.
func (r *SQLiteRepository) ListAccountIDsWithTransactionType(ctx context.Context, userID, typeID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT account_id
		FROM account_movements
		WHERE user_id = ? AND transaction_type_id = ?`, userID, typeID)
	if err != nil {
		return nil, fmt.Errorf("list accounts by transaction type: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan account id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ListLedgerMovements joins the full movement history of an account with
// the nature and name of each transaction type, in replay order.
func (r *SQLiteRepository) ListLedgerMovements(ctx context.Context, userID, accountID int64) ([]ledger.Movement, error) {
	if _, err := r.GetAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, t.name, t.nature, m.date, m.amount, m.description, m.created_at
		FROM account_movements m
		JOIN transaction_types t ON t.id = m.transaction_type_id
		WHERE m.account_id = ?
		ORDER BY m.date, m.created_at, m.id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list ledger movements: %w", err)
	}
	defer rows.Close()

	var out []ledger.Movement
	for rows.Next() {
		var (
			lm                          ledger.Movement
			nature, date, amount, stamp string
		)
		if err := rows.Scan(&lm.ID, &lm.TransactionName, &nature, &date,
			&amount, &lm.Description, &stamp); err != nil {
			return nil, fmt.Errorf("scan ledger movement: %w", err)
		}
		lm.Nature = core.Nature(nature)
		if lm.Date, err = decodeDate(date); err != nil {
			return nil, err
		}
		if lm.Amount, err = decodeMoney(amount); err != nil {
			return nil, err
		}
		if lm.CreatedAt, err = decodeTimestamp(stamp); err != nil {
			return nil, err
		}
		out = append(out, lm)
	}
	return out, rows.Err()
}

// UpdateAccountMovement rewrites date, amount, type and description. The
// account a movement belongs to never changes.
func (r *SQLiteRepository) UpdateAccountMovement(ctx context.Context, m core.AccountMovement) error {
	if _, err := r.GetAccountMovement(ctx, m.UserID, m.ID); err != nil {
		return err
	}
	if _, err := r.GetTransactionType(ctx, m.UserID, m.TransactionTypeID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE account_movements
		SET transaction_type_id = ?, date = ?, amount = ?, description = ?
		WHERE id = ?`,
		m.TransactionTypeID, encodeDate(m.Date), encodeMoney(m.Amount),
		m.Description, m.ID)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAccountMovement(ctx context.Context, userID, id int64) error {
	if _, err := r.GetAccountMovement(ctx, userID, id); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM account_movements WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	return nil
}

func scanMovement(row rowScanner) (core.AccountMovement, error) {
	var (
		m                   core.AccountMovement
		date, amount, stamp string
	)
	err := row.Scan(&m.ID, &m.UserID, &m.AccountID, &m.TransactionTypeID,
		&date, &amount, &m.Description, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AccountMovement{}, ErrNotFound
	}
	if err != nil {
		return core.AccountMovement{}, fmt.Errorf("scan movement: %w", err)
	}
	if m.Date, err = decodeDate(date); err != nil {
		return core.AccountMovement{}, err
	}
	if m.Amount, err = decodeMoney(amount); err != nil {
		return core.AccountMovement{}, err
	}
	if m.CreatedAt, err = decodeTimestamp(stamp); err != nil {
		return core.AccountMovement{}, err
	}
	return m, nil
}
