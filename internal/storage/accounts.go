package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"financas/internal/core"
)

const accountColumns = `id, user_id, bank_name, agency, number, type,
	opening_balance, credit_limit, description, created_at`

// CreateAccount inserts a new account and returns it with ID and
// CreatedAt filled in.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a.CreatedAt = now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (user_id, bank_name, agency, number, type,
			opening_balance, credit_limit, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.BankName, a.Agency, a.Number, string(a.Type),
		encodeMoney(a.OpeningBalance), encodeMoney(a.CreditLimit),
		a.Description, encodeTimestamp(a.CreatedAt))
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", mapConstraintErr(err))
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account insert id: %w", err)
	}
	return a, nil
}

// GetAccount fetches one account, enforcing ownership.
func (r *SQLiteRepository) GetAccount(ctx context.Context, userID, id int64) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		return core.Account{}, err
	}
	if a.UserID != userID {
		return core.Account{}, core.ErrNotOwner
	}
	return a, nil
}

// ListAccounts returns every account the user owns, oldest first.
func (r *SQLiteRepository) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateAccount rewrites the mutable fields of an account.
func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) error {
	if _, err := r.GetAccount(ctx, a.UserID, a.ID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET bank_name = ?, agency = ?, number = ?, type = ?,
			opening_balance = ?, credit_limit = ?, description = ?
		WHERE id = ?`,
		a.BankName, a.Agency, a.Number, string(a.Type),
		encodeMoney(a.OpeningBalance), encodeMoney(a.CreditLimit),
		a.Description, a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", mapConstraintErr(err))
	}
	return nil
}

// DeleteAccount removes an account. The schema RESTRICTs deletes while
// movements or loans still reference it.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, userID, id int64) error {
	if _, err := r.GetAccount(ctx, userID, id); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (core.Account, error) {
	var (
		a                          core.Account
		typ, opening, limit, stamp string
	)
	err := row.Scan(&a.ID, &a.UserID, &a.BankName, &a.Agency, &a.Number,
		&typ, &opening, &limit, &a.Description, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("scan account: %w", err)
	}
	a.Type = core.AccountType(typ)
	if a.OpeningBalance, err = decodeMoney(opening); err != nil {
		return core.Account{}, err
	}
	if a.CreditLimit, err = decodeMoney(limit); err != nil {
		return core.Account{}, err
	}
	if a.CreatedAt, err = decodeTimestamp(stamp); err != nil {
		return core.Account{}, err
	}
	return a, nil
}
