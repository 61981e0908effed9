package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"financas/internal/core"
)

// CreateIncomeSource inserts a new income source.
func (r *SQLiteRepository) CreateIncomeSource(ctx context.Context, s core.IncomeSource) (core.IncomeSource, error) {
	s.CreatedAt = now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO income_sources (user_id, description, type, created_at)
		VALUES (?, ?, ?, ?)`,
		s.UserID, s.Description, string(s.Type), encodeTimestamp(s.CreatedAt))
	if err != nil {
		return core.IncomeSource{}, fmt.Errorf("insert income source: %w", mapConstraintErr(err))
	}
	s.ID, err = res.LastInsertId()
	if err != nil {
		return core.IncomeSource{}, fmt.Errorf("income source insert id: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) GetIncomeSource(ctx context.Context, userID, id int64) (core.IncomeSource, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, description, type, created_at
		FROM income_sources WHERE id = ?`, id)

	var (
		s          core.IncomeSource
		typ, stamp string
	)
	err := row.Scan(&s.ID, &s.UserID, &s.Description, &typ, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return core.IncomeSource{}, ErrNotFound
	}
	if err != nil {
		return core.IncomeSource{}, fmt.Errorf("scan income source: %w", err)
	}
	s.Type = core.IncomeType(typ)
	if s.CreatedAt, err = decodeTimestamp(stamp); err != nil {
		return core.IncomeSource{}, err
	}
	if s.UserID != userID {
		return core.IncomeSource{}, core.ErrNotOwner
	}
	return s, nil
}

func (r *SQLiteRepository) ListIncomeSources(ctx context.Context, userID int64) ([]core.IncomeSource, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, description, type, created_at
		FROM income_sources WHERE user_id = ? ORDER BY description`, userID)
	if err != nil {
		return nil, fmt.Errorf("list income sources: %w", err)
	}
	defer rows.Close()

	var out []core.IncomeSource
	for rows.Next() {
		var (
			s          core.IncomeSource
			typ, stamp string
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.Description, &typ, &stamp); err != nil {
			return nil, fmt.Errorf("scan income source: %w", err)
		}
		s.Type = core.IncomeType(typ)
		if s.CreatedAt, err = decodeTimestamp(stamp); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteIncomeSource removes a source and, via cascade, its movements.
func (r *SQLiteRepository) DeleteIncomeSource(ctx context.Context, userID, id int64) error {
	if _, err := r.GetIncomeSource(ctx, userID, id); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM income_sources WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete income source: %w", err)
	}
	return nil
}

// CreateIncomeMovement records an income amount for a reference month.
func (r *SQLiteRepository) CreateIncomeMovement(ctx context.Context, m core.IncomeMovement) (core.IncomeMovement, error) {
	if _, err := r.GetIncomeSource(ctx, m.UserID, m.SourceID); err != nil {
		return core.IncomeMovement{}, err
	}

	m.CreatedAt = now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO income_movements (user_id, source_id, reference_month,
			payment_month, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.UserID, m.SourceID, encodeMonth(m.ReferenceMonth),
		encodeMonth(m.PaymentMonth), encodeMoney(m.Amount), m.Description,
		encodeTimestamp(m.CreatedAt))
	if err != nil {
		return core.IncomeMovement{}, fmt.Errorf("insert income movement: %w", mapConstraintErr(err))
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return core.IncomeMovement{}, fmt.Errorf("income movement insert id: %w", err)
	}
	return m, nil
}

// ListIncomeMovements returns the user's income movements, optionally
// filtered by payment month (zero Month means all).
func (r *SQLiteRepository) ListIncomeMovements(ctx context.Context, userID int64, paymentMonth core.Month) ([]core.IncomeMovement, error) {
	query := `
		SELECT id, user_id, source_id, reference_month, payment_month,
			amount, description, created_at
		FROM income_movements WHERE user_id = ?`
	args := []any{userID}
	if !paymentMonth.IsZero() {
		query += ` AND payment_month = ?`
		args = append(args, encodeMonth(paymentMonth))
	}
	query += ` ORDER BY payment_month, source_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list income movements: %w", err)
	}
	defer rows.Close()

	var out []core.IncomeMovement
	for rows.Next() {
		m, err := scanIncomeMovement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteIncomeMovement(ctx context.Context, userID, id int64) error {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, source_id, reference_month, payment_month,
			amount, description, created_at
		FROM income_movements WHERE id = ?`, id)
	m, err := scanIncomeMovement(row)
	if err != nil {
		return err
	}
	if m.UserID != userID {
		return core.ErrNotOwner
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM income_movements WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete income movement: %w", err)
	}
	return nil
}

// CreateBudgetCategory inserts a new budget category.
func (r *SQLiteRepository) CreateBudgetCategory(ctx context.Context, c core.BudgetCategory) (core.BudgetCategory, error) {
	c.CreatedAt = now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO budget_categories (user_id, name, kind, description, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.UserID, c.Name, string(c.Kind), c.Description, encodeTimestamp(c.CreatedAt))
	if err != nil {
		return core.BudgetCategory{}, fmt.Errorf("insert budget category: %w", mapConstraintErr(err))
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.BudgetCategory{}, fmt.Errorf("budget category insert id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetBudgetCategory(ctx context.Context, userID, id int64) (core.BudgetCategory, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, kind, description, created_at
		FROM budget_categories WHERE id = ?`, id)

	var (
		c           core.BudgetCategory
		kind, stamp string
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &kind, &c.Description, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BudgetCategory{}, ErrNotFound
	}
	if err != nil {
		return core.BudgetCategory{}, fmt.Errorf("scan budget category: %w", err)
	}
	c.Kind = core.BudgetKind(kind)
	if c.CreatedAt, err = decodeTimestamp(stamp); err != nil {
		return core.BudgetCategory{}, err
	}
	if c.UserID != userID {
		return core.BudgetCategory{}, core.ErrNotOwner
	}
	return c, nil
}

func (r *SQLiteRepository) ListBudgetCategories(ctx context.Context, userID int64) ([]core.BudgetCategory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, kind, description, created_at
		FROM budget_categories WHERE user_id = ? ORDER BY kind, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budget categories: %w", err)
	}
	defer rows.Close()

	var out []core.BudgetCategory
	for rows.Next() {
		var (
			c           core.BudgetCategory
			kind, stamp string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &kind, &c.Description, &stamp); err != nil {
			return nil, fmt.Errorf("scan budget category: %w", err)
		}
		c.Kind = core.BudgetKind(kind)
		if c.CreatedAt, err = decodeTimestamp(stamp); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpsertFixedEntry writes the planned amount for one category and month,
// replacing a previous value for the same pair.
func (r *SQLiteRepository) UpsertFixedEntry(ctx context.Context, e core.FixedEntry) (core.FixedEntry, error) {
	if _, err := r.GetBudgetCategory(ctx, e.UserID, e.CategoryID); err != nil {
		return core.FixedEntry{}, err
	}

	e.CreatedAt = now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO fixed_entries (user_id, category_id, month, amount,
			description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category_id, month)
		DO UPDATE SET amount = excluded.amount, description = excluded.description`,
		e.UserID, e.CategoryID, encodeMonth(e.Month), encodeMoney(e.Amount),
		e.Description, encodeTimestamp(e.CreatedAt))
	if err != nil {
		return core.FixedEntry{}, fmt.Errorf("upsert fixed entry: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		e.ID = id
	}
	return e, nil
}

// ListFixedEntries returns the planned entries for one month.
func (r *SQLiteRepository) ListFixedEntries(ctx context.Context, userID int64, month core.Month) ([]core.FixedEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, category_id, month, amount, description, created_at
		FROM fixed_entries WHERE user_id = ? AND month = ?
		ORDER BY category_id`, userID, encodeMonth(month))
	if err != nil {
		return nil, fmt.Errorf("list fixed entries: %w", err)
	}
	defer rows.Close()

	var out []core.FixedEntry
	for rows.Next() {
		var (
			e                   core.FixedEntry
			mon, amount, stamp string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.CategoryID, &mon, &amount,
			&e.Description, &stamp); err != nil {
			return nil, fmt.Errorf("scan fixed entry: %w", err)
		}
		if e.Month, err = decodeMonth(mon); err != nil {
			return nil, err
		}
		if e.Amount, err = decodeMoney(amount); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = decodeTimestamp(stamp); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanIncomeMovement(row rowScanner) (core.IncomeMovement, error) {
	var (
		m                        core.IncomeMovement
		ref, pay, amount, stamp string
	)
	err := row.Scan(&m.ID, &m.UserID, &m.SourceID, &ref, &pay, &amount,
		&m.Description, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return core.IncomeMovement{}, ErrNotFound
	}
	if err != nil {
		return core.IncomeMovement{}, fmt.Errorf("scan income movement: %w", err)
	}
	if m.ReferenceMonth, err = decodeMonth(ref); err != nil {
		return core.IncomeMovement{}, err
	}
	if m.PaymentMonth, err = decodeMonth(pay); err != nil {
		return core.IncomeMovement{}, err
	}
	if m.Amount, err = decodeMoney(amount); err != nil {
		return core.IncomeMovement{}, err
	}
	if m.CreatedAt, err = decodeTimestamp(stamp); err != nil {
		return core.IncomeMovement{}, err
	}
	return m, nil
}
