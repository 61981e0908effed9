package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"financas/internal/core"
	"financas/internal/ledger"
)

// CreateCreditLine inserts a new credit line.
func (r *SQLiteRepository) CreateCreditLine(ctx context.Context, c core.CreditLine) (core.CreditLine, error) {
	c.CreatedAt = now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO credit_lines (user_id, name, kind, card_suffix,
			credit_limit, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.UserID, c.Name, string(c.Kind), c.CardSuffix,
		encodeMoney(c.Limit), c.Description, encodeTimestamp(c.CreatedAt))
	if err != nil {
		return core.CreditLine{}, fmt.Errorf("insert credit line: %w", mapConstraintErr(err))
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.CreditLine{}, fmt.Errorf("credit line insert id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetCreditLine(ctx context.Context, userID, id int64) (core.CreditLine, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, kind, card_suffix, credit_limit, description, created_at
		FROM credit_lines WHERE id = ?`, id)
	c, err := scanCreditLine(row)
	if err != nil {
		return core.CreditLine{}, err
	}
	if c.UserID != userID {
		return core.CreditLine{}, core.ErrNotOwner
	}
	return c, nil
}

func (r *SQLiteRepository) ListCreditLines(ctx context.Context, userID int64) ([]core.CreditLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, kind, card_suffix, credit_limit, description, created_at
		FROM credit_lines WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list credit lines: %w", err)
	}
	defer rows.Close()

	var out []core.CreditLine
	for rows.Next() {
		c, err := scanCreditLine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateCreditLine(ctx context.Context, c core.CreditLine) error {
	if _, err := r.GetCreditLine(ctx, c.UserID, c.ID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE credit_lines
		SET name = ?, kind = ?, card_suffix = ?, credit_limit = ?, description = ?
		WHERE id = ?`,
		c.Name, string(c.Kind), c.CardSuffix, encodeMoney(c.Limit),
		c.Description, c.ID)
	if err != nil {
		return fmt.Errorf("update credit line: %w", mapConstraintErr(err))
	}
	return nil
}

func (r *SQLiteRepository) DeleteCreditLine(ctx context.Context, userID, id int64) error {
	if _, err := r.GetCreditLine(ctx, userID, id); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credit_lines WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete credit line: %w", err)
	}
	return nil
}

// CreatePurchaseGroup inserts a new purchase group.
func (r *SQLiteRepository) CreatePurchaseGroup(ctx context.Context, g core.PurchaseGroup) (core.PurchaseGroup, error) {
	g.CreatedAt = now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO purchase_groups (user_id, name, kind, description, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		g.UserID, g.Name, string(g.Kind), g.Description, encodeTimestamp(g.CreatedAt))
	if err != nil {
		return core.PurchaseGroup{}, fmt.Errorf("insert purchase group: %w", mapConstraintErr(err))
	}
	g.ID, err = res.LastInsertId()
	if err != nil {
		return core.PurchaseGroup{}, fmt.Errorf("purchase group insert id: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) GetPurchaseGroup(ctx context.Context, userID, id int64) (core.PurchaseGroup, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, kind, description, created_at
		FROM purchase_groups WHERE id = ?`, id)

	var (
		g           core.PurchaseGroup
		kind, stamp string
	)
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &kind, &g.Description, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PurchaseGroup{}, ErrNotFound
	}
	if err != nil {
		return core.PurchaseGroup{}, fmt.Errorf("scan purchase group: %w", err)
	}
	g.Kind = core.GroupKind(kind)
	if g.CreatedAt, err = decodeTimestamp(stamp); err != nil {
		return core.PurchaseGroup{}, err
	}
	if g.UserID != userID {
		return core.PurchaseGroup{}, core.ErrNotOwner
	}
	return g, nil
}

func (r *SQLiteRepository) ListPurchaseGroups(ctx context.Context, userID int64) ([]core.PurchaseGroup, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, kind, description, created_at
		FROM purchase_groups WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchase groups: %w", err)
	}
	defer rows.Close()

	var out []core.PurchaseGroup
	for rows.Next() {
		var (
			g           core.PurchaseGroup
			kind, stamp string
		)
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &kind, &g.Description, &stamp); err != nil {
			return nil, fmt.Errorf("scan purchase group: %w", err)
		}
		g.Kind = core.GroupKind(kind)
		if g.CreatedAt, err = decodeTimestamp(stamp); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeletePurchaseGroup(ctx context.Context, userID, id int64) error {
	if _, err := r.GetPurchaseGroup(ctx, userID, id); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM purchase_groups WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete purchase group: %w", err)
	}
	return nil
}

const planColumns = `id, user_id, credit_line_id, group_id, purchase_date,
	description, total, count, first_month, last_month, monthly_amount, created_at`

// CreatePurchasePlan persists a plan together with its installment rows
// in one transaction. Either everything lands or nothing does.
func (r *SQLiteRepository) CreatePurchasePlan(ctx context.Context, p core.PurchasePlan, installments []core.Installment) (core.PurchasePlan, error) {
	if _, err := r.GetCreditLine(ctx, p.UserID, p.CreditLineID); err != nil {
		return core.PurchasePlan{}, err
	}
	if _, err := r.GetPurchaseGroup(ctx, p.UserID, p.GroupID); err != nil {
		return core.PurchasePlan{}, err
	}

	p.CreatedAt = now()
	err := r.inTx(func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO purchase_plans (user_id, credit_line_id, group_id,
				purchase_date, description, total, count, first_month,
				last_month, monthly_amount, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.UserID, p.CreditLineID, p.GroupID, encodeDate(p.PurchaseDate),
			p.Description, encodeMoney(p.Total), p.Count,
			encodeMonth(p.FirstMonth), encodeMonth(p.LastMonth),
			encodeMoney(p.MonthlyAmount), encodeTimestamp(p.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert purchase plan: %w", mapConstraintErr(err))
		}
		if p.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("purchase plan insert id: %w", err)
		}

		for _, inst := range installments {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO installments (plan_id, sequence, due_date, amount, created_at)
				VALUES (?, ?, ?, ?, ?)`,
				p.ID, inst.Sequence, encodeDate(inst.DueDate),
				encodeMoney(inst.Amount), encodeTimestamp(p.CreatedAt)); err != nil {
				return fmt.Errorf("insert installment %d: %w", inst.Sequence, err)
			}
		}
		return nil
	})
	if err != nil {
		return core.PurchasePlan{}, err
	}
	return p, nil
}

func (r *SQLiteRepository) GetPurchasePlan(ctx context.Context, userID, id int64) (core.PurchasePlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM purchase_plans WHERE id = ?`, id)
	p, err := scanPlan(row)
	if err != nil {
		return core.PurchasePlan{}, err
	}
	if p.UserID != userID {
		return core.PurchasePlan{}, core.ErrNotOwner
	}
	return p, nil
}

func (r *SQLiteRepository) ListPurchasePlans(ctx context.Context, userID int64) ([]core.PurchasePlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+planColumns+` FROM purchase_plans
		WHERE user_id = ? ORDER BY purchase_date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchase plans: %w", err)
	}
	defer rows.Close()

	var out []core.PurchasePlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListPlanInstallments returns the installments of one plan in sequence
// order.
func (r *SQLiteRepository) ListPlanInstallments(ctx context.Context, userID, planID int64) ([]core.Installment, error) {
	if _, err := r.GetPurchasePlan(ctx, userID, planID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, plan_id, sequence, due_date, amount, created_at
		FROM installments WHERE plan_id = ? ORDER BY sequence`, planID)
	if err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	defer rows.Close()

	var out []core.Installment
	for rows.Next() {
		var (
			inst               core.Installment
			due, amount, stamp string
		)
		if err := rows.Scan(&inst.ID, &inst.PlanID, &inst.Sequence, &due, &amount, &stamp); err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		if inst.DueDate, err = decodeDate(due); err != nil {
			return nil, err
		}
		if inst.Amount, err = decodeMoney(amount); err != nil {
			return nil, err
		}
		if inst.CreatedAt, err = decodeTimestamp(stamp); err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// UpdatePurchasePlanTotal rewrites a plan's total, its cached monthly
// amount, and the amount of every installment atomically. Due dates and
// sequences are untouched.
func (r *SQLiteRepository) UpdatePurchasePlanTotal(ctx context.Context, userID, planID int64, total, monthlyAmount core.Money, amounts []core.Money) error {
	if _, err := r.GetPurchasePlan(ctx, userID, planID); err != nil {
		return err
	}
	return r.inTx(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE purchase_plans SET total = ?, monthly_amount = ?
			WHERE id = ?`,
			encodeMoney(total), encodeMoney(monthlyAmount), planID); err != nil {
			return fmt.Errorf("update purchase plan total: %w", err)
		}
		for i, amount := range amounts {
			res, err := tx.ExecContext(ctx, `
				UPDATE installments SET amount = ?
				WHERE plan_id = ? AND sequence = ?`,
				encodeMoney(amount), planID, i+1)
			if err != nil {
				return fmt.Errorf("update installment %d: %w", i+1, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("update installment %d: %w", i+1, err)
			}
			if n != 1 {
				return fmt.Errorf("update installment %d: %w", i+1, ErrNotFound)
			}
		}
		return nil
	})
}

// DeletePurchasePlan removes a plan; its installments go with it via
// cascade.
func (r *SQLiteRepository) DeletePurchasePlan(ctx context.Context, userID, id int64) error {
	if _, err := r.GetPurchasePlan(ctx, userID, id); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM purchase_plans WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete purchase plan: %w", err)
	}
	return nil
}

// ListDueInstallments joins every installment the user owns with its plan
// and credit line, as consumed by the monthly aggregation.
func (r *SQLiteRepository) ListDueInstallments(ctx context.Context, userID int64) ([]ledger.DueInstallment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, p.id, p.credit_line_id, c.name, g.name, p.description,
			i.sequence, p.count, i.due_date, i.amount
		FROM installments i
		JOIN purchase_plans p ON p.id = i.plan_id
		JOIN credit_lines c ON c.id = p.credit_line_id
		JOIN purchase_groups g ON g.id = p.group_id
		WHERE p.user_id = ?
		ORDER BY i.due_date, i.sequence`, userID)
	if err != nil {
		return nil, fmt.Errorf("list due installments: %w", err)
	}
	defer rows.Close()

	var out []ledger.DueInstallment
	for rows.Next() {
		var (
			d           ledger.DueInstallment
			due, amount string
		)
		if err := rows.Scan(&d.InstallmentID, &d.PlanID, &d.CreditLineID,
			&d.CreditLineName, &d.GroupName, &d.Description,
			&d.Sequence, &d.Count, &due, &amount); err != nil {
			return nil, fmt.Errorf("scan due installment: %w", err)
		}
		if d.DueDate, err = decodeDate(due); err != nil {
			return nil, err
		}
		if d.Amount, err = decodeMoney(amount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanCreditLine(row rowScanner) (core.CreditLine, error) {
	var (
		c                  core.CreditLine
		kind, limit, stamp string
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &kind, &c.CardSuffix,
		&limit, &c.Description, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CreditLine{}, ErrNotFound
	}
	if err != nil {
		return core.CreditLine{}, fmt.Errorf("scan credit line: %w", err)
	}
	c.Kind = core.CreditLineKind(kind)
	if c.Limit, err = decodeMoney(limit); err != nil {
		return core.CreditLine{}, err
	}
	if c.CreatedAt, err = decodeTimestamp(stamp); err != nil {
		return core.CreditLine{}, err
	}
	return c, nil
}

func scanPlan(row rowScanner) (core.PurchasePlan, error) {
	var (
		p                                        core.PurchasePlan
		date, total, first, last, monthly, stamp string
	)
	err := row.Scan(&p.ID, &p.UserID, &p.CreditLineID, &p.GroupID, &date,
		&p.Description, &total, &p.Count, &first, &last, &monthly, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PurchasePlan{}, ErrNotFound
	}
	if err != nil {
		return core.PurchasePlan{}, fmt.Errorf("scan purchase plan: %w", err)
	}
	if p.PurchaseDate, err = decodeDate(date); err != nil {
		return core.PurchasePlan{}, err
	}
	if p.Total, err = decodeMoney(total); err != nil {
		return core.PurchasePlan{}, err
	}
	if p.FirstMonth, err = decodeMonth(first); err != nil {
		return core.PurchasePlan{}, err
	}
	if p.LastMonth, err = decodeMonth(last); err != nil {
		return core.PurchasePlan{}, err
	}
	if p.MonthlyAmount, err = decodeMoney(monthly); err != nil {
		return core.PurchasePlan{}, err
	}
	if p.CreatedAt, err = decodeTimestamp(stamp); err != nil {
		return core.PurchasePlan{}, err
	}
	return p, nil
}
