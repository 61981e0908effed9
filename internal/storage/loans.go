package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"financas/internal/core"
)

const loanInstallmentColumns = `id, loan_id, sequence, due_date, principal,
	interest, insurance, fees, total_due, paid_date, paid_amount, status,
	notes, created_at`

// CreateLoan persists a loan together with its imported installment
// schedule in one transaction.
func (r *SQLiteRepository) CreateLoan(ctx context.Context, l core.Loan, installments []core.LoanInstallment) (core.Loan, error) {
	if _, err := r.GetAccount(ctx, l.UserID, l.AccountID); err != nil {
		return core.Loan{}, err
	}

	l.CreatedAt = now()
	err := r.inTx(func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO loans (user_id, account_id, name, principal,
				annual_rate, start_date, term_months, amortization,
				description, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.UserID, l.AccountID, l.Name, encodeMoney(l.Principal),
			l.AnnualRate.String(), encodeDate(l.StartDate), l.TermMonths,
			string(l.Amortization), l.Description, encodeTimestamp(l.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert loan: %w", mapConstraintErr(err))
		}
		if l.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("loan insert id: %w", err)
		}

		for _, inst := range installments {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO loan_installments (loan_id, sequence, due_date,
					principal, interest, insurance, fees, total_due, status,
					notes, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				l.ID, inst.Sequence, encodeDate(inst.DueDate),
				encodeMoney(inst.Principal), encodeMoney(inst.Interest),
				encodeMoney(inst.Insurance), encodeMoney(inst.Fees),
				encodeMoney(inst.TotalDue), string(core.LoanInstallmentPending),
				inst.Notes, encodeTimestamp(l.CreatedAt)); err != nil {
				return fmt.Errorf("insert loan installment %d: %w", inst.Sequence, err)
			}
		}
		return nil
	})
	if err != nil {
		return core.Loan{}, err
	}
	return l, nil
}

func (r *SQLiteRepository) GetLoan(ctx context.Context, userID, id int64) (core.Loan, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, account_id, name, principal, annual_rate,
			start_date, term_months, amortization, description, created_at
		FROM loans WHERE id = ?`, id)
	l, err := scanLoan(row)
	if err != nil {
		return core.Loan{}, err
	}
	if l.UserID != userID {
		return core.Loan{}, core.ErrNotOwner
	}
	return l, nil
}

func (r *SQLiteRepository) ListLoans(ctx context.Context, userID int64) ([]core.Loan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, account_id, name, principal, annual_rate,
			start_date, term_months, amortization, description, created_at
		FROM loans WHERE user_id = ? ORDER BY start_date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var out []core.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteLoan(ctx context.Context, userID, id int64) error {
	if _, err := r.GetLoan(ctx, userID, id); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM loans WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}
	return nil
}

// ListLoanInstallments returns the schedule of one loan in sequence
// order.
func (r *SQLiteRepository) ListLoanInstallments(ctx context.Context, userID, loanID int64) ([]core.LoanInstallment, error) {
	if _, err := r.GetLoan(ctx, userID, loanID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+loanInstallmentColumns+` FROM loan_installments
		WHERE loan_id = ? ORDER BY sequence`, loanID)
	if err != nil {
		return nil, fmt.Errorf("list loan installments: %w", err)
	}
	defer rows.Close()

	var out []core.LoanInstallment
	for rows.Next() {
		inst, err := scanLoanInstallment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// GetLoanInstallment fetches one installment, checking loan ownership.
func (r *SQLiteRepository) GetLoanInstallment(ctx context.Context, userID, id int64) (core.LoanInstallment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+loanInstallmentColumns+` FROM loan_installments WHERE id = ?`, id)
	inst, err := scanLoanInstallment(row)
	if err != nil {
		return core.LoanInstallment{}, err
	}
	if _, err := r.GetLoan(ctx, userID, inst.LoanID); err != nil {
		return core.LoanInstallment{}, err
	}
	return inst, nil
}

// MarkLoanInstallmentPaid records the payment of one installment.
func (r *SQLiteRepository) MarkLoanInstallmentPaid(ctx context.Context, userID, id int64, paidDate time.Time, paidAmount core.Money, notes string) error {
	if _, err := r.GetLoanInstallment(ctx, userID, id); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE loan_installments
		SET status = ?, paid_date = ?, paid_amount = ?, notes = ?
		WHERE id = ?`,
		string(core.LoanInstallmentPaid), encodeDate(paidDate),
		encodeMoney(paidAmount), notes, id)
	if err != nil {
		return fmt.Errorf("mark loan installment paid: %w", err)
	}
	return nil
}

// MarkOverdueLoanInstallments flips pending installments due strictly
// before cutoff to overdue, across all users. Returns how many rows
// changed.
func (r *SQLiteRepository) MarkOverdueLoanInstallments(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE loan_installments SET status = ?
		WHERE status = ? AND due_date < ?`,
		string(core.LoanInstallmentOverdue),
		string(core.LoanInstallmentPending), encodeDate(cutoff))
	if err != nil {
		return 0, fmt.Errorf("mark overdue loan installments: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("overdue rows affected: %w", err)
	}
	return n, nil
}

func scanLoan(row rowScanner) (core.Loan, error) {
	var (
		l                                      core.Loan
		principal, rate, start, amortiz, stamp string
	)
	err := row.Scan(&l.ID, &l.UserID, &l.AccountID, &l.Name, &principal,
		&rate, &start, &l.TermMonths, &amortiz, &l.Description, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Loan{}, ErrNotFound
	}
	if err != nil {
		return core.Loan{}, fmt.Errorf("scan loan: %w", err)
	}
	if l.Principal, err = decodeMoney(principal); err != nil {
		return core.Loan{}, err
	}
	if l.AnnualRate, err = decimalFromString(rate); err != nil {
		return core.Loan{}, err
	}
	if l.StartDate, err = decodeDate(start); err != nil {
		return core.Loan{}, err
	}
	l.Amortization = core.LoanAmortization(amortiz)
	if l.CreatedAt, err = decodeTimestamp(stamp); err != nil {
		return core.Loan{}, err
	}
	return l, nil
}

func scanLoanInstallment(row rowScanner) (core.LoanInstallment, error) {
	var (
		inst                                            core.LoanInstallment
		due, principal, interest, insurance, fees, total string
		status, stamp                                   string
		paidDate, paidAmount                            sql.NullString
	)
	err := row.Scan(&inst.ID, &inst.LoanID, &inst.Sequence, &due,
		&principal, &interest, &insurance, &fees, &total,
		&paidDate, &paidAmount, &status, &inst.Notes, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return core.LoanInstallment{}, ErrNotFound
	}
	if err != nil {
		return core.LoanInstallment{}, fmt.Errorf("scan loan installment: %w", err)
	}
	if inst.DueDate, err = decodeDate(due); err != nil {
		return core.LoanInstallment{}, err
	}
	if inst.Principal, err = decodeMoney(principal); err != nil {
		return core.LoanInstallment{}, err
	}
	if inst.Interest, err = decodeMoney(interest); err != nil {
		return core.LoanInstallment{}, err
	}
	if inst.Insurance, err = decodeMoney(insurance); err != nil {
		return core.LoanInstallment{}, err
	}
	if inst.Fees, err = decodeMoney(fees); err != nil {
		return core.LoanInstallment{}, err
	}
	if inst.TotalDue, err = decodeMoney(total); err != nil {
		return core.LoanInstallment{}, err
	}
	if paidDate.Valid {
		d, err := decodeDate(paidDate.String)
		if err != nil {
			return core.LoanInstallment{}, err
		}
		inst.PaidDate = &d
	}
	if paidAmount.Valid {
		m, err := decodeMoney(paidAmount.String)
		if err != nil {
			return core.LoanInstallment{}, err
		}
		inst.PaidAmount = &m
	}
	inst.Status = core.LoanInstallmentStatus(status)
	if inst.CreatedAt, err = decodeTimestamp(stamp); err != nil {
		return core.LoanInstallment{}, err
	}
	return inst, nil
}
