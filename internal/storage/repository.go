// Package storage implements the SQLite persistence layer. All amounts
// are stored as fixed-point decimal text, dates as ISO day strings and
// months as "YYYY-MM", so rows survive round trips without float drift.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"financas/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when an insert or update violates a uniqueness
// constraint.
var ErrConflict = errors.New("record already exists")

const (
	dateLayout = "2006-01-02"
	// created_at is compared lexicographically in SQL, so the layout must
	// be fixed width. RFC3339Nano is not.
	timestampLayout = "2006-01-02 15:04:05"
)

// SQLiteRepository is the single storage handle shared by all services.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath,
// enables foreign keys and applies pending migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// inTx runs fn inside a transaction, rolling back on error.
func (r *SQLiteRepository) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// now is the single clock used for created_at columns. Truncated to the
// second so it round-trips through timestampLayout unchanged.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func encodeDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func decodeDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode date %q: %w", s, err)
	}
	return t, nil
}

func encodeTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func decodeTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode timestamp %q: %w", s, err)
	}
	return t, nil
}

func encodeMoney(m core.Money) string {
	return m.String()
}

func decodeMoney(s string) (core.Money, error) {
	m, err := core.ParseMoney(s)
	if err != nil {
		return core.MoneyZero, fmt.Errorf("decode amount %q: %w", s, err)
	}
	return m, nil
}

func decimalFromString(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode decimal %q: %w", s, err)
	}
	return d, nil
}

func encodeMonth(m core.Month) string {
	return m.String()
}

func decodeMonth(s string) (core.Month, error) {
	m, err := core.ParseMonth(s)
	if err != nil {
		return core.Month{}, fmt.Errorf("decode month %q: %w", s, err)
	}
	return m, nil
}

// mapConstraintErr translates sqlite constraint failures into ErrConflict
// so callers can answer with 409 instead of 500.
func mapConstraintErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed: UNIQUE") {
		return fmt.Errorf("%w: %s", ErrConflict, msg)
	}
	return err
}
