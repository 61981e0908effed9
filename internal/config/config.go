// Package config loads and validates process configuration from the
// environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"financas/internal/schedule"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	SQLiteDBPath string

	// Installment scheduling
	RemainderPolicy schedule.RemainderPolicy

	// AMQP audit pipeline (optional: empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Overdue worker
	OverdueInterval time.Duration

	// Google Sheets statement export (optional)
	SheetsExportEnabled bool
	SpreadsheetID       string
	StatementSheetName  string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/financas.db"),

		RemainderPolicy: schedule.RemainderPolicy(
			getEnv("SCHEDULE_REMAINDER_POLICY", string(schedule.SplitEven))),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "financas"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "audit_events"),

		OverdueInterval: getEnvDuration("OVERDUE_INTERVAL", 6*time.Hour),

		SheetsExportEnabled: getEnvBool("SHEETS_EXPORT_ENABLED", false),
		SpreadsheetID:       getEnv("GOOGLE_SPREADSHEET_ID", ""),
		StatementSheetName:  getEnv("GOOGLE_STATEMENT_SHEET_NAME", "Statements"),
	}
}

// Validate checks the configuration and returns an error describing every
// problem found.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		problems = append(problems, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				problems = append(problems, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
			}
		}
	}

	if !c.RemainderPolicy.Valid() {
		problems = append(problems, fmt.Sprintf("invalid remainder policy '%s': must be '%s' or '%s'",
			c.RemainderPolicy, schedule.SplitEven, schedule.RemainderToLast))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.OverdueInterval < time.Minute {
		problems = append(problems, fmt.Sprintf("overdue interval %s too short: minimum 1m", c.OverdueInterval))
	}

	if c.SheetsExportEnabled && c.SpreadsheetID == "" {
		problems = append(problems, "GOOGLE_SPREADSHEET_ID is required when sheets export is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
