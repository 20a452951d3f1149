package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/go-sql-driver/mysql"

	"gtr/internal/config"
	"gtr/internal/domain"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// SQLHistory appends one row per test of every completed run to a MySQL table
type SQLHistory struct {
	db    *sql.DB
	table string
}

// OpenHistory connects to cfg.DBDSN and makes sure the history table exists.
// It returns nil, nil when no DSN is configured.
func OpenHistory(ctx context.Context, cfg *config.Config) (*SQLHistory, error) {
	if cfg.DBDSN == "" {
		return nil, nil
	}
	if !isValidTableName(cfg.HistoryTable) {
		return nil, fmt.Errorf("invalid history table name: %q", cfg.HistoryTable)
	}

	db, err := sql.Open("mysql", cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database server: %w", err)
	}

	h := &SQLHistory{db: db, table: cfg.HistoryTable}
	if _, err := db.ExecContext(ctx, createTableQuery(h.table)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", h.table, err)
	}
	return h, nil
}

// Record inserts the tests of run in a single transaction
func (h *SQLHistory) Record(ctx context.Context, run domain.RunRecord) error {
	rows := historyRows(run, time.Now())
	if len(rows) == 0 {
		return nil
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history insert: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertQuery(h.table))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.executable, r.suite, r.test, r.status, r.durationMs, r.message, r.exitCode, r.ranAt); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert history row for %s: %w", domain.QualifiedName(r.suite, r.test), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history: %w", err)
	}
	log.Debug("recorded run history", "executable", run.Executable, "rows", len(rows))
	return nil
}

// Close releases the database connection
func (h *SQLHistory) Close() error {
	return h.db.Close()
}

type historyRow struct {
	executable string
	suite      string
	test       string
	status     string
	durationMs int64
	message    string
	exitCode   int
	ranAt      time.Time
}

func historyRows(run domain.RunRecord, at time.Time) []historyRow {
	var rows []historyRow
	for _, t := range run.Results.Tests() {
		rows = append(rows, historyRow{
			executable: run.Executable,
			suite:      t.Suite,
			test:       t.Name,
			status:     t.Outcome.Status.String(),
			durationMs: t.Outcome.Duration.Milliseconds(),
			message:    t.Outcome.Message,
			exitCode:   run.ExitCode,
			ranAt:      at,
		})
	}
	return rows
}

func createTableQuery(table string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` ("+
		"id BIGINT AUTO_INCREMENT PRIMARY KEY, "+
		"executable VARCHAR(1024) NOT NULL, "+
		"suite VARCHAR(255) NOT NULL, "+
		"test VARCHAR(255) NOT NULL, "+
		"status VARCHAR(16) NOT NULL, "+
		"duration_ms BIGINT NOT NULL, "+
		"message TEXT, "+
		"exit_code INT NOT NULL, "+
		"ran_at DATETIME NOT NULL)", table)
}

func insertQuery(table string) string {
	return fmt.Sprintf("INSERT INTO `%s` "+
		"(executable, suite, test, status, duration_ms, message, exit_code, ran_at) "+
		"VALUES (?, ?, ?, ?, ?, ?, ?, ?)", table)
}

// isValidTableName only allows plain identifiers, since the name is spliced into DDL
func isValidTableName(name string) bool {
	return tableNamePattern.MatchString(name)
}
