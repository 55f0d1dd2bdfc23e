// Package storage keeps a local SQLite history of runs and can serve as the log backend.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thirukguru/check42/model"
	_ "modernc.org/sqlite"
)

const (
	defaultDBPath = "~/.check42/history.db"
	// sqliteTime matches CURRENT_TIMESTAMP so stored and defaulted values compare as text.
	sqliteTime = "2006-01-02 15:04:05"
)

// NewService creates a SQLite-backed storage service.
func NewService(dbPath string) (Service, error) {
	resolved, err := resolvePath(dbPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaV1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &service{db: db, dbPath: resolved}, nil
}

type service struct {
	db     *sql.DB
	dbPath string
}

func resolvePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		p = defaultDBPath
	}
	if strings.HasPrefix(p, "~/") || p == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home dir: %w", err)
		}
		if p == "~" {
			p = home
		} else {
			p = filepath.Join(home, p[2:])
		}
	}
	return filepath.Clean(p), nil
}

func (s *service) SaveRun(ctx context.Context, input SaveRunInput) (runID int64, err error) {
	if input.AccountID == "" {
		return 0, errors.New("account id is required")
	}
	if input.RunUUID == "" {
		input.RunUUID = uuid.NewString()
	}

	var passed, failed, errored int
	for _, o := range input.Outcomes {
		switch o.Status {
		case model.StatusPass:
			passed++
		case model.StatusFail:
			failed++
		case model.StatusError:
			errored++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (
			run_uuid, account_id, duration_ms, checks_run,
			passed_count, failed_count, errored_count, sections, notified, cli_version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, input.RunUUID, input.AccountID, input.Duration.Milliseconds(), len(input.Outcomes),
		passed, failed, errored, input.Sections, input.Notified, input.Version)
	if err != nil {
		return 0, err
	}
	runID, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err = s.saveOutcomesTx(ctx, tx, runID, input.Outcomes); err != nil {
		return 0, err
	}
	if err = s.saveCheckStatusTx(ctx, tx, input.AccountID, input.Outcomes); err != nil {
		return 0, err
	}

	err = tx.Commit()
	if err != nil {
		return 0, err
	}
	return runID, nil
}

func (s *service) saveOutcomesTx(ctx context.Context, tx *sql.Tx, runID int64, outcomes []model.Outcome) error {
	for _, o := range outcomes {
		finding, err := json.Marshal(o.Finding)
		if err != nil {
			return fmt.Errorf("failed to encode finding of %s: %w", o.Check.Name, err)
		}
		errText := ""
		if o.Err != nil {
			errText = o.Err.Error()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_outcomes(run_id, check_id, check_name, status, error_kind, error, muted, item_count, finding_json, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, o.Check.ID, o.Check.Name, string(o.Status), string(o.ErrorKind), errText,
			o.Check.Muted, len(o.Finding.Items), string(finding), o.Duration.Milliseconds())
		if err != nil {
			return err
		}
	}
	return nil
}

// saveCheckStatusTx opens failing checks and resolves open checks that passed.
// Errored checks keep their previous state.
func (s *service) saveCheckStatusTx(ctx context.Context, tx *sql.Tx, accountID string, outcomes []model.Outcome) error {
	now := time.Now().UTC().Format(sqliteTime)
	var passed []string

	for _, o := range outcomes {
		switch o.Status {
		case model.StatusFail:
			_, err := tx.ExecContext(ctx, `
				INSERT INTO check_status(account_id, check_name, first_failed, last_failed, status)
				VALUES (?, ?, ?, ?, 'OPEN')
				ON CONFLICT(account_id, check_name) DO UPDATE SET
					first_failed=CASE WHEN check_status.status='RESOLVED' THEN excluded.first_failed ELSE check_status.first_failed END,
					last_failed=excluded.last_failed,
					resolved_at=NULL,
					status='OPEN'
			`, accountID, o.Check.Name, now, now)
			if err != nil {
				return err
			}
		case model.StatusPass:
			passed = append(passed, o.Check.Name)
		}
	}

	if len(passed) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(passed)), ",")
	args := make([]any, 0, len(passed)+2)
	args = append(args, now, accountID)
	for _, name := range passed {
		args = append(args, name)
	}
	query := fmt.Sprintf(`
		UPDATE check_status SET status='RESOLVED', resolved_at=?
		WHERE account_id=? AND status='OPEN' AND check_name IN (%s)
	`, placeholders)
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

const runColumns = `run_id, run_uuid, account_id, run_timestamp, duration_ms, checks_run,
	passed_count, failed_count, errored_count, sections, notified, cli_version`

func scanRun(rows interface{ Scan(...any) error }) (RunSummary, error) {
	var r RunSummary
	err := rows.Scan(&r.RunID, &r.RunUUID, &r.AccountID, &r.RunTimestamp, &r.DurationMs, &r.ChecksRun,
		&r.Passed, &r.Failed, &r.Errored, &r.Sections, &r.Notified, &r.Version)
	return r, err
}

func (s *service) RecentRuns(accountID string, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT ` + runColumns + ` FROM runs`
	args := []any{}
	if accountID != "" {
		query += " WHERE account_id=?"
		args = append(args, accountID)
	}
	query += " ORDER BY run_timestamp DESC, run_id DESC LIMIT ?"
	args = append(args, limit)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns nil when no run has the id.
func (s *service) GetRun(runID int64) (*RunSummary, error) {
	return s.getRun(`run_id=?`, runID)
}

// GetRunByUUID returns nil when no run has the uuid.
func (s *service) GetRunByUUID(runUUID string) (*RunSummary, error) {
	return s.getRun(`run_uuid=?`, runUUID)
}

func (s *service) getRun(where string, arg any) (*RunSummary, error) {
	r, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *service) ListRunOutcomes(runID int64) ([]OutcomeSnapshot, error) {
	rows, err := s.db.Query(`
		SELECT check_id, check_name, status, error_kind, error, muted, item_count, finding_json, duration_ms
		FROM run_outcomes WHERE run_id=? ORDER BY check_name ASC, check_id ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []OutcomeSnapshot{}
	for rows.Next() {
		var o OutcomeSnapshot
		var finding string
		if err := rows.Scan(&o.CheckID, &o.CheckName, &o.Status, &o.ErrorKind, &o.Error, &o.Muted, &o.ItemCount, &finding, &o.DurationMs); err != nil {
			return nil, err
		}
		if finding != "" {
			if err := json.Unmarshal([]byte(finding), &o.Finding); err != nil {
				return nil, fmt.Errorf("failed to decode finding of %s: %w", o.CheckName, err)
			}
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *service) OpenChecks(accountID string) ([]CheckStatus, error) {
	rows, err := s.db.Query(`
		SELECT check_name, first_failed, last_failed, status
		FROM check_status WHERE account_id=? AND status='OPEN'
		ORDER BY first_failed ASC, check_name ASC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []CheckStatus{}
	for rows.Next() {
		var c CheckStatus
		if err := rows.Scan(&c.CheckName, &c.FirstFailed, &c.LastFailed, &c.Status); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *service) CheckHistory(checkName string, limit int) ([]CheckEvent, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.db.Query(`
		SELECT o.run_id, r.run_timestamp, o.status, o.item_count
		FROM run_outcomes o
		JOIN runs r ON r.run_id = o.run_id
		WHERE o.check_name=?
		ORDER BY r.run_timestamp DESC, o.run_id DESC
		LIMIT ?
	`, checkName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []CheckEvent{}
	for rows.Next() {
		var e CheckEvent
		if err := rows.Scan(&e.RunID, &e.RunTimestamp, &e.Status, &e.ItemCount); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *service) Append(ctx context.Context, r model.LogRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO log_records(id, check_id, check_name, timestamp, version, module, muted, status, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.CheckID, r.CheckName, r.Timestamp, r.Version, r.Module, r.Muted, r.Status, r.Message)
	if err != nil {
		return fmt.Errorf("failed to append log record %s: %w", r.ID, err)
	}
	return nil
}

func (s *service) Recent(ctx context.Context, limit int) ([]model.LogRecord, error) {
	query := `
		SELECT id, check_id, check_name, timestamp, version, module, muted, status, message
		FROM log_records ORDER BY timestamp DESC, id ASC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.LogRecord{}
	for rows.Next() {
		var r model.LogRecord
		if err := rows.Scan(&r.ID, &r.CheckID, &r.CheckName, &r.Timestamp, &r.Version, &r.Module, &r.Muted, &r.Status, &r.Message); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *service) Vacuum(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

// PurgeOlderThan deletes runs and log records older than days and returns the number removed.
func (s *service) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, errors.New("days must be > 0")
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM runs WHERE run_timestamp < DATETIME('now', ?)
	`, fmt.Sprintf("-%d day", days))
	if err != nil {
		return 0, err
	}
	runs, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	res, err = s.db.ExecContext(ctx, `DELETE FROM log_records WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	logs, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return runs + logs, nil
}

func (s *service) Close() error {
	return s.db.Close()
}
