package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"monalert/internal/logger"
	"monalert/internal/model"
	"monalert/internal/repositories"
)

//go:embed migrations.sql
var migrations string

//nolint:gochecknoglobals // Fixed connection settings.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
}

// Store persists monitor state in a single SQLite file.
type Store struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer; runs are sequential anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	applyPragmas(ctx, db, pragmas)

	if _, err := db.ExecContext(ctx, migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// applyPragmas tunes the connection. Failures are logged and the store still opens.
func applyPragmas(ctx context.Context, db *sql.DB, statements []string) {
	for _, pragma := range statements {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			logger.Warnf(ctx, "sqlite %s: %v", pragma, err)
		}
	}
}

func (s *Store) LatestCaseStatus(ctx context.Context, receiptNum string) (model.CaseStatus, error) {
	const query = `
SELECT receipt_num, status, description, observed_at
  FROM case_statuses
 WHERE receipt_num = ?
 ORDER BY observed_at DESC, id DESC
 LIMIT 1`

	var (
		status     model.CaseStatus
		observedAt int64
	)
	err := s.db.QueryRowContext(ctx, query, receiptNum).Scan(&status.ReceiptNum, &status.Status, &status.Description, &observedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CaseStatus{}, repositories.ErrNotFound
	}
	if err != nil {
		return model.CaseStatus{}, fmt.Errorf("select latest case status: %w", err)
	}
	status.ObservedAt = time.Unix(0, observedAt).UTC()
	return status, nil
}

func (s *Store) AppendCaseStatus(ctx context.Context, status model.CaseStatus) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO case_statuses(receipt_num, status, description, observed_at) VALUES(?,?,?,?)`,
		status.ReceiptNum, status.Status, status.Description, status.ObservedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert case status: %w", err)
	}
	return nil
}

func (s *Store) CurrentAppointment(ctx context.Context) (model.Appointment, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT date FROM appointment_dates LIMIT 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Appointment{}, repositories.ErrNotFound
	}
	if err != nil {
		return model.Appointment{}, fmt.Errorf("select appointment date: %w", err)
	}

	date, err := model.ParseDate(raw)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("parse stored appointment date: %w", err)
	}
	return model.Appointment{Date: date}, nil
}

func (s *Store) ReplaceAppointment(ctx context.Context, previous *model.Appointment, next model.Appointment) error {
	if previous == nil {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO appointment_dates(date) VALUES(?)`, next.DateText()); err != nil {
			return fmt.Errorf("insert appointment date: %w", err)
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx, `UPDATE appointment_dates SET date = ? WHERE date = ?`, next.DateText(), previous.DateText())
	if err != nil {
		return fmt.Errorf("update appointment date: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update appointment date: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("replace appointment %s: %w", previous.DateText(), repositories.ErrNotFound)
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ repositories.Store = (*Store)(nil)
