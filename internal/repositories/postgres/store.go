package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"monalert/internal/model"
	"monalert/internal/repositories"
)

// Store persists monitor state in PostgreSQL. The pool is owned by the caller.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) LatestCaseStatus(ctx context.Context, receiptNum string) (model.CaseStatus, error) {
	const query = `
SELECT receipt_num, status, description, observed_at
  FROM case_statuses
 WHERE receipt_num = $1
 ORDER BY observed_at DESC, id DESC
 LIMIT 1;
`
	var status model.CaseStatus
	err := s.pool.QueryRow(ctx, query, receiptNum).Scan(&status.ReceiptNum, &status.Status, &status.Description, &status.ObservedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.CaseStatus{}, repositories.ErrNotFound
	}
	if err != nil {
		return model.CaseStatus{}, fmt.Errorf("select latest case status: %w", err)
	}
	status.ObservedAt = status.ObservedAt.UTC()
	return status, nil
}

func (s *Store) AppendCaseStatus(ctx context.Context, status model.CaseStatus) error {
	const insert = `
INSERT INTO case_statuses (receipt_num, status, description, observed_at)
VALUES ($1, $2, $3, $4);
`
	if _, err := s.pool.Exec(ctx, insert, status.ReceiptNum, status.Status, status.Description, status.ObservedAt); err != nil {
		return fmt.Errorf("insert case status: %w", err)
	}
	return nil
}

func (s *Store) CurrentAppointment(ctx context.Context) (model.Appointment, error) {
	const query = `SELECT to_char(date, 'YYYY-MM-DD') FROM appointment_dates LIMIT 1;`

	var raw string
	err := s.pool.QueryRow(ctx, query).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
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
		const insert = `INSERT INTO appointment_dates (date) VALUES ($1::date);`
		if _, err := s.pool.Exec(ctx, insert, next.DateText()); err != nil {
			return fmt.Errorf("insert appointment date: %w", err)
		}
		return nil
	}

	const update = `UPDATE appointment_dates SET date = $1::date WHERE date = $2::date;`
	tag, err := s.pool.Exec(ctx, update, next.DateText(), previous.DateText())
	if err != nil {
		return fmt.Errorf("update appointment date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("replace appointment %s: %w", previous.DateText(), repositories.ErrNotFound)
	}
	return nil
}

// Close is a no-op; the pool belongs to whoever created it.
func (s *Store) Close() error {
	return nil
}

var _ repositories.Store = (*Store)(nil)
