package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/assignd/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(db *sql.DB) (*SQLiteBackend, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	backend, err := NewSQLiteBackend(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return backend, nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func (b *SQLiteBackend) Load(ctx context.Context, userID string) (Snapshot, error) {
	var savedAt string
	err := b.db.QueryRowContext(ctx,
		`SELECT saved_at FROM snapshots WHERE user_id = ?`, userID).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoData
	}
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{}
	if snap.SavedAt, err = time.Parse(sqliteTimeLayout, savedAt); err != nil {
		return Snapshot{}, fmt.Errorf("parse saved_at: %w", err)
	}

	if snap.Assignments, err = b.loadAssignments(ctx, userID); err != nil {
		return Snapshot{}, err
	}
	if snap.Allocations, err = b.loadAllocations(ctx, userID); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Save replaces the user's snapshot wholesale inside one transaction.
func (b *SQLiteBackend) Save(ctx context.Context, userID string, snap Snapshot) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (user_id, saved_at) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET saved_at = excluded.saved_at`,
		userID, savedAt.UTC().Format(sqliteTimeLayout),
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE user_id = ?`, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM allocations WHERE user_id = ?`, userID); err != nil {
		return err
	}

	for pos, a := range snap.Assignments {
		dates, err := json.Marshal(a.CompletedDates)
		if err != nil {
			return fmt.Errorf("encode completed dates: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO assignments (user_id, id, position, title, subject, description,
				estimated_time, difficulty, deadline, completed, completed_dates, total_allocated_time)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			userID, a.ID, pos, a.Title, a.Subject, a.Description,
			a.EstimatedTime, a.Difficulty, a.Deadline, boolInt(a.Completed), string(dates), a.TotalAllocatedTime,
		); err != nil {
			return err
		}
	}
	for _, alloc := range snap.Allocations {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO allocations (user_id, assignment_id, date, allocated_time, completed)
			VALUES (?, ?, ?, ?, ?)`,
			userID, alloc.AssignmentID, alloc.Date, alloc.AllocatedTime, boolInt(alloc.Completed),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (b *SQLiteBackend) loadAssignments(ctx context.Context, userID string) ([]model.Assignment, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT id, title, subject, description, estimated_time, difficulty, deadline,
			completed, completed_dates, total_allocated_time
		FROM assignments WHERE user_id = ? ORDER BY position ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Assignment, 0)
	for rows.Next() {
		a, scanErr := scanAssignment(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (b *SQLiteBackend) loadAllocations(ctx context.Context, userID string) ([]model.DailyAllocation, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT assignment_id, date, allocated_time, completed
		FROM allocations WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.DailyAllocation, 0)
	for rows.Next() {
		var alloc model.DailyAllocation
		var completed int
		if err := rows.Scan(&alloc.AssignmentID, &alloc.Date, &alloc.AllocatedTime, &completed); err != nil {
			return nil, err
		}
		alloc.Completed = completed == 1
		out = append(out, alloc)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAssignment(s scanner) (model.Assignment, error) {
	var out model.Assignment
	var completed int
	var dates string
	if err := s.Scan(&out.ID, &out.Title, &out.Subject, &out.Description, &out.EstimatedTime,
		&out.Difficulty, &out.Deadline, &completed, &dates, &out.TotalAllocatedTime); err != nil {
		return model.Assignment{}, err
	}
	out.Completed = completed == 1
	if err := json.Unmarshal([]byte(dates), &out.CompletedDates); err != nil {
		return model.Assignment{}, fmt.Errorf("decode completed dates: %w", err)
	}
	return out, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
