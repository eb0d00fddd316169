package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AssignmentRecord is one per-email outcome of a reconciled bulk assignment
type AssignmentRecord struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	CaseID    string    `json:"case_id"`
	EmailID   string    `json:"email_id"`
	Subject   string    `json:"subject"`
	Sender    string    `json:"sender"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryStore records reconciled assignment outcomes per case
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore creates a history store from a base store
func NewHistoryStore(store *Store) *HistoryStore {
	if store == nil {
		return nil
	}
	return &HistoryStore{db: store.DB()}
}

// RecordAssignments inserts one row per record. IDs and timestamps are filled
// in when missing.
func (hs *HistoryStore) RecordAssignments(ctx context.Context, records []AssignmentRecord) error {
	if hs == nil || hs.db == nil {
		return fmt.Errorf("history store not initialized")
	}
	if len(records) == 0 {
		return nil
	}
	tx, err := hs.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if strings.TrimSpace(rec.EmailID) == "" || strings.TrimSpace(rec.CaseID) == "" {
			_ = tx.Rollback()
			return fmt.Errorf("invalid assignment record: email id and case id are required")
		}
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now()
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO assignment_history(id, job_id, case_id, email_id, subject, sender, success, error, created_at)
VALUES(?,?,?,?,?,?,?,?,?)`,
			rec.ID, rec.JobID, rec.CaseID, rec.EmailID, rec.Subject, rec.Sender, rec.Success, rec.Error, rec.CreatedAt.Unix())
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record assignment: %w", err)
		}
	}
	return tx.Commit()
}

// ListAssignments returns the most recent outcomes for a case, newest first
func (hs *HistoryStore) ListAssignments(ctx context.Context, caseID string, limit int) ([]AssignmentRecord, error) {
	if hs == nil || hs.db == nil {
		return nil, fmt.Errorf("history store not initialized")
	}
	if strings.TrimSpace(caseID) == "" {
		return nil, fmt.Errorf("empty case id")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := hs.db.QueryContext(ctx, `SELECT id, job_id, case_id, email_id, subject, sender, success, error, created_at
FROM assignment_history WHERE case_id=? ORDER BY created_at DESC, id LIMIT ?`, caseID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []AssignmentRecord
	for rows.Next() {
		var rec AssignmentRecord
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.JobID, &rec.CaseID, &rec.EmailID, &rec.Subject, &rec.Sender, &rec.Success, &rec.Error, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}
