// Package postgres implements the feedback store on PostgreSQL with pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/NomadCrew/feedback-collector/internal/store"
	"github.com/NomadCrew/feedback-collector/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes for constraint violations.
const (
	codeCheckViolation   = "23514"
	codeNotNullViolation = "23502"
)

// DBTX is the subset of pgxpool.Pool the store uses. pgxmock satisfies it in tests.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// Ensure FeedbackStore implements store.FeedbackStore
var _ store.FeedbackStore = (*FeedbackStore)(nil)

// FeedbackStore is the pgx implementation of store.FeedbackStore.
type FeedbackStore struct {
	db DBTX
}

// NewFeedbackStore creates a new feedback store backed by db.
func NewFeedbackStore(db DBTX) *FeedbackStore {
	return &FeedbackStore{db: db}
}

const insertFeedback = `
INSERT INTO feedback (submission_id, name, email, category, q1, q2, q3, q4, q5, suggestions)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (submission_id) DO NOTHING
RETURNING id::text, timestamp`

const selectColumns = `id::text, COALESCE(submission_id::text, ''), name, email, category,
       q1, q2, q3, q4, q5, suggestions, timestamp`

const selectBySubmissionID = `SELECT ` + selectColumns + `
FROM feedback WHERE submission_id = $1`

const listFeedback = `SELECT ` + selectColumns + `
FROM feedback ORDER BY timestamp, id`

// CreateFeedback inserts a new feedback entry. A repeated submission ID does
// not insert a second row; the existing one is returned instead.
func (s *FeedbackStore) CreateFeedback(ctx context.Context, in types.FeedbackCreate) (*types.Feedback, bool, error) {
	fb := &types.Feedback{
		SubmissionID: in.SubmissionID,
		Name:         in.Name,
		Email:        in.Email,
		Category:     in.Category,
		Q1:           in.Q1,
		Q2:           in.Q2,
		Q3:           in.Q3,
		Q4:           in.Q4,
		Q5:           in.Q5,
		Suggestions:  in.Suggestions,
	}

	err := s.db.QueryRow(ctx, insertFeedback,
		nullable(in.SubmissionID), in.Name, in.Email, in.Category,
		in.Q1, in.Q2, in.Q3, in.Q4, in.Q5, in.Suggestions,
	).Scan(&fb.ID, &fb.Timestamp)

	switch {
	case err == nil:
		return fb, true, nil
	case errors.Is(err, pgx.ErrNoRows) && in.SubmissionID != "":
		existing, err := s.getBySubmissionID(ctx, in.SubmissionID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	default:
		return nil, false, translateError(err, "failed to create feedback")
	}
}

func (s *FeedbackStore) getBySubmissionID(ctx context.Context, submissionID string) (*types.Feedback, error) {
	fb, err := scanFeedback(s.db.QueryRow(ctx, selectBySubmissionID, submissionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback by submission id: %w", err)
	}
	return fb, nil
}

// ListFeedback returns all records, oldest first.
func (s *FeedbackStore) ListFeedback(ctx context.Context) ([]types.Feedback, error) {
	rows, err := s.db.Query(ctx, listFeedback)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	out := make([]types.Feedback, 0)
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		out = append(out, *fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback: %w", err)
	}
	return out, nil
}

// Ping checks database connectivity.
func (s *FeedbackStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func scanFeedback(row pgx.Row) (*types.Feedback, error) {
	var fb types.Feedback
	err := row.Scan(
		&fb.ID, &fb.SubmissionID, &fb.Name, &fb.Email, &fb.Category,
		&fb.Q1, &fb.Q2, &fb.Q3, &fb.Q4, &fb.Q5, &fb.Suggestions, &fb.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

func translateError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeCheckViolation, codeNotNullViolation:
			return fmt.Errorf("%s: %w: %s", msg, store.ErrInvalid, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// nullable maps an empty string to SQL NULL so the UNIQUE constraint on
// submission_id ignores records submitted without one.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
