package store

import (
	"context"

	"github.com/NomadCrew/feedback-collector/types"
)

// FeedbackStore is the append-only record store behind the collection API.
// There is no update or delete.
type FeedbackStore interface {
	// CreateFeedback appends a record and returns it with the store-assigned
	// ID and timestamp. When a record with the same submission ID already
	// exists, that record is returned and created is false.
	CreateFeedback(ctx context.Context, fb types.FeedbackCreate) (record *types.Feedback, created bool, err error)

	// ListFeedback returns every record ordered by timestamp.
	ListFeedback(ctx context.Context) ([]types.Feedback, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}
