package store

import (
	"context"

	"github.com/nhle/comment-watcher/internal/model"
)

// Store is the system of record for observed comments. A comment ID
// present in the store means the comment has been seen (and its one
// notification attempt made); the reconciliation engine never notifies
// for an ID that exists here.
type Store interface {
	// ExistsComment reports whether a comment ID has been recorded.
	// A lookup error must be escalated by the caller, never treated
	// as "not present", since guessing novelty on a storage failure
	// risks duplicate notifications.
	ExistsComment(ctx context.Context, id string) (bool, error)

	// InsertComment durably records a comment. Inserting an ID that
	// already exists is a no-op success; existing rows are never
	// modified.
	InsertComment(ctx context.Context, c model.Comment) error

	// GetCommentByID retrieves a stored comment, or an error if no
	// row exists.
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)

	// CountComments returns the total number of stored comments.
	CountComments(ctx context.Context) (int, error)

	Close() error
}
