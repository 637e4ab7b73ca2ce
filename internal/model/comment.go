package model

import "time"

// Comment is the persisted record of a single remote comment. Rows are
// append-only: once inserted a comment is never updated or deleted, and
// the presence of its ID is what marks it as already notified.
type Comment struct {
	// ID is the globally unique comment identifier assigned by the
	// remote API. Primary key.
	ID string `db:"id"`

	// AccountID is the account that owns the claim the comment was
	// posted on.
	AccountID string `db:"account_id"`

	// ClaimID and ClaimName record which claim the comment belongs to.
	// ClaimName is denormalized so notifications can be rendered
	// without re-fetching the claim.
	ClaimID   string `db:"claim_id"`
	ClaimName string `db:"claim_name"`

	// CommenterID, CommenterName, and CommenterURL identify the author
	// of the comment on the remote network.
	CommenterID   string `db:"commenter_id"`
	CommenterName string `db:"commenter_name"`
	CommenterURL  string `db:"commenter_url"`

	// Body is the free-text comment content.
	Body string `db:"comment"`

	// IsHidden is the remote moderation flag. It has no effect on
	// novelty detection.
	IsHidden bool `db:"is_hidden"`

	// Timestamp is the author-supplied creation time, not the time the
	// comment was first observed locally.
	Timestamp time.Time `db:"timestamp"`
}
