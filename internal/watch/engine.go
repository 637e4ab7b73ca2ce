// Package watch contains the reconciliation engine and the scheduler
// that drives it: the periodic walk of accounts, claims, and comments
// that stores and notifies every comment not seen before.
package watch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nhle/comment-watcher/internal/lbry"
	"github.com/nhle/comment-watcher/internal/model"
	"github.com/nhle/comment-watcher/internal/notify"
	"github.com/nhle/comment-watcher/internal/store"
)

// Source produces pages of the three remote collections. The hierarchy
// is forced by the API: claims can only be listed per account, comments
// only per claim.
type Source interface {
	ListAccounts(ctx context.Context, page, pageSize int) (lbry.Page[lbry.Account], error)
	ListClaims(ctx context.Context, accountID string, page, pageSize int) (lbry.Page[lbry.Claim], error)
	ListComments(ctx context.Context, claimID string, page, pageSize int) (lbry.Page[lbry.Comment], error)
}

// ResourceKind names the traversal level a failure occurred at.
type ResourceKind string

const (
	KindAccounts ResourceKind = "accounts"
	KindClaims   ResourceKind = "claims"
	KindComments ResourceKind = "comments"
	KindStorage  ResourceKind = "storage"
	KindNotify   ResourceKind = "notify"
)

// Failure records one isolated error from a reconciliation run.
type Failure struct {
	Kind     ResourceKind
	ParentID string
	Err      error
}

// Stats aggregates the outcome of a single reconciliation run.
type Stats struct {
	RunID    string
	Started  time.Time
	Finished time.Time

	AccountsSeen      int
	ClaimsSeen        int
	CommentsSeen      int
	NewComments       int
	NotificationsSent int

	Failures []Failure
}

// Engine walks the full account → claim → comment hierarchy once per
// run, storing and notifying comments whose IDs are not yet recorded.
type Engine struct {
	source   Source
	store    store.Store
	notifier notify.Notifier
	pageSize int
	log      *zap.Logger
}

// NewEngine wires a reconciliation engine from its collaborators.
func NewEngine(src Source, st store.Store, n notify.Notifier, pageSize int, log *zap.Logger) *Engine {
	return &Engine{
		source:   src,
		store:    st,
		notifier: n,
		pageSize: pageSize,
		log:      log,
	}
}

// Run performs one complete reconciliation pass. It never aborts early:
// a failed fetch skips only the affected subtree, and the returned stats
// list every isolated failure. Errors at the account level leave nothing
// to traverse but still produce a completed run.
func (e *Engine) Run(ctx context.Context) Stats {
	stats := Stats{
		RunID:   uuid.New().String(),
		Started: time.Now(),
	}
	log := e.log.With(zap.String("run_id", stats.RunID))
	log.Info("reconciliation run starting")

	err := lbry.EachPage(ctx, func(ctx context.Context, page int) (lbry.Page[lbry.Account], error) {
		log.Debug("fetching accounts", zap.Int("page", page))
		return e.source.ListAccounts(ctx, page, e.pageSize)
	}, func(account lbry.Account) error {
		stats.AccountsSeen++
		e.reconcileAccount(ctx, log, account, &stats)
		return nil
	})
	if err != nil {
		stats.Failures = append(stats.Failures, Failure{Kind: KindAccounts, Err: err})
		log.Warn("fetching accounts failed", zap.Error(err))
	}

	stats.Finished = time.Now()
	log.Info("reconciliation run finished",
		zap.Duration("elapsed", stats.Finished.Sub(stats.Started)),
		zap.Int("accounts", stats.AccountsSeen),
		zap.Int("claims", stats.ClaimsSeen),
		zap.Int("comments", stats.CommentsSeen),
		zap.Int("new_comments", stats.NewComments),
		zap.Int("notifications_sent", stats.NotificationsSent),
		zap.Int("failures", len(stats.Failures)))

	return stats
}

// reconcileAccount walks one account's claims. A claim-page fetch error
// skips this account's remaining claims only; sibling accounts are
// unaffected.
func (e *Engine) reconcileAccount(ctx context.Context, log *zap.Logger, account lbry.Account, stats *Stats) {
	err := lbry.EachPage(ctx, func(ctx context.Context, page int) (lbry.Page[lbry.Claim], error) {
		log.Debug("fetching claims",
			zap.String("account_id", account.ID), zap.Int("page", page))
		return e.source.ListClaims(ctx, account.ID, page, e.pageSize)
	}, func(claim lbry.Claim) error {
		stats.ClaimsSeen++
		e.reconcileClaim(ctx, log, account, claim, stats)
		return nil
	})
	if err != nil {
		stats.Failures = append(stats.Failures, Failure{
			Kind: KindClaims, ParentID: account.ID, Err: err,
		})
		log.Warn("fetching claims failed",
			zap.String("account_id", account.ID), zap.Error(err))
	}
}

// reconcileClaim walks one claim's comments. A comment-page fetch error
// skips this claim only.
func (e *Engine) reconcileClaim(ctx context.Context, log *zap.Logger, account lbry.Account, claim lbry.Claim, stats *Stats) {
	err := lbry.EachPage(ctx, func(ctx context.Context, page int) (lbry.Page[lbry.Comment], error) {
		log.Debug("fetching comments",
			zap.String("claim_id", claim.ID), zap.Int("page", page))
		return e.source.ListComments(ctx, claim.ID, page, e.pageSize)
	}, func(comment lbry.Comment) error {
		stats.CommentsSeen++
		e.processComment(ctx, log, account, claim, comment, stats)
		return nil
	})
	if err != nil {
		stats.Failures = append(stats.Failures, Failure{
			Kind: KindComments, ParentID: claim.ID, Err: err,
		})
		log.Warn("fetching comments failed",
			zap.String("claim_id", claim.ID), zap.Error(err))
	}
}

// processComment stores and notifies a single comment if its ID has not
// been recorded before. Insert happens strictly before the notification
// send: a crash in between leaves a stored, silently un-notified comment
// rather than a duplicate email on the next run.
func (e *Engine) processComment(ctx context.Context, log *zap.Logger, account lbry.Account, claim lbry.Claim, comment lbry.Comment, stats *Stats) {
	exists, err := e.store.ExistsComment(ctx, comment.ID)
	if err != nil {
		// Novelty is unknowable here; skipping the notification is the
		// only outcome that cannot cause unbounded duplicates.
		stats.Failures = append(stats.Failures, Failure{
			Kind: KindStorage, ParentID: comment.ID, Err: err,
		})
		log.Error("novelty check failed",
			zap.String("comment_id", comment.ID), zap.Error(err))
		return
	}
	if exists {
		return
	}

	entity := newEntity(account, claim, comment)

	if err := e.store.InsertComment(ctx, entity); err != nil {
		stats.Failures = append(stats.Failures, Failure{
			Kind: KindStorage, ParentID: comment.ID, Err: err,
		})
		log.Error("storing comment failed",
			zap.String("comment_id", comment.ID), zap.Error(err))
		return
	}
	stats.NewComments++

	log.Info("new comment",
		zap.String("comment_id", comment.ID),
		zap.String("claim_name", claim.Name),
		zap.String("commenter", comment.CommenterName))

	if err := e.notifier.Send(ctx, entity); err != nil {
		// The comment stays stored: never duplicate-notify wins over
		// never miss a notification.
		stats.Failures = append(stats.Failures, Failure{
			Kind: KindNotify, ParentID: comment.ID, Err: err,
		})
		log.Error("notification send failed",
			zap.String("comment_id", comment.ID), zap.Error(err))
		return
	}
	stats.NotificationsSent++
}

// newEntity denormalizes the owning account and claim onto the wire
// comment, producing the persisted record.
func newEntity(account lbry.Account, claim lbry.Claim, c lbry.Comment) model.Comment {
	return model.Comment{
		ID:            c.ID,
		AccountID:     account.ID,
		ClaimID:       c.ClaimID,
		ClaimName:     claim.Name,
		CommenterID:   c.CommenterID,
		CommenterName: c.CommenterName,
		CommenterURL:  c.CommenterURL,
		Body:          c.Body,
		IsHidden:      c.IsHidden,
		Timestamp:     c.Timestamp.Time,
	}
}
