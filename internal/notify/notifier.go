// Package notify delivers one outbound email per newly observed comment.
package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"time"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"
	"go.uber.org/zap"

	"github.com/nhle/comment-watcher/internal/model"
)

const sendTimeout = 30 * time.Second

// Notifier delivers a message for a single novel comment. It holds no
// state; whether a comment has been notified is tracked solely by its
// presence in the store.
type Notifier interface {
	Send(ctx context.Context, c model.Comment) error
}

// EmailNotifier sends comment notifications over SMTP via a shoutrrr
// service router.
type EmailNotifier struct {
	sender *router.ServiceRouter
	log    *zap.Logger
}

// NewEmailNotifier builds a notifier from an smtp:// URL plus sender and
// recipient addresses. The URL is validated here, so a malformed mail
// configuration fails at startup rather than on the first novel comment.
func NewEmailNotifier(smtpURL, from, to string, logger *zap.Logger) (*EmailNotifier, error) {
	u, err := url.Parse(smtpURL)
	if err != nil {
		return nil, fmt.Errorf("parsing smtp url: %w", err)
	}

	q := u.Query()
	q.Set("fromAddress", from)
	q.Set("toAddresses", to)
	u.RawQuery = q.Encode()

	sender, err := shoutrrr.CreateSender(u.String())
	if err != nil {
		return nil, fmt.Errorf("creating smtp sender: %w", err)
	}
	sender.Timeout = sendTimeout
	sender.SetLogger(discardLogger())

	return &EmailNotifier{sender: sender, log: logger}, nil
}

// Send delivers the notification email for one comment. No retry happens
// here; a failed send is the engine's to log, and the comment is never
// re-notified once stored.
func (n *EmailNotifier) Send(ctx context.Context, c model.Comment) error {
	_ = ctx // the router applies its own timeout

	params := types.Params{}
	params.SetTitle(Subject(c))

	errs := n.sender.Send(Body(c), &params)
	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("sending notification for comment %s: %w", c.ID, err)
		}
	}

	n.log.Debug("notification sent",
		zap.String("comment_id", c.ID),
		zap.String("claim_name", c.ClaimName))
	return nil
}

// Subject renders the notification subject line for a comment.
func Subject(c model.Comment) string {
	return fmt.Sprintf("New Comment from %s on %s", c.CommenterName, c.ClaimName)
}

// Body renders the plain-text notification body: the claim, the author
// with their profile URL and the comment's own timestamp, then the text.
func Body(c model.Comment) string {
	return fmt.Sprintf(`%s
---

%s (%s)
%s
===
%s
`,
		c.ClaimName,
		c.CommenterName, c.CommenterURL,
		c.Timestamp.UTC().Format(time.RFC1123),
		c.Body,
	)
}

// discardLogger silences shoutrrr's internal logging when no debug
// output is wanted.
func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
