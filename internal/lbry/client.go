package lbry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = 500 * time.Millisecond
)

// Client is a thin HTTP client for the LBRY SDK JSON-RPC API. Every list
// method POSTs to the same base URL with a method name and parameters.
// Transient failures (network errors, 429, 5xx) are retried per call
// with exponential backoff; each call carries its own timeout so a stuck
// page fetch can never stall a reconciliation run indefinitely.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger

	maxRetries    uint64
	retryInterval time.Duration
}

// NewClient creates a client for the SDK instance at baseURL.
func NewClient(baseURL string, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		log:           log,
		maxRetries:    defaultMaxRetries,
		retryInterval: defaultRetryInterval,
	}
}

// ListAccounts fetches one page of wallet accounts.
func (c *Client) ListAccounts(ctx context.Context, page, pageSize int) (Page[Account], error) {
	return list[Account](ctx, c, "account_list", map[string]any{
		"page":      page,
		"page_size": pageSize,
	})
}

// ListClaims fetches one page of claims owned by the given account.
func (c *Client) ListClaims(ctx context.Context, accountID string, page, pageSize int) (Page[Claim], error) {
	return list[Claim](ctx, c, "claim_list", map[string]any{
		"account_id": accountID,
		"page":       page,
		"page_size":  pageSize,
	})
}

// ListComments fetches one page of comments on the given claim.
func (c *Client) ListComments(ctx context.Context, claimID string, page, pageSize int) (Page[Comment], error) {
	return list[Comment](ctx, c, "comment_list", map[string]any{
		"claim_id":  claimID,
		"page":      page,
		"page_size": pageSize,
	})
}

// list issues a single paginated RPC call and decodes the result
// envelope, retrying transient failures.
func list[T any](ctx context.Context, c *Client, method string, params map[string]any) (Page[T], error) {
	var envelope rpcEnvelope[T]

	body, err := json.Marshal(rpcRequest{Method: method, Params: params})
	if err != nil {
		return Page[T]{}, fmt.Errorf("marshaling %s request: %w", method, err)
	}

	operation := func() error {
		return c.post(ctx, method, body, &envelope)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval

	err = backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(policy, c.maxRetries), ctx,
	))
	if err != nil {
		return Page[T]{}, err
	}

	return envelope.Result, nil
}

// post performs one HTTP round trip. Retryable failures are returned
// plain; anything that a retry cannot fix is wrapped as permanent so
// the backoff loop stops immediately.
func (c *Client) post(ctx context.Context, method string, body []byte, result any) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL, bytes.NewReader(body),
	)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("creating %s request: %w", method, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("rpc call failed",
			zap.String("method", method), zap.Error(err))
		return fmt.Errorf("executing %s: %w", method, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("reading %s response: %w", method, readErr)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests ||
		resp.StatusCode >= http.StatusInternalServerError:
		c.log.Debug("rpc call got retryable status",
			zap.String("method", method), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%s returned status %d", method, resp.StatusCode)

	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return backoff.Permanent(fmt.Errorf(
			"%s returned status %d: %s",
			method, resp.StatusCode, string(respBody),
		))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return backoff.Permanent(fmt.Errorf(
			"unmarshaling %s response: %w", method, err,
		))
	}

	return nil
}
