package lbry

import (
	"fmt"
	"strconv"
	"time"
)

// UnixTime decodes the API's integer Unix-seconds timestamps.
type UnixTime struct {
	time.Time
}

// UnmarshalJSON accepts a bare integer (optionally quoted) number of
// seconds since the epoch.
func (t *UnixTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing unix timestamp %q: %w", string(data), err)
	}
	t.Time = time.Unix(secs, 0).UTC()
	return nil
}

// Account is a wallet account on the remote node. Only the ID is used by
// the reconciliation core; accounts are never persisted.
type Account struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// Claim is a named content entry owned by an account. Claims are never
// persisted; the name is carried along so it can be denormalized onto
// stored comments.
type Claim struct {
	ID        string   `json:"claim_id"`
	Name      string   `json:"name"`
	Timestamp UnixTime `json:"timestamp"`
}

// Comment is a single comment as returned by comment_list.
type Comment struct {
	ID            string   `json:"comment_id"`
	ClaimID       string   `json:"claim_id"`
	Body          string   `json:"comment"`
	CommenterID   string   `json:"channel_id"`
	CommenterName string   `json:"channel_name"`
	CommenterURL  string   `json:"channel_url"`
	IsHidden      bool     `json:"is_hidden"`
	Timestamp     UnixTime `json:"timestamp"`
}

// Page is one bounded response unit from a paginated list method. The
// server-reported TotalPages is authoritative for termination; the
// client never guesses the total count.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// rpcRequest is the JSON-RPC style request body the SDK expects.
type rpcRequest struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

// rpcEnvelope wraps every paginated list response.
type rpcEnvelope[T any] struct {
	Result Page[T] `json:"result"`
}
