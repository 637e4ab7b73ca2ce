package lbry

import "context"

// PageFunc fetches one page of a paginated collection. Page numbers
// start at 1.
type PageFunc[T any] func(ctx context.Context, page int) (Page[T], error)

// EachPage walks a paginated collection from page 1 through the
// server-reported total, calling fn for every item in order. The total
// page count is re-read from each response, so a total that shrinks or
// grows mid-walk is honored. A fetch error aborts the walk and is
// returned; an error from fn likewise stops iteration immediately.
func EachPage[T any](ctx context.Context, fetch PageFunc[T], fn func(T) error) error {
	totalPages := 1

	for page := 1; page <= totalPages; page++ {
		result, err := fetch(ctx, page)
		if err != nil {
			return err
		}
		totalPages = result.TotalPages

		for _, item := range result.Items {
			if err := fn(item); err != nil {
				return err
			}
		}
	}

	return nil
}

// EachAccount walks every account page on the node.
func (c *Client) EachAccount(ctx context.Context, pageSize int, fn func(Account) error) error {
	return EachPage(ctx, func(ctx context.Context, page int) (Page[Account], error) {
		return c.ListAccounts(ctx, page, pageSize)
	}, fn)
}

// EachClaim walks every claim page owned by the given account.
func (c *Client) EachClaim(ctx context.Context, accountID string, pageSize int, fn func(Claim) error) error {
	return EachPage(ctx, func(ctx context.Context, page int) (Page[Claim], error) {
		return c.ListClaims(ctx, accountID, page, pageSize)
	}, fn)
}

// EachComment walks every comment page on the given claim.
func (c *Client) EachComment(ctx context.Context, claimID string, pageSize int, fn func(Comment) error) error {
	return EachPage(ctx, func(ctx context.Context, page int) (Page[Comment], error) {
		return c.ListComments(ctx, claimID, page, pageSize)
	}, fn)
}
