package lbry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEachPage_FetchesExactlyReportedPages(t *testing.T) {
	var fetched []int
	fetch := func(_ context.Context, page int) (Page[string], error) {
		fetched = append(fetched, page)
		return Page[string]{
			Items:      []string{"item-a", "item-b"},
			Page:       page,
			TotalPages: 3,
		}, nil
	}

	var items []string
	err := EachPage(context.Background(), fetch, func(s string) error {
		items = append(items, s)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, fetched)
	assert.Len(t, items, 6)
}

func TestEachPage_ZeroTotalPages(t *testing.T) {
	calls := 0
	fetch := func(_ context.Context, page int) (Page[string], error) {
		calls++
		return Page[string]{Page: page, TotalPages: 0}, nil
	}

	err := EachPage(context.Background(), fetch, func(string) error {
		t.Fatal("no items expected")
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls, "only the initial page request should be made")
}

func TestEachPage_TotalShrinksMidWalk(t *testing.T) {
	var fetched []int
	fetch := func(_ context.Context, page int) (Page[string], error) {
		fetched = append(fetched, page)
		total := 5
		if page >= 2 {
			// The server is authoritative on the most recent response.
			total = 2
		}
		return Page[string]{Items: []string{"x"}, Page: page, TotalPages: total}, nil
	}

	err := EachPage(context.Background(), fetch, func(string) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, fetched)
}

func TestEachPage_FetchErrorStopsWalk(t *testing.T) {
	fetchErr := errors.New("page unavailable")
	var fetched []int
	fetch := func(_ context.Context, page int) (Page[string], error) {
		fetched = append(fetched, page)
		if page == 2 {
			return Page[string]{}, fetchErr
		}
		return Page[string]{Items: []string{"x"}, Page: page, TotalPages: 4}, nil
	}

	seen := 0
	err := EachPage(context.Background(), fetch, func(string) error {
		seen++
		return nil
	})

	require.ErrorIs(t, err, fetchErr)
	assert.Equal(t, []int{1, 2}, fetched)
	assert.Equal(t, 1, seen, "items before the failing page are still delivered")
}

func TestEachPage_ItemCallbackErrorStopsIteration(t *testing.T) {
	stop := errors.New("stop")
	fetch := func(_ context.Context, page int) (Page[string], error) {
		return Page[string]{
			Items:      []string{"a", "b", "c"},
			Page:       page,
			TotalPages: 2,
		}, nil
	}

	seen := 0
	err := EachPage(context.Background(), fetch, func(string) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})

	require.ErrorIs(t, err, stop)
	assert.Equal(t, 2, seen)
}
