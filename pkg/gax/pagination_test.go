package gax_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fivetwenty-io/cloudrest/pkg/gax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPageFailed = errors.New("page failed")

// tokenFetcher serves pages keyed by the token that requests them and
// records the tokens it saw.
type tokenFetcher struct {
	pages map[string]gax.Page[string]
	seen  []string
	fail  string
}

func (f *tokenFetcher) fetch(_ context.Context, token string) (gax.Page[string], error) {
	f.seen = append(f.seen, token)

	if f.fail != "" && token == f.fail {
		return gax.Page[string]{}, errPageFailed
	}

	page, ok := f.pages[token]
	if !ok {
		return gax.Page[string]{}, fmt.Errorf("unexpected token %q", token) //nolint:err113 // test helper
	}

	return page, nil
}

func threePages() *tokenFetcher {
	return &tokenFetcher{pages: map[string]gax.Page[string]{
		"":  {Items: []string{"s1", "s2"}, NextPageToken: "a"},
		"a": {Items: []string{"s3"}, NextPageToken: "b"},
		"b": {Items: []string{"s4"}, NextPageToken: ""},
	}}
}

func TestPaginator_StopsOnEmptyToken(t *testing.T) {
	t.Parallel()

	fetcher := threePages()
	paginator := gax.NewPaginator("", fetcher.fetch)

	var pages []gax.Page[string]

	for page, err := range paginator.Pages(context.Background()) {
		require.NoError(t, err)

		pages = append(pages, page)
	}

	require.Len(t, pages, 3)
	assert.Equal(t, []string{"", "a", "b"}, fetcher.seen)
	assert.Equal(t, "a", pages[0].NextPageToken)
	assert.Empty(t, pages[2].NextPageToken)
}

func TestPaginator_EmptyPageWithTokenContinues(t *testing.T) {
	t.Parallel()

	fetcher := &tokenFetcher{pages: map[string]gax.Page[string]{
		"":  {NextPageToken: "a"},
		"a": {Items: []string{"x"}},
	}}

	items, err := gax.NewPaginator("", fetcher.fetch).Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, items)
	assert.Equal(t, []string{"", "a"}, fetcher.seen)
}

func TestPaginator_AllIsRestartable(t *testing.T) {
	t.Parallel()

	fetcher := threePages()
	paginator := gax.NewPaginator("", fetcher.fetch)

	for range 2 {
		var items []string

		for item, err := range paginator.All(context.Background()) {
			require.NoError(t, err)

			items = append(items, item)
		}

		assert.Equal(t, []string{"s1", "s2", "s3", "s4"}, items)
	}

	assert.Len(t, fetcher.seen, 6)
}

func TestPaginator_EarlyBreakStopsFetching(t *testing.T) {
	t.Parallel()

	fetcher := threePages()

	for item, err := range gax.NewPaginator("", fetcher.fetch).All(context.Background()) {
		require.NoError(t, err)
		assert.Equal(t, "s1", item)

		break
	}

	assert.Equal(t, []string{""}, fetcher.seen)
}

func TestPaginator_ErrorEndsIteration(t *testing.T) {
	t.Parallel()

	fetcher := threePages()
	fetcher.fail = "a"

	items, err := gax.NewPaginator("", fetcher.fetch).Collect(context.Background(), nil)
	require.ErrorIs(t, err, errPageFailed)
	assert.Equal(t, []string{"s1", "s2"}, items)
	assert.Equal(t, []string{"", "a"}, fetcher.seen)
}

func TestPaginator_StartToken(t *testing.T) {
	t.Parallel()

	fetcher := threePages()

	items, err := gax.NewPaginator("a", fetcher.fetch).Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"s3", "s4"}, items)
}

func TestPaginator_CollectMaxPages(t *testing.T) {
	t.Parallel()

	fetcher := threePages()

	items, err := gax.NewPaginator("", fetcher.fetch).Collect(context.Background(), &gax.PaginationOptions{MaxPages: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3"}, items)
	assert.Equal(t, []string{"", "a"}, fetcher.seen)
}

func TestPaginator_Iterator(t *testing.T) {
	t.Parallel()

	iterator := gax.NewPaginator("", threePages().fetch).Iterator(context.Background())
	defer iterator.Close()

	var items []string

	for iterator.HasNext() {
		item, err := iterator.Next()
		require.NoError(t, err)

		items = append(items, item)
	}

	assert.Equal(t, []string{"s1", "s2", "s3", "s4"}, items)

	_, err := iterator.Next()
	require.ErrorIs(t, err, gax.ErrNoMoreItems)
}

func TestPaginator_IteratorSurfacesError(t *testing.T) {
	t.Parallel()

	fetcher := threePages()
	fetcher.fail = "b"

	iterator := gax.NewPaginator("", fetcher.fetch).Iterator(context.Background())
	defer iterator.Close()

	var (
		items   []string
		lastErr error
	)

	for iterator.HasNext() {
		item, err := iterator.Next()
		if err != nil {
			lastErr = err

			break
		}

		items = append(items, item)
	}

	require.ErrorIs(t, lastErr, errPageFailed)
	assert.Equal(t, []string{"s1", "s2", "s3"}, items)
}

func TestPaginator_StreamPages(t *testing.T) {
	t.Parallel()

	var batches [][]string

	for result := range gax.NewPaginator("", threePages().fetch).StreamPages(context.Background()) {
		require.NoError(t, result.Err)

		batches = append(batches, result.Items)
	}

	assert.Equal(t, [][]string{{"s1", "s2"}, {"s3"}, {"s4"}}, batches)
}

func TestPaginator_StreamPagesError(t *testing.T) {
	t.Parallel()

	fetcher := threePages()
	fetcher.fail = "a"

	var results []gax.PageResult[string]
	for result := range gax.NewPaginator("", fetcher.fetch).StreamPages(context.Background()) {
		results = append(results, result)
	}

	require.Len(t, results, 2)
	require.ErrorIs(t, results[1].Err, errPageFailed)
}
