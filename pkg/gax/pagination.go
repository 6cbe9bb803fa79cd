package gax

import (
	"context"
	"errors"
	"iter"
)

// Static errors for err113 compliance.
var (
	ErrNoMoreItems = errors.New("no more items")
)

// Page is one batch of a list operation plus its continuation token.
type Page[T any] struct {
	Items         []T
	NextPageToken string
}

// PageFetcher performs one list call for the given page token.
type PageFetcher[T any] func(ctx context.Context, pageToken string) (Page[T], error)

// PaginationOptions configures Collect.
type PaginationOptions struct {
	// MaxPages stops collection early; zero means no limit.
	MaxPages int
}

// DefaultPaginationOptions returns unbounded collection.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{}
}

// Paginator drives a list operation page by page. A server that never returns
// an empty token keeps it going forever; no page cap is imposed.
type Paginator[T any] struct {
	fetch      PageFetcher[T]
	startToken string
}

// NewPaginator creates a paginator starting at startToken (usually "").
func NewPaginator[T any](startToken string, fetch PageFetcher[T]) *Paginator[T] {
	return &Paginator[T]{
		fetch:      fetch,
		startToken: startToken,
	}
}

// hasMorePages is the one termination predicate for every list operation.
func hasMorePages(nextPageToken string) bool {
	return nextPageToken != ""
}

// Pages yields each page in order. Every range over the sequence restarts
// from the first page; iteration stops at the first error.
func (p *Paginator[T]) Pages(ctx context.Context) iter.Seq2[Page[T], error] {
	return func(yield func(Page[T], error) bool) {
		token := p.startToken

		for {
			page, err := p.fetch(ctx, token)
			if err != nil {
				yield(Page[T]{}, err)

				return
			}

			if !yield(page, nil) {
				return
			}

			if !hasMorePages(page.NextPageToken) {
				return
			}

			token = page.NextPageToken
		}
	}
}

// All yields every item across all pages, fetching pages lazily.
func (p *Paginator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for page, err := range p.Pages(ctx) {
			if err != nil {
				var zero T

				yield(zero, err)

				return
			}

			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}

// Collect drains the paginator into a slice.
func (p *Paginator[T]) Collect(ctx context.Context, options *PaginationOptions) ([]T, error) {
	if options == nil {
		options = DefaultPaginationOptions()
	}

	var (
		items []T
		pages int
	)

	for page, err := range p.Pages(ctx) {
		if err != nil {
			return items, err
		}

		items = append(items, page.Items...)
		pages++

		if options.MaxPages > 0 && pages >= options.MaxPages {
			break
		}
	}

	return items, nil
}

// PageResult is one element of StreamPages.
type PageResult[T any] struct {
	Items []T
	Err   error
}

// StreamPages fetches pages in a goroutine and delivers them on a channel,
// which is closed after the last page, the first error, or ctx cancellation.
func (p *Paginator[T]) StreamPages(ctx context.Context) <-chan PageResult[T] {
	results := make(chan PageResult[T])

	go func() {
		defer close(results)

		for page, err := range p.Pages(ctx) {
			select {
			case results <- PageResult[T]{Items: page.Items, Err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return results
}

// Iterator returns a pull-style iterator over all items.
func (p *Paginator[T]) Iterator(ctx context.Context) *PageIterator[T] {
	next, stop := iter.Pull2(p.All(ctx))

	return &PageIterator[T]{next: next, stop: stop}
}

// PageIterator walks items one at a time with HasNext/Next.
type PageIterator[T any] struct {
	next    func() (T, error, bool)
	stop    func()
	item    T
	err     error
	peeked  bool
	hasItem bool
}

// HasNext reports whether Next will return an item or an error.
func (it *PageIterator[T]) HasNext() bool {
	if !it.peeked {
		it.item, it.err, it.hasItem = it.next()
		it.peeked = true
	}

	return it.hasItem
}

// Next returns the next item, ErrNoMoreItems once exhausted, or the fetch error.
func (it *PageIterator[T]) Next() (T, error) {
	if !it.HasNext() {
		var zero T

		return zero, ErrNoMoreItems
	}

	it.peeked = false

	return it.item, it.err
}

// Close releases the iterator before it is exhausted.
func (it *PageIterator[T]) Close() {
	it.stop()
}
