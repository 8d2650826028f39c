package api

import (
	"context"

	"campuscomplaint/internal/model"
)

// PageFunc fetches one zero-based page.
type PageFunc[T any] func(ctx context.Context, page, size int) (*model.Page[T], error)

// Pager accumulates a paginated listing. It is not safe for concurrent use.
type Pager[T any] struct {
	fetch  PageFunc[T]
	size   int
	page   int
	last   bool
	loaded bool
	items  []T
}

// NewPager creates a pager that requests size items per page.
func NewPager[T any](size int, fetch PageFunc[T]) *Pager[T] {
	return &Pager[T]{fetch: fetch, size: size}
}

// Reload fetches page 0 and replaces everything loaded so far.
func (p *Pager[T]) Reload(ctx context.Context) ([]T, error) {
	result, err := p.fetch(ctx, 0, p.size)
	if err != nil {
		return nil, err
	}
	p.page = 0
	p.last = result.Last
	p.loaded = true
	p.items = append([]T(nil), result.Content...)
	return result.Content, nil
}

// LoadMore fetches the next page and appends it. Once the last page was seen it
// returns without a request. On the first call it behaves like Reload.
func (p *Pager[T]) LoadMore(ctx context.Context) ([]T, error) {
	if !p.loaded {
		return p.Reload(ctx)
	}
	if p.last {
		return nil, nil
	}
	next := p.page + 1
	result, err := p.fetch(ctx, next, p.size)
	if err != nil {
		return nil, err
	}
	p.page = next
	p.last = result.Last
	p.items = append(p.items, result.Content...)
	return result.Content, nil
}

// HasMore reports whether LoadMore would issue a request.
func (p *Pager[T]) HasMore() bool {
	return !p.loaded || !p.last
}

// Page is the last page number loaded.
func (p *Pager[T]) Page() int {
	return p.page
}

// Items returns everything loaded so far.
func (p *Pager[T]) Items() []T {
	return p.items
}
