// Package pagination drives page-by-page browsing of a remote collection.
package pagination

import (
	"context"
	"errors"
	"net/http"

	"github.com/wselearn/wse/internal/api"
)

// DefaultPageSize is used when a Paginator is created with a
// non-positive page size.
const DefaultPageSize = 10

// ErrNoPage is returned by Next and Prev at either end of the collection.
var ErrNoPage = errors.New("no such page")

// Lister fetches one page of a collection.
type Lister interface {
	ListItems(ctx context.Context, path string, page, pageSize int) (*api.Page, error)
}

// Paginator tracks the current page of a collection. Pages are 1-based.
// It is not safe for concurrent use.
type Paginator struct {
	lister   Lister
	path     string
	pageSize int

	page  int
	count int
	items []api.Item
}

// New creates a Paginator for the collection at path. Nothing is fetched
// until Load.
func New(lister Lister, path string, pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Paginator{lister: lister, path: path, pageSize: pageSize}
}

// Load fetches page and makes it current. On error the current page is
// left unchanged.
func (p *Paginator) Load(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	res, err := p.lister.ListItems(ctx, p.path, page, p.pageSize)
	if err != nil {
		return err
	}
	p.page = page
	p.count = res.Count
	p.items = res.Results
	return nil
}

// Next loads the following page.
func (p *Paginator) Next(ctx context.Context) error {
	if !p.HasNext() {
		return ErrNoPage
	}
	return p.Load(ctx, p.page+1)
}

// Prev loads the preceding page.
func (p *Paginator) Prev(ctx context.Context) error {
	if !p.HasPrev() {
		return ErrNoPage
	}
	return p.Load(ctx, p.page-1)
}

// Reload refetches the current page. When the page no longer exists, for
// example after deleting its only item, it steps back one page.
func (p *Paginator) Reload(ctx context.Context) error {
	page := max(p.page, 1)
	err := p.Load(ctx, page)
	if err != nil && page > 1 && api.StatusOf(err) == http.StatusNotFound {
		return p.Load(ctx, page-1)
	}
	return err
}

// Page returns the current page number, or 0 before the first Load.
func (p *Paginator) Page() int { return p.page }

// PageSize returns the requested page size.
func (p *Paginator) PageSize() int { return p.pageSize }

// Count returns the total number of items in the collection.
func (p *Paginator) Count() int { return p.count }

// Pages returns the number of pages; an empty collection has one.
func (p *Paginator) Pages() int {
	if p.count == 0 {
		return 1
	}
	return (p.count + p.pageSize - 1) / p.pageSize
}

// Items returns the current page's items.
func (p *Paginator) Items() []api.Item { return p.items }

// HasNext reports whether a later page exists.
func (p *Paginator) HasNext() bool { return p.page >= 1 && p.page < p.Pages() }

// HasPrev reports whether an earlier page exists.
func (p *Paginator) HasPrev() bool { return p.page > 1 }
