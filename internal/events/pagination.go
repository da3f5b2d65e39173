package events

import (
	"fmt"

	"github.com/siem-console/tui/internal/client"
)

const (
	// DefaultPageSize is the number of rows per page.
	DefaultPageSize = 20
	// FetchLimit bounds the single window fetched from the backend.
	FetchLimit = 1000
	// MaxPageLinks is the width of the numbered page window.
	MaxPageLinks = 5
)

// Page is the pagination state over the filtered view.
type Page struct {
	Current int
	Size    int
	Total   int
}

// TotalPages is ceil(Total/Size).
func (p Page) TotalPages() int {
	if p.Size <= 0 || p.Total <= 0 {
		return 0
	}
	return (p.Total + p.Size - 1) / p.Size
}

// Bounds returns the half-open slice [(Current-1)*Size, Current*Size)
// clamped to Total.
func (p Page) Bounds() (start, end int) {
	if p.Current < 1 || p.Size <= 0 {
		return 0, 0
	}
	start = (p.Current - 1) * p.Size
	end = start + p.Size
	if start > p.Total {
		start = p.Total
	}
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

// Slice returns the page of filtered that p selects.
func Slice(filtered []client.SecurityEvent, p Page) []client.SecurityEvent {
	p.Total = len(filtered)
	start, end := p.Bounds()
	return filtered[start:end]
}

// ItemKind distinguishes numbered links from gap markers.
type ItemKind int

const (
	ItemPage ItemKind = iota
	ItemEllipsis
)

// Item is one entry of the page-number strip.
type Item struct {
	Kind   ItemKind
	Page   int
	Active bool
}

// NavLink is a previous/next control.
type NavLink struct {
	Page    int
	Enabled bool
}

// Control is the rendered-agnostic pagination bar.
type Control struct {
	Prev    NavLink
	Next    NavLink
	Items   []Item
	Summary string
}

// PageLinks returns the page numbers present in the strip.
func (c Control) PageLinks() []int {
	var out []int
	for _, it := range c.Items {
		if it.Kind == ItemPage {
			out = append(out, it.Page)
		}
	}
	return out
}

// Pagination builds the control for p. It reports false when there is at
// most one page, in which case nothing should be drawn.
func Pagination(p Page) (Control, bool) {
	totalPages := p.TotalPages()
	if totalPages <= 1 {
		return Control{}, false
	}

	current := p.Current
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	c := Control{
		Prev:    NavLink{Page: current - 1, Enabled: current > 1},
		Next:    NavLink{Page: current + 1, Enabled: current < totalPages},
		Summary: fmt.Sprintf("%d events • Page %d of %d", p.Total, current, totalPages),
	}

	startPage := max(1, current-MaxPageLinks/2)
	endPage := min(totalPages, startPage+MaxPageLinks-1)
	if endPage-startPage+1 < MaxPageLinks {
		startPage = max(1, endPage-MaxPageLinks+1)
	}

	if startPage > 1 {
		c.Items = append(c.Items, Item{Kind: ItemPage, Page: 1})
		if startPage > 2 {
			c.Items = append(c.Items, Item{Kind: ItemEllipsis})
		}
	}
	for i := startPage; i <= endPage; i++ {
		c.Items = append(c.Items, Item{Kind: ItemPage, Page: i, Active: i == current})
	}
	if endPage < totalPages {
		if endPage < totalPages-1 {
			c.Items = append(c.Items, Item{Kind: ItemEllipsis})
		}
		c.Items = append(c.Items, Item{Kind: ItemPage, Page: totalPages})
	}
	return c, true
}
