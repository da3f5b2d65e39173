package events

import (
	"errors"
	"fmt"

	"github.com/siem-console/tui/internal/client"
)

// ErrIndexOutOfRange is returned when a row index is not on the current page.
var ErrIndexOutOfRange = errors.New("event index out of range")

// Registry is the client-side event cache plus the derived view over it.
// The cache is only ever replaced wholesale; filtering and paging never
// touch it.
type Registry struct {
	all      []client.SecurityEvent
	criteria Criteria
	filtered []client.SecurityEvent
	page     Page
	expanded int
}

// NewRegistry returns an empty registry with the given page size.
func NewRegistry(pageSize int) Registry {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Registry{
		page:     Page{Current: 1, Size: pageSize},
		expanded: -1,
	}
}

// Replace swaps in a freshly fetched collection and re-derives the view
// from page 1.
func (r *Registry) Replace(all []client.SecurityEvent) {
	r.all = all
	r.page.Current = 1
	r.apply()
}

// SetCriteria changes the filters. Any filter change returns to page 1.
func (r *Registry) SetCriteria(c Criteria) {
	r.criteria = c
	r.page.Current = 1
	r.apply()
}

// Criteria returns the active filters.
func (r Registry) Criteria() Criteria {
	return r.criteria
}

// SetPage moves to page n, keeping the filters. It reports whether n was a
// valid page.
func (r *Registry) SetPage(n int) bool {
	if n < 1 || n > max(r.page.TotalPages(), 1) {
		return false
	}
	if n != r.page.Current {
		r.page.Current = n
		r.expanded = -1
	}
	return true
}

// NextPage advances one page if possible.
func (r *Registry) NextPage() bool {
	return r.SetPage(r.page.Current + 1)
}

// PrevPage goes back one page if possible.
func (r *Registry) PrevPage() bool {
	return r.SetPage(r.page.Current - 1)
}

func (r *Registry) apply() {
	r.filtered = Filter(r.all, r.criteria)
	r.page.Total = len(r.filtered)
	r.expanded = -1
}

// Len is the size of the cached collection.
func (r Registry) Len() int {
	return len(r.all)
}

// Total is the number of events passing the filters.
func (r Registry) Total() int {
	return r.page.Total
}

// Page returns the pagination state.
func (r Registry) Page() Page {
	return r.page
}

// Visible returns the rows of the current page, in fetch order.
func (r Registry) Visible() []client.SecurityEvent {
	return Slice(r.filtered, r.page)
}

// Pagination returns the pagination control, or false when it is hidden.
func (r Registry) Pagination() (Control, bool) {
	return Pagination(r.page)
}

// Toggle expands row i of the current page, collapsing any other row. Toggling
// the expanded row collapses it.
func (r *Registry) Toggle(i int) error {
	if i < 0 || i >= len(r.Visible()) {
		return fmt.Errorf("toggle row %d: %w", i, ErrIndexOutOfRange)
	}
	if r.expanded == i {
		r.expanded = -1
	} else {
		r.expanded = i
	}
	return nil
}

// Expanded returns the expanded row index on the current page, or -1.
func (r Registry) Expanded() int {
	return r.expanded
}

// Event returns row i of the current page.
func (r Registry) Event(i int) (client.SecurityEvent, error) {
	rows := r.Visible()
	if i < 0 || i >= len(rows) {
		return client.SecurityEvent{}, fmt.Errorf("row %d: %w", i, ErrIndexOutOfRange)
	}
	return rows[i], nil
}
