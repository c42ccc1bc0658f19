// Package capacity implements the capacity book (C3): two parallel tables
// of hours, keyed by resource and period, that the placement algorithm reads
// and updates as it schedules and unschedules work orders.
package capacity

import "github.com/mintmaint/strategic-scheduler/modules/strategic/workorder"

type key struct {
	resource workorder.Resource
	periodID string
}

// Book holds the capacity and loading tables. Build one with NewBook: the
// zero value has nil tables and panics on its first write. Both tables
// default entries to 0.0 on first touch, matching the spec's
// entry-or-insert semantics.
type Book struct {
	capacity map[key]float64
	loading  map[key]float64
}

// NewBook returns an empty capacity book.
func NewBook() *Book {
	return &Book{
		capacity: make(map[key]float64),
		loading:  make(map[key]float64),
	}
}

// Capacity returns the configured capacity for (resource, period), 0.0 if
// never set.
func (b *Book) Capacity(r workorder.Resource, periodID string) float64 {
	return b.capacity[key{r, periodID}]
}

// Loading returns the currently scheduled load for (resource, period), 0.0
// if never touched.
func (b *Book) Loading(r workorder.Resource, periodID string) float64 {
	return b.loading[key{r, periodID}]
}

// Available returns capacity minus loading. It can be negative: a capacity
// decrease can transiently push loading above capacity (§4.3); the
// algorithm only refuses to *add* load that would exceed it.
func (b *Book) Available(r workorder.Resource, periodID string) float64 {
	k := key{r, periodID}
	return b.capacity[k] - b.loading[k]
}

// SetCapacity updates the configured capacity for (resource, period), as
// driven by an inbound SetCapacity message.
func (b *Book) SetCapacity(r workorder.Resource, periodID string, hours float64) {
	b.capacity[key{r, periodID}] = hours
}

// AddLoad adds delta hours of load to (resource, period). Bookkeeping only;
// callers must pair this with a placement mutation in the optimized-plan
// table.
func (b *Book) AddLoad(r workorder.Resource, periodID string, delta float64) {
	b.loading[key{r, periodID}] += delta
}

// SubLoad subtracts delta hours of load from (resource, period).
func (b *Book) SubLoad(r workorder.Resource, periodID string, delta float64) {
	b.loading[key{r, periodID}] -= delta
}

// Resources returns the distinct resources with any capacity or loading
// entry, for iteration by callers (e.g. building a status table). Order is
// unspecified; callers needing determinism should sort.
func (b *Book) Resources() []workorder.Resource {
	seen := make(map[workorder.Resource]struct{})
	for k := range b.capacity {
		seen[k.resource] = struct{}{}
	}
	for k := range b.loading {
		seen[k.resource] = struct{}{}
	}
	out := make([]workorder.Resource, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	return out
}
