// Package queue implements the three priority queues (C4) that drive
// placement: Normal, Unloading/Manual, and ShutdownVendor. Each is a
// max-heap over order_weight, with ties broken by stable insertion order,
// grounded on the teacher's container/heap-based
// modules/backendscheduler/work/tenantselector.PriorityQueue.
package queue

import "container/heap"

type entry struct {
	order  uint32
	weight uint32
	seq    int
	index  int
}

// innerHeap implements heap.Interface as a max-heap on weight, breaking ties
// by insertion order (lower seq popped first), matching the spec's
// "equivalently order_number ascending for determinism" only insofar as
// insertion order is itself deterministic (the backlog is walked in a fixed
// order at populate time).
type innerHeap []*entry

func (h innerHeap) Len() int { return len(h) }

func (h innerHeap) Less(i, j int) bool {
	if h[i].weight != h[j].weight {
		return h[i].weight > h[j].weight
	}
	return h[i].seq < h[j].seq
}

func (h innerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *innerHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *innerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Queue is a single max-priority queue keyed by order number.
type Queue struct {
	heap innerHeap
	seq  int
	// present tracks membership so Contains/disjointness checks don't need
	// to walk the heap, and locates an order's entry for Remove.
	present map[uint32]*entry
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{present: make(map[uint32]*entry)}
}

// Push adds an order with the given weight. Pushing an order already
// present replaces its weight and moves it to the back of its weight class
// (it is popped again if re-queued, which is the only way this spec calls
// Push on a member already present).
func (q *Queue) Push(order uint32, weight uint32) {
	if old, ok := q.present[order]; ok {
		heap.Remove(&q.heap, old.index)
	}
	q.seq++
	e := &entry{order: order, weight: weight, seq: q.seq}
	heap.Push(&q.heap, e)
	q.present[order] = e
}

// Pop removes and returns the highest-weight order, ties broken by
// insertion order. ok is false if the queue is empty.
func (q *Queue) Pop() (order uint32, weight uint32, ok bool) {
	if len(q.heap) == 0 {
		return 0, 0, false
	}
	e := heap.Pop(&q.heap).(*entry)
	delete(q.present, e.order)
	return e.order, e.weight, true
}

// Remove drops order from the queue if present, reports whether it was
// found. Used by inbound mutations that move an order between queues
// (e.g. a manual placement pulling it off Normal).
func (q *Queue) Remove(order uint32) bool {
	e, ok := q.present[order]
	if !ok {
		return false
	}
	heap.Remove(&q.heap, e.index)
	delete(q.present, order)
	return true
}

// IsEmpty reports whether the queue has no members.
func (q *Queue) IsEmpty() bool {
	return len(q.heap) == 0
}

// Len returns the number of orders currently queued.
func (q *Queue) Len() int {
	return len(q.heap)
}

// Contains reports whether order is currently queued. Used to verify the
// disjointness invariant (§8.2) across the three queues.
func (q *Queue) Contains(order uint32) bool {
	_, ok := q.present[order]
	return ok
}

// Weight returns the weight order is currently queued with. ok is false if
// order is not queued.
func (q *Queue) Weight(order uint32) (weight uint32, ok bool) {
	e, ok := q.present[order]
	if !ok {
		return 0, false
	}
	return e.weight, true
}

// Members returns the queued order numbers, in no particular order.
func (q *Queue) Members() []uint32 {
	out := make([]uint32, 0, len(q.present))
	for k := range q.present {
		out = append(out, k)
	}
	return out
}

// Name identifies which of the three queues a message or order belongs to.
type Name int

const (
	Normal Name = iota
	Unloading
	ShutdownVendor
)

func (n Name) String() string {
	switch n {
	case Normal:
		return "normal"
	case Unloading:
		return "unloading"
	case ShutdownVendor:
		return "shutdown_vendor"
	default:
		return "unknown"
	}
}

// Queues bundles the three disjoint priority queues the placement algorithm
// sweeps over.
type Queues struct {
	Normal         *Queue
	Unloading      *Queue
	ShutdownVendor *Queue
}

// NewQueues returns three empty, disjoint queues.
func NewQueues() *Queues {
	return &Queues{
		Normal:         New(),
		Unloading:      New(),
		ShutdownVendor: New(),
	}
}

// Of returns the named queue.
func (qs *Queues) Of(name Name) *Queue {
	switch name {
	case Normal:
		return qs.Normal
	case Unloading:
		return qs.Unloading
	case ShutdownVendor:
		return qs.ShutdownVendor
	default:
		return nil
	}
}

// Disjoint reports whether the three queues share no members, the
// invariant required by §8.2.
func (qs *Queues) Disjoint() bool {
	seen := make(map[uint32]Name)
	for _, n := range []Name{Normal, Unloading, ShutdownVendor} {
		for _, order := range qs.Of(n).Members() {
			if _, dup := seen[order]; dup {
				return false
			}
			seen[order] = n
		}
	}
	return true
}
