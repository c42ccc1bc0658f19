package strategic

import (
	"sync"

	"github.com/mintmaint/strategic-scheduler/modules/strategic/period"
	"github.com/mintmaint/strategic-scheduler/modules/strategic/workorder"
)

// SchedulingEnvironment is the periods-and-orders state shared with the
// external ingest path. The strategic agent takes this lock only while
// snapshotting inputs at construction (§5); it never holds it across a
// sleep or a placement sweep.
type SchedulingEnvironment struct {
	mu      sync.RWMutex
	catalog *period.Catalog
	backlog *workorder.Store
}

// NewSchedulingEnvironment wraps an already-built catalog and backlog.
func NewSchedulingEnvironment(catalog *period.Catalog, backlog *workorder.Store) *SchedulingEnvironment {
	return &SchedulingEnvironment{catalog: catalog, backlog: backlog}
}

// Snapshot returns the current catalog and backlog under a read lock. The
// agent calls this once, at construction; the returned values are
// themselves immutable (Catalog) or treated as read-only (Store), so no
// lock needs to be held past the call.
func (e *SchedulingEnvironment) Snapshot() (*period.Catalog, *workorder.Store) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.catalog, e.backlog
}

// Reload replaces the catalog and backlog under a write lock, for use by
// the external ingest path. An agent that is already constructed keeps
// the catalog and backlog it snapshotted and does not pick up the change.
func (e *SchedulingEnvironment) Reload(catalog *period.Catalog, backlog *workorder.Store) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.catalog = catalog
	e.backlog = backlog
}
