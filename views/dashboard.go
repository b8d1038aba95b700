package views

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"resto-pos/models"
	"resto-pos/store"
)

// Dashboard is the kitchen queue projection: the order snapshot narrowed by
// a status filter and a free-text search, with advance/reject intents.
type Dashboard struct {
	store   *store.OrderStore
	intents Intents

	mu     sync.Mutex
	filter models.Status // empty means all statuses
	search string
	render func([]models.Order)
	closed bool

	subID int
	quit  chan struct{}
}

// NewDashboard subscribes to the store and invokes render with the derived
// slice on every change. render runs on the projection's own goroutine.
func NewDashboard(st *store.OrderStore, intents Intents, render func([]models.Order)) *Dashboard {
	d := &Dashboard{
		store:   st,
		intents: intents,
		render:  render,
		quit:    make(chan struct{}),
	}
	id, ch := st.Subscribe()
	d.subID = id
	go d.watch(ch)
	return d
}

func (d *Dashboard) watch(ch <-chan struct{}) {
	for {
		select {
		case <-d.quit:
			return
		case <-ch:
			d.emit()
		}
	}
}

// emit runs the render callback under the projection lock, so Close blocks
// on an in-flight render and no callback ever runs after Close returns.
func (d *Dashboard) emit() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.render == nil {
		return
	}
	d.render(d.project(d.store.Snapshot()))
}

// SetFilter narrows the projection to one status. Empty shows everything.
func (d *Dashboard) SetFilter(status models.Status) {
	d.mu.Lock()
	d.filter = status
	d.mu.Unlock()
	d.emit()
}

// SetSearch narrows the projection by transaction code or customer name.
func (d *Dashboard) SetSearch(q string) {
	d.mu.Lock()
	d.search = q
	d.mu.Unlock()
	d.emit()
}

// Orders returns the current derived slice.
func (d *Dashboard) Orders() []models.Order {
	snap := d.store.Snapshot()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.project(snap)
}

// CanAdvance reports whether the advance action should be enabled for an
// order, per the pre-flight validator.
func (d *Dashboard) CanAdvance(id int) bool {
	o, ok := d.store.Get(id)
	if !ok {
		return false
	}
	_, ok = models.NextStatus(o.Status)
	return ok
}

// Advance moves an order one preparation step forward.
func (d *Dashboard) Advance(ctx context.Context, id int) error {
	o, ok := d.store.Get(id)
	if !ok {
		return fmt.Errorf("advance order %d: %w", id, models.ErrOrderNotFound)
	}
	next, ok := models.NextStatus(o.Status)
	if !ok {
		return &models.IllegalTransitionError{From: o.Status, To: o.Status}
	}
	return d.intents.SetStatus(ctx, id, &next, nil)
}

// Reject refuses a pending order. The validator rejects anything already in
// preparation.
func (d *Dashboard) Reject(ctx context.Context, id int) error {
	rejected := models.StatusRejected
	return d.intents.SetStatus(ctx, id, &rejected, nil)
}

// Refresh asks the synchronizer for a manual re-pull.
func (d *Dashboard) Refresh() {
	d.intents.RequestRefresh()
}

// Close detaches the projection. A pull completing afterwards still updates
// the shared store; it is just never delivered here.
func (d *Dashboard) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.store.Unsubscribe(d.subID)
	close(d.quit)
}

// project must be called with the projection lock held.
func (d *Dashboard) project(snap []models.Order) []models.Order {
	q := strings.ToLower(strings.TrimSpace(d.search))
	out := make([]models.Order, 0, len(snap))
	for _, o := range snap {
		if d.filter != "" && o.Status != d.filter {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(o.TransactionCode), q) &&
			!strings.Contains(strings.ToLower(o.CustomerName), q) {
			continue
		}
		out = append(out, o)
	}
	return out
}
