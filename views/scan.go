package views

import (
	"context"
	"sync"

	"resto-pos/models"
	"resto-pos/store"
)

// Scan is the cashier projection: one order located by scanned transaction
// code, re-derived from the shared store on every change. The only local
// state is the scanned code itself.
type Scan struct {
	store   *store.OrderStore
	intents Intents

	mu     sync.Mutex
	code   string
	render func(models.Order)
	closed bool

	subID int
	quit  chan struct{}
}

func NewScan(st *store.OrderStore, intents Intents, render func(models.Order)) *Scan {
	s := &Scan{
		store:   st,
		intents: intents,
		render:  render,
		quit:    make(chan struct{}),
	}
	id, ch := st.Subscribe()
	s.subID = id
	go s.watch(ch)
	return s
}

func (s *Scan) watch(ch <-chan struct{}) {
	for {
		select {
		case <-s.quit:
			return
		case <-ch:
			s.emit()
		}
	}
}

func (s *Scan) emit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.render == nil || s.code == "" {
		return
	}
	if o, ok := s.find(s.code); ok {
		s.render(o)
	}
}

// Lookup resolves a scanned QR code to its order. The single-order fetch is
// fresher than the bulk cache, so the synchronizer upserts it into the
// shared store before it is returned.
func (s *Scan) Lookup(ctx context.Context, code string) (models.Order, error) {
	o, err := s.intents.LookupByCode(ctx, code)
	if err != nil {
		return models.Order{}, err
	}
	s.mu.Lock()
	s.code = o.TransactionCode
	s.mu.Unlock()
	s.emit()
	return o, nil
}

// Current re-derives the scanned order from the latest snapshot.
func (s *Scan) Current() (models.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.code == "" {
		return models.Order{}, false
	}
	return s.find(s.code)
}

// ConfirmPayment marks the order paid. Repeating it on an already paid
// order is an idempotent no-op.
func (s *Scan) ConfirmPayment(ctx context.Context, id int) error {
	paid := models.PaymentPaid
	return s.intents.SetStatus(ctx, id, nil, &paid)
}

// Close detaches the projection; no render callback runs after it returns.
func (s *Scan) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.store.Unsubscribe(s.subID)
	close(s.quit)
}

// find must be called with the projection lock held.
func (s *Scan) find(code string) (models.Order, bool) {
	for _, o := range s.store.Snapshot() {
		if o.TransactionCode == code {
			return o, true
		}
	}
	return models.Order{}, false
}
