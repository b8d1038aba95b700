package services

import (
	"context"
	"log"
	"time"

	"resto-pos/metrics"
	"resto-pos/models"
	"resto-pos/realtime"
	"resto-pos/store"
)

// SyncService reconciles realtime events and pull results into the order
// store. It is the only writer of full-collection replacements; everything
// else reads snapshots. Events are triggers to re-pull, never data carriers,
// and a write's own response is never installed as canonical state: a
// mandatory re-pull after every mutation makes all views converge on the
// same authoritative snapshot even when two actors race on one order.
type SyncService struct {
	svc          OrderQueryService
	store        *store.OrderStore
	metrics      *metrics.Registry
	pollInterval time.Duration

	// refreshCh is buffered(1): a burst of events during an in-flight pull
	// collapses into at most one trailing refresh.
	refreshCh chan struct{}
	done      chan struct{}
}

func NewSyncService(svc OrderQueryService, st *store.OrderStore, reg *metrics.Registry, pollInterval time.Duration) *SyncService {
	return &SyncService{
		svc:          svc,
		store:        st,
		metrics:      reg,
		pollInterval: pollInterval,
		refreshCh:    make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
}

// Start performs the initial full pull, then services refresh requests and
// the periodic poll until ctx is cancelled. A failed pull is never fatal:
// the last-known snapshot stays in place.
func (s *SyncService) Start(ctx context.Context) {
	s.pull(ctx)
	go s.run(ctx)
}

func (s *SyncService) run(ctx context.Context) {
	defer close(s.done)

	var tick <-chan time.Time
	if s.pollInterval > 0 {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.refreshCh:
			s.pull(ctx)
		case <-tick:
			s.pull(ctx)
		}
	}
}

// Done is closed once the reconciliation loop has exited.
func (s *SyncService) Done() <-chan struct{} {
	return s.done
}

// RequestRefresh asks for a reconciliation pull. Non-blocking; if a pull is
// already pending the request coalesces into it.
func (s *SyncService) RequestRefresh() {
	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
}

// HandleEvent receives realtime channel event names. Receipt of an event is
// never proof of new state; it only schedules a re-pull of truth.
func (s *SyncService) HandleEvent(event string) {
	s.metrics.Events.WithLabelValues(event).Inc()
	switch event {
	case realtime.EventNewOrder, realtime.EventOrderStatusUpdated:
		s.RequestRefresh()
	}
}

// SetStatus is the mutation intent entry point for view projections. The
// transition validator runs as a pre-flight guard against the cached record;
// the server re-validates authoritatively. There is no optimistic local
// mutation: on success a re-pull confirms the result, on failure the store
// is untouched and the error goes back to the caller.
func (s *SyncService) SetStatus(ctx context.Context, id int, status *models.Status, payment *models.PaymentStatus) error {
	if cur, ok := s.store.Get(id); ok {
		if status != nil {
			if err := models.CanTransition(cur.Status, *status); err != nil {
				return err
			}
		}
		if payment != nil && !models.PaymentChanges(cur.PaymentStatus, *payment) {
			// paid -> paid and paid -> unpaid are idempotent no-ops.
			payment = nil
		}
	}
	if status == nil && payment == nil {
		return nil
	}

	if _, err := s.svc.SetStatus(ctx, id, status, payment); err != nil {
		s.metrics.MutationFailures.Inc()
		return err
	}
	s.metrics.Mutations.Inc()
	s.RequestRefresh()
	return nil
}

// LookupByCode fetches a single order by transaction code and installs the
// fresher record into the shared cache.
func (s *SyncService) LookupByCode(ctx context.Context, code string) (models.Order, error) {
	o, err := s.svc.GetByCode(ctx, code)
	if err != nil {
		return models.Order{}, err
	}
	s.store.UpsertOne(o)
	return o, nil
}

func (s *SyncService) pull(ctx context.Context) {
	s.store.MarkRefreshing(true)
	start := time.Now()

	orders, err := s.svc.List(ctx, nil)
	if err != nil {
		s.store.MarkRefreshing(false)
		s.metrics.PullFailures.Inc()
		log.Printf("order pull failed, keeping last snapshot: %v", err)
		return
	}

	s.store.ReplaceAll(orders)
	s.store.RecordRefresh(time.Now())
	s.metrics.Pulls.Inc()
	s.metrics.PullLatencySec.Observe(time.Since(start).Seconds())
	s.metrics.CachedOrders.Set(float64(len(orders)))
}
