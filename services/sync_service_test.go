package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"resto-pos/metrics"
	"resto-pos/models"
	"resto-pos/realtime"
	"resto-pos/store"
)

// fakeQueryService is an in-memory authority implementing the same write
// semantics as the backend: transitions validated server-side, same-status
// requests treated as no-ops that still apply a legal payment flag.
type fakeQueryService struct {
	mu     sync.Mutex
	orders map[int]models.Order

	listCalls int32
	setCalls  int32

	listErr error
	setErr  error

	// blockOnCall stalls the n-th List call until release is closed.
	blockOnCall int32
	started     chan struct{}
	release     chan struct{}
}

func newFakeQueryService(orders ...models.Order) *fakeQueryService {
	f := &fakeQueryService{orders: make(map[int]models.Order)}
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return f
}

func (f *fakeQueryService) List(ctx context.Context, status *models.Status) ([]models.Order, error) {
	n := atomic.AddInt32(&f.listCalls, 1)
	if f.blockOnCall > 0 && n == f.blockOnCall {
		f.started <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeQueryService) GetByCode(ctx context.Context, code string) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.TransactionCode == code {
			return o, nil
		}
	}
	return models.Order{}, &models.TransportError{Op: "get by code", StatusCode: 404, Err: models.ErrOrderNotFound}
}

func (f *fakeQueryService) SetStatus(ctx context.Context, id int, status *models.Status, payment *models.PaymentStatus) (models.Order, error) {
	atomic.AddInt32(&f.setCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return models.Order{}, f.setErr
	}
	o, ok := f.orders[id]
	if !ok {
		return models.Order{}, &models.TransportError{Op: "set status", StatusCode: 404, Err: models.ErrOrderNotFound}
	}
	if status != nil && *status != o.Status {
		if err := models.CanTransition(o.Status, *status); err != nil {
			return models.Order{}, &models.TransportError{Op: "set status", StatusCode: 409, Err: err}
		}
		o.Status = *status
	}
	if payment != nil && models.PaymentChanges(o.PaymentStatus, *payment) {
		o.PaymentStatus = models.PaymentPaid
	}
	f.orders[id] = o
	return o, nil
}

func (f *fakeQueryService) lists() int32 { return atomic.LoadInt32(&f.listCalls) }
func (f *fakeQueryService) sets() int32  { return atomic.LoadInt32(&f.setCalls) }

func pendingOrder(id int) models.Order {
	return models.Order{
		ID:              id,
		TransactionCode: "TRX-00042",
		CustomerName:    "Dina",
		Type:            models.OrderTypeDineIn,
		Total:           35000,
		Status:          models.StatusPending,
		PaymentStatus:   models.PaymentUnpaid,
		CreatedAt:       time.Now().UTC(),
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting: %s", msg)
}

func TestSyncService_InitialPull(t *testing.T) {
	fake := newFakeQueryService(pendingOrder(42))
	st := store.NewOrderStore()
	syn := NewSyncService(fake, st, metrics.NewRegistry(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	syn.Start(ctx)

	if st.Len() != 1 {
		t.Fatalf("initial pull should populate the store, got %d orders", st.Len())
	}
	last, inflight := st.LastRefresh()
	if last.IsZero() || inflight {
		t.Fatalf("refresh metadata not recorded: %v %v", last, inflight)
	}
}

func TestSyncService_BurstCollapsing(t *testing.T) {
	fake := newFakeQueryService(pendingOrder(42))
	fake.blockOnCall = 2
	fake.started = make(chan struct{})
	fake.release = make(chan struct{})

	st := store.NewOrderStore()
	syn := NewSyncService(fake, st, metrics.NewRegistry(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	syn.Start(ctx) // pull #1

	syn.HandleEvent(realtime.EventNewOrder) // pull #2, will block
	<-fake.started

	// A burst of events arrives while pull #2 is in flight.
	for i := 0; i < 5; i++ {
		syn.HandleEvent(realtime.EventOrderStatusUpdated)
	}
	close(fake.release)

	// The burst collapses into exactly one trailing pull.
	waitFor(t, func() bool { return fake.lists() == 3 }, "trailing pull")
	time.Sleep(50 * time.Millisecond)
	if got := fake.lists(); got != 3 {
		t.Fatalf("5 events during an in-flight pull must cause at most one extra pull, got %d total", got)
	}
}

func TestSyncService_BannersEventIgnored(t *testing.T) {
	fake := newFakeQueryService(pendingOrder(42))
	st := store.NewOrderStore()
	syn := NewSyncService(fake, st, metrics.NewRegistry(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	syn.Start(ctx)

	syn.HandleEvent(realtime.EventBannersUpdated)
	time.Sleep(50 * time.Millisecond)
	if got := fake.lists(); got != 1 {
		t.Fatalf("banner events must not trigger pulls, got %d", got)
	}
}

func TestSyncService_SetStatus_PreflightRejection(t *testing.T) {
	o := pendingOrder(42)
	o.Status = models.StatusProcessing
	fake := newFakeQueryService(o)
	st := store.NewOrderStore()
	syn := NewSyncService(fake, st, metrics.NewRegistry(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	syn.Start(ctx)

	processing := models.StatusProcessing
	err := syn.SetStatus(ctx, 42, &processing, nil)

	var ite *models.IllegalTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
	if fake.sets() != 0 {
		t.Fatalf("rejected intents must never reach the network")
	}
}

func TestSyncService_SetStatus_PaymentIdempotent(t *testing.T) {
	fake := newFakeQueryService(pendingOrder(42))
	st := store.NewOrderStore()
	syn := NewSyncService(fake, st, metrics.NewRegistry(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	syn.Start(ctx)

	paid := models.PaymentPaid
	if err := syn.SetStatus(ctx, 42, nil, &paid); err != nil {
		t.Fatalf("first payment: %v", err)
	}
	waitFor(t, func() bool {
		got, _ := st.Get(42)
		return got.PaymentStatus == models.PaymentPaid
	}, "payment visible after re-pull")

	// Second confirmation never errors and is served from the cache.
	before := fake.sets()
	if err := syn.SetStatus(ctx, 42, nil, &paid); err != nil {
		t.Fatalf("repeated payment must be a no-op, got %v", err)
	}
	if fake.sets() != before {
		t.Fatalf("no-op payment should not hit the network")
	}
}

func TestSyncService_SetStatus_PullAfterWrite(t *testing.T) {
	fake := newFakeQueryService(pendingOrder(42))
	st := store.NewOrderStore()
	syn := NewSyncService(fake, st, metrics.NewRegistry(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	syn.Start(ctx)

	processing := models.StatusProcessing
	if err := syn.SetStatus(ctx, 42, &processing, nil); err != nil {
		t.Fatalf("set status: %v", err)
	}

	// The new state arrives via re-pull, not via the write response.
	waitFor(t, func() bool {
		got, _ := st.Get(42)
		return got.Status == models.StatusProcessing
	}, "store converges after write")
	if fake.lists() < 2 {
		t.Fatalf("a successful write must be followed by a re-pull")
	}
}

func TestSyncService_TransportFailureLeavesStoreUntouched(t *testing.T) {
	fake := newFakeQueryService(pendingOrder(42))
	st := store.NewOrderStore()
	syn := NewSyncService(fake, st, metrics.NewRegistry(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	syn.Start(ctx)
	before := st.Snapshot()

	fake.mu.Lock()
	fake.setErr = &models.TransportError{Op: "set status", Err: errors.New("connection refused")}
	fake.mu.Unlock()

	processing := models.StatusProcessing
	err := syn.SetStatus(ctx, 42, &processing, nil)
	var te *models.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	got, _ := st.Get(42)
	if got.Status != models.StatusPending {
		t.Fatalf("failed write must not mutate the store")
	}
	if len(st.Snapshot()) != len(before) {
		t.Fatalf("failed write must not change the collection")
	}
}

func TestSyncService_PullFailureKeepsLastSnapshot(t *testing.T) {
	fake := newFakeQueryService(pendingOrder(42))
	st := store.NewOrderStore()
	syn := NewSyncService(fake, st, metrics.NewRegistry(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	syn.Start(ctx)

	fake.mu.Lock()
	fake.listErr = errors.New("backend down")
	fake.mu.Unlock()

	syn.RequestRefresh()
	waitFor(t, func() bool { return fake.lists() >= 2 }, "failed pull attempted")
	time.Sleep(20 * time.Millisecond)

	if st.Len() != 1 {
		t.Fatalf("failed refresh must keep the last-known snapshot")
	}
	if _, inflight := st.LastRefresh(); inflight {
		t.Fatalf("in-flight flag must clear after a failed pull")
	}
}

// Two actors race on order 42: the dashboard starts preparation, and before
// its re-pull lands the cashier (whose cache still says pending) confirms
// payment together with the same transition. Everyone converges on
// processing + paid.
func TestSyncService_ConcurrentActorsConverge(t *testing.T) {
	fake := newFakeQueryService(pendingOrder(42))
	fake.blockOnCall = 2
	fake.started = make(chan struct{})
	fake.release = make(chan struct{})

	st := store.NewOrderStore()
	syn := NewSyncService(fake, st, metrics.NewRegistry(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	syn.Start(ctx)

	processing := models.StatusProcessing
	paid := models.PaymentPaid

	// Dashboard actor.
	if err := syn.SetStatus(ctx, 42, &processing, nil); err != nil {
		t.Fatalf("dashboard write: %v", err)
	}
	<-fake.started // its re-pull is now stalled in flight

	// Scan actor, acting on the stale pending cache.
	if err := syn.SetStatus(ctx, 42, &processing, &paid); err != nil {
		t.Fatalf("scan write must succeed despite the race: %v", err)
	}

	close(fake.release)

	waitFor(t, func() bool {
		got, ok := st.Get(42)
		return ok && got.Status == models.StatusProcessing && got.PaymentStatus == models.PaymentPaid
	}, "all projections converge on processing + paid")
}

func TestSyncService_LookupByCodeUpserts(t *testing.T) {
	fake := newFakeQueryService(pendingOrder(42))
	st := store.NewOrderStore()
	syn := NewSyncService(fake, st, metrics.NewRegistry(), 0)

	// No Start: lookup must work even before any pull, the realtime channel
	// being down notwithstanding.
	o, err := syn.LookupByCode(context.Background(), "TRX-00042")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if o.ID != 42 {
		t.Fatalf("unexpected order: %+v", o)
	}
	if got, ok := st.Get(42); !ok || got.TransactionCode != "TRX-00042" {
		t.Fatalf("lookup must upsert into the shared store")
	}
}

func TestSyncService_PeriodicPollWorksWithoutChannel(t *testing.T) {
	fake := newFakeQueryService(pendingOrder(42))
	st := store.NewOrderStore()
	syn := NewSyncService(fake, st, metrics.NewRegistry(), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	syn.Start(ctx)

	// Mutate the authority behind the client's back; no events arrive.
	fake.mu.Lock()
	o := fake.orders[42]
	o.Status = models.StatusProcessing
	fake.orders[42] = o
	fake.mu.Unlock()

	waitFor(t, func() bool {
		got, _ := st.Get(42)
		return got.Status == models.StatusProcessing
	}, "poll refresh updates the store with the channel down")
}
