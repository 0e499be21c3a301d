package cart

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"
)

type activeFlag struct {
	mu     sync.Mutex
	active bool
}

func (a *activeFlag) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

func (a *activeFlag) set(v bool) {
	a.mu.Lock()
	a.active = v
	a.mu.Unlock()
}

type fakeGateway struct {
	mu      sync.Mutex
	records []Record
	nextID  int
	calls   []string

	listErr   error
	mutateErr error
	// listErrAfter fails list calls once the counter reaches zero.
	listErrAfter int
	onMutate     func()
	onList       func()
}

func newFakeGateway(records ...Record) *fakeGateway {
	return &fakeGateway{records: records, listErrAfter: -1}
}

func (g *fakeGateway) ListCart(context.Context) ([]Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "list")
	if g.onList != nil {
		g.onList()
	}
	if g.listErrAfter == 0 {
		return nil, errors.New("list unavailable")
	}
	if g.listErrAfter > 0 {
		g.listErrAfter--
	}
	if g.listErr != nil {
		return nil, g.listErr
	}
	out := make([]Record, len(g.records))
	copy(out, g.records)
	return out, nil
}

func (g *fakeGateway) AddToCart(_ context.Context, productRef string, quantity int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "add")
	if g.onMutate != nil {
		g.onMutate()
	}
	if g.mutateErr != nil {
		return g.mutateErr
	}
	for i := range g.records {
		if g.records[i].ProductID == productRef {
			g.records[i].Quantity += quantity
			return nil
		}
	}
	g.nextID++
	g.records = append(g.records, Record{ID: fmt.Sprintf("line-%d", g.nextID), ProductID: productRef, Quantity: quantity})
	return nil
}

func (g *fakeGateway) UpdateQuantity(_ context.Context, lineID string, quantity int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "update")
	if g.onMutate != nil {
		g.onMutate()
	}
	if g.mutateErr != nil {
		return g.mutateErr
	}
	for i := range g.records {
		if g.records[i].ID == lineID {
			g.records[i].Quantity = quantity
			return nil
		}
	}
	return errors.New("line not found")
}

func (g *fakeGateway) RemoveFromCart(_ context.Context, lineID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "remove")
	if g.onMutate != nil {
		g.onMutate()
	}
	if g.mutateErr != nil {
		return g.mutateErr
	}
	out := g.records[:0]
	for _, r := range g.records {
		if r.ID != lineID {
			out = append(out, r)
		}
	}
	g.records = out
	return nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func newTestReconciler(g *fakeGateway, policy RejectPolicy) (*Reconciler, *activeFlag) {
	flag := &activeFlag{active: true}
	return NewReconciler(g, flag, Config{RejectPolicy: policy}), flag
}

func TestSyncWithoutSessionEmptiesAndSkipsGateway(t *testing.T) {
	g := newFakeGateway(Record{ID: "line-1", ProductID: "p1", Quantity: 2})
	r, flag := newTestReconciler(g, DeferToSync)
	flag.set(false)

	lines, err := r.Sync(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(lines) != 0 || len(r.Snapshot()) != 0 {
		t.Fatalf("expected empty cart, got %+v", lines)
	}
	if g.callCount() != 0 {
		t.Fatalf("expected no gateway calls, got %d", g.callCount())
	}
}

func TestSyncNormalizesRecords(t *testing.T) {
	g := newFakeGateway(
		Record{ID: "line-1", ProductID: "p1", Quantity: 3},
		Record{Product: &RecordProduct{ID: "p2"}},
	)
	r, _ := newTestReconciler(g, DeferToSync)

	lines, err := r.Sync(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	first, ok := lines.FindProduct("p1")
	if !ok || first.ID != "line-1" || first.Quantity != 3 {
		t.Fatalf("unexpected first line %+v", first)
	}
	second, ok := lines.FindProduct("p2")
	if !ok {
		t.Fatal("expected nested product reference to be used")
	}
	if second.Quantity != 1 {
		t.Fatalf("expected default quantity 1, got %d", second.Quantity)
	}
	if !second.Placeholder() {
		t.Fatalf("expected placeholder id, got %q", second.ID)
	}
}

func TestSyncFailureEmptiesCart(t *testing.T) {
	g := newFakeGateway(Record{ID: "line-1", ProductID: "p1", Quantity: 1})
	r, _ := newTestReconciler(g, DeferToSync)
	if _, err := r.Sync(context.Background()); err != nil {
		t.Fatalf("initial sync: %v", err)
	}

	g.listErr = errors.New("boom")
	var hookErr error
	r.cfg.OnSync = func(_ context.Context, _ int, err error) { hookErr = err }

	if _, err := r.Sync(context.Background()); err == nil {
		t.Fatal("expected sync error")
	}
	if len(r.Snapshot()) != 0 {
		t.Fatalf("expected empty cart after failed sync, got %+v", r.Snapshot())
	}
	if hookErr == nil {
		t.Fatal("expected OnSync to observe the failure")
	}
}

func TestSyncDropsListWhenSessionEndsInFlight(t *testing.T) {
	g := newFakeGateway(Record{ID: "line-1", ProductID: "p1", Quantity: 2})
	r, flag := newTestReconciler(g, DeferToSync)
	g.onList = func() { flag.set(false) }

	lines, err := r.Sync(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(lines) != 0 || len(r.Snapshot()) != 0 {
		t.Fatalf("expected empty cart after logout, got %+v / %+v", lines, r.Snapshot())
	}
}

func TestSyncIdempotent(t *testing.T) {
	g := newFakeGateway(
		Record{ID: "line-1", ProductID: "p1", Quantity: 1},
		Record{ID: "line-2", ProductID: "p2", Quantity: 4},
	)
	r, _ := newTestReconciler(g, DeferToSync)

	first, err := r.Sync(context.Background())
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	second, err := r.Sync(context.Background())
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("snapshots differ: %+v vs %+v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("snapshots differ at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestAddNewProductAppendsOneLine(t *testing.T) {
	g := newFakeGateway(Record{ID: "line-1", ProductID: "p1", Quantity: 1})
	r, _ := newTestReconciler(g, DeferToSync)
	if _, err := r.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	m, err := r.Add(context.Background(), "p2", 3)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if m.State != StateConfirmed {
		t.Fatalf("expected confirmed, got %s", m.State)
	}
	if len(m.Optimistic) != len(m.Prior)+1 {
		t.Fatalf("expected exactly one new line, prior=%d optimistic=%d", len(m.Prior), len(m.Optimistic))
	}
	line, ok := m.Optimistic.FindProduct("p2")
	if !ok || line.Quantity != 3 {
		t.Fatalf("unexpected optimistic line %+v", line)
	}
	if !line.Placeholder() {
		t.Fatalf("expected placeholder id before confirmation, got %q", line.ID)
	}

	confirmed, ok := r.Snapshot().FindProduct("p2")
	if !ok || confirmed.Placeholder() {
		t.Fatalf("expected server id after reconcile, got %+v", confirmed)
	}
}

func TestAddExistingProductMerges(t *testing.T) {
	g := newFakeGateway(Record{ID: "line-1", ProductID: "p1", Quantity: 2})
	r, _ := newTestReconciler(g, DeferToSync)
	if _, err := r.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	m, err := r.Add(context.Background(), "p1", 5)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(m.Optimistic) != len(m.Prior) {
		t.Fatalf("merge must not change line count: prior=%d optimistic=%d", len(m.Prior), len(m.Optimistic))
	}
	line, _ := m.Optimistic.FindProduct("p1")
	if line.Quantity != 7 || line.ID != "line-1" {
		t.Fatalf("unexpected merged line %+v", line)
	}
	if got := r.Snapshot().TotalQuantity(); got != 7 {
		t.Fatalf("expected confirmed quantity 7, got %d", got)
	}
}

func TestAddValidatesInput(t *testing.T) {
	g := newFakeGateway()
	r, _ := newTestReconciler(g, DeferToSync)

	if _, err := r.Add(context.Background(), "", 1); !errors.Is(err, ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct, got %v", err)
	}
	if _, err := r.Add(context.Background(), "p1", 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if g.callCount() != 0 {
		t.Fatalf("expected no gateway calls, got %d", g.callCount())
	}
}

func TestRejectedMutationDefersToSync(t *testing.T) {
	g := newFakeGateway(Record{ID: "line-1", ProductID: "p1", Quantity: 1})
	r, _ := newTestReconciler(g, DeferToSync)
	if _, err := r.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	g.mutateErr = errors.New("out of stock")
	var rejected Op
	r.cfg.OnReject = func(_ context.Context, op Op, _ error) { rejected = op }

	m, err := r.Add(context.Background(), "p2", 1)
	if err == nil || m.State != StateRejected {
		t.Fatalf("expected rejection, got state=%s err=%v", m.State, err)
	}
	if rejected != OpAdd {
		t.Fatalf("expected OnReject for add, got %q", rejected)
	}
	if _, ok := r.Snapshot().FindProduct("p2"); !ok {
		t.Fatal("stale optimistic line must stay visible until next sync")
	}

	if _, err := r.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if _, ok := r.Snapshot().FindProduct("p2"); ok {
		t.Fatal("sync must overwrite the stale optimistic line")
	}
}

func TestRejectedMutationRestoresPrior(t *testing.T) {
	g := newFakeGateway(Record{ID: "line-1", ProductID: "p1", Quantity: 2})
	r, _ := newTestReconciler(g, RestorePrior)
	if _, err := r.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	g.mutateErr = errors.New("server error")
	m, err := r.SetQuantity(context.Background(), "line-1", 9)
	if err == nil {
		t.Fatal("expected rejection")
	}
	if line, _ := m.Optimistic.FindLine("line-1"); line.Quantity != 9 {
		t.Fatalf("expected optimistic quantity 9, got %d", line.Quantity)
	}
	if line, _ := r.Snapshot().FindLine("line-1"); line.Quantity != 2 {
		t.Fatalf("expected prior quantity 2 restored, got %d", line.Quantity)
	}
}

func TestRestorePriorKeepsCartEmptyAfterTeardown(t *testing.T) {
	g := newFakeGateway(Record{ID: "line-1", ProductID: "p1", Quantity: 2})
	r, flag := newTestReconciler(g, RestorePrior)
	if _, err := r.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	g.mutateErr = errors.New("unauthorized")
	// The teardown runs while the call is in flight, before the error comes back.
	g.onMutate = func() {
		flag.set(false)
		r.Reset()
	}

	if _, err := r.Remove(context.Background(), "line-1"); err == nil {
		t.Fatal("expected rejection")
	}
	if len(r.Snapshot()) != 0 {
		t.Fatalf("expected empty cart after teardown, got %+v", r.Snapshot())
	}
}

func TestSetQuantityZeroAccepted(t *testing.T) {
	g := newFakeGateway(Record{ID: "line-1", ProductID: "p1", Quantity: 1})
	r, _ := newTestReconciler(g, DeferToSync)
	if _, err := r.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	m, err := r.SetQuantity(context.Background(), "line-1", 0)
	if err != nil {
		t.Fatalf("zero quantity must be accepted: %v", err)
	}
	if line, ok := m.Optimistic.FindLine("line-1"); !ok || line.Quantity != 0 {
		t.Fatalf("expected line kept with quantity 0, got %+v ok=%v", line, ok)
	}
}

func TestSetQuantityNegativeRejectedWithoutCalls(t *testing.T) {
	g := newFakeGateway(Record{ID: "line-1", ProductID: "p1", Quantity: 1})
	r, _ := newTestReconciler(g, DeferToSync)

	if _, err := r.SetQuantity(context.Background(), "line-1", -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if g.callCount() != 0 {
		t.Fatalf("expected no gateway calls, got %d", g.callCount())
	}
}

func TestRemoveFiltersLine(t *testing.T) {
	g := newFakeGateway(
		Record{ID: "line-1", ProductID: "p1", Quantity: 1},
		Record{ID: "line-2", ProductID: "p2", Quantity: 1},
	)
	r, _ := newTestReconciler(g, DeferToSync)
	if _, err := r.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	m, err := r.Remove(context.Background(), "line-1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := m.Optimistic.FindLine("line-1"); ok {
		t.Fatal("optimistic snapshot still holds removed line")
	}
	if r.Snapshot().Count() != 1 {
		t.Fatalf("expected 1 line, got %d", r.Snapshot().Count())
	}
}

func TestMutationWithoutSession(t *testing.T) {
	g := newFakeGateway()
	r, flag := newTestReconciler(g, DeferToSync)
	flag.set(false)

	if _, err := r.Add(context.Background(), "p1", 1); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if g.callCount() != 0 {
		t.Fatalf("expected no gateway calls, got %d", g.callCount())
	}
}

func TestConfirmingListFailureReportsSyncErr(t *testing.T) {
	g := newFakeGateway(Record{ID: "line-1", ProductID: "p1", Quantity: 1})
	r, _ := newTestReconciler(g, DeferToSync)
	if _, err := r.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	g.listErrAfter = 0

	m, err := r.Add(context.Background(), "p1", 1)
	if err != nil {
		t.Fatalf("mutation itself succeeded, got %v", err)
	}
	if m.State != StateConfirmed || m.SyncErr == nil {
		t.Fatalf("expected confirmed with SyncErr, got state=%s syncErr=%v", m.State, m.SyncErr)
	}
	if len(r.Snapshot()) != 0 {
		t.Fatalf("failed confirming list must empty the cart, got %+v", r.Snapshot())
	}
}

func TestConcurrentAddsKeepOneLinePerProduct(t *testing.T) {
	g := newFakeGateway()
	r, _ := newTestReconciler(g, DeferToSync)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Add(context.Background(), "p1", 1); err != nil {
				t.Errorf("add: %v", err)
			}
		}()
	}
	wg.Wait()

	if _, err := r.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	snap := r.Snapshot()
	if snap.Count() != 1 || snap.TotalQuantity() != 16 {
		t.Fatalf("expected one line with quantity 16, got %+v", snap)
	}
}

func TestPlaceholderIDFormat(t *testing.T) {
	id := NewPlaceholderID(time.UnixMilli(1_700_000_000_123))
	re := regexp.MustCompile(`^temp-1700000000123-[0-9a-f-]{36}$`)
	if !re.MatchString(id) {
		t.Fatalf("unexpected placeholder id %q", id)
	}
	if !IsPlaceholderID(id) || IsPlaceholderID("line-1") {
		t.Fatal("IsPlaceholderID misclassifies ids")
	}
}

func TestParseRejectPolicy(t *testing.T) {
	if p, ok := ParseRejectPolicy("restore_prior"); !ok || p != RestorePrior {
		t.Fatalf("unexpected %v %v", p, ok)
	}
	if p, ok := ParseRejectPolicy(""); !ok || p != DeferToSync {
		t.Fatalf("unexpected %v %v", p, ok)
	}
	if _, ok := ParseRejectPolicy("rollback"); ok {
		t.Fatal("unknown policy must not parse")
	}
}
