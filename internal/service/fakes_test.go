package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/ports"
	"tailorbooks-backend/internal/repository"
)

var errInjected = errors.New("injected failure")

type memState struct {
	jobs        map[int64]domain.SewingJob
	sales       map[int64]domain.Sale
	items       map[int64]domain.InventoryItem
	customers   map[int64]domain.Customer
	collections []domain.Collection
	movements   []domain.InventoryMovement
	logs        []domain.ActivityLog
	nextID      int64
}

func newMemState() memState {
	return memState{
		jobs:      map[int64]domain.SewingJob{},
		sales:     map[int64]domain.Sale{},
		items:     map[int64]domain.InventoryItem{},
		customers: map[int64]domain.Customer{},
		nextID:    100,
	}
}

func (s memState) clone() memState {
	out := memState{
		jobs:        make(map[int64]domain.SewingJob, len(s.jobs)),
		sales:       make(map[int64]domain.Sale, len(s.sales)),
		items:       make(map[int64]domain.InventoryItem, len(s.items)),
		customers:   make(map[int64]domain.Customer, len(s.customers)),
		collections: append([]domain.Collection(nil), s.collections...),
		movements:   append([]domain.InventoryMovement(nil), s.movements...),
		logs:        append([]domain.ActivityLog(nil), s.logs...),
		nextID:      s.nextID,
	}
	for k, v := range s.jobs {
		out.jobs[k] = v
	}
	for k, v := range s.sales {
		out.sales[k] = v
	}
	for k, v := range s.items {
		out.items[k] = v
	}
	for k, v := range s.customers {
		out.customers[k] = v
	}
	return out
}

// fakeLedger applies a unit of work to a copy of its state and keeps the copy only on success.
type fakeLedger struct {
	mu     sync.Mutex
	state  memState
	failOn string
	txs    int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{state: newMemState()}
}

func (l *fakeLedger) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.LedgerTx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs++
	work := l.state.clone()
	if err := fn(ctx, &memTx{st: &work, failOn: l.failOn}); err != nil {
		return err
	}
	l.state = work
	return nil
}

func (l *fakeLedger) addJob(j domain.SewingJob) domain.SewingJob {
	j.ID = l.state.id()
	derive(&j)
	l.state.jobs[j.ID] = j
	return j
}

func (l *fakeLedger) addSale(s domain.Sale) domain.Sale {
	s.ID = l.state.id()
	s.Recompute()
	l.state.sales[s.ID] = s
	return s
}

func (l *fakeLedger) salesOfType(t domain.SaleType) []domain.Sale {
	var out []domain.Sale
	for _, s := range l.state.sales {
		if s.Type == t {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memState) id() int64 {
	s.nextID++
	return s.nextID
}

// derive fills the generated columns without touching status.
func derive(j *domain.SewingJob) {
	status := j.Status
	j.Recompute()
	j.Status = status
}

type memTx struct {
	st     *memState
	failOn string
}

func (t *memTx) fail(op string) error {
	if t.failOn == op {
		return fmt.Errorf("%s: %w", op, errInjected)
	}
	return nil
}

func (t *memTx) GetJobForUpdate(_ context.Context, _ int64, id int64) (*domain.SewingJob, error) {
	if err := t.fail("GetJobForUpdate"); err != nil {
		return nil, err
	}
	j, ok := t.st.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &j, nil
}

func (t *memTx) InsertJob(_ context.Context, _ int64, j domain.SewingJob) (*domain.SewingJob, error) {
	if err := t.fail("InsertJob"); err != nil {
		return nil, err
	}
	j.ID = t.st.id()
	derive(&j)
	t.st.jobs[j.ID] = j
	return &j, nil
}

func (t *memTx) UpdateJob(_ context.Context, _ int64, j domain.SewingJob) (*domain.SewingJob, error) {
	if err := t.fail("UpdateJob"); err != nil {
		return nil, err
	}
	if _, ok := t.st.jobs[j.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	derive(&j)
	t.st.jobs[j.ID] = j
	return &j, nil
}

func (t *memTx) FindSewingSale(_ context.Context, _ int64, jobID int64) (*domain.Sale, error) {
	if err := t.fail("FindSewingSale"); err != nil {
		return nil, err
	}
	for _, s := range t.st.sales {
		if s.Type == domain.SaleSewing && s.JobID != nil && *s.JobID == jobID {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (t *memTx) InsertSale(_ context.Context, _ int64, s domain.Sale) (*domain.Sale, error) {
	if err := t.fail("InsertSale"); err != nil {
		return nil, err
	}
	if s.Type == domain.SaleSewing && s.JobID != nil {
		for _, existing := range t.st.sales {
			if existing.Type == domain.SaleSewing && existing.JobID != nil && *existing.JobID == *s.JobID {
				return nil, errors.New("duplicate sewing sale")
			}
		}
	}
	s.ID = t.st.id()
	s.Recompute()
	t.st.sales[s.ID] = s
	return &s, nil
}

func (t *memTx) UpdateSaleAmounts(_ context.Context, _ int64, saleID int64, total, paid decimal.Decimal) error {
	if err := t.fail("UpdateSaleAmounts"); err != nil {
		return err
	}
	s, ok := t.st.sales[saleID]
	if !ok {
		return repository.ErrNotFound
	}
	s.TotalAmount, s.AmountPaid = total, paid
	s.Recompute()
	t.st.sales[saleID] = s
	return nil
}

func (t *memTx) ListUnpaidSalesForUpdate(_ context.Context, _ int64, key domain.CustomerKey) ([]domain.Sale, error) {
	if err := t.fail("ListUnpaidSalesForUpdate"); err != nil {
		return nil, err
	}
	var out []domain.Sale
	for _, s := range t.st.sales {
		if s.Balance.IsPositive() && key.Matches(s) {
			out = append(out, s)
		}
	}
	domain.SortOldestFirst(out)
	return out, nil
}

func (t *memTx) GetInventoryItemForUpdate(_ context.Context, _ int64, id int64) (*domain.InventoryItem, error) {
	if err := t.fail("GetInventoryItemForUpdate"); err != nil {
		return nil, err
	}
	it, ok := t.st.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &it, nil
}

func (t *memTx) ConsumeInventory(_ context.Context, _ int64, itemID int64, qty decimal.Decimal, reference string) (*domain.InventoryItem, error) {
	if err := t.fail("ConsumeInventory"); err != nil {
		return nil, err
	}
	it, ok := t.st.items[itemID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	it.QuantityUsed = it.QuantityUsed.Add(qty)
	it.Recompute()
	t.st.items[itemID] = it
	t.st.movements = append(t.st.movements, domain.InventoryMovement{
		ID: t.st.id(), ItemID: itemID, Change: qty.Neg(), Remaining: it.QuantityLeft, Type: domain.MovementConsume, Reference: reference,
	})
	return &it, nil
}

func (t *memTx) TouchCustomerOrderDate(_ context.Context, _ int64, customerID int64, date time.Time) error {
	if err := t.fail("TouchCustomerOrderDate"); err != nil {
		return err
	}
	c, ok := t.st.customers[customerID]
	if !ok {
		return nil
	}
	c.LastOrderDate = &date
	if c.FirstOrderDate == nil {
		c.FirstOrderDate = &date
	}
	t.st.customers[customerID] = c
	return nil
}

func (t *memTx) InsertCollection(_ context.Context, _ int64, c domain.Collection) (*domain.Collection, error) {
	if err := t.fail("InsertCollection"); err != nil {
		return nil, err
	}
	c.ID = t.st.id()
	t.st.collections = append(t.st.collections, c)
	return &c, nil
}

func (t *memTx) LogActivity(_ context.Context, _ int64, entry domain.ActivityLog) error {
	if err := t.fail("LogActivity"); err != nil {
		return err
	}
	t.st.logs = append(t.st.logs, entry)
	return nil
}

type fakeLocker struct {
	held     map[string]bool
	acquired []string
	released []string
}

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(context.Context) error, error) {
	if l.held[key] {
		return nil, fmt.Errorf("%s: %w", key, ports.ErrLockHeld)
	}
	l.acquired = append(l.acquired, key)
	return func(context.Context) error {
		l.released = append(l.released, key)
		return nil
	}, nil
}

var (
	_ ports.Ledger   = (*fakeLedger)(nil)
	_ ports.LedgerTx = (*memTx)(nil)
	_ ports.Locker   = (*fakeLocker)(nil)
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fixedClock() Clock {
	return Clock{Now: func() time.Time { return time.Date(2024, 3, 20, 10, 30, 0, 0, time.UTC) }, Location: time.UTC}
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
