package use_cases

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/yuzvak/resale-backoffice/internal/application/ports"
	"github.com/yuzvak/resale-backoffice/internal/config"
	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
	"github.com/yuzvak/resale-backoffice/internal/domain/sale"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/locking"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/persistence/sqlstore"
	"github.com/yuzvak/resale-backoffice/internal/mocks"
	"github.com/yuzvak/resale-backoffice/internal/pkg/clock"
	"github.com/yuzvak/resale-backoffice/internal/pkg/generator"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

const station = "front"

type fixture struct {
	store     ports.Store
	clock     *clock.MockClock
	publisher *mocks.MockEventPublisher
	inventory *InventoryUseCase
	ledger    *LedgerUseCase
	confirm   *ConfirmationUseCase
	query     *QueryUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "uc.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sqlstore.Open(context.Background(), config.DatabaseConfig{Driver: config.DriverSQLite, DSN: dsn})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := sqlstore.NewStore(db)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return newFixtureWithStore(t, store, locking.NewLocalLocker(time.Second))
}

func newFixtureWithStore(t *testing.T, store ports.Store, locker ports.LedgerLocker) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	clk := clock.NewMockClock(time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC))
	ids := generator.NewCodeGenerator()
	log := logger.NewNopLogger()
	publisher := mocks.NewMockEventPublisher(ctrl)

	inv := NewInventoryUseCase(store, clk, ids, log, 100)
	confirm := NewConfirmationUseCase(store, locker, publisher, clk, ids, log, 3)
	confirm.retryInterval = time.Millisecond

	return &fixture{
		store:     store,
		clock:     clk,
		publisher: publisher,
		inventory: inv,
		ledger:    NewLedgerUseCase(store, locker, clk, ids, log),
		confirm:   confirm,
		query:     NewQueryUseCase(store, inv),
	}
}

func phone(price int64) inventory.Attributes {
	return inventory.Attributes{
		Name:         "iPhone 12",
		ReleaseModel: "A2403",
		Color:        "Blue",
		Price:        decimal.NewFromInt(price),
		SourceName:   "Rivera",
		SourcePhone:  "555-0199",
	}
}

func (f *fixture) intake(t *testing.T, serial string) *inventory.Item {
	t.Helper()
	items, err := f.inventory.Create(context.Background(), serial, phone(1000), 1)
	if err != nil {
		t.Fatalf("Create(%s): %v", serial, err)
	}
	return items[0]
}

func (f *fixture) status(t *testing.T, id string) inventory.Status {
	t.Helper()
	item, err := f.store.Inventory().GetItemByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetItemByID: %v", err)
	}
	return item.Status
}

func kind(err error) string {
	return domainErrors.KindOf(err)
}

func TestSellingScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// 1. intake one unit
	item := f.intake(t, "SN001")
	if item.Status != inventory.StatusInStock {
		t.Fatalf("status = %s, want in_stock", item.Status)
	}

	// 2. add it to the ledger at a different price
	line, err := f.ledger.Add(ctx, station, "SN001", decimal.NewFromInt(1200))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !line.SalePrice.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("sale price = %s", line.SalePrice)
	}
	if got := f.status(t, item.ID); got != inventory.StatusPending {
		t.Errorf("status = %s, want pending", got)
	}
	_, total, err := f.ledger.List(ctx, station)
	if err != nil || !total.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("List total = %s, err = %v", total, err)
	}

	// 3. adding it again conflicts
	if _, err := f.ledger.Add(ctx, station, "SN001", decimal.NewFromInt(1300)); !errors.Is(err, domainErrors.ErrItemAlreadyPending) {
		t.Errorf("second Add = %v, want ErrItemAlreadyPending", err)
	}

	// 4. confirm
	var published *sale.Sale
	f.publisher.EXPECT().PublishSaleConfirmed(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s *sale.Sale) error {
			published = s
			return nil
		}).Times(1)

	s, err := f.confirm.Confirm(ctx, station)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !s.Total.Equal(decimal.NewFromInt(1200)) || s.LineCount() != 1 {
		t.Errorf("sale = total %s lines %d", s.Total, s.LineCount())
	}
	if published == nil || published.ID != s.ID {
		t.Errorf("published sale = %+v", published)
	}
	if got := f.status(t, item.ID); got != inventory.StatusSold {
		t.Errorf("status = %s, want sold", got)
	}
	if lines, total, _ := f.ledger.List(ctx, station); len(lines) != 0 || !total.IsZero() {
		t.Errorf("ledger not empty: %d lines, total %s", len(lines), total)
	}

	// 5. a sold item cannot be removed or edited
	if err := f.inventory.Remove(ctx, item.ID); !errors.Is(err, domainErrors.ErrItemSold) {
		t.Errorf("Remove(sold) = %v, want ErrItemSold", err)
	}
	if _, err := f.inventory.Update(ctx, item.ID, "", phone(900)); kind(err) != domainErrors.KindConflict {
		t.Errorf("Update(sold) = %v, want conflict", err)
	}

	// 6. confirming an empty ledger is a validation error
	if _, err := f.confirm.Confirm(ctx, station); kind(err) != domainErrors.KindValidation {
		t.Errorf("Confirm(empty) = %v, want validation", err)
	}
	sales, err := f.query.ListSales(ctx, sale.Filter{})
	if err != nil || len(sales) != 1 {
		t.Errorf("ListSales = %d sales, err = %v", len(sales), err)
	}
}

func TestCreateWithQuantityUsesSerialPrefix(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	items, err := f.inventory.Create(ctx, "LOT", phone(200), 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	want := []string{"LOT-001", "LOT-002", "LOT-003"}
	for i, item := range items {
		if item.Serial != want[i] {
			t.Errorf("serial %d = %s, want %s", i, item.Serial, want[i])
		}
	}

	// A clash on any unit rejects the whole batch.
	if _, err := f.inventory.Create(ctx, "LOT-003", phone(200), 1); !errors.Is(err, domainErrors.ErrSerialTaken) {
		t.Errorf("duplicate Create = %v, want ErrSerialTaken", err)
	}
	f.intake(t, "BOX-002")
	if _, err := f.inventory.Create(ctx, "BOX", phone(200), 2); !errors.Is(err, domainErrors.ErrSerialTaken) {
		t.Errorf("clashing batch = %v, want ErrSerialTaken", err)
	}
	if _, err := f.inventory.LookupBySerial(ctx, "BOX-001"); !errors.Is(err, domainErrors.ErrItemNotFound) {
		t.Errorf("BOX-001 exists after rejected batch: %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name     string
		serial   string
		attrs    inventory.Attributes
		quantity int
		field    string
	}{
		{"zero quantity", "SN", phone(1), 0, "quantity"},
		{"quantity over cap", "SN", phone(1), 101, "quantity"},
		{"missing serial", "", phone(1), 1, "serial"},
		{"missing name", "SN", inventory.Attributes{ReleaseModel: "x", SourceName: "y"}, 1, "name"},
		{"negative price", "SN", inventory.Attributes{Name: "a", ReleaseModel: "b", SourceName: "c", Price: decimal.NewFromInt(-1)}, 1, "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.inventory.Create(ctx, tt.serial, tt.attrs, tt.quantity)
			var verr *domainErrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("fields = %v, want %s", verr.Fields, tt.field)
			}
		})
	}
}

func TestUpdateRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.intake(t, "UPD-1")

	if _, err := f.inventory.Update(ctx, item.ID, "OTHER", phone(1)); kind(err) != domainErrors.KindValidation {
		t.Errorf("serial change = %v, want validation", err)
	}
	if _, err := f.inventory.Update(ctx, "missing", "", phone(1)); !errors.Is(err, domainErrors.ErrItemNotFound) {
		t.Errorf("missing id = %v, want ErrItemNotFound", err)
	}

	attrs := phone(750)
	attrs.Remarks = "  cracked back  "
	updated, err := f.inventory.Update(ctx, item.ID, "UPD-1", attrs)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Remarks != "cracked back" || !updated.Price.Equal(decimal.NewFromInt(750)) {
		t.Errorf("updated = %+v", updated.Attributes)
	}

	// Pending items stay editable.
	if _, err := f.ledger.Add(ctx, station, "UPD-1", decimal.NewFromInt(900)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := f.inventory.Update(ctx, item.ID, "", phone(760)); err != nil {
		t.Errorf("Update(pending) = %v", err)
	}
	if err := f.inventory.Remove(ctx, item.ID); !errors.Is(err, domainErrors.ErrItemPending) {
		t.Errorf("Remove(pending) = %v, want ErrItemPending", err)
	}
}

func TestLedgerRemoveRestoresStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.intake(t, "RM-1")

	line, err := f.ledger.Add(ctx, station, "RM-1", decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := f.ledger.Remove(ctx, "back", line.ID); !errors.Is(err, domainErrors.ErrLineNotFound) {
		t.Errorf("Remove from other station = %v, want ErrLineNotFound", err)
	}
	if err := f.ledger.Remove(ctx, station, line.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := f.status(t, item.ID); got != inventory.StatusInStock {
		t.Errorf("status = %s, want in_stock", got)
	}
	if err := f.ledger.Remove(ctx, station, line.ID); !errors.Is(err, domainErrors.ErrLineNotFound) {
		t.Errorf("second Remove = %v, want ErrLineNotFound", err)
	}

	if _, err := f.ledger.Add(ctx, station, "nope", decimal.NewFromInt(1)); !errors.Is(err, domainErrors.ErrItemNotFound) {
		t.Errorf("Add(unknown) = %v, want ErrItemNotFound", err)
	}
	if _, err := f.ledger.Add(ctx, station, "RM-1", decimal.NewFromInt(-1)); kind(err) != domainErrors.KindValidation {
		t.Errorf("Add(negative) = %v, want validation", err)
	}
}

func TestConcurrentAddHasOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.intake(t, "RACE-1")

	stations := []string{"s1", "s2", "s3", "s4"}
	errs := make([]error, len(stations))
	var wg sync.WaitGroup
	for i, st := range stations {
		wg.Add(1)
		go func(i int, st string) {
			defer wg.Done()
			_, errs[i] = f.ledger.Add(ctx, st, "RACE-1", decimal.NewFromInt(10))
		}(i, st)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case kind(err) != domainErrors.KindConflict:
			t.Errorf("loser got %v, want conflict", err)
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want 1", wins)
	}
	if got := f.status(t, item.ID); got != inventory.StatusPending {
		t.Errorf("status = %s, want pending", got)
	}
}

func TestConfirmIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.intake(t, "AON-1")
	b := f.intake(t, "AON-2")

	for _, serial := range []string{"AON-1", "AON-2"} {
		if _, err := f.ledger.Add(ctx, station, serial, decimal.NewFromInt(100)); err != nil {
			t.Fatalf("Add(%s): %v", serial, err)
		}
	}

	// Another path puts b back in stock behind the ledger's back.
	if err := f.inventory.SetStatus(ctx, b.ID, inventory.StatusPending, inventory.StatusInStock); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	f.publisher.EXPECT().PublishSaleConfirmed(gomock.Any(), gomock.Any()).Times(0)

	_, err := f.confirm.Confirm(ctx, station)
	if !errors.Is(err, domainErrors.ErrLedgerChanged) {
		t.Fatalf("Confirm = %v, want ErrLedgerChanged", err)
	}

	if got := f.status(t, a.ID); got != inventory.StatusPending {
		t.Errorf("a status = %s, want pending", got)
	}
	if lines, _, _ := f.ledger.List(ctx, station); len(lines) != 2 {
		t.Errorf("ledger has %d lines, want 2", len(lines))
	}
	if sales, _ := f.query.ListSales(ctx, sale.Filter{}); len(sales) != 0 {
		t.Errorf("%d sales recorded, want 0", len(sales))
	}
}

func TestConcurrentConfirmHasOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, serial := range []string{"CC-1", "CC-2"} {
		f.intake(t, serial)
		if _, err := f.ledger.Add(ctx, station, serial, decimal.NewFromInt(100)); err != nil {
			t.Fatalf("Add(%s): %v", serial, err)
		}
	}

	f.publisher.EXPECT().PublishSaleConfirmed(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	const workers = 4
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.confirm.Confirm(ctx, station)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case !errors.Is(err, domainErrors.ErrLedgerEmpty):
			t.Errorf("loser got %v, want ErrLedgerEmpty", err)
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want 1", wins)
	}

	sales, err := f.query.ListSales(ctx, sale.Filter{})
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	if len(sales) != 1 || sales[0].LineCount() != 2 {
		t.Errorf("sales = %+v, want one sale with two lines", sales)
	}
}

// cancellingStore cancels the caller's context inside the transaction, just
// before the sale is written.
type cancellingStore struct {
	ports.Store
	cancel context.CancelFunc
}

func (s *cancellingStore) BeginTx(ctx context.Context) (ports.Store, error) {
	tx, err := s.Store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return &cancellingTx{Store: tx, cancel: s.cancel}, nil
}

type cancellingTx struct {
	ports.Store
	cancel context.CancelFunc
}

func (tx *cancellingTx) Sales() ports.SaleRepository {
	tx.cancel()
	return tx.Store.Sales()
}

func TestCancelledConfirmLeavesLedgerIntact(t *testing.T) {
	base := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newFixtureWithStore(t, &cancellingStore{Store: base.store, cancel: cancel}, locking.NewLocalLocker(time.Second))
	item := f.intake(t, "CX-1")
	if _, err := f.ledger.Add(context.Background(), station, "CX-1", decimal.NewFromInt(10)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	f.publisher.EXPECT().PublishSaleConfirmed(gomock.Any(), gomock.Any()).Times(0)

	if _, err := f.confirm.Confirm(ctx, station); err == nil {
		t.Fatalf("Confirm succeeded after its context was cancelled")
	}

	bg := context.Background()
	if got := f.status(t, item.ID); got != inventory.StatusPending {
		t.Errorf("status = %s, want pending", got)
	}
	if lines, _, _ := f.ledger.List(bg, station); len(lines) != 1 {
		t.Errorf("ledger has %d lines, want 1", len(lines))
	}
	if sales, _ := f.query.ListSales(bg, sale.Filter{}); len(sales) != 0 {
		t.Errorf("%d sales recorded, want 0", len(sales))
	}
}

func TestSetStatusRejectsUnlistedTransition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.intake(t, "TR-1")

	if err := f.inventory.SetStatus(ctx, item.ID, inventory.StatusInStock, inventory.StatusSold); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Errorf("in_stock->sold = %v, want ErrInvalidTransition", err)
	}
	if err := f.inventory.SetStatus(ctx, "missing", inventory.StatusInStock, inventory.StatusPending); !errors.Is(err, domainErrors.ErrItemNotFound) {
		t.Errorf("missing id = %v, want ErrItemNotFound", err)
	}
	if err := f.inventory.SetStatus(ctx, item.ID, inventory.StatusPending, inventory.StatusSold); !errors.Is(err, domainErrors.ErrStatusChanged) {
		t.Errorf("stale from = %v, want ErrStatusChanged", err)
	}
}

// flakyStore fails the first n transactions the way a dropped connection would.
type flakyStore struct {
	ports.Store
	mu       sync.Mutex
	failures int
}

func (s *flakyStore) BeginTx(ctx context.Context) (ports.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("connection reset by peer")
	}
	return s.Store.BeginTx(ctx)
}

func (s *flakyStore) fail(n int) {
	s.mu.Lock()
	s.failures = n
	s.mu.Unlock()
}

func TestConfirmRetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	base := newFixture(t)
	flaky := &flakyStore{Store: base.store}
	f := newFixtureWithStore(t, flaky, locking.NewLocalLocker(time.Second))

	f.intake(t, "RT-1")
	if _, err := f.ledger.Add(ctx, station, "RT-1", decimal.NewFromInt(10)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	flaky.fail(5)
	if _, err := f.confirm.Confirm(ctx, station); !domainErrors.IsTransient(err) {
		t.Fatalf("Confirm = %v, want transient", err)
	}
	if lines, _, _ := f.ledger.List(ctx, station); len(lines) != 1 {
		t.Fatalf("ledger changed after failed confirm: %d lines", len(lines))
	}

	flaky.fail(2)
	f.publisher.EXPECT().PublishSaleConfirmed(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	if _, err := f.confirm.Confirm(ctx, station); err != nil {
		t.Fatalf("Confirm after two failures: %v", err)
	}
}

func TestConfirmPublishFailureDoesNotUndoSale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.intake(t, "PUB-1")
	if _, err := f.ledger.Add(ctx, station, "PUB-1", decimal.NewFromInt(10)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	f.publisher.EXPECT().PublishSaleConfirmed(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	s, err := f.confirm.Confirm(ctx, station)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if _, err := f.query.GetSale(ctx, s.ID); err != nil {
		t.Errorf("GetSale: %v", err)
	}
	if got := f.status(t, item.ID); got != inventory.StatusSold {
		t.Errorf("status = %s, want sold", got)
	}
}

func TestBusyLedgerIsTransient(t *testing.T) {
	ctx := context.Background()
	base := newFixture(t)

	ctrl := gomock.NewController(t)
	locker := mocks.NewMockLedgerLocker(ctrl)
	locker.EXPECT().Lock(gomock.Any(), station).Return(nil, domainErrors.ErrLedgerBusy).Times(2)

	f := newFixtureWithStore(t, base.store, locker)
	f.intake(t, "BUSY-1")

	if _, err := f.ledger.Add(ctx, station, "BUSY-1", decimal.NewFromInt(1)); !domainErrors.IsTransient(err) {
		t.Errorf("Add = %v, want transient", err)
	}
	if _, err := f.confirm.Confirm(ctx, station); !errors.Is(err, domainErrors.ErrLedgerBusy) {
		t.Errorf("Confirm = %v, want ErrLedgerBusy", err)
	}
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.publisher.EXPECT().PublishSaleConfirmed(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	for _, serial := range []string{"Q-1", "Q-2", "Q-3"} {
		f.intake(t, serial)
	}
	for _, serial := range []string{"Q-1", "Q-2"} {
		if _, err := f.ledger.Add(ctx, station, serial, decimal.NewFromInt(10)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	first, err := f.confirm.Confirm(ctx, station)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	f.clock.Advance(time.Hour)
	if _, err := f.ledger.Add(ctx, "back", "Q-3", decimal.NewFromInt(20)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	second, err := f.confirm.Confirm(ctx, "back")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	sales, err := f.query.ListSales(ctx, sale.Filter{})
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	if len(sales) != 2 || sales[0].ID != second.ID || sales[1].ID != first.ID {
		t.Errorf("ListSales order wrong: %v", sales)
	}

	got, err := f.query.GetSale(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	if len(got.Lines) != 2 || got.Lines[0].Serial != "Q-1" {
		t.Errorf("GetSale lines = %+v", got.Lines)
	}
	if _, err := f.query.GetSale(ctx, ""); !errors.Is(err, domainErrors.ErrSaleNotFound) {
		t.Errorf("GetSale(\"\") = %v", err)
	}

	counts, err := f.query.StockCounts(ctx)
	if err != nil {
		t.Fatalf("StockCounts: %v", err)
	}
	if counts[inventory.StatusSold] != 3 || counts[inventory.StatusInStock] != 0 || counts[inventory.StatusPending] != 0 {
		t.Errorf("counts = %v", counts)
	}

	if _, err := f.query.ListItems(ctx, inventory.Filter{Status: "broken"}); kind(err) != domainErrors.KindValidation {
		t.Errorf("ListItems(bad status) = %v", err)
	}
	items, err := f.query.ListItems(ctx, inventory.Filter{Query: "q-"})
	if err != nil || len(items) != 3 {
		t.Errorf("ListItems = %d items, err %v", len(items), err)
	}
}
