package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"ooru-foods/models"
	"ooru-foods/repositories"

	"github.com/stretchr/testify/require"
)

var errRemoteDown = errors.New("connection refused")

type fakeRemote struct {
	mu     sync.Mutex
	rows   map[string][]models.CartRow
	nextID int
	fail   bool
	calls  int

	// racing is inserted by "another writer" just before the next Insert,
	// which then fails with ErrConflict.
	racing *models.CartRow
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{rows: map[string][]models.CartRow{}}
}

func (f *fakeRemote) enter() error {
	f.calls++
	if f.fail {
		return errRemoteDown
	}
	return nil
}

func (f *fakeRemote) seed(sessionID string, productID, quantity int) models.CartRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	row := models.CartRow{ID: fmt.Sprintf("r-%d", f.nextID), SessionID: sessionID, ProductID: productID, Quantity: quantity}
	f.rows[sessionID] = append(f.rows[sessionID], row)
	return row
}

func (f *fakeRemote) List(ctx context.Context, sessionID string) ([]models.CartRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(); err != nil {
		return nil, err
	}
	out := append([]models.CartRow{}, f.rows[sessionID]...)
	return out, nil
}

func (f *fakeRemote) FindByProduct(ctx context.Context, sessionID string, productID int) (*models.CartRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(); err != nil {
		return nil, err
	}
	for _, r := range f.rows[sessionID] {
		if r.ProductID == productID {
			row := r
			return &row, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRemote) Insert(ctx context.Context, row models.CartRow) (models.CartRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(); err != nil {
		return models.CartRow{}, err
	}
	if f.racing != nil {
		other := *f.racing
		f.racing = nil
		f.nextID++
		other.ID = fmt.Sprintf("r-%d", f.nextID)
		f.rows[other.SessionID] = append(f.rows[other.SessionID], other)
		return models.CartRow{}, models.ErrConflict
	}
	f.nextID++
	row.ID = fmt.Sprintf("r-%d", f.nextID)
	f.rows[row.SessionID] = append(f.rows[row.SessionID], row)
	return row, nil
}

func (f *fakeRemote) UpdateQuantity(ctx context.Context, sessionID, id string, quantity int) (models.CartRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(); err != nil {
		return models.CartRow{}, err
	}
	rows := f.rows[sessionID]
	for i := range rows {
		if rows[i].ID == id {
			rows[i].Quantity = quantity
			return rows[i], nil
		}
	}
	return models.CartRow{}, models.ErrNotFound
}

func (f *fakeRemote) Delete(ctx context.Context, sessionID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(); err != nil {
		return err
	}
	rows := f.rows[sessionID]
	for i := range rows {
		if rows[i].ID == id {
			f.rows[sessionID] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (f *fakeRemote) Clear(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(); err != nil {
		return err
	}
	delete(f.rows, sessionID)
	return nil
}

func (f *fakeRemote) snapshot(sessionID string) []models.CartRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]models.CartRow{}, f.rows[sessionID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

type fakeOrders struct {
	mu     sync.Mutex
	orders []*models.Order
	fail   bool
	calls  int
}

func (f *fakeOrders) Create(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return errRemoteDown
	}
	order.ID = len(f.orders) + 1
	f.orders = append(f.orders, order)
	return nil
}

type fakeCatalog struct {
	products map[int]models.Product
	calls    int
}

func newFakeCatalog(products ...models.Product) *fakeCatalog {
	c := &fakeCatalog{products: map[int]models.Product{}}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (f *fakeCatalog) GetBatch(ctx context.Context, ids []int) ([]models.Product, error) {
	f.calls++
	out := []models.Product{}
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeMailer struct {
	to    string
	order int
	total float64
	items int
}

func (f *fakeMailer) SendOrderConfirmation(toEmail string, orderID int, total float64, items []models.CartItem) error {
	f.to, f.order, f.total, f.items = toEmail, orderID, total, len(items)
	return nil
}

func openLocal(t *testing.T) *repositories.LocalCartRepository {
	t.Helper()
	local, err := repositories.OpenLocalCartRepository(filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })
	return local
}

var (
	idli   = models.Product{ID: 1, Name: "Podi Idli", Price: 100, Category: "breakfast"}
	dosa   = models.Product{ID: 2, Name: "Ghee Roast Dosa", Price: 250.5, Category: "breakfast"}
	vada   = models.Product{ID: 3, Name: "Medu Vada", Price: 60, Category: "snacks"}
	testID = "session-0001"
)

type harness struct {
	remote  *fakeRemote
	local   *repositories.LocalCartRepository
	orders  *fakeOrders
	catalog *fakeCatalog
	store   *CartStore
	carts   *CartService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		remote:  newFakeRemote(),
		local:   openLocal(t),
		orders:  &fakeOrders{},
		catalog: newFakeCatalog(idli, dosa, vada),
	}
	h.store = NewCartStore(h.remote, h.local, h.orders)
	h.carts = NewCartService(h.store, h.catalog, time.Hour)
	return h
}
