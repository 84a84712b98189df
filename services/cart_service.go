package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"ooru-foods/models"

	"github.com/google/uuid"
)

const (
	noticeStaleCart   = "Your cart referenced products that are no longer available and has been cleared"
	noticeOrderPlaced = "Order placed successfully"
)

// Cart is the reconciled state of one session. Count and Total are memoized
// on the items revision.
type Cart struct {
	mu sync.Mutex

	loaded   bool
	lastUsed time.Time
	items    []models.CartItem
	revision uint64
	backend  models.Backend
	notices  []string

	aggRevision  uint64
	aggValid     bool
	count        int
	total        float64
	computations int
}

func (c *Cart) setItems(items []models.CartItem) {
	if items == nil {
		items = []models.CartItem{}
	}
	c.items = items
	c.revision++
	c.loaded = true
}

func (c *Cart) aggregates() (int, float64) {
	if c.aggValid && c.aggRevision == c.revision {
		return c.count, c.total
	}

	count, total := 0, 0.0
	for _, item := range c.items {
		count += item.Quantity
		if item.Product != nil {
			total += item.Product.Price * float64(item.Quantity)
		}
	}
	c.count, c.total = count, roundMoney(total)
	c.aggRevision, c.aggValid = c.revision, true
	c.computations++
	return c.count, c.total
}

func (c *Cart) view() *models.CartView {
	count, total := c.aggregates()
	items := make([]models.CartItem, len(c.items))
	copy(items, c.items)

	v := &models.CartView{
		Items:     items,
		CartCount: count,
		Total:     total,
		Backend:   c.backend,
		Notices:   c.notices,
	}
	c.notices = nil
	return v
}

func (c *Cart) notify(msg string) {
	c.notices = append(c.notices, msg)
}

// DefaultCartIdleTTL is how long an untouched session stays cached.
const DefaultCartIdleTTL = 30 * time.Minute

// CartService owns the cart state of every active session. It is constructed
// once and sessions are brought up with Init and released with Dispose or
// once they sit idle for longer than idleTTL.
type CartService struct {
	store   *CartStore
	catalog ProductBatcher
	idleTTL time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	carts map[string]*Cart
}

func NewCartService(store *CartStore, catalog ProductBatcher, idleTTL time.Duration) *CartService {
	if idleTTL <= 0 {
		idleTTL = DefaultCartIdleTTL
	}
	return &CartService{
		store:   store,
		catalog: catalog,
		idleTTL: idleTTL,
		now:     time.Now,
		carts:   map[string]*Cart{},
	}
}

func (s *CartService) cart(sessionID string) *Cart {
	s.mu.RLock()
	c, ok := s.carts[sessionID]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok = s.carts[sessionID]; !ok {
		c = &Cart{}
		s.carts[sessionID] = c
	}
	return c
}

// acquire returns the session's cart locked and marked as used.
func (s *CartService) acquire(sessionID string) *Cart {
	c := s.cart(sessionID)
	c.mu.Lock()
	c.lastUsed = s.now()
	return c
}

// EvictIdle drops carts not used within the idle TTL and returns how many
// were dropped. Carts busy with a request are skipped.
func (s *CartService) EvictIdle() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, c := range s.carts {
		if !c.mu.TryLock() {
			continue
		}
		if c.lastUsed.Before(cutoff) {
			delete(s.carts, id)
			evicted++
		}
		c.mu.Unlock()
	}
	return evicted
}

// Active reports how many sessions are cached.
func (s *CartService) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}

// Init loads and reconciles the session's cart, replacing any cached state.
func (s *CartService) Init(ctx context.Context, sessionID string) (*models.CartView, error) {
	c := s.acquire(sessionID)
	defer c.mu.Unlock()

	if err := s.load(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return c.view(), nil
}

func (s *CartService) Dispose(sessionID string) {
	s.mu.Lock()
	delete(s.carts, sessionID)
	s.mu.Unlock()
}

// Get returns the cached view, loading the cart first if needed.
func (s *CartService) Get(ctx context.Context, sessionID string) (*models.CartView, error) {
	c := s.acquire(sessionID)
	defer c.mu.Unlock()

	if !c.loaded {
		if err := s.load(ctx, sessionID, c); err != nil {
			return nil, err
		}
	}
	return c.view(), nil
}

func (s *CartService) load(ctx context.Context, sessionID string, c *Cart) error {
	rows, backend, err := s.store.List(ctx, sessionID)
	if err != nil {
		return err
	}
	c.backend = backend
	return s.reconcile(ctx, sessionID, c, rows)
}

// reconcile attaches live products to raw rows. A cart whose products have all
// vanished is cleared; individual orphans are dropped with a single notice.
func (s *CartService) reconcile(ctx context.Context, sessionID string, c *Cart, rows []models.CartRow) error {
	if len(rows) == 0 {
		c.setItems(nil)
		return nil
	}

	seen := map[int]bool{}
	ids := []int{}
	for _, row := range rows {
		if !seen[row.ProductID] {
			seen[row.ProductID] = true
			ids = append(ids, row.ProductID)
		}
	}

	products, err := s.catalog.GetBatch(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load cart products: %w", err)
	}

	lookup := make(map[int]models.Product, len(products))
	for _, p := range products {
		lookup[p.ID] = p
	}

	if len(lookup) == 0 {
		slog.WarnContext(ctx, "cart references no known products, clearing", "session_id", sessionID, "rows", len(rows))
		c.backend = s.store.Clear(ctx, sessionID)
		c.setItems(nil)
		c.notify(noticeStaleCart)
		return nil
	}

	items := make([]models.CartItem, 0, len(rows))
	missing := 0
	for _, row := range rows {
		product, ok := lookup[row.ProductID]
		if !ok {
			missing++
			if row.ID != "" {
				if _, err := s.store.Delete(ctx, sessionID, row.ID); err != nil {
					slog.WarnContext(ctx, "failed to remove orphaned cart row", "session_id", sessionID, "id", row.ID, "error", err)
				}
			}
			continue
		}

		id := row.ID
		if id == "" {
			id = "temp-" + uuid.NewString()
		}
		p := product
		items = append(items, models.CartItem{
			ID:        id,
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			Product:   &p,
		})
	}

	if missing > 0 {
		c.notify(fmt.Sprintf("%d products not found and removed", missing))
	}
	c.setItems(items)
	return nil
}

// refresh re-reads the rows from the backend that served the last write so
// the returned state is what was actually persisted.
func (s *CartService) refresh(ctx context.Context, sessionID string, c *Cart, backend models.Backend) (*models.CartView, error) {
	rows, err := s.store.ListFrom(ctx, sessionID, backend)
	if err != nil {
		rows, backend, err = s.store.List(ctx, sessionID)
		if err != nil {
			return nil, err
		}
	}
	c.backend = backend
	if err := s.reconcile(ctx, sessionID, c, rows); err != nil {
		return nil, err
	}
	return c.view(), nil
}

func (s *CartService) AddToCart(ctx context.Context, sessionID string, productID, quantity int) (*models.CartView, error) {
	c := s.acquire(sessionID)
	defer c.mu.Unlock()

	_, backend, err := s.store.Add(ctx, sessionID, productID, quantity)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, sessionID, c, backend)
}

func (s *CartService) RemoveFromCart(ctx context.Context, sessionID, id string) (*models.CartView, error) {
	c := s.acquire(sessionID)
	defer c.mu.Unlock()

	backend, err := s.store.Delete(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, sessionID, c, backend)
}

// UpdateQuantity with a quantity of zero or less removes the item.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, id string, quantity int) (*models.CartView, error) {
	c := s.acquire(sessionID)
	defer c.mu.Unlock()

	_, backend, err := s.store.Update(ctx, sessionID, id, quantity)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, sessionID, c, backend)
}

func (s *CartService) ClearCart(ctx context.Context, sessionID string) *models.CartView {
	c := s.acquire(sessionID)
	defer c.mu.Unlock()

	c.backend = s.store.Clear(ctx, sessionID)
	c.setItems(nil)
	return c.view()
}

// Flush pushes local-only rows upstream and reloads the session if it is active.
func (s *CartService) Flush(ctx context.Context, sessionID string) (*models.CartView, error) {
	c := s.acquire(sessionID)
	defer c.mu.Unlock()

	if _, err := s.store.Flush(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := s.load(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return c.view(), nil
}

// PricingFunc turns the cart subtotal into the amount charged for the order.
type PricingFunc func(subtotal float64) (float64, error)

type CheckoutResult struct {
	Order    *models.Order
	Items    []models.CartItem
	Subtotal float64
	Notices  []string
}

// Checkout places an order for the persisted items and clears the cart. A
// cart already known to be empty fails with ErrEmptyCart without touching the
// store. When order creation fails the cart is left untouched.
func (s *CartService) Checkout(ctx context.Context, sessionID string, pricing PricingFunc) (*CheckoutResult, error) {
	c := s.acquire(sessionID)
	defer c.mu.Unlock()

	if c.loaded && len(c.items) == 0 {
		return nil, models.ErrEmptyCart
	}

	// Rows may have changed in another process since they were cached.
	if err := s.load(ctx, sessionID, c); err != nil {
		return nil, err
	}
	if len(c.items) == 0 {
		return nil, models.ErrEmptyCart
	}

	_, subtotal := c.aggregates()
	total := subtotal
	if pricing != nil {
		var err error
		if total, err = pricing(subtotal); err != nil {
			return nil, err
		}
	}

	orderItems := make([]models.OrderItem, 0, len(c.items))
	for _, item := range c.items {
		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Product.Price,
		})
	}

	order, err := s.store.CreateOrder(ctx, sessionID, orderItems, total)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "order placed", "session_id", sessionID, "order_id", order.ID, "total", total)

	purchased := make([]models.CartItem, len(c.items))
	copy(purchased, c.items)

	c.backend = s.store.Clear(ctx, sessionID)
	c.setItems(nil)

	notices := append(c.notices, noticeOrderPlaced)
	c.notices = nil

	return &CheckoutResult{
		Order:    order,
		Items:    purchased,
		Subtotal: subtotal,
		Notices:  notices,
	}, nil
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
