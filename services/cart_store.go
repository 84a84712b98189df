package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"ooru-foods/models"

	"github.com/google/uuid"
)

// CartStore persists cart rows to the remote table and degrades to the local
// store whenever a remote call fails. The backend that served the latest
// call for a session is tracked and reported with every result.
type CartStore struct {
	remote RemoteCartStore
	local  LocalCartStore
	orders OrderStore

	mu     sync.RWMutex
	active map[string]models.Backend

	now func() time.Time
}

func NewCartStore(remote RemoteCartStore, local LocalCartStore, orders OrderStore) *CartStore {
	return &CartStore{
		remote: remote,
		local:  local,
		orders: orders,
		active: map[string]models.Backend{},
		now:    time.Now,
	}
}

func (s *CartStore) setActive(sessionID string, backend models.Backend) {
	s.mu.Lock()
	s.active[sessionID] = backend
	s.mu.Unlock()
}

// ActiveBackend reports the backend that served the last call for the session.
func (s *CartStore) ActiveBackend(sessionID string) models.Backend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.active[sessionID]; ok {
		return b
	}
	return models.BackendRemote
}

func (s *CartStore) fallback(ctx context.Context, op, sessionID string, err error) {
	if errors.Is(err, models.ErrNotFound) {
		slog.DebugContext(ctx, "row not in remote cart, trying local store", "op", op, "session_id", sessionID)
		return
	}
	slog.WarnContext(ctx, "remote cart call failed, using local store",
		"op", op, "session_id", sessionID, "error", err)
}

func (s *CartStore) List(ctx context.Context, sessionID string) ([]models.CartRow, models.Backend, error) {
	rows, err := s.remote.List(ctx, sessionID)
	if err == nil {
		s.setActive(sessionID, models.BackendRemote)
		return rows, models.BackendRemote, nil
	}
	s.fallback(ctx, "list", sessionID, err)

	rows, err = s.local.Load(ctx, sessionID)
	if err != nil {
		return nil, models.BackendLocal, fmt.Errorf("failed to read local cart: %w", err)
	}
	s.setActive(sessionID, models.BackendLocal)
	return rows, models.BackendLocal, nil
}

// ListFrom reads rows from one specific backend without falling back.
func (s *CartStore) ListFrom(ctx context.Context, sessionID string, backend models.Backend) ([]models.CartRow, error) {
	if backend == models.BackendLocal {
		return s.local.Load(ctx, sessionID)
	}
	return s.remote.List(ctx, sessionID)
}

func (s *CartStore) Add(ctx context.Context, sessionID string, productID, quantity int) (models.CartRow, models.Backend, error) {
	if quantity < 1 {
		quantity = 1
	}

	row, err := s.addRemote(ctx, sessionID, productID, quantity)
	if err == nil {
		s.setActive(sessionID, models.BackendRemote)
		return row, models.BackendRemote, nil
	}
	s.fallback(ctx, "add", sessionID, err)

	row, err = s.addLocal(ctx, sessionID, productID, quantity)
	if err != nil {
		return row, models.BackendLocal, err
	}
	s.setActive(sessionID, models.BackendLocal)
	return row, models.BackendLocal, nil
}

func (s *CartStore) addRemote(ctx context.Context, sessionID string, productID, quantity int) (models.CartRow, error) {
	existing, err := s.remote.FindByProduct(ctx, sessionID, productID)
	switch {
	case err == nil:
		return s.remote.UpdateQuantity(ctx, sessionID, existing.ID, existing.Quantity+quantity)
	case !errors.Is(err, models.ErrNotFound):
		return models.CartRow{}, err
	}

	row, err := s.remote.Insert(ctx, models.CartRow{SessionID: sessionID, ProductID: productID, Quantity: quantity})
	if errors.Is(err, models.ErrConflict) {
		// A concurrent add created the row between the lookup and the insert.
		existing, err := s.remote.FindByProduct(ctx, sessionID, productID)
		if err != nil {
			return models.CartRow{}, err
		}
		return s.remote.UpdateQuantity(ctx, sessionID, existing.ID, existing.Quantity+quantity)
	}
	if err != nil {
		return row, err
	}
	if row.ID == "" {
		row.ID = "temp-" + uuid.NewString()
	}
	return row, nil
}

func (s *CartStore) addLocal(ctx context.Context, sessionID string, productID, quantity int) (models.CartRow, error) {
	rows, err := s.local.Load(ctx, sessionID)
	if err != nil {
		return models.CartRow{}, fmt.Errorf("failed to read local cart: %w", err)
	}

	idx := indexOfProduct(rows, productID)
	if idx >= 0 {
		rows[idx].Quantity += quantity
	} else {
		rows = append(rows, models.CartRow{
			ID:        s.localID(rows),
			SessionID: sessionID,
			ProductID: productID,
			Quantity:  quantity,
		})
		idx = len(rows) - 1
	}

	if err := s.local.Save(ctx, sessionID, rows); err != nil {
		return models.CartRow{}, fmt.Errorf("failed to write local cart: %w", err)
	}
	return rows[idx], nil
}

// localID returns local-<unix millis>, bumped until unique within rows.
func (s *CartStore) localID(rows []models.CartRow) string {
	ms := s.now().UnixMilli()
	for {
		id := "local-" + strconv.FormatInt(ms, 10)
		if indexOfID(rows, id) < 0 {
			return id
		}
		ms++
	}
}

// Update sets the quantity of a row; a quantity of zero or less deletes it.
func (s *CartStore) Update(ctx context.Context, sessionID, id string, quantity int) (models.CartRow, models.Backend, error) {
	if quantity <= 0 {
		backend, err := s.Delete(ctx, sessionID, id)
		return models.CartRow{}, backend, err
	}

	row, err := s.remote.UpdateQuantity(ctx, sessionID, id, quantity)
	if err == nil {
		s.setActive(sessionID, models.BackendRemote)
		return row, models.BackendRemote, nil
	}
	s.fallback(ctx, "update", sessionID, err)

	rows, err := s.local.Load(ctx, sessionID)
	if err != nil {
		return models.CartRow{}, models.BackendLocal, fmt.Errorf("failed to read local cart: %w", err)
	}
	idx := indexOfID(rows, id)
	if idx < 0 {
		return models.CartRow{}, models.BackendLocal, fmt.Errorf("cart item %s: %w", id, models.ErrNotFound)
	}
	rows[idx].Quantity = quantity
	if err := s.local.Save(ctx, sessionID, rows); err != nil {
		return models.CartRow{}, models.BackendLocal, fmt.Errorf("failed to write local cart: %w", err)
	}
	s.setActive(sessionID, models.BackendLocal)
	return rows[idx], models.BackendLocal, nil
}

func (s *CartStore) Delete(ctx context.Context, sessionID, id string) (models.Backend, error) {
	err := s.remote.Delete(ctx, sessionID, id)
	if err == nil {
		s.setActive(sessionID, models.BackendRemote)
		return models.BackendRemote, nil
	}
	s.fallback(ctx, "delete", sessionID, err)

	rows, err := s.local.Load(ctx, sessionID)
	if err != nil {
		return models.BackendLocal, fmt.Errorf("failed to read local cart: %w", err)
	}
	idx := indexOfID(rows, id)
	if idx < 0 {
		return models.BackendLocal, fmt.Errorf("cart item %s: %w", id, models.ErrNotFound)
	}
	rows = append(rows[:idx], rows[idx+1:]...)
	if err := s.local.Save(ctx, sessionID, rows); err != nil {
		return models.BackendLocal, fmt.Errorf("failed to write local cart: %w", err)
	}
	s.setActive(sessionID, models.BackendLocal)
	return models.BackendLocal, nil
}

// Clear is best-effort and never fails. A successful remote clear also drops
// any local rows so a later flush cannot resurrect them.
func (s *CartStore) Clear(ctx context.Context, sessionID string) models.Backend {
	backend := models.BackendRemote
	if err := s.remote.Clear(ctx, sessionID); err != nil {
		s.fallback(ctx, "clear", sessionID, err)
		backend = models.BackendLocal
	}
	if err := s.local.Remove(ctx, sessionID); err != nil {
		slog.WarnContext(ctx, "failed to clear local cart", "session_id", sessionID, "error", err)
	}
	s.setActive(sessionID, backend)
	return backend
}

// CreateOrder records a paid order. It has no local fallback: failures are
// returned to the caller.
func (s *CartStore) CreateOrder(ctx context.Context, sessionID string, items []models.OrderItem, total float64) (*models.Order, error) {
	order := &models.Order{
		SessionID:   sessionID,
		TotalAmount: total,
		Status:      models.OrderStatusConfirmed,
		Items:       items,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	return order, nil
}

// PendingSessions lists sessions holding rows in the local store.
func (s *CartStore) PendingSessions(ctx context.Context) ([]string, error) {
	return s.local.Sessions(ctx)
}

// Flush pushes local-only rows to the remote table. When a product exists in
// both stores the remote row wins. The local rows are discarded once every
// local-only product has been written. Returns the number of rows inserted.
func (s *CartStore) Flush(ctx context.Context, sessionID string) (int, error) {
	localRows, err := s.local.Load(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to read local cart: %w", err)
	}
	if len(localRows) == 0 {
		return 0, s.local.Remove(ctx, sessionID)
	}

	remoteRows, err := s.remote.List(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrBackendUnavailable, err)
	}

	inserted := 0
	for _, row := range localRows {
		if indexOfProduct(remoteRows, row.ProductID) >= 0 {
			continue
		}
		_, err := s.remote.Insert(ctx, models.CartRow{SessionID: sessionID, ProductID: row.ProductID, Quantity: row.Quantity})
		if errors.Is(err, models.ErrConflict) {
			continue
		}
		if err != nil {
			return inserted, fmt.Errorf("%w: %v", models.ErrBackendUnavailable, err)
		}
		inserted++
	}

	if err := s.local.Remove(ctx, sessionID); err != nil {
		return inserted, fmt.Errorf("failed to discard local cart: %w", err)
	}
	s.setActive(sessionID, models.BackendRemote)
	slog.InfoContext(ctx, "local cart flushed to remote", "session_id", sessionID, "inserted", inserted)
	return inserted, nil
}

func indexOfProduct(rows []models.CartRow, productID int) int {
	for i, r := range rows {
		if r.ProductID == productID {
			return i
		}
	}
	return -1
}

func indexOfID(rows []models.CartRow, id string) int {
	for i, r := range rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}
