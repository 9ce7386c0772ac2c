package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrItemNotFound = errors.New("cart item not found")

// Store persists cart line items keyed by cart id. Adding an item whose line
// id already exists merges quantities (capped at MaxQuantity) rather than
// creating a duplicate row.
type Store interface {
	Add(ctx context.Context, cartID string, item LineItem) (LineItem, error)
	List(ctx context.Context, cartID string) ([]LineItem, error)
	Remove(ctx context.Context, cartID, lineID string) error
	Clear(ctx context.Context, cartID string) error
	Close() error
}

type Config struct {
	Provider string
	Pool     *pgxpool.Pool
}

func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryStore(), nil
	case "postgres":
		if cfg.Pool == nil {
			return nil, fmt.Errorf("postgres cart store requires a database pool")
		}
		return NewPostgresStore(ctx, cfg.Pool)
	default:
		return nil, fmt.Errorf("unsupported cart store provider: %s", cfg.Provider)
	}
}

// MemoryStore is the in-process store used by default and in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]map[string]LineItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[string]map[string]LineItem{}}
}

func (m *MemoryStore) Add(ctx context.Context, cartID string, item LineItem) (LineItem, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()

	lines, ok := m.carts[cartID]
	if !ok {
		lines = map[string]LineItem{}
		m.carts[cartID] = lines
	}

	if existing, ok := lines[item.ID]; ok {
		item.Quantity = mergeQuantities(existing.Quantity, item.Quantity)
	}
	lines[item.ID] = item
	return item, nil
}

func (m *MemoryStore) List(ctx context.Context, cartID string) ([]LineItem, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()

	lines := m.carts[cartID]
	items := make([]LineItem, 0, len(lines))
	for _, item := range lines {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *MemoryStore) Remove(ctx context.Context, cartID, lineID string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()

	lines, ok := m.carts[cartID]
	if !ok {
		return ErrItemNotFound
	}
	if _, ok := lines[lineID]; !ok {
		return ErrItemNotFound
	}
	delete(lines, lineID)
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context, cartID string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, cartID)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func mergeQuantities(existing, added int64) int64 {
	merged := existing + added
	if merged > MaxQuantity {
		return MaxQuantity
	}
	return merged
}
