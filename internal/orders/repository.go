package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"swaad-chat/internal/models"
)

var ErrOrderNotFound = errors.New("order not found")

// Repository persists placed orders.
type Repository interface {
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
}

// MemoryRepository keeps orders for the life of the process. It backs the
// checkout flow when orders.persist is off.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]models.Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[string]models.Order)}
}

func (r *MemoryRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("order %s already exists", order.ID)
	}
	r.orders[order.ID] = *order
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &order, nil
}

const (
	insertOrder = `
		INSERT INTO orders (
			id, session_id, items, total, delivery_address,
			payment_method, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	selectOrder = `
		SELECT id, session_id, items, total, delivery_address,
		       payment_method, status, created_at
		FROM orders
		WHERE id = $1`
)

// PostgresRepository stores items and delivery_address as JSONB.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, order *models.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	addressJSON, err := json.Marshal(order.DeliveryAddress)
	if err != nil {
		return fmt.Errorf("marshal delivery address: %w", err)
	}

	_, err = r.db.ExecContext(ctx, insertOrder,
		order.ID,
		order.SessionID,
		itemsJSON,
		order.Total,
		addressJSON,
		order.PaymentMethod,
		string(order.Status),
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	var (
		order       models.Order
		sessionID   sql.NullString
		itemsJSON   []byte
		addressJSON []byte
		status      string
	)
	err := r.db.QueryRowContext(ctx, selectOrder, id).Scan(
		&order.ID,
		&sessionID,
		&itemsJSON,
		&order.Total,
		&addressJSON,
		&order.PaymentMethod,
		&status,
		&order.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("decode items for %s: %w", id, err)
	}
	if err := json.Unmarshal(addressJSON, &order.DeliveryAddress); err != nil {
		return nil, fmt.Errorf("decode delivery address for %s: %w", id, err)
	}
	order.SessionID = sessionID.String
	order.Status = models.OrderStatus(status)
	return &order, nil
}
