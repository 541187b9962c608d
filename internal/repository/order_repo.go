package repository

import (
	"context"
	"fmt"

	"pizza_service/internal/model"
)

// OrderRepository defines operations for diner orders
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	ListByDiner(ctx context.Context, dinerID, limit, offset int) ([]model.Order, error)
}

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create stores the order and its items atomically. IDs and the order date are
// written back into order.
func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	sql := `INSERT INTO diner_order (diner_id, franchise_id, store_id, date) VALUES ($1, $2, $3, NOW()) RETURNING id, date`
	if err := tx.QueryRow(ctx, sql, order.DinerID, order.FranchiseID, order.StoreID).Scan(&order.ID, &order.Date); err != nil {
		rollback(ctx, tx)
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		sql := `INSERT INTO order_item (order_id, menu_id, description, price) VALUES ($1, $2, $3, $4) RETURNING id`
		if err := tx.QueryRow(ctx, sql, order.ID, item.MenuID, item.Description, item.Price).Scan(&item.ID); err != nil {
			rollback(ctx, tx)
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

func (r *orderRepository) ListByDiner(ctx context.Context, dinerID, limit, offset int) ([]model.Order, error) {
	sql := `SELECT id, franchise_id, store_id, date FROM diner_order
            WHERE diner_id = $1 ORDER BY id LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, sql, dinerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders := []model.Order{}
	for rows.Next() {
		o := model.Order{DinerID: dinerID}
		if err := rows.Scan(&o.ID, &o.FranchiseID, &o.StoreID, &o.Date); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}

	for i := range orders {
		items, err := r.items(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *orderRepository) items(ctx context.Context, orderID int) ([]model.OrderItem, error) {
	rows, err := r.db.Query(ctx, `SELECT id, menu_id, description, price FROM order_item WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.MenuID, &it.Description, &it.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order item rows: %w", err)
	}
	return items, nil
}
