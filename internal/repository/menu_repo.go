package repository

import (
	"context"
	"errors"
	"fmt"

	"pizza_service/internal/model"

	"github.com/jackc/pgx/v5"
)

// MenuRepository defines operations for menu data
type MenuRepository interface {
	List(ctx context.Context) ([]model.MenuItem, error)
	Add(ctx context.Context, item *model.MenuItem) error
	FindByID(ctx context.Context, id int) (*model.MenuItem, error)
}

type menuRepository struct {
	db DB
}

func NewMenuRepository(db DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) List(ctx context.Context) ([]model.MenuItem, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, description, image, price FROM menu ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu: %w", err)
	}
	defer rows.Close()

	items := []model.MenuItem{}
	for rows.Next() {
		var m model.MenuItem
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Image, &m.Price); err != nil {
			return nil, fmt.Errorf("failed to scan menu row: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating menu rows: %w", err)
	}
	return items, nil
}

func (r *menuRepository) Add(ctx context.Context, item *model.MenuItem) error {
	sql := `INSERT INTO menu (title, description, image, price) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRow(ctx, sql, item.Title, item.Description, item.Image, item.Price).Scan(&item.ID); err != nil {
		return fmt.Errorf("failed to add menu item: %w", err)
	}
	return nil
}

// FindByID returns nil when the menu has no such item.
func (r *menuRepository) FindByID(ctx context.Context, id int) (*model.MenuItem, error) {
	m := &model.MenuItem{}
	sql := `SELECT id, title, description, image, price FROM menu WHERE id = $1`
	err := r.db.QueryRow(ctx, sql, id).Scan(&m.ID, &m.Title, &m.Description, &m.Image, &m.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find menu item: %w", err)
	}
	return m, nil
}
