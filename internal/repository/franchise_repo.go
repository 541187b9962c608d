package repository

import (
	"context"
	"errors"
	"fmt"

	"pizza_service/internal/model"

	"github.com/jackc/pgx/v5"
)

var ErrDuplicateFranchise = errors.New("franchise name already exists")

// FranchiseRepository defines operations for franchises, their stores and franchisee scopings.
type FranchiseRepository interface {
	Create(ctx context.Context, franchise *model.Franchise) error
	FindByID(ctx context.Context, id int) (*model.Franchise, error)
	List(ctx context.Context) ([]model.Franchise, error)
	ListByFranchisee(ctx context.Context, userID int) ([]model.Franchise, error)
	Admins(ctx context.Context, franchiseID int) ([]model.FranchiseAdmin, error)
	Stores(ctx context.Context, franchiseID int) ([]model.Store, error)
	StoresWithRevenue(ctx context.Context, franchiseID int) ([]model.Store, error)
	Delete(ctx context.Context, id int) error

	CreateStore(ctx context.Context, store *model.Store) error
	FindStore(ctx context.Context, franchiseID, storeID int) (*model.Store, error)
	DeleteStore(ctx context.Context, franchiseID, storeID int) error
}

type franchiseRepository struct {
	db DB
}

func NewFranchiseRepository(db DB) FranchiseRepository {
	return &franchiseRepository{db: db}
}

// Create inserts the franchise and scopes a franchisee role to it for every listed admin.
func (r *franchiseRepository) Create(ctx context.Context, f *model.Franchise) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := tx.QueryRow(ctx, `INSERT INTO franchise (name) VALUES ($1) RETURNING id`, f.Name).Scan(&f.ID); err != nil {
		rollback(ctx, tx)
		if isUniqueViolation(err) {
			return ErrDuplicateFranchise
		}
		return fmt.Errorf("failed to create franchise: %w", err)
	}

	for _, admin := range f.Admins {
		_, err := tx.Exec(ctx, `INSERT INTO user_roles (user_id, role, object_id) VALUES ($1, $2, $3)`,
			admin.ID, model.RoleFranchisee, f.ID)
		if err != nil {
			rollback(ctx, tx)
			return fmt.Errorf("failed to assign franchise admin %d: %w", admin.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit franchise: %w", err)
	}
	return nil
}

// FindByID returns the bare franchise row, nil when it does not exist.
func (r *franchiseRepository) FindByID(ctx context.Context, id int) (*model.Franchise, error) {
	f := &model.Franchise{}
	err := r.db.QueryRow(ctx, `SELECT id, name FROM franchise WHERE id = $1`, id).Scan(&f.ID, &f.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find franchise: %w", err)
	}
	return f, nil
}

func (r *franchiseRepository) List(ctx context.Context) ([]model.Franchise, error) {
	return r.queryFranchises(ctx, `SELECT id, name FROM franchise ORDER BY id`)
}

func (r *franchiseRepository) ListByFranchisee(ctx context.Context, userID int) ([]model.Franchise, error) {
	sql := `SELECT DISTINCT f.id, f.name FROM franchise f
            JOIN user_roles ur ON ur.object_id = f.id
            WHERE ur.user_id = $1 AND ur.role = $2
            ORDER BY f.id`
	return r.queryFranchises(ctx, sql, userID, model.RoleFranchisee)
}

func (r *franchiseRepository) queryFranchises(ctx context.Context, sql string, args ...interface{}) ([]model.Franchise, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query franchises: %w", err)
	}
	defer rows.Close()

	franchises := []model.Franchise{}
	for rows.Next() {
		var f model.Franchise
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, fmt.Errorf("failed to scan franchise row: %w", err)
		}
		franchises = append(franchises, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating franchise rows: %w", err)
	}
	return franchises, nil
}

func (r *franchiseRepository) Admins(ctx context.Context, franchiseID int) ([]model.FranchiseAdmin, error) {
	sql := `SELECT u.id, u.name, u.email FROM user_roles ur
            JOIN users u ON u.id = ur.user_id
            WHERE ur.object_id = $1 AND ur.role = $2
            ORDER BY u.id`
	rows, err := r.db.Query(ctx, sql, franchiseID, model.RoleFranchisee)
	if err != nil {
		return nil, fmt.Errorf("failed to query franchise admins: %w", err)
	}
	defer rows.Close()

	admins := []model.FranchiseAdmin{}
	for rows.Next() {
		var a model.FranchiseAdmin
		if err := rows.Scan(&a.ID, &a.Name, &a.Email); err != nil {
			return nil, fmt.Errorf("failed to scan franchise admin row: %w", err)
		}
		admins = append(admins, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating franchise admin rows: %w", err)
	}
	return admins, nil
}

func (r *franchiseRepository) Stores(ctx context.Context, franchiseID int) ([]model.Store, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM store WHERE franchise_id = $1 ORDER BY id`, franchiseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer rows.Close()

	stores := []model.Store{}
	for rows.Next() {
		var s model.Store
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan store row: %w", err)
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating store rows: %w", err)
	}
	return stores, nil
}

// StoresWithRevenue sums the prices of every item ordered at each store.
func (r *franchiseRepository) StoresWithRevenue(ctx context.Context, franchiseID int) ([]model.Store, error) {
	sql := `SELECT s.id, s.name, COALESCE(SUM(oi.price), 0) FROM store s
            LEFT JOIN diner_order o ON o.store_id = s.id
            LEFT JOIN order_item oi ON oi.order_id = o.id
            WHERE s.franchise_id = $1
            GROUP BY s.id, s.name
            ORDER BY s.id`
	rows, err := r.db.Query(ctx, sql, franchiseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query store revenue: %w", err)
	}
	defer rows.Close()

	stores := []model.Store{}
	for rows.Next() {
		var s model.Store
		var revenue float64
		if err := rows.Scan(&s.ID, &s.Name, &revenue); err != nil {
			return nil, fmt.Errorf("failed to scan store revenue row: %w", err)
		}
		s.TotalRevenue = &revenue
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating store revenue rows: %w", err)
	}
	return stores, nil
}

// Delete removes the franchise's stores, its franchisee scopings and the franchise
// itself. Either all three happen or none do.
func (r *franchiseRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	steps := []struct {
		what string
		sql  string
		args []interface{}
	}{
		{"stores", `DELETE FROM store WHERE franchise_id = $1`, []interface{}{id}},
		{"franchise roles", `DELETE FROM user_roles WHERE object_id = $1 AND role = $2`, []interface{}{id, model.RoleFranchisee}},
		{"franchise", `DELETE FROM franchise WHERE id = $1`, []interface{}{id}},
	}
	for _, step := range steps {
		if _, err := tx.Exec(ctx, step.sql, step.args...); err != nil {
			rollback(ctx, tx)
			return fmt.Errorf("failed to delete %s: %w", step.what, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit franchise deletion: %w", err)
	}
	return nil
}

func (r *franchiseRepository) CreateStore(ctx context.Context, s *model.Store) error {
	sql := `INSERT INTO store (franchise_id, name) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRow(ctx, sql, s.FranchiseID, s.Name).Scan(&s.ID); err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	return nil
}

// FindStore returns the store only when it belongs to franchiseID.
func (r *franchiseRepository) FindStore(ctx context.Context, franchiseID, storeID int) (*model.Store, error) {
	s := &model.Store{}
	sql := `SELECT id, franchise_id, name FROM store WHERE franchise_id = $1 AND id = $2`
	err := r.db.QueryRow(ctx, sql, franchiseID, storeID).Scan(&s.ID, &s.FranchiseID, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find store: %w", err)
	}
	return s, nil
}

func (r *franchiseRepository) DeleteStore(ctx context.Context, franchiseID, storeID int) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM store WHERE franchise_id = $1 AND id = $2`, franchiseID, storeID); err != nil {
		return fmt.Errorf("failed to delete store: %w", err)
	}
	return nil
}
