package service

import (
	"context"

	"pizza_service/internal/fulfillment"
	"pizza_service/internal/model"

	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, id int, email, passwordHash string) error {
	return m.Called(ctx, id, email, passwordHash).Error(0)
}

func (m *mockUserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	args := m.Called(ctx, role)
	return args.Int(0), args.Error(1)
}

// fakeSessions is an in-memory allow-list; behaviour matters more than call counts here.
type fakeSessions struct {
	rows map[string]int
}

func newFakeSessions() *fakeSessions { return &fakeSessions{rows: map[string]int{}} }

func (f *fakeSessions) Create(_ context.Context, sig string, userID int) error {
	f.rows[sig] = userID
	return nil
}

func (f *fakeSessions) Exists(_ context.Context, sig string) (bool, error) {
	_, ok := f.rows[sig]
	return ok, nil
}

func (f *fakeSessions) Delete(_ context.Context, sig string) error {
	delete(f.rows, sig)
	return nil
}

type mockMenuRepo struct{ mock.Mock }

func (m *mockMenuRepo) List(ctx context.Context) ([]model.MenuItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.MenuItem)
	return items, args.Error(1)
}

func (m *mockMenuRepo) Add(ctx context.Context, item *model.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockMenuRepo) FindByID(ctx context.Context, id int) (*model.MenuItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*model.MenuItem)
	return item, args.Error(1)
}

type mockFranchiseRepo struct{ mock.Mock }

func (m *mockFranchiseRepo) Create(ctx context.Context, f *model.Franchise) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockFranchiseRepo) FindByID(ctx context.Context, id int) (*model.Franchise, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*model.Franchise)
	return f, args.Error(1)
}

func (m *mockFranchiseRepo) List(ctx context.Context) ([]model.Franchise, error) {
	args := m.Called(ctx)
	fs, _ := args.Get(0).([]model.Franchise)
	return fs, args.Error(1)
}

func (m *mockFranchiseRepo) ListByFranchisee(ctx context.Context, userID int) ([]model.Franchise, error) {
	args := m.Called(ctx, userID)
	fs, _ := args.Get(0).([]model.Franchise)
	return fs, args.Error(1)
}

func (m *mockFranchiseRepo) Admins(ctx context.Context, franchiseID int) ([]model.FranchiseAdmin, error) {
	args := m.Called(ctx, franchiseID)
	as, _ := args.Get(0).([]model.FranchiseAdmin)
	return as, args.Error(1)
}

func (m *mockFranchiseRepo) Stores(ctx context.Context, franchiseID int) ([]model.Store, error) {
	args := m.Called(ctx, franchiseID)
	ss, _ := args.Get(0).([]model.Store)
	return ss, args.Error(1)
}

func (m *mockFranchiseRepo) StoresWithRevenue(ctx context.Context, franchiseID int) ([]model.Store, error) {
	args := m.Called(ctx, franchiseID)
	ss, _ := args.Get(0).([]model.Store)
	return ss, args.Error(1)
}

func (m *mockFranchiseRepo) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockFranchiseRepo) CreateStore(ctx context.Context, s *model.Store) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockFranchiseRepo) FindStore(ctx context.Context, franchiseID, storeID int) (*model.Store, error) {
	args := m.Called(ctx, franchiseID, storeID)
	s, _ := args.Get(0).(*model.Store)
	return s, args.Error(1)
}

func (m *mockFranchiseRepo) DeleteStore(ctx context.Context, franchiseID, storeID int) error {
	return m.Called(ctx, franchiseID, storeID).Error(0)
}

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) Create(ctx context.Context, order *model.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrderRepo) ListByDiner(ctx context.Context, dinerID, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, dinerID, limit, offset)
	os, _ := args.Get(0).([]model.Order)
	return os, args.Error(1)
}

type mockFactory struct{ mock.Mock }

func (m *mockFactory) Submit(ctx context.Context, diner *model.User, order *model.Order) (*fulfillment.Receipt, error) {
	args := m.Called(ctx, diner, order)
	r, _ := args.Get(0).(*fulfillment.Receipt)
	return r, args.Error(1)
}
