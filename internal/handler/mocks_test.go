package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"pizza_service/internal/metrics"
	"pizza_service/internal/middleware"
	"pizza_service/internal/model"
	"pizza_service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	diner = &model.User{ID: 2, Name: "pizza diner", Email: "d@jwt.com", Roles: []model.RoleAssignment{{Role: model.RoleDiner}}}
	admin = &model.User{ID: 1, Name: "常用名字", Email: "a@jwt.com", Roles: []model.RoleAssignment{{Role: model.RoleAdmin}}}
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	args := m.Called(ctx, name, email, password)
	u, _ := args.Get(0).(*model.User)
	return u, args.String(1), args.Error(2)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(0).(*model.User)
	return u, args.String(1), args.Error(2)
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

// Authenticate resolves the fixed test tokens without going through the mock.
func (m *mockAuthService) Authenticate(_ context.Context, token string) (*model.User, error) {
	switch token {
	case "diner-token":
		return diner, nil
	case "admin-token":
		return admin, nil
	}
	return nil, &service.Error{Kind: service.ErrUnauthenticated, Msg: "unauthorized"}
}

func (m *mockAuthService) UpdateUser(ctx context.Context, caller *model.User, userID int, req model.UpdateUserRequest) (*model.User, error) {
	args := m.Called(ctx, caller, userID, req)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockAuthService) EnsureAdmin(ctx context.Context, req model.RegisterRequest) error {
	return m.Called(ctx, req).Error(0)
}

type mockMenuService struct{ mock.Mock }

func (m *mockMenuService) GetMenu(ctx context.Context) ([]model.MenuItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.MenuItem)
	return items, args.Error(1)
}

func (m *mockMenuService) AddMenuItem(ctx context.Context, item *model.MenuItem) ([]model.MenuItem, error) {
	args := m.Called(ctx, item)
	items, _ := args.Get(0).([]model.MenuItem)
	return items, args.Error(1)
}

func (m *mockMenuService) SetChaos(ctx context.Context, enabled bool) error {
	return m.Called(ctx, enabled).Error(0)
}

type mockOrderService struct{ mock.Mock }

func (m *mockOrderService) ListOrders(ctx context.Context, d *model.User, page int) (*model.OrderPage, error) {
	args := m.Called(ctx, d, page)
	p, _ := args.Get(0).(*model.OrderPage)
	return p, args.Error(1)
}

func (m *mockOrderService) Checkout(ctx context.Context, d *model.User, req model.CreateOrderRequest) (*model.CheckoutResult, error) {
	args := m.Called(ctx, d, req)
	r, _ := args.Get(0).(*model.CheckoutResult)
	return r, args.Error(1)
}

type mockFranchiseService struct{ mock.Mock }

func (m *mockFranchiseService) ListFranchises(ctx context.Context, caller *model.User) ([]model.Franchise, error) {
	args := m.Called(ctx, caller)
	f, _ := args.Get(0).([]model.Franchise)
	return f, args.Error(1)
}

func (m *mockFranchiseService) ListUserFranchises(ctx context.Context, caller *model.User, userID int) ([]model.Franchise, error) {
	args := m.Called(ctx, caller, userID)
	f, _ := args.Get(0).([]model.Franchise)
	return f, args.Error(1)
}

func (m *mockFranchiseService) CreateFranchise(ctx context.Context, req model.CreateFranchiseRequest) (*model.Franchise, error) {
	args := m.Called(ctx, req)
	f, _ := args.Get(0).(*model.Franchise)
	return f, args.Error(1)
}

func (m *mockFranchiseService) DeleteFranchise(ctx context.Context, franchiseID int) error {
	return m.Called(ctx, franchiseID).Error(0)
}

func (m *mockFranchiseService) CreateStore(ctx context.Context, caller *model.User, franchiseID int, name string) (*model.Store, error) {
	args := m.Called(ctx, caller, franchiseID, name)
	s, _ := args.Get(0).(*model.Store)
	return s, args.Error(1)
}

func (m *mockFranchiseService) DeleteStore(ctx context.Context, caller *model.User, franchiseID, storeID int) error {
	return m.Called(ctx, caller, franchiseID, storeID).Error(0)
}

type testServer struct {
	router    *gin.Engine
	auth      *mockAuthService
	menu      *mockMenuService
	orders    *mockOrderService
	franchise *mockFranchiseService
	metrics   *metrics.Collector
}

func newTestServer() *testServer {
	ts := &testServer{
		router:    gin.New(),
		auth:      &mockAuthService{},
		menu:      &mockMenuService{},
		orders:    &mockOrderService{},
		franchise: &mockFranchiseService{},
		metrics:   metrics.NewCollector("pizza_handler_test"),
	}
	log := zap.NewNop()
	authMW := middleware.RequireAuth()

	ts.router.Use(middleware.AttachUser(ts.auth, log))
	api := ts.router.Group("/api")
	NewAuthHandler(ts.auth, ts.metrics, log).RegisterAuthRoutes(api, authMW)
	NewOrderHandler(ts.menu, ts.orders, ts.metrics, log).RegisterOrderRoutes(api, authMW)
	NewFranchiseHandler(ts.franchise, log).RegisterFranchiseRoutes(api, authMW)
	NewDocsHandler("20240601.120000", "https://factory.example", "localhost",
		AuthEndpoints, OrderEndpoints, FranchiseEndpoints).RegisterDocsRoutes(ts.router)
	return ts
}

func (ts *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func domainErr(kind error, msg string) error {
	return &service.Error{Kind: kind, Msg: msg}
}
