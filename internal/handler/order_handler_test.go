package handler

import (
	"errors"
	"net/http"
	"testing"

	"pizza_service/internal/model"
	"pizza_service/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var veggie = model.MenuItem{ID: 1, Title: "Veggie", Description: "Veggie", Image: "pizza1.png", Price: 0.05}

func TestGetMenu(t *testing.T) {
	ts := newTestServer()
	ts.menu.On("GetMenu", mock.Anything).Return([]model.MenuItem{veggie}, nil)

	rec := ts.do(http.MethodGet, "/api/order/menu", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"title":"Veggie","description":"Veggie","image":"pizza1.png","price":0.05}]`, rec.Body.String())
}

func TestAddMenuItem(t *testing.T) {
	ts := newTestServer()
	ts.menu.On("AddMenuItem", mock.Anything, mock.MatchedBy(func(i *model.MenuItem) bool {
		return i.Title == "Student" && i.Price == 0.0001
	})).Return([]model.MenuItem{veggie, {ID: 2, Title: "Student", Description: "carbs", Price: 0.0001}}, nil)

	body := `{"title":"Student","description":"carbs","image":"pizza9.png","price":0.0001}`
	rec := ts.do(http.MethodPut, "/api/order/menu", "admin-token", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Student"`)

	rec = ts.do(http.MethodPut, "/api/order/menu", "diner-token", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"unable to add menu item"}`, rec.Body.String())

	ts.menu.AssertNumberOfCalls(t, "AddMenuItem", 1)
}

func TestListOrders(t *testing.T) {
	ts := newTestServer()
	page := &model.OrderPage{DinerID: 2, Page: 2, Orders: []model.Order{}}
	ts.orders.On("ListOrders", mock.Anything, diner, 2).Return(page, nil)
	ts.orders.On("ListOrders", mock.Anything, diner, 1).Return(&model.OrderPage{DinerID: 2, Page: 1, Orders: []model.Order{}}, nil)

	rec := ts.do(http.MethodGet, "/api/order?page=2", "diner-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"dinerId":2,"orders":[],"page":2}`, rec.Body.String())

	rec = ts.do(http.MethodGet, "/api/order?page=abc", "diner-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"dinerId":2,"orders":[],"page":1}`, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/order", "", "").Code)
}

const orderBody = `{"franchiseId":1,"storeId":1,"items":[{"menuId":1,"description":"Veggie","price":0.05}]}`

func TestCreateOrder(t *testing.T) {
	ts := newTestServer()
	order := &model.Order{ID: 7, FranchiseID: 1, StoreID: 1,
		Items: []model.OrderItem{{ID: 1, MenuID: 1, Description: "Veggie", Price: 0.05}}}
	ts.orders.On("Checkout", mock.Anything, diner, mock.AnythingOfType("model.CreateOrderRequest")).
		Return(&model.CheckoutResult{Status: model.CheckoutFulfilled, Order: order, FactoryJWT: "factory-jwt", ReportURL: "https://factory/r/7"}, nil)

	rec := ts.do(http.MethodPost, "/api/order", "diner-token", orderBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"jwt":"factory-jwt"`)
	assert.Contains(t, rec.Body.String(), `"reportUrl":"https://factory/r/7"`)
	assert.Contains(t, rec.Body.String(), `"price":0.05`)

	s := ts.metrics.Snapshot()
	assert.Equal(t, int64(1), s.PizzasSold)
	assert.InDelta(t, 0.05, s.Revenue, 1e-9)
}

func TestCreateOrder_PriceMismatch(t *testing.T) {
	ts := newTestServer()
	ts.orders.On("Checkout", mock.Anything, diner, mock.Anything).
		Return(nil, domainErr(service.ErrDataMismatch, "Price mismatch detected"))

	rec := ts.do(http.MethodPost, "/api/order", "diner-token",
		`{"franchiseId":1,"storeId":1,"items":[{"menuId":1,"description":"Veggie","price":0.04}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Price mismatch detected"}`, rec.Body.String())
}

func TestCreateOrder_InvalidFranchise(t *testing.T) {
	ts := newTestServer()
	ts.orders.On("Checkout", mock.Anything, diner, mock.Anything).
		Return(nil, domainErr(service.ErrInvalidReference, "Invalid franchise"))

	rec := ts.do(http.MethodPost, "/api/order", "diner-token", orderBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(http.MethodPost, "/api/order", "diner-token", `{"franchiseId":1,"storeId":1,"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ts.orders.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrder_FactoryFailure(t *testing.T) {
	ts := newTestServer()
	ts.orders.On("Checkout", mock.Anything, diner, mock.Anything).
		Return(&model.CheckoutResult{Status: model.CheckoutUnfulfilled, Order: &model.Order{ID: 7}, ReportURL: "https://factory/chaos"}, nil)

	rec := ts.do(http.MethodPost, "/api/order", "diner-token", orderBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Failed to fulfill order at factory","reportUrl":"https://factory/chaos"}`, rec.Body.String())
	assert.Equal(t, int64(1), ts.metrics.Snapshot().PizzaFailures)
}

func TestCreateOrder_StoreError(t *testing.T) {
	ts := newTestServer()
	ts.orders.On("Checkout", mock.Anything, diner, mock.Anything).Return(nil, errors.New("connection reset"))

	rec := ts.do(http.MethodPost, "/api/order", "diner-token", orderBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"internal server error"}`, rec.Body.String())
}

func TestChaos(t *testing.T) {
	ts := newTestServer()
	ts.menu.On("SetChaos", mock.Anything, true).Return(nil)
	ts.menu.On("SetChaos", mock.Anything, false).Return(nil)

	rec := ts.do(http.MethodPut, "/api/order/chaos/true", "admin-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"chaos":true}`, rec.Body.String())

	rec = ts.do(http.MethodPut, "/api/order/chaos/disable", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"chaos":false}`, rec.Body.String())

	ts.menu.AssertExpectations(t)
}

func TestChaos_NonAdmin(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPut, "/api/order/chaos/true", "diner-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"unknown endpoint"}`, rec.Body.String())

	rec = ts.do(http.MethodPut, "/api/order/chaos/true", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ts.menu.AssertNotCalled(t, "SetChaos", mock.Anything, mock.Anything)
}
