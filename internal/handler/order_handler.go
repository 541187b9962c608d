package handler

import (
	"net/http"
	"strconv"
	"time"

	"pizza_service/internal/metrics"
	"pizza_service/internal/middleware"
	"pizza_service/internal/model"
	"pizza_service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OrderHandler serves the menu, order history, checkout and the chaos switch.
type OrderHandler struct {
	menu    service.MenuService
	orders  service.OrderService
	metrics metrics.Sink
	log     *zap.Logger
}

func NewOrderHandler(menu service.MenuService, orders service.OrderService, sink metrics.Sink, log *zap.Logger) *OrderHandler {
	return &OrderHandler{menu: menu, orders: orders, metrics: sink, log: log.Named("order_handler")}
}

var sampleItem = model.OrderItem{ID: 1, MenuID: 1, Description: "Veggie", Price: 0.05}

// OrderEndpoints documents the routes registered by RegisterOrderRoutes.
var OrderEndpoints = []Endpoint{
	{
		Method:      http.MethodGet,
		Path:        "/api/order/menu",
		Description: "Get the pizza menu",
		Example:     `curl localhost:3000/api/order/menu`,
		Response:    []model.MenuItem{{ID: 1, Title: "Veggie", Image: "pizza1.png", Price: 0.0038, Description: "A garden of delight"}},
	},
	{
		Method:       http.MethodPut,
		Path:         "/api/order/menu",
		RequiresAuth: true,
		Description:  "Add an item to the menu",
		Example:      `curl -X PUT localhost:3000/api/order/menu -H 'Content-Type: application/json' -d '{ "title":"Student", "description": "No topping, no sauce, just carbs", "image":"pizza9.png", "price": 0.0001 }'  -H 'Authorization: Bearer tttttt'`,
		Response:     []model.MenuItem{{ID: 1, Title: "Student", Description: "No topping, no sauce, just carbs", Image: "pizza9.png", Price: 0.0001}},
	},
	{
		Method:       http.MethodGet,
		Path:         "/api/order",
		RequiresAuth: true,
		Description:  "Get the orders for the authenticated user",
		Example:      `curl -X GET localhost:3000/api/order  -H 'Authorization: Bearer tttttt'`,
		Response: model.OrderPage{DinerID: 4, Page: 1, Orders: []model.Order{{
			ID: 1, FranchiseID: 1, StoreID: 1,
			Date:  time.Date(2024, 6, 5, 5, 14, 40, 0, time.UTC),
			Items: []model.OrderItem{sampleItem},
		}}},
	},
	{
		Method:       http.MethodPost,
		Path:         "/api/order",
		RequiresAuth: true,
		Description:  "Create a order for the authenticated user",
		Example:      `curl -X POST localhost:3000/api/order -H 'Content-Type: application/json' -d '{"franchiseId": 1, "storeId":1, "items":[{ "menuId": 1, "description": "Veggie", "price": 0.05 }]}'  -H 'Authorization: Bearer tttttt'`,
		Response: gin.H{
			"order":     model.Order{ID: 1, FranchiseID: 1, StoreID: 1, Items: []model.OrderItem{sampleItem}},
			"jwt":       "1111111111",
			"reportUrl": "https://factory.example/report/1",
		},
	},
	{
		Method:       http.MethodPut,
		Path:         "/api/order/chaos/:state",
		RequiresAuth: true,
		Description:  "Enable or disable chaos",
		Example:      `curl -X PUT localhost:3000/api/order/chaos/true -H 'Authorization: Bearer tttttt'`,
		Response:     gin.H{"chaos": true},
	},
	{
		Method:      http.MethodPut,
		Path:        "/api/order/chaos/disable",
		Description: "Emergency chaos reset",
		Example:     `curl -X PUT localhost:3000/api/order/chaos/disable`,
		Response:    gin.H{"chaos": false},
	},
}

func (h *OrderHandler) GetMenu(c *gin.Context) {
	items, err := h.menu.GetMenu(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *OrderHandler) AddMenuItem(c *gin.Context) {
	var item model.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "title, description and a non-negative price are required"})
		return
	}

	items, err := h.menu.AddMenuItem(c.Request.Context(), &item)
	if err != nil {
		respondError(c, h.log, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}

	result, err := h.orders.ListOrders(c.Request.Context(), middleware.CurrentUser(c), page)
	if err != nil {
		respondError(c, h.log, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "franchiseId, storeId and at least one item are required"})
		return
	}

	start := time.Now()
	result, err := h.orders.Checkout(c.Request.Context(), middleware.CurrentUser(c), req)
	h.metrics.Latency(metrics.LatencyPizzaCreation, time.Since(start))
	if err != nil {
		respondError(c, h.log, err, http.StatusBadRequest)
		return
	}

	if !result.Fulfilled() {
		h.metrics.PizzaFailed()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message":   "Failed to fulfill order at factory",
			"reportUrl": result.ReportURL,
		})
		return
	}

	for _, item := range result.Order.Items {
		h.metrics.PizzaSold(item.Price)
	}
	c.JSON(http.StatusOK, gin.H{
		"order":     result.Order,
		"jwt":       result.FactoryJWT,
		"reportUrl": result.ReportURL,
	})
}

// SetChaos is hidden from non-admins: they get the same answer as an unknown route.
func (h *OrderHandler) SetChaos(c *gin.Context) {
	if !middleware.CurrentUser(c).HasRole(model.RoleAdmin) {
		c.JSON(http.StatusNotFound, gin.H{"message": "unknown endpoint"})
		return
	}

	enabled := c.Param("state") == "true"
	if err := h.menu.SetChaos(c.Request.Context(), enabled); err != nil {
		respondError(c, h.log, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chaos": enabled})
}

func (h *OrderHandler) DisableChaos(c *gin.Context) {
	if err := h.menu.SetChaos(c.Request.Context(), false); err != nil {
		respondError(c, h.log, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chaos": false})
}

// RegisterOrderRoutes registers order routes
func (h *OrderHandler) RegisterOrderRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	orderGroup := rg.Group("/order")
	{
		orderGroup.GET("/menu", h.GetMenu)
		orderGroup.PUT("/menu", authMW, middleware.AdminMiddleware("unable to add menu item"), h.AddMenuItem)
		orderGroup.GET("", authMW, h.ListOrders)
		orderGroup.POST("", authMW, h.CreateOrder)
		orderGroup.PUT("/chaos/disable", h.DisableChaos)
		orderGroup.PUT("/chaos/:state", authMW, h.SetChaos)
	}
}
