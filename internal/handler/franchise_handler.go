package handler

import (
	"net/http"

	"pizza_service/internal/middleware"
	"pizza_service/internal/model"
	"pizza_service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FranchiseHandler struct {
	service service.FranchiseService
	log     *zap.Logger
}

func NewFranchiseHandler(s service.FranchiseService, log *zap.Logger) *FranchiseHandler {
	return &FranchiseHandler{service: s, log: log.Named("franchise_handler")}
}

func revenue(v float64) *float64 { return &v }

// FranchiseEndpoints documents the routes registered by RegisterFranchiseRoutes.
var FranchiseEndpoints = []Endpoint{
	{
		Method:      http.MethodGet,
		Path:        "/api/franchise",
		Description: "List all the franchises",
		Example:     `curl localhost:3000/api/franchise`,
		Response:    []model.Franchise{{ID: 1, Name: "pizzaPocket", Stores: []model.Store{{ID: 1, Name: "SLC"}}}},
	},
	{
		Method:       http.MethodGet,
		Path:         "/api/franchise/:userId",
		RequiresAuth: true,
		Description:  "List a user's franchises",
		Example:      `curl localhost:3000/api/franchise/4  -H 'Authorization: Bearer tttttt'`,
		Response: []model.Franchise{{
			ID: 2, Name: "pizzaPocket",
			Admins: []model.FranchiseAdmin{{ID: 4, Name: "pizza franchisee", Email: "f@jwt.com"}},
			Stores: []model.Store{{ID: 4, Name: "SLC", TotalRevenue: revenue(0)}},
		}},
	},
	{
		Method:       http.MethodPost,
		Path:         "/api/franchise",
		RequiresAuth: true,
		Description:  "Create a new franchise",
		Example:      `curl -X POST localhost:3000/api/franchise -H 'Content-Type: application/json' -H 'Authorization: Bearer tttttt' -d '{"name": "pizzaPocket", "admins": [{"email": "f@jwt.com"}]}'`,
		Response: model.Franchise{
			ID: 1, Name: "pizzaPocket",
			Admins: []model.FranchiseAdmin{{ID: 4, Name: "pizza franchisee", Email: "f@jwt.com"}},
			Stores: []model.Store{},
		},
	},
	{
		Method:       http.MethodDelete,
		Path:         "/api/franchise/:franchiseId",
		RequiresAuth: true,
		Description:  "Delete a franchise",
		Example:      `curl -X DELETE localhost:3000/api/franchise/1 -H 'Authorization: Bearer tttttt'`,
		Response:     gin.H{"message": "franchise deleted"},
	},
	{
		Method:       http.MethodPost,
		Path:         "/api/franchise/:franchiseId/store",
		RequiresAuth: true,
		Description:  "Create a new franchise store",
		Example:      `curl -X POST localhost:3000/api/franchise/1/store -H 'Content-Type: application/json' -d '{"name":"SLC"}' -H 'Authorization: Bearer tttttt'`,
		Response:     model.Store{ID: 1, FranchiseID: 1, Name: "SLC"},
	},
	{
		Method:       http.MethodDelete,
		Path:         "/api/franchise/:franchiseId/store/:storeId",
		RequiresAuth: true,
		Description:  "Delete a store",
		Example:      `curl -X DELETE localhost:3000/api/franchise/1/store/1  -H 'Authorization: Bearer tttttt'`,
		Response:     gin.H{"message": "store deleted"},
	},
}

func (h *FranchiseHandler) ListFranchises(c *gin.Context) {
	franchises, err := h.service.ListFranchises(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, h.log, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, franchises)
}

func (h *FranchiseHandler) ListUserFranchises(c *gin.Context) {
	userID, ok := intParam(c, "id")
	if !ok {
		return
	}

	franchises, err := h.service.ListUserFranchises(c.Request.Context(), middleware.CurrentUser(c), userID)
	if err != nil {
		respondError(c, h.log, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, franchises)
}

func (h *FranchiseHandler) CreateFranchise(c *gin.Context) {
	var req model.CreateFranchiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "franchise name is required"})
		return
	}

	franchise, err := h.service.CreateFranchise(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, franchise)
}

func (h *FranchiseHandler) DeleteFranchise(c *gin.Context) {
	franchiseID, ok := intParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteFranchise(c.Request.Context(), franchiseID); err != nil {
		respondError(c, h.log, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "franchise deleted"})
}

func (h *FranchiseHandler) CreateStore(c *gin.Context) {
	franchiseID, ok := intParam(c, "id")
	if !ok {
		return
	}

	var req model.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "store name is required"})
		return
	}

	store, err := h.service.CreateStore(c.Request.Context(), middleware.CurrentUser(c), franchiseID, req.Name)
	if err != nil {
		respondError(c, h.log, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, store)
}

func (h *FranchiseHandler) DeleteStore(c *gin.Context) {
	franchiseID, ok := intParam(c, "id")
	if !ok {
		return
	}
	storeID, ok := intParam(c, "storeId")
	if !ok {
		return
	}

	if err := h.service.DeleteStore(c.Request.Context(), middleware.CurrentUser(c), franchiseID, storeID); err != nil {
		respondError(c, h.log, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "store deleted"})
}

// RegisterFranchiseRoutes registers franchise routes. Every path parameter in the
// first segment is named id so the routing tree stays unambiguous.
func (h *FranchiseHandler) RegisterFranchiseRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	franchiseGroup := rg.Group("/franchise")
	{
		franchiseGroup.GET("", h.ListFranchises)
		franchiseGroup.GET("/:id", authMW, h.ListUserFranchises)
		franchiseGroup.POST("", authMW, middleware.AdminMiddleware("unable to create a franchise"), h.CreateFranchise)
		franchiseGroup.DELETE("/:id", authMW, middleware.AdminMiddleware("unable to delete a franchise"), h.DeleteFranchise)
		franchiseGroup.POST("/:id/store", authMW, h.CreateStore)
		franchiseGroup.DELETE("/:id/store/:storeId", authMW, h.DeleteStore)
	}
}
