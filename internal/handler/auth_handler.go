package handler

import (
	"net/http"

	"pizza_service/internal/metrics"
	"pizza_service/internal/middleware"
	"pizza_service/internal/model"
	"pizza_service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
	metrics metrics.Sink
	log     *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, sink metrics.Sink, log *zap.Logger) *AuthHandler {
	return &AuthHandler{service: s, metrics: sink, log: log.Named("auth_handler")}
}

// AuthEndpoints documents the routes registered by RegisterAuthRoutes.
var AuthEndpoints = []Endpoint{
	{
		Method:      http.MethodPost,
		Path:        "/api/auth",
		Description: "Register a new user",
		Example:     `curl -X POST localhost:3000/api/auth -d '{"name":"pizza diner", "email":"d@jwt.com", "password":"diner"}' -H 'Content-Type: application/json'`,
		Response: gin.H{
			"user":  model.User{ID: 2, Name: "pizza diner", Email: "d@jwt.com", Roles: []model.RoleAssignment{{Role: model.RoleDiner}}},
			"token": "tttttt",
		},
	},
	{
		Method:      http.MethodPut,
		Path:        "/api/auth",
		Description: "Login existing user",
		Example:     `curl -X PUT localhost:3000/api/auth -d '{"email":"a@jwt.com", "password":"admin"}' -H 'Content-Type: application/json'`,
		Response: gin.H{
			"user":  model.User{ID: 1, Name: "常用名字", Email: "a@jwt.com", Roles: []model.RoleAssignment{{Role: model.RoleAdmin}}},
			"token": "tttttt",
		},
	},
	{
		Method:       http.MethodPut,
		Path:         "/api/auth/:userId",
		RequiresAuth: true,
		Description:  "Update user",
		Example:      `curl -X PUT localhost:3000/api/auth/1 -d '{"email":"a@jwt.com", "password":"admin"}' -H 'Content-Type: application/json' -H 'Authorization: Bearer tttttt'`,
		Response:     model.User{ID: 1, Name: "常用名字", Email: "a@jwt.com", Roles: []model.RoleAssignment{{Role: model.RoleAdmin}}},
	},
	{
		Method:       http.MethodDelete,
		Path:         "/api/auth",
		RequiresAuth: true,
		Description:  "Logout a user",
		Example:      `curl -X DELETE localhost:3000/api/auth -H 'Authorization: Bearer tttttt'`,
		Response:     gin.H{"message": "logout successful"},
	},
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name, email, and password are required"})
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err, http.StatusBadRequest)
		return
	}

	h.metrics.AuthAttempt(true)
	h.metrics.UserLoggedIn()
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.AuthAttempt(false)
		respondError(c, h.log, err, http.StatusNotFound)
		return
	}

	h.metrics.AuthAttempt(true)
	h.metrics.UserLoggedIn()
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) UpdateUser(c *gin.Context) {
	userID, ok := intParam(c, "userId")
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), middleware.CurrentUser(c), userID, req)
	if err != nil {
		respondError(c, h.log, err, http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), middleware.CurrentToken(c)); err != nil {
		respondError(c, h.log, err, http.StatusBadRequest)
		return
	}

	h.metrics.UserLoggedOut()
	c.JSON(http.StatusOK, gin.H{"message": "logout successful"})
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("", h.Register)
		authGroup.PUT("", h.Login)
		authGroup.PUT("/:userId", authMW, h.UpdateUser)
		authGroup.DELETE("", authMW, h.Logout)
	}
}
