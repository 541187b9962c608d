package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Endpoint describes one route for the documentation page.
type Endpoint struct {
	Method       string      `json:"method"`
	Path         string      `json:"path"`
	RequiresAuth bool        `json:"requiresAuth,omitempty"`
	Description  string      `json:"description"`
	Example      string      `json:"example"`
	Response     interface{} `json:"response"`
}

// DocsHandler serves the welcome banner, the route catalogue and the unknown-route answer.
type DocsHandler struct {
	version    string
	factoryURL string
	dbHost     string
	endpoints  []Endpoint
}

func NewDocsHandler(version, factoryURL, dbHost string, groups ...[]Endpoint) *DocsHandler {
	h := &DocsHandler{version: version, factoryURL: factoryURL, dbHost: dbHost}
	for _, g := range groups {
		h.endpoints = append(h.endpoints, g...)
	}
	return h
}

func (h *DocsHandler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "welcome to JWT Pizza", "version": h.version})
}

func (h *DocsHandler) Docs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":   h.version,
		"endpoints": h.endpoints,
		"config":    gin.H{"factory": h.factoryURL, "db": h.dbHost},
	})
}

func (h *DocsHandler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"message": "unknown endpoint"})
}

// RegisterDocsRoutes registers the root, docs and fallback routes
func (h *DocsHandler) RegisterDocsRoutes(router *gin.Engine) {
	router.GET("/", h.Welcome)
	router.GET("/api/docs", h.Docs)
	router.NoRoute(h.NotFound)
}
