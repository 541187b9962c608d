package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pizza_service/internal/logger"
	"pizza_service/internal/model"

	"go.uber.org/zap"
)

// Receipt is what the factory hands back for an order it accepted.
type Receipt struct {
	JWT       string `json:"jwt"`
	ReportURL string `json:"reportUrl"`
}

// FactoryError is a rejection from the factory. ReportURL may be empty.
type FactoryError struct {
	Status    int
	Message   string
	ReportURL string
}

func (e *FactoryError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("factory rejected order (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("factory rejected order (%d)", e.Status)
}

type diner struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type orderRequest struct {
	Diner diner        `json:"diner"`
	Order *model.Order `json:"order"`
}

type orderResponse struct {
	JWT       string `json:"jwt"`
	ReportURL string `json:"reportUrl"`
	Message   string `json:"message"`
}

// Client talks to the pizza factory over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient builds a factory client. A zero timeout leaves the request bounded only by ctx.
func NewClient(baseURL, apiKey string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.Named("factory"),
	}
}

func (c *Client) URL() string { return c.baseURL }

// Submit forwards a persisted order for cooking. Non-2xx answers come back as *FactoryError.
func (c *Client) Submit(ctx context.Context, d *model.User, order *model.Order) (*Receipt, error) {
	body, err := json.Marshal(orderRequest{
		Diner: diner{ID: d.ID, Name: d.Name, Email: d.Email},
		Order: order,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode factory order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/order", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build factory request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("factory request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to reach factory: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read factory response: %w", err)
	}

	c.log.Info("factory request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("req_body", logger.Sanitize(string(body))),
		zap.String("res_body", logger.Sanitize(string(respBody))))

	var out orderResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &out); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("failed to decode factory response: %w", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FactoryError{Status: resp.StatusCode, Message: out.Message, ReportURL: out.ReportURL}
	}
	return &Receipt{JWT: out.JWT, ReportURL: out.ReportURL}, nil
}
