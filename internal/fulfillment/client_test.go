package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pizza_service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testDiner = &model.User{ID: 2, Name: "pizza diner", Email: "d@jwt.com"}

func TestClient_Submit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/order", r.URL.Path)
		assert.Equal(t, "Bearer factory-key", r.Header.Get("Authorization"))

		var body orderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 2, body.Diner.ID)
		assert.Equal(t, "d@jwt.com", body.Diner.Email)
		assert.Equal(t, 10, body.Order.ID)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jwt":"factory.jwt.sig","reportUrl":"https://factory/report/10"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "factory-key", 0, zap.NewNop())
	receipt, err := c.Submit(context.Background(), testDiner, &model.Order{ID: 10, FranchiseID: 1, StoreID: 1})

	require.NoError(t, err)
	assert.Equal(t, "factory.jwt.sig", receipt.JWT)
	assert.Equal(t, "https://factory/report/10", receipt.ReportURL)
}

func TestClient_Submit_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"oven on fire","reportUrl":"https://factory/report/11"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "factory-key", 0, zap.NewNop())
	_, err := c.Submit(context.Background(), testDiner, &model.Order{ID: 11})

	var fe *FactoryError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusInternalServerError, fe.Status)
	assert.Equal(t, "https://factory/report/11", fe.ReportURL)
	assert.Contains(t, fe.Error(), "oven on fire")
}

func TestClient_Submit_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, "factory-key", 0, zap.NewNop())
	_, err := c.Submit(context.Background(), testDiner, &model.Order{ID: 12})

	assert.Error(t, err)
	var fe *FactoryError
	assert.False(t, errors.As(err, &fe))
}
