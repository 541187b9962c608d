package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"pizza_service/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelcome(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"welcome to JWT Pizza","version":"20240601.120000"}`, rec.Body.String())
}

func TestDocs(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(http.MethodGet, "/api/docs", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Version   string            `json:"version"`
		Endpoints []Endpoint        `json:"endpoints"`
		Config    map[string]string `json:"config"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "20240601.120000", body.Version)
	assert.Len(t, body.Endpoints, len(AuthEndpoints)+len(OrderEndpoints)+len(FranchiseEndpoints))
	assert.Equal(t, map[string]string{"factory": "https://factory.example", "db": "localhost"}, body.Config)
}

func TestUnknownEndpoint(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"unknown endpoint"}`, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domainErr(service.ErrUnauthenticated, "x"), http.StatusUnauthorized},
		{domainErr(service.ErrUnauthorized, "x"), http.StatusForbidden},
		{domainErr(service.ErrInvalidReference, "x"), http.StatusTeapot},
		{domainErr(service.ErrDataMismatch, "x"), http.StatusBadRequest},
		{domainErr(service.ErrInvalidInput, "x"), http.StatusBadRequest},
		{domainErr(service.ErrOperationFailed, "x"), http.StatusInternalServerError},
		{domainErr(service.ErrNotFound, "x"), http.StatusNotFound},
		{domainErr(service.ErrConflict, "x"), http.StatusConflict},
		{fmt.Errorf("wrapped: %w", domainErr(service.ErrNotFound, "x")), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err, http.StatusTeapot), tc.err.Error())
	}
}
