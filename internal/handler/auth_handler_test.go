package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"pizza_service/internal/model"
	"pizza_service/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ts := newTestServer()
	ts.auth.On("Register", mock.Anything, "pizza diner", "d@jwt.com", "diner").Return(diner, "tttttt", nil)

	rec := ts.do(http.MethodPost, "/api/auth", "", `{"name":"pizza diner","email":"d@jwt.com","password":"diner"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		User  model.User `json:"user"`
		Token string     `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tttttt", body.Token)
	assert.Equal(t, diner.Email, body.User.Email)
	assert.True(t, body.User.HasRole(model.RoleDiner))

	s := ts.metrics.Snapshot()
	assert.Equal(t, int64(1), s.ActiveUsers)
	assert.Equal(t, int64(1), s.AuthSuccessful)
}

func TestRegister_MissingFields(t *testing.T) {
	ts := newTestServer()
	ts.auth.On("Register", mock.Anything, "", "d@jwt.com", "").
		Return(nil, "", domainErr(service.ErrInvalidInput, "name, email, and password are required"))

	rec := ts.do(http.MethodPost, "/api/auth", "", `{"email":"d@jwt.com"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"name, email, and password are required"}`, rec.Body.String())

	rec = ts.do(http.MethodPost, "/api/auth", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := newTestServer()
	ts.auth.On("Register", mock.Anything, "x", "d@jwt.com", "pw").
		Return(nil, "", domainErr(service.ErrConflict, "email already registered"))

	rec := ts.do(http.MethodPost, "/api/auth", "", `{"name":"x","email":"d@jwt.com","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin(t *testing.T) {
	ts := newTestServer()
	ts.auth.On("Login", mock.Anything, "d@jwt.com", "diner").Return(diner, "tttttt", nil)

	rec := ts.do(http.MethodPut, "/api/auth", "", `{"email":"d@jwt.com","password":"diner"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token":"tttttt"`)
}

func TestLogin_UnknownUser(t *testing.T) {
	ts := newTestServer()
	ts.auth.On("Login", mock.Anything, "d@jwt.com", "wrong").
		Return(nil, "", domainErr(service.ErrNotFound, "unknown user"))

	rec := ts.do(http.MethodPut, "/api/auth", "", `{"email":"d@jwt.com","password":"wrong"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"unknown user"}`, rec.Body.String())
	assert.Equal(t, int64(1), ts.metrics.Snapshot().AuthFailed)
}

func TestUpdateUser(t *testing.T) {
	ts := newTestServer()
	updated := *diner
	updated.Email = "new@jwt.com"
	req := model.UpdateUserRequest{Email: "new@jwt.com"}
	ts.auth.On("UpdateUser", mock.Anything, diner, 2, req).Return(&updated, nil)

	rec := ts.do(http.MethodPut, "/api/auth/2", "diner-token", `{"email":"new@jwt.com"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"new@jwt.com"`)
}

func TestUpdateUser_OtherUser(t *testing.T) {
	ts := newTestServer()
	ts.auth.On("UpdateUser", mock.Anything, diner, 1, mock.Anything).
		Return(nil, domainErr(service.ErrUnauthorized, "unauthorized"))

	rec := ts.do(http.MethodPut, "/api/auth/1", "diner-token", `{"password":"x"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"unauthorized"}`, rec.Body.String())
}

func TestUpdateUser_Unauthenticated(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPut, "/api/auth/2", "", `{"email":"x@jwt.com"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodPut, "/api/auth/2", "revoked-token", `{"email":"x@jwt.com"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	ts.auth.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateUser_BadID(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(http.MethodPut, "/api/auth/abc", "diner-token", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout(t *testing.T) {
	ts := newTestServer()
	ts.auth.On("Logout", mock.Anything, "diner-token").Return(nil)

	rec := ts.do(http.MethodDelete, "/api/auth", "diner-token", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"logout successful"}`, rec.Body.String())
	ts.auth.AssertExpectations(t)
}

func TestLogout_Unauthenticated(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(http.MethodDelete, "/api/auth", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
