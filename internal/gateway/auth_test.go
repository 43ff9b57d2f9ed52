package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospital-is/hisctl/internal/errors"
	"github.com/hospital-is/hisctl/internal/session"
)

func TestAuthenticate(t *testing.T) {
	var got loginRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"), "login carries no token")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"token":"t1","user":{"id":"u1","email":"a@b.com","name":"A","role":"admin"}}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL + "/api"})
	client.UseSession(&fakeSession{token: "stale"})

	result, err := client.Authenticate(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, loginRequest{Email: "a@b.com", Password: "secret"}, got)
	assert.Equal(t, "t1", result.Token)
	assert.Equal(t, session.RoleAdmin, result.User.Role)
}

func TestAuthenticateRejected(t *testing.T) {
	srv := httptest.NewServer(status(http.StatusUnauthorized, `{"message":"Invalid credentials"}`))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL})
	_, err := client.Authenticate(context.Background(), "a@b.com", "bad")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.False(t, client.Guard().Pending())
}

func TestAuthenticateIncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(status(http.StatusOK, `{"token":"t1"}`))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}).Authenticate(context.Background(), "a@b.com", "pw")
	assert.ErrorIs(t, err, session.ErrIncompleteSession)
}

func TestRegisterSendsPatientRole(t *testing.T) {
	var got signupRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/signup", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"t2","user":{"id":"p1","email":"p@b.com","name":"P","role":"patient"}}`))
	}))
	defer srv.Close()

	result, err := New(Config{BaseURL: srv.URL}).Register(context.Background(), session.SignupRequest{
		Name: "P", Email: "p@b.com", Password: "password1", ConfirmPassword: "password1",
	})
	require.NoError(t, err)
	assert.Equal(t, session.RolePatient, got.Role)
	assert.Equal(t, "p@b.com", got.Email)
	assert.Equal(t, "t2", result.Token)
}

func TestRegisterAlreadyRegistered(t *testing.T) {
	srv := httptest.NewServer(status(http.StatusConflict, `{"message":"User already exists"}`))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}).Register(context.Background(), session.SignupRequest{
		Name: "P", Email: "p@b.com", Password: "password1", ConfirmPassword: "password1",
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAuthAlreadyRegistered))

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr, "backend error stays in the chain")
}

func TestAPIErrorFormatting(t *testing.T) {
	err := newAPIError("GET", "/lab", http.StatusForbidden, []byte(`{"error":"forbidden"}`))
	assert.Equal(t, "GET /lab: 403 Forbidden: forbidden", err.Error())

	err = newAPIError("GET", "/lab", http.StatusBadGateway, []byte(`<html>`))
	assert.Equal(t, "GET /lab: 502 Bad Gateway", err.Error())
}
