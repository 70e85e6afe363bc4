package handler

import (
	"net/http"
	"testing"

	"meetmap/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_NoToken(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(t, http.MethodGet, "/session", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["authenticated"])
	assert.Equal(t, domain.RouteLogin, body["route"])
	assert.Nil(t, body["user"])
}

func TestSession_GarbageToken(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(t, http.MethodGet, "/session", "not-a-jwt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.RouteLogin, body["route"])
}

func TestSession_ValidThenLoggedOut(t *testing.T) {
	s := newTestServer(t)
	id := s.addUser(t, "ana", nil)
	tok := s.token(t, id)

	w, body := s.do(t, http.MethodGet, "/session", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, domain.RouteHome, body["route"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ana", user["name"])

	w, _ = s.do(t, http.MethodPost, "/logout", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, body = s.do(t, http.MethodGet, "/session", tok, nil)
	assert.Equal(t, domain.RouteLogin, body["route"])
	w, _ = s.do(t, http.MethodGet, "/users", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSession_DeletedUser(t *testing.T) {
	s := newTestServer(t)
	_, body := s.do(t, http.MethodGet, "/session", s.token(t, 77), nil)
	assert.Equal(t, domain.RouteLogin, body["route"])
	assert.Equal(t, false, body["authenticated"])
}
