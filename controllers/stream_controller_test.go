package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestStreamNotificationsWithoutToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	router := gin.New()
	router.GET("/api/v1/notifications/stream", StreamNotifications)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "auth_error") {
		t.Errorf("expected auth_error frame, got %q", body)
	}
	if !strings.Contains(body, "Please log in") {
		t.Errorf("expected login prompt in frame, got %q", body)
	}
}

func TestStreamNotificationsWithGarbageToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	router := gin.New()
	router.GET("/api/v1/notifications/stream", StreamNotifications)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream?token=not-a-jwt", nil)
	router.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), "auth_error") {
		t.Errorf("expected auth_error frame, got %q", w.Body.String())
	}
}

func TestStreamTokenSources(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/stream?token=from-query", nil)
	if got := streamToken(c); got != "from-query" {
		t.Errorf("streamToken = %q, want from-query", got)
	}

	c.Request.Header.Set("Authorization", "Bearer from-header")
	if got := streamToken(c); got != "from-header" {
		t.Errorf("header must win over query, got %q", got)
	}
}
