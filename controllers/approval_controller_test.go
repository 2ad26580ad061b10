package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestApproveClientInvalidID(t *testing.T) {
	router := gin.New()
	router.POST("/api/v1/clients/:id/approve", asUser(1, 2), ApproveClient)

	for _, id := range []string{"abc", "0", "-3"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/clients/"+id+"/approve", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("id %q: status = %d, want 422", id, w.Code)
		}
	}
}

func TestRejectClientRequiresBody(t *testing.T) {
	router := gin.New()
	router.POST("/api/v1/clients/:id/reject", asUser(1, 2), RejectClient)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients/42/reject", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestResubmitClientRejectsBadPhone(t *testing.T) {
	router := gin.New()
	router.POST("/api/v1/clients/:id/resubmit", asUser(7, 1), ResubmitClient)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients/42/resubmit",
		strings.NewReader(`{"name": "Kiss Lajos", "county_id": 2, "phone": "555-1234"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "phone") {
		t.Errorf("expected phone field error, got %s", w.Body.String())
	}
}

func TestApproveClientUnauthorized(t *testing.T) {
	router := gin.New()
	router.POST("/api/v1/clients/:id/approve", ApproveClient)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients/42/approve", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
