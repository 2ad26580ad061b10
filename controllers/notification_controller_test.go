package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func asUser(userID, roleID int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("roleID", roleID)
		c.Next()
	}
}

func TestGetNotificationCountsUnauthorized(t *testing.T) {
	router := gin.New()
	router.GET("/api/v1/notifications/counts", GetNotificationCounts)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/counts", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestMarkClientViewedRejectsBadBody(t *testing.T) {
	router := gin.New()
	router.POST("/api/v1/notifications/mark-viewed", asUser(7, 1), MarkClientViewed)

	cases := []string{
		``,
		`{}`,
		`{"client_id": 0}`,
		`{"client_id": -5}`,
		`not json`,
	}
	for _, body := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/mark-viewed", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("body %q: status = %d, want 422", body, w.Code)
		}
	}
}

func TestMarkCountyClientsViewedRejectsBadBody(t *testing.T) {
	router := gin.New()
	router.POST("/api/v1/notifications/mark-viewed-county", asUser(7, 1), MarkCountyClientsViewed)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/mark-viewed-county", strings.NewReader(`{"county_id": 0}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

func TestGetApprovalNotificationsRejectsReadFilter(t *testing.T) {
	router := gin.New()
	router.GET("/api/v1/approval-notifications", asUser(7, 1), GetApprovalNotifications)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/approval-notifications?unread=0", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestMarkApprovalNotificationReadInvalidID(t *testing.T) {
	router := gin.New()
	router.POST("/api/v1/approval-notifications/:id/read", asUser(7, 1), MarkApprovalNotificationRead)

	for _, id := range []string{"abc", "0", "-1"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/approval-notifications/"+id+"/read", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("id %q: status = %d, want 422", id, w.Code)
		}
	}
}
