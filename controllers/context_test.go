package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"insulation-crm-api/models"
	"insulation-crm-api/services"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondServiceError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"validation", services.NewValidationError("name", "Name is required"), http.StatusUnprocessableEntity, "Name is required"},
		{"not found", services.ErrClientNotFound, http.StatusNotFound, "Not found"},
		{"not submitter", services.ErrNotSubmitter, http.StatusForbidden, "Not authorized"},
		{"forbidden", services.ErrForbidden, http.StatusForbidden, "Not authorized"},
		{"not pending", services.ErrNotPending, http.StatusConflict, "not awaiting approval"},
		{"not rejected", services.ErrNotRejected, http.StatusConflict, "rejected clients"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

			respondServiceError(c, tc.err)

			if w.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			if !strings.Contains(w.Body.String(), tc.wantBody) {
				t.Errorf("body %q does not contain %q", w.Body.String(), tc.wantBody)
			}
		})
	}
}

func TestForbiddenResponsesCarryNoDetail(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	respondServiceError(c, services.ErrNotSubmitter)

	if strings.Contains(w.Body.String(), "submitter") {
		t.Errorf("403 body leaks the denial reason: %s", w.Body.String())
	}
}

func TestCurrentViewer(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("userID", 7)
	c.Set("roleID", models.RoleAdmin)
	c.Set("agentID", 3)

	viewer, ok := currentViewer(c)
	if !ok {
		t.Fatal("expected viewer")
	}
	if viewer.UserID != 7 || viewer.AgentID != 3 || !viewer.IsAdmin {
		t.Errorf("unexpected viewer: %+v", viewer)
	}
}

func TestCurrentViewerMissingIdentity(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	if _, ok := currentViewer(c); ok {
		t.Error("expected no viewer without userID")
	}
}
