package controllers

import (
	"errors"
	"log"
	"net/http"

	"insulation-crm-api/config"
	"insulation-crm-api/middleware"
	"insulation-crm-api/models"
	"insulation-crm-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func getDB() *gorm.DB { return config.DB }

func getCurrentUserID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("userID"); ok {
		switch t := v.(type) {
		case int:
			return t, true
		case int64:
			return int(t), true
		case float64:
			return int(t), true
		}
	}
	return 0, false
}

func getCurrentRoleID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("roleID"); ok {
		switch t := v.(type) {
		case int:
			return t, true
		case int64:
			return int(t), true
		case float64:
			return int(t), true
		}
	}
	return 0, false
}

func getCurrentAgentID(c *gin.Context) int {
	if v, ok := c.Get("agentID"); ok {
		if id, ok := v.(int); ok {
			return id
		}
	}
	return 0
}

// currentViewer collects the request-scoped identity for service calls.
// Identity always travels as an explicit value, never as process state.
func currentViewer(c *gin.Context) (services.Viewer, bool) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		return services.Viewer{}, false
	}
	roleID, _ := getCurrentRoleID(c)
	return services.Viewer{
		UserID:  userID,
		AgentID: getCurrentAgentID(c),
		IsAdmin: roleID == models.RoleAdmin,
	}, true
}

func actorMeta(c *gin.Context) services.ActorMeta {
	return services.ActorMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
}

// respondServiceError translates service errors onto the HTTP taxonomy:
// 422 with a field map for validation, 403 without detail for authorization,
// 404 for missing records, 409 for workflow conflicts, 500 otherwise with
// the detail kept in the operational log only.
func respondServiceError(c *gin.Context, err error) {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   "Validation error",
			"errors":  validation.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrClientNotFound), errors.Is(err, services.ErrNotificationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Not found"})
	case errors.Is(err, services.ErrNotSubmitter), errors.Is(err, services.ErrForbidden):
		userID, _ := getCurrentUserID(c)
		log.Printf("Authorization denied: user=%d path=%s request_id=%s reason=%v",
			userID, c.FullPath(), middleware.RequestID(c), err)
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Not authorized"})
	case errors.Is(err, services.ErrNotPending), errors.Is(err, services.ErrNotRejected):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
	default:
		log.Printf("Internal error: path=%s request_id=%s err=%v",
			c.FullPath(), middleware.RequestID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
	}
}
