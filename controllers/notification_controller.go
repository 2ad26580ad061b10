package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"insulation-crm-api/models"
	"insulation-crm-api/services"

	"github.com/gin-gonic/gin"
)

// GetNotificationCounts returns the aggregate counters for the caller: the
// pending approval queue size (admins only), plus new-client counts globally
// and per county.
func GetNotificationCounts(c *gin.Context) {
	viewer, ok := currentViewer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	service := services.NewNotificationService(getDB())
	counts, err := service.Counts(c.Request.Context(), viewer)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":               true,
		"approvals_pending":     counts.ApprovalsPending,
		"new_clients_total":     counts.NewClientsTotal,
		"new_clients_by_county": counts.NewClientsByCounty,
	})
}

// MarkClientViewed records that the caller has seen a client. The client
// must exist and be approved; marking is idempotent.
func MarkClientViewed(c *gin.Context) {
	var req struct {
		ClientID int `json:"client_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ClientID <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   "Validation error",
			"errors":  gin.H{"client_id": "Invalid client ID"},
		})
		return
	}

	viewer, ok := currentViewer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	clientService := services.NewClientService(getDB())
	client, err := clientService.GetByID(c.Request.Context(), req.ClientID)
	if err != nil || client.ApprovalStatus != models.StatusApproved {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Client not found or not approved"})
		return
	}

	service := services.NewNotificationService(getDB())
	if err := service.MarkClientViewed(c.Request.Context(), req.ClientID, viewer.UserID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkCountyClientsViewed bulk-touches the watermark for every client in a
// county that the caller can currently see.
func MarkCountyClientsViewed(c *gin.Context) {
	var req struct {
		CountyID int `json:"county_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.CountyID <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   "Validation error",
			"errors":  gin.H{"county_id": "Invalid county ID"},
		})
		return
	}

	viewer, ok := currentViewer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	service := services.NewNotificationService(getDB())
	marked, err := service.MarkCountyClientsViewed(c.Request.Context(), req.CountyID, viewer)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"marked_count": marked},
	})
}

// GetApprovalNotifications lists the caller's approval outcome notifications.
// Only the unread view is served; read rows stay in the table for audit.
func GetApprovalNotifications(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	unread := strings.TrimSpace(c.Query("unread"))
	if unread != "" && unread != "1" && !strings.EqualFold(unread, "true") {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Only unread=true is supported"})
		return
	}

	service := services.NewNotificationService(getDB())
	notifications, err := service.UnreadApprovalNotifications(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// MarkApprovalNotificationRead marks one of the caller's notifications read.
func MarkApprovalNotificationRead(c *gin.Context) {
	notificationID, err := strconv.Atoi(c.Param("id"))
	if err != nil || notificationID <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   "Validation error",
			"errors":  gin.H{"notification_id": "Invalid notification ID"},
		})
		return
	}

	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	service := services.NewNotificationService(getDB())
	if err := service.MarkRead(c.Request.Context(), notificationID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllApprovalNotificationsRead marks every unread notification of the
// caller as read.
func MarkAllApprovalNotificationsRead(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	service := services.NewNotificationService(getDB())
	if err := service.MarkAllRead(c.Request.Context(), userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
