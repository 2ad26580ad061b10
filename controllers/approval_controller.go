package controllers

import (
	"net/http"
	"strconv"

	"insulation-crm-api/services"
	"insulation-crm-api/utils"

	"github.com/gin-gonic/gin"
)

// GetPendingClients lists the approval queue. Admin only (routes).
func GetPendingClients(c *gin.Context) {
	service := services.NewClientService(getDB())

	clients, err := service.PendingClients(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"clients": clients,
		"total":   len(clients),
	})
}

// ApproveClient moves a pending client to approved.
func ApproveClient(c *gin.Context) {
	clientID, err := strconv.Atoi(c.Param("id"))
	if err != nil || clientID <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   "Validation error",
			"errors":  gin.H{"id": "Invalid client ID"},
		})
		return
	}

	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	service := services.NewApprovalService(getDB())
	client, err := service.Approve(c.Request.Context(), clientID, userID, actorMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Client approved",
		"client":  client,
	})
}

// RejectClient moves a pending client to rejected with a mandatory reason.
func RejectClient(c *gin.Context) {
	clientID, err := strconv.Atoi(c.Param("id"))
	if err != nil || clientID <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   "Validation error",
			"errors":  gin.H{"id": "Invalid client ID"},
		})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	service := services.NewApprovalService(getDB())
	client, err := service.Reject(c.Request.Context(), clientID, userID, req.Reason, actorMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Client rejected",
		"client":  client,
	})
}

type resubmitRequest struct {
	Name           string   `json:"name"`
	Phone          string   `json:"phone"`
	Email          string   `json:"email"`
	Address        string   `json:"address"`
	CountyID       int      `json:"county_id"`
	SettlementID   *int     `json:"settlement_id"`
	AgentID        *int     `json:"agent_id"`
	InsulationArea *float64 `json:"insulation_area"`
	ContractSigned bool     `json:"contract_signed"`
	WorkCompleted  bool     `json:"work_completed"`
	Notes          string   `json:"notes"`
}

// ResubmitClient sends a rejected client back to the approval queue with the
// submitter's edits applied.
func ResubmitClient(c *gin.Context) {
	clientID, err := strconv.Atoi(c.Param("id"))
	if err != nil || clientID <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   "Validation error",
			"errors":  gin.H{"id": "Invalid client ID"},
		})
		return
	}

	var req resubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	if !utils.ValidatePhone(req.Phone) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   "Validation error",
			"errors":  gin.H{"phone": "Invalid phone format, expected +36 XX XXX XXXX"},
		})
		return
	}

	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	service := services.NewApprovalService(getDB())
	client, err := service.Resubmit(c.Request.Context(), clientID, userID, services.ResubmitInput{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		CountyID:       req.CountyID,
		SettlementID:   req.SettlementID,
		AgentID:        req.AgentID,
		InsulationArea: req.InsulationArea,
		ContractSigned: req.ContractSigned,
		WorkCompleted:  req.WorkCompleted,
		Notes:          req.Notes,
	}, actorMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Client resubmitted for approval",
		"client":  client,
	})
}
