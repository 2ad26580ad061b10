package controllers

import (
	"net/http"
	"strconv"

	"insulation-crm-api/services"
	"insulation-crm-api/utils"

	"github.com/gin-gonic/gin"
)

type clientRequest struct {
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

func (r *clientRequest) validate() (map[string]string, bool) {
	errs := map[string]string{}
	if utils.SanitizeInput(r.Name) == "" {
		errs["name"] = "Name is required"
	}
	if r.CountyID <= 0 {
		errs["county_id"] = "County is required"
	}
	if !utils.ValidatePhone(r.Phone) {
		errs["phone"] = "Invalid phone format, expected +36 XX XXX XXXX"
	}
	if r.Email != "" && !utils.ValidateEmail(r.Email) {
		errs["email"] = "Invalid email address"
	}
	return errs, len(errs) == 0
}

func (r *clientRequest) toInput() services.ClientInput {
	return services.ClientInput{
		Name:           r.Name,
		Phone:          r.Phone,
		Email:          r.Email,
		Address:        r.Address,
		CountyID:       r.CountyID,
		SettlementID:   r.SettlementID,
		AgentID:        r.AgentID,
		InsulationArea: r.InsulationArea,
		ContractSigned: r.ContractSigned,
		WorkCompleted:  r.WorkCompleted,
		Notes:          r.Notes,
	}
}

// CreateClient inserts a new lead. Agents create pending clients, admins
// create approved ones directly.
func CreateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	if errs, ok := req.validate(); !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   "Validation error",
			"errors":  errs,
		})
		return
	}

	viewer, ok := currentViewer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	service := services.NewClientService(getDB())
	client, err := service.Create(c.Request.Context(), req.toInput(), viewer, actorMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "Client created"
	if !viewer.IsAdmin {
		message = "Client created, awaiting admin approval"
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": message,
		"client":  client,
	})
}

// UpdateClient edits an existing client without touching approval status.
func UpdateClient(c *gin.Context) {
	clientID, err := strconv.Atoi(c.Param("id"))
	if err != nil || clientID <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   "Validation error",
			"errors":  gin.H{"id": "Invalid client ID"},
		})
		return
	}

	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	if errs, ok := req.validate(); !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   "Validation error",
			"errors":  errs,
		})
		return
	}

	viewer, ok := currentViewer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	service := services.NewClientService(getDB())
	client, err := service.Update(c.Request.Context(), clientID, req.toInput(), viewer, actorMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Client updated",
		"client":  client,
	})
}

// GetClient loads one client, applying visibility rules.
func GetClient(c *gin.Context) {
	clientID, err := strconv.Atoi(c.Param("id"))
	if err != nil || clientID <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   "Validation error",
			"errors":  gin.H{"id": "Invalid client ID"},
		})
		return
	}

	viewer, ok := currentViewer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	service := services.NewClientService(getDB())
	client, err := service.GetByID(c.Request.Context(), clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !service.CanView(c.Request.Context(), client, viewer) {
		respondServiceError(c, services.ErrForbidden)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "client": client})
}

// GetMyRequests lists the caller's own submissions, pending first.
func GetMyRequests(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	service := services.NewClientService(getDB())
	clients, err := service.ClientsByCreator(c.Request.Context(), userID)
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

// ReopenClient clears a client's closing date and completion flags. This is
// the explicit counterpart of the automatic close stamping.
func ReopenClient(c *gin.Context) {
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

	service := services.NewClientService(getDB())
	if err := service.Reopen(c.Request.Context(), clientID, userID, actorMeta(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Client reopened"})
}

// GetCounties lists counties with open-client counts (cached aggregate).
func GetCounties(c *gin.Context) {
	service := services.NewClientService(getDB())
	counties, err := service.CountiesWithCounts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "counties": counties})
}
