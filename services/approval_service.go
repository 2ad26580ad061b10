package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"insulation-crm-api/config"
	"insulation-crm-api/models"

	"gorm.io/gorm"
)

// ActorMeta carries request metadata for the audit trail.
type ActorMeta struct {
	IPAddress string
	UserAgent string
}

// ResubmitInput is the editable field set applied when a submitter sends a
// rejected client back for approval.
type ResubmitInput struct {
	Name           string
	Phone          string
	Email          string
	Address        string
	CountyID       int
	SettlementID   *int
	AgentID        *int
	InsulationArea *float64
	ContractSigned bool
	WorkCompleted  bool
	Notes          string
}

// ApprovalService owns the pending/approved/rejected state machine. Every
// transition and its side-effect notification run in one transaction, so a
// status change without its notification is never observable.
type ApprovalService struct {
	db *gorm.DB
}

func NewApprovalService(db *gorm.DB) *ApprovalService {
	return &ApprovalService{db: db}
}

// Approve moves a pending client to approved and notifies the submitter.
// Approving a client that is not pending returns ErrNotPending; re-running
// the transition silently would duplicate notifications.
func (s *ApprovalService) Approve(ctx context.Context, clientID, approverID int, meta ActorMeta) (*models.Client, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var client models.Client
	if err := tx.Where("id = ?", clientID).First(&client).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	if client.ApprovalStatus != models.StatusPending {
		tx.Rollback()
		return nil, ErrNotPending
	}

	now := time.Now()
	if err := tx.Model(&models.Client{}).
		Where("id = ?", client.ClientID).
		Updates(map[string]interface{}{
			"approval_status": models.StatusApproved,
			"approved_by":     approverID,
			"approved_at":     now,
			"updated_at":      now,
		}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if client.CreatedBy != 0 && client.CreatedBy != approverID {
		notification := models.ApprovalNotification{
			ClientID:       client.ClientID,
			UserID:         client.CreatedBy,
			ClientName:     client.Name,
			ApprovalStatus: models.StatusApproved,
			CreatedAt:      now,
		}
		if err := tx.Create(&notification).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := s.writeAuditLog(tx, approverID, "approve", client.ClientID, meta, map[string]interface{}{
		"name":            client.Name,
		"county_id":       client.CountyID,
		"created_by":      client.CreatedBy,
		"approval_status": models.StatusApproved,
	}, "Client approved"); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// Approved client now counts toward its county
	config.CacheDelete(ctx, config.CacheKeyCountiesWithCounts)

	client.ApprovalStatus = models.StatusApproved
	client.ApprovedBy = &approverID
	client.ApprovedAt = &now
	client.UpdatedAt = now
	return &client, nil
}

// Reject moves a pending client to rejected. The reason is mandatory and is
// carried on both the client record and the notification.
func (s *ApprovalService) Reject(ctx context.Context, clientID, approverID int, reason string, meta ActorMeta) (*models.Client, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, NewValidationError("rejection_reason", "Rejection reason is required")
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var client models.Client
	if err := tx.Where("id = ?", clientID).First(&client).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	if client.ApprovalStatus != models.StatusPending {
		tx.Rollback()
		return nil, ErrNotPending
	}

	var submitter models.User
	submitterLoaded := false
	if client.CreatedBy != 0 {
		if err := tx.Where("id = ?", client.CreatedBy).First(&submitter).Error; err == nil {
			submitterLoaded = true
		}
	}

	now := time.Now()
	if err := tx.Model(&models.Client{}).
		Where("id = ?", client.ClientID).
		Updates(map[string]interface{}{
			"approval_status":  models.StatusRejected,
			"rejection_reason": reason,
			"approved_by":      approverID,
			"approved_at":      now,
			"updated_at":       now,
		}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if client.CreatedBy != 0 {
		notification := models.ApprovalNotification{
			ClientID:        client.ClientID,
			UserID:          client.CreatedBy,
			ClientName:      client.Name,
			ApprovalStatus:  models.StatusRejected,
			RejectionReason: &reason,
			CreatedAt:       now,
		}
		if err := tx.Create(&notification).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := s.writeAuditLog(tx, approverID, "reject", client.ClientID, meta, map[string]interface{}{
		"name":             client.Name,
		"county_id":        client.CountyID,
		"created_by":       client.CreatedBy,
		"approval_status":  models.StatusRejected,
		"rejection_reason": reason,
	}, "Client rejected"); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	config.CacheDelete(ctx, config.CacheKeyCountiesWithCounts)

	// Best-effort courtesy mail; the notification row is the source of truth.
	if submitterLoaded && submitter.Email != "" {
		if err := sendRejectionEmail(submitter.Email, client.Name, reason); err != nil {
			log.Printf("Failed to send rejection email for client %d: %v", client.ClientID, err)
		}
	}

	client.ApprovalStatus = models.StatusRejected
	client.RejectionReason = &reason
	client.ApprovedBy = &approverID
	client.ApprovedAt = &now
	client.UpdatedAt = now
	return &client, nil
}

// Resubmit applies the submitter's edits to a rejected client and sends it
// back to the approval queue. The previous rejection_reason is kept for
// historical display until an admin overwrites it with a new rejection.
func (s *ApprovalService) Resubmit(ctx context.Context, clientID, submitterID int, input ResubmitInput, meta ActorMeta) (*models.Client, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, NewValidationError("name", "Name is required")
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var client models.Client
	if err := tx.Where("id = ?", clientID).First(&client).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	if client.CreatedBy != submitterID {
		tx.Rollback()
		return nil, ErrNotSubmitter
	}
	if client.ApprovalStatus != models.StatusRejected {
		tx.Rollback()
		return nil, ErrNotRejected
	}

	now := time.Now()
	signedAt, closedAt := ResolveLifecycleDates(
		input.ContractSigned, input.WorkCompleted,
		client.ContractSignedAt, client.ClosedAt, now)

	if err := tx.Model(&models.Client{}).
		Where("id = ?", client.ClientID).
		Updates(map[string]interface{}{
			"name":               strings.TrimSpace(input.Name),
			"phone":              strings.TrimSpace(input.Phone),
			"email":              strings.TrimSpace(input.Email),
			"address":            strings.TrimSpace(input.Address),
			"county_id":          input.CountyID,
			"settlement_id":      input.SettlementID,
			"agent_id":           input.AgentID,
			"insulation_area":    input.InsulationArea,
			"contract_signed":    input.ContractSigned,
			"work_completed":     input.WorkCompleted,
			"notes":              strings.TrimSpace(input.Notes),
			"contract_signed_at": signedAt,
			"closed_at":          closedAt,
			"approval_status":    models.StatusPending,
			"approved_by":        nil,
			"approved_at":        nil,
			"updated_at":         now,
		}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := s.writeAuditLog(tx, submitterID, "resubmit", client.ClientID, meta, map[string]interface{}{
		"name":            strings.TrimSpace(input.Name),
		"county_id":       input.CountyID,
		"approval_status": models.StatusPending,
	}, "Client resubmitted for approval"); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// Status left approved/rejected, so the cached county counts are stale
	config.CacheDelete(ctx, config.CacheKeyCountiesWithCounts)

	var updated models.Client
	if err := s.db.WithContext(ctx).Where("id = ?", client.ClientID).First(&updated).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *ApprovalService) writeAuditLog(tx *gorm.DB, userID int, action string, clientID int, meta ActorMeta, values map[string]interface{}, description string) error {
	serialized, _ := json.Marshal(values)
	newValues := string(serialized)

	entityID := clientID
	audit := models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: "client",
		EntityID:   &entityID,
		NewValues:  &newValues,
		IPAddress:  meta.IPAddress,
		CreatedAt:  time.Now(),
	}
	if description != "" {
		audit.Description = &description
	}
	if ua := strings.TrimSpace(meta.UserAgent); ua != "" {
		audit.UserAgent = &ua
	}
	return tx.Create(&audit).Error
}

func sendRejectionEmail(to, clientName, reason string) error {
	subject := fmt.Sprintf("Client rejected: %s", clientName)
	body := fmt.Sprintf(
		"<p>Your client <strong>%s</strong> was rejected.</p><p>Reason: %s</p><p>You can edit and resubmit it from your requests page.</p>",
		clientName, reason)
	return config.SendMail([]string{to}, subject, body)
}
