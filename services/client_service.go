package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"insulation-crm-api/config"
	"insulation-crm-api/models"

	"gorm.io/gorm"
)

// ClientInput is the writable field set for creating or editing a client.
type ClientInput struct {
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

// ClientWithNames is a client row joined with its related display names for
// list endpoints.
type ClientWithNames struct {
	models.Client
	CountyName     string  `gorm:"column:county_name" json:"county_name"`
	SettlementName *string `gorm:"column:settlement_name" json:"settlement_name,omitempty"`
	AgentName      *string `gorm:"column:agent_name" json:"agent_name,omitempty"`
	CreatorName    *string `gorm:"column:creator_name" json:"creator_name,omitempty"`
	ApproverName   *string `gorm:"column:approver_name" json:"approver_name,omitempty"`
}

// CountyWithCount is one county with its open, approved client count.
type CountyWithCount struct {
	CountyID    int    `gorm:"column:id" json:"id"`
	Name        string `gorm:"column:name" json:"name"`
	ClientCount int    `gorm:"column:client_count" json:"client_count"`
}

// ClientService covers the client record store: creation, edits with sticky
// lifecycle dates, reopening and the list queries around them.
type ClientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

// Create inserts a new client. Admin-created clients are approved
// immediately; agent-created clients start in the approval queue.
func (s *ClientService) Create(ctx context.Context, input ClientInput, creator Viewer, meta ActorMeta) (*models.Client, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, NewValidationError("name", "Name is required")
	}

	now := time.Now()
	signedAt, closedAt := ResolveLifecycleDates(
		input.ContractSigned, input.WorkCompleted, nil, nil, now)

	status := models.StatusPending
	if creator.IsAdmin {
		status = models.StatusApproved
	}

	client := models.Client{
		Name:             strings.TrimSpace(input.Name),
		Phone:            strings.TrimSpace(input.Phone),
		Email:            strings.TrimSpace(input.Email),
		Address:          strings.TrimSpace(input.Address),
		CountyID:         input.CountyID,
		SettlementID:     input.SettlementID,
		AgentID:          input.AgentID,
		InsulationArea:   input.InsulationArea,
		Notes:            strings.TrimSpace(input.Notes),
		ContractSigned:   input.ContractSigned,
		ContractSignedAt: signedAt,
		WorkCompleted:    input.WorkCompleted,
		ClosedAt:         closedAt,
		ApprovalStatus:   status,
		CreatedBy:        creator.UserID,
		CreatedAt:        now,
		UpdatedAt:        now,
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

	if err := tx.Create(&client).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	audit := &ApprovalService{db: s.db}
	if err := audit.writeAuditLog(tx, creator.UserID, "create", client.ClientID, meta, map[string]interface{}{
		"name":            client.Name,
		"county_id":       client.CountyID,
		"created_by":      creator.UserID,
		"approval_status": status,
	}, "Client created"); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	config.CacheDelete(ctx, config.CacheKeyCountiesWithCounts)
	return &client, nil
}

// Update applies an edit to an existing client. Admins may change every
// field; agents only their allowed subset, and only on clients that are
// unassigned or assigned to them. Approval status is never touched here.
func (s *ClientService) Update(ctx context.Context, clientID int, input ClientInput, viewer Viewer, meta ActorMeta) (*models.Client, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, NewValidationError("name", "Name is required")
	}

	var client models.Client
	if err := s.db.WithContext(ctx).Where("id = ?", clientID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	if !viewer.IsAdmin {
		assignedToViewer := client.AgentID == nil ||
			(viewer.AgentID != 0 && *client.AgentID == viewer.AgentID)
		if viewer.AgentID == 0 || !assignedToViewer {
			return nil, ErrForbidden
		}
	}

	now := time.Now()
	signedAt, closedAt := ResolveLifecycleDates(
		input.ContractSigned, input.WorkCompleted,
		client.ContractSignedAt, client.ClosedAt, now)

	fields := map[string]interface{}{
		"phone":              strings.TrimSpace(input.Phone),
		"email":              strings.TrimSpace(input.Email),
		"address":            strings.TrimSpace(input.Address),
		"notes":              strings.TrimSpace(input.Notes),
		"insulation_area":    input.InsulationArea,
		"contract_signed":    input.ContractSigned,
		"work_completed":     input.WorkCompleted,
		"contract_signed_at": signedAt,
		"closed_at":          closedAt,
		"updated_at":         now,
	}
	if viewer.IsAdmin {
		fields["name"] = strings.TrimSpace(input.Name)
		fields["county_id"] = input.CountyID
		fields["settlement_id"] = input.SettlementID
		fields["agent_id"] = input.AgentID
	} else {
		// Agents may claim an unassigned client or drop their own
		// assignment, but never hand it to someone else.
		if input.AgentID == nil || *input.AgentID == viewer.AgentID {
			fields["agent_id"] = input.AgentID
		}
	}

	if err := s.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ?", clientID).
		Updates(fields).Error; err != nil {
		return nil, err
	}

	var updated models.Client
	if err := s.db.WithContext(ctx).Where("id = ?", clientID).First(&updated).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// Reopen clears closed_at together with both completion flags. This is the
// only operation allowed to null out a stamped closing date.
func (s *ClientService) Reopen(ctx context.Context, clientID, userID int, meta ActorMeta) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
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
			return ErrClientNotFound
		}
		return err
	}

	if err := tx.Exec(
		"UPDATE clients SET closed_at = NULL, contract_signed = 0, work_completed = 0, updated_at = NOW() WHERE id = ?",
		clientID).Error; err != nil {
		tx.Rollback()
		return err
	}

	audit := &ApprovalService{db: s.db}
	if err := audit.writeAuditLog(tx, userID, "reopen", clientID, meta, map[string]interface{}{
		"name": client.Name,
	}, "Client reopened"); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	config.CacheDelete(ctx, config.CacheKeyCountiesWithCounts)
	return nil
}

// GetByID loads a single client.
func (s *ClientService) GetByID(ctx context.Context, clientID int) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).Where("id = ?", clientID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

// CanView reports whether the viewer may see the client. Pending and
// rejected clients are only visible through the approval queue and the
// submitter's own list, which have their own scoping.
func (s *ClientService) CanView(ctx context.Context, client *models.Client, viewer Viewer) bool {
	if client.ApprovalStatus != models.StatusApproved {
		return client.CreatedBy == viewer.UserID || viewer.IsAdmin
	}
	if viewer.IsAdmin {
		return true
	}
	return client.AgentID == nil || (viewer.AgentID != 0 && *client.AgentID == viewer.AgentID)
}

// PendingClients lists the approval queue with related display names.
func (s *ClientService) PendingClients(ctx context.Context) ([]ClientWithNames, error) {
	clients := []ClientWithNames{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT c.*,
		       co.name AS county_name,
		       s.name AS settlement_name,
		       a.name AS agent_name,
		       u.name AS creator_name
		FROM clients c
		LEFT JOIN counties co ON c.county_id = co.id
		LEFT JOIN settlements s ON c.settlement_id = s.id
		LEFT JOIN agents a ON c.agent_id = a.id
		LEFT JOIN users u ON c.created_by = u.id
		WHERE c.approval_status = 'pending'
		ORDER BY c.created_at DESC`).Scan(&clients).Error
	return clients, err
}

// ClientsByCreator lists a submitter's own clients, pending first so the
// "my requests" page surfaces what still needs attention.
func (s *ClientService) ClientsByCreator(ctx context.Context, userID int) ([]ClientWithNames, error) {
	clients := []ClientWithNames{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT c.*,
		       co.name AS county_name,
		       s.name AS settlement_name,
		       a.name AS agent_name,
		       approver.name AS approver_name
		FROM clients c
		LEFT JOIN counties co ON c.county_id = co.id
		LEFT JOIN settlements s ON c.settlement_id = s.id
		LEFT JOIN agents a ON c.agent_id = a.id
		LEFT JOIN users approver ON c.approved_by = approver.id
		WHERE c.created_by = ?
		ORDER BY
			CASE c.approval_status
				WHEN 'pending' THEN 1
				WHEN 'approved' THEN 2
				WHEN 'rejected' THEN 3
			END,
			c.created_at DESC`,
		userID).Scan(&clients).Error
	return clients, err
}

// CountiesWithCounts lists every county with its open-client count, served
// through the aggregate cache. Approval mutations invalidate the key, so a
// short TTL only covers plain edits.
func (s *ClientService) CountiesWithCounts(ctx context.Context) ([]CountyWithCount, error) {
	counties := []CountyWithCount{}
	if config.CacheGet(ctx, config.CacheKeyCountiesWithCounts, &counties) {
		return counties, nil
	}

	err := s.db.WithContext(ctx).Raw(`
		SELECT co.id, co.name, COUNT(c.id) AS client_count
		FROM counties co
		LEFT JOIN clients c ON c.county_id = co.id
		  AND c.approval_status = 'approved'
		  AND c.closed_at IS NULL
		GROUP BY co.id, co.name
		ORDER BY co.name`).Scan(&counties).Error
	if err != nil {
		return nil, err
	}

	config.CacheSet(ctx, config.CacheKeyCountiesWithCounts, counties, config.CacheTTLShort)
	return counties, nil
}
