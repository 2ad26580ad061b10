package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strings"

	"insulation-crm-api/models"

	"gorm.io/gorm"
)

// Viewer identifies the requesting user for scoping notification queries.
// AgentID is 0 when the user has no agent identity; the SQL then matches
// only unassigned clients, same as the original behaviour.
type Viewer struct {
	UserID  int
	AgentID int
	IsAdmin bool
}

// CountyNewCount is one row of the per-county "new clients" aggregation.
type CountyNewCount struct {
	CountyID   int    `gorm:"column:county_id" json:"county_id"`
	CountyName string `gorm:"column:county_name" json:"county_name"`
	NewCount   int    `gorm:"column:new_count" json:"new_count"`
}

// CountsPayload is the aggregate returned by GET /notifications/counts.
type CountsPayload struct {
	ApprovalsPending   int64            `json:"approvals_pending"`
	NewClientsTotal    int64            `json:"new_clients_total"`
	NewClientsByCounty []CountyNewCount `json:"new_clients_by_county"`
}

// StreamPayload is the full frame pushed over the SSE channel.
type StreamPayload struct {
	ApprovalsPending      int64                         `json:"approvals_pending"`
	NewClientsTotal       int64                         `json:"new_clients_total"`
	NewClientsByCounty    []CountyNewCount              `json:"new_clients_by_county"`
	ApprovalNotifications []models.ApprovalNotification `json:"approval_notifications"`
}

// Hash returns a digest of the serialized payload so the stream can skip
// frames whose content did not change.
func (p StreamPayload) Hash() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

// NotificationService computes point-in-time notification state: pending
// approval counts, unviewed client counts and unread approval outcomes.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// PendingApprovalsCount counts clients waiting in the approval queue.
func (s *NotificationService) PendingApprovalsCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM clients WHERE approval_status = 'pending'").
		Scan(&count).Error
	return count, err
}

// NewClientsTotal counts approved, open clients the viewer has not seen yet.
// Non-admins only count their own and unassigned clients.
func (s *NotificationService) NewClientsTotal(ctx context.Context, viewer Viewer) (int64, error) {
	sql := `
		SELECT COUNT(DISTINCT c.id)
		FROM clients c
		LEFT JOIN client_views cv ON c.id = cv.client_id AND cv.user_id = ?
		WHERE c.approval_status = 'approved'
		  AND c.closed_at IS NULL
		  AND cv.viewed_at IS NULL`
	args := []interface{}{viewer.UserID}
	if !viewer.IsAdmin {
		sql += " AND (c.agent_id = ? OR c.agent_id IS NULL)"
		args = append(args, viewer.AgentID)
	}

	var count int64
	err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&count).Error
	return count, err
}

// NewClientsByCounty is NewClientsTotal grouped by county; zero-count
// counties are omitted.
func (s *NotificationService) NewClientsByCounty(ctx context.Context, viewer Viewer) ([]CountyNewCount, error) {
	sql := `
		SELECT c.county_id, co.name AS county_name, COUNT(DISTINCT c.id) AS new_count
		FROM clients c
		JOIN counties co ON c.county_id = co.id
		LEFT JOIN client_views cv ON c.id = cv.client_id AND cv.user_id = ?
		WHERE c.approval_status = 'approved'
		  AND c.closed_at IS NULL
		  AND cv.viewed_at IS NULL`
	args := []interface{}{viewer.UserID}
	if !viewer.IsAdmin {
		sql += " AND (c.agent_id = ? OR c.agent_id IS NULL)"
		args = append(args, viewer.AgentID)
	}
	sql += " GROUP BY c.county_id, co.name HAVING new_count > 0"

	counts := []CountyNewCount{}
	err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&counts).Error
	return counts, err
}

// Counts assembles the aggregate payload for one viewer. Pending approval
// counts are only exposed to admins; everyone else gets 0.
func (s *NotificationService) Counts(ctx context.Context, viewer Viewer) (CountsPayload, error) {
	payload := CountsPayload{NewClientsByCounty: []CountyNewCount{}}

	if viewer.IsAdmin {
		pending, err := s.PendingApprovalsCount(ctx)
		if err != nil {
			return payload, err
		}
		payload.ApprovalsPending = pending
	}

	total, err := s.NewClientsTotal(ctx, viewer)
	if err != nil {
		return payload, err
	}
	payload.NewClientsTotal = total

	byCounty, err := s.NewClientsByCounty(ctx, viewer)
	if err != nil {
		return payload, err
	}
	payload.NewClientsByCounty = byCounty

	return payload, nil
}

// MarkClientViewed upserts the view watermark for one (client, user) pair.
// Calling it again just refreshes viewed_at.
func (s *NotificationService) MarkClientViewed(ctx context.Context, clientID, userID int) error {
	return s.db.WithContext(ctx).Exec(`
		INSERT INTO client_views (client_id, user_id, viewed_at)
		VALUES (?, ?, NOW())
		ON DUPLICATE KEY UPDATE viewed_at = NOW()`,
		clientID, userID).Error
}

// MarkCountyClientsViewed touches the watermark for every client in the
// county that is currently visible to the viewer. Returns how many clients
// were marked.
func (s *NotificationService) MarkCountyClientsViewed(ctx context.Context, countyID int, viewer Viewer) (int, error) {
	sql := `
		SELECT id FROM clients
		WHERE county_id = ?
		  AND approval_status = 'approved'
		  AND closed_at IS NULL`
	args := []interface{}{countyID}
	if !viewer.IsAdmin {
		sql += " AND (agent_id = ? OR agent_id IS NULL)"
		args = append(args, viewer.AgentID)
	}

	var clientIDs []int
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&clientIDs).Error; err != nil {
		return 0, err
	}
	if len(clientIDs) == 0 {
		return 0, nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO client_views (client_id, user_id, viewed_at) VALUES ")
	binds := make([]interface{}, 0, len(clientIDs)*2)
	for i, clientID := range clientIDs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, NOW())")
		binds = append(binds, clientID, viewer.UserID)
	}
	b.WriteString(" ON DUPLICATE KEY UPDATE viewed_at = NOW()")

	if err := s.db.WithContext(ctx).Exec(b.String(), binds...).Error; err != nil {
		return 0, err
	}
	return len(clientIDs), nil
}

// UnreadApprovalNotifications lists the viewer's unread approval outcomes,
// newest first.
func (s *NotificationService) UnreadApprovalNotifications(ctx context.Context, userID int) ([]models.ApprovalNotification, error) {
	notifications := []models.ApprovalNotification{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, client_id, user_id, client_name, approval_status, rejection_reason, created_at, read_at
		FROM approval_notifications
		WHERE user_id = ? AND read_at IS NULL
		ORDER BY created_at DESC`,
		userID).Scan(&notifications).Error
	return notifications, err
}

// MarkRead stamps read_at on one of the viewer's notifications. Marking a
// row that does not exist or is already read is a no-op, not an error.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID int) error {
	return s.db.WithContext(ctx).Exec(
		"UPDATE approval_notifications SET read_at = NOW() WHERE id = ? AND user_id = ?",
		notificationID, userID).Error
}

// MarkAllRead stamps read_at on every unread notification of the viewer.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int) error {
	return s.db.WithContext(ctx).Exec(
		"UPDATE approval_notifications SET read_at = NOW() WHERE user_id = ? AND read_at IS NULL",
		userID).Error
}

// StreamCounts builds the full SSE frame for a viewer.
func (s *NotificationService) StreamCounts(ctx context.Context, viewer Viewer) (StreamPayload, error) {
	counts, err := s.Counts(ctx, viewer)
	if err != nil {
		return StreamPayload{}, err
	}

	notifications, err := s.UnreadApprovalNotifications(ctx, viewer.UserID)
	if err != nil {
		return StreamPayload{}, err
	}

	return StreamPayload{
		ApprovalsPending:      counts.ApprovalsPending,
		NewClientsTotal:       counts.NewClientsTotal,
		NewClientsByCounty:    counts.NewClientsByCounty,
		ApprovalNotifications: notifications,
	}, nil
}
