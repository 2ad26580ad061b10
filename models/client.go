package models

import "time"

// Approval status values for clients and approval notifications.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Client represents an insulation-installation lead.
type Client struct {
	ClientID         int        `gorm:"primaryKey;column:id" json:"id"`
	Name             string     `gorm:"column:name" json:"name"`
	Phone            string     `gorm:"column:phone" json:"phone"`
	Email            string     `gorm:"column:email" json:"email"`
	Address          string     `gorm:"column:address" json:"address"`
	CountyID         int        `gorm:"column:county_id" json:"county_id"`
	SettlementID     *int       `gorm:"column:settlement_id" json:"settlement_id,omitempty"`
	AgentID          *int       `gorm:"column:agent_id" json:"agent_id,omitempty"`
	InsulationArea   *float64   `gorm:"column:insulation_area" json:"insulation_area,omitempty"`
	Notes            string     `gorm:"column:notes" json:"notes"`
	ContractSigned   bool       `gorm:"column:contract_signed" json:"contract_signed"`
	ContractSignedAt *time.Time `gorm:"column:contract_signed_at" json:"contract_signed_at,omitempty"`
	WorkCompleted    bool       `gorm:"column:work_completed" json:"work_completed"`
	ClosedAt         *time.Time `gorm:"column:closed_at" json:"closed_at,omitempty"`
	ApprovalStatus   string     `gorm:"column:approval_status" json:"approval_status"`
	RejectionReason  *string    `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	CreatedBy        int        `gorm:"column:created_by" json:"created_by"`
	ApprovedBy       *int       `gorm:"column:approved_by" json:"approved_by,omitempty"`
	ApprovedAt       *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	CreatedAt        time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	County     *County     `gorm:"foreignKey:CountyID" json:"county,omitempty"`
	Settlement *Settlement `gorm:"foreignKey:SettlementID" json:"settlement,omitempty"`
	Agent      *Agent      `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
}

func (Client) TableName() string {
	return "clients"
}

// IsOpen reports whether the client still counts toward county listings,
// i.e. it has not been closed yet.
func (c *Client) IsOpen() bool {
	return c.ClosedAt == nil
}
