package models

import "time"

// Role IDs used throughout the API.
const (
	RoleAgent = 1
	RoleAdmin = 2
)

type User struct {
	UserID    int       `gorm:"primaryKey;column:id" json:"id"`
	Name      string    `gorm:"column:name" json:"name"`
	Email     string    `gorm:"column:email;unique" json:"email"`
	Password  string    `gorm:"column:password" json:"-"`
	RoleID    int       `gorm:"column:role_id" json:"role_id"`
	AgentID   *int      `gorm:"column:agent_id" json:"agent_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`

	// Relations
	Agent *Agent `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.RoleID == RoleAdmin
}
