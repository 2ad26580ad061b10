package models

import "time"

// ClientView is a per-(client, user) high-water mark recording when the user
// last acknowledged the client as seen. Last write wins, no history.
type ClientView struct {
	ClientID int       `gorm:"primaryKey;column:client_id" json:"client_id"`
	UserID   int       `gorm:"primaryKey;column:user_id" json:"user_id"`
	ViewedAt time.Time `gorm:"column:viewed_at" json:"viewed_at"`
}

func (ClientView) TableName() string {
	return "client_views"
}
