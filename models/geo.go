package models

// County is the top-level geographic grouping for client lists and counts.
type County struct {
	CountyID int    `gorm:"primaryKey;column:id" json:"id"`
	Name     string `gorm:"column:name" json:"name"`
}

func (County) TableName() string {
	return "counties"
}

type Settlement struct {
	SettlementID int    `gorm:"primaryKey;column:id" json:"id"`
	CountyID     int    `gorm:"column:county_id" json:"county_id"`
	Name         string `gorm:"column:name" json:"name"`
}

func (Settlement) TableName() string {
	return "settlements"
}

// Agent is a non-admin salesperson optionally assigned to clients.
type Agent struct {
	AgentID int    `gorm:"primaryKey;column:id" json:"id"`
	Name    string `gorm:"column:name" json:"name"`
	Color   string `gorm:"column:color" json:"color"`
}

func (Agent) TableName() string {
	return "agents"
}
