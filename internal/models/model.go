package models

import "time"

// Model replaces gorm.Model: records are deleted outright, so there is no DeletedAt.
type Model struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Sequence holds the last reserved value of a human-readable identifier series.
type Sequence struct {
	Name  string `gorm:"primaryKey;size:32"`
	Value int64  `gorm:"not null"`
}
