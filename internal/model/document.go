package model

import "time"

type Document struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	IsShared  bool      `gorm:"not null;default:false;index" json:"is_shared"`
	CreatedAt time.Time `json:"created_at"`
}
