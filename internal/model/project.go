package model

import "time"

type Project struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Icon      string    `gorm:"size:64" json:"icon"`
	Color     string    `gorm:"size:32" json:"color"`
	CreatedAt time.Time `json:"created_at"`
}
