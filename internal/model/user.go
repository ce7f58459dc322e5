package model

import "time"

// User mirrors accounts managed by the external identity provider.
// Rows are created lazily the first time a token for an unknown subject is seen.
type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"size:128;index" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
