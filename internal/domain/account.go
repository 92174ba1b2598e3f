package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is the authenticated principal behind the auth boundary. It is
// created on the first successful magic-link verification; its id is what
// the dashboard uses as the Profile primary key.
type Account struct {
	ID          string     `gorm:"primaryKey;column:id;type:uuid" json:"id"`
	Email       string     `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	LastLoginAt *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

func (a *Account) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
