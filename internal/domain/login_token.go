package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoginToken is a one-time magic-link token. Only the bcrypt hash is stored;
// the raw token leaves the service exactly once, through the configured
// sender. A token is dead after ConsumedAt is set or ExpiresAt passes.
type LoginToken struct {
	ID         string     `gorm:"primaryKey;column:id;type:uuid" json:"id"`
	Email      string     `gorm:"column:email;size:255;not null;index" json:"email"`
	TokenHash  string     `gorm:"column:token_hash;size:100;not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"column:expires_at;not null" json:"expires_at"`
	ConsumedAt *time.Time `gorm:"column:consumed_at" json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM
func (LoginToken) TableName() string {
	return "login_tokens"
}

func (t *LoginToken) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Usable reports whether the token can still be redeemed at the given time.
func (t *LoginToken) Usable(now time.Time) bool {
	return t.ConsumedAt == nil && now.Before(t.ExpiresAt)
}
