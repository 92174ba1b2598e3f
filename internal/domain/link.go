package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Link is one outbound URL entry owned by a Profile. Position defines the
// display order; it is assigned monotonically on creation and never reused
// or compacted.
type Link struct {
	ID          string    `gorm:"primaryKey;column:id;type:uuid" json:"id"`
	ProfileID   string    `gorm:"column:profile_id;type:uuid;not null;index" json:"profile_id"`
	Title       string    `gorm:"column:title;size:100;not null" json:"title"`
	URL         string    `gorm:"column:url;type:text;not null" json:"url"`
	Description *string   `gorm:"column:description;size:200" json:"description,omitempty"`
	Icon        *string   `gorm:"column:icon;size:100" json:"icon,omitempty"`
	Position    int       `gorm:"column:position;not null;default:0" json:"position"`
	IsVisible   bool      `gorm:"column:is_visible;not null;default:true" json:"is_visible"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM
func (Link) TableName() string {
	return "links"
}

func (l *Link) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
