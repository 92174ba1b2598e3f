package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PageView is an immutable append-only event recorded when a public profile
// page is visited. Written by unauthenticated traffic; never updated or
// deleted by this service.
type PageView struct {
	ID         string    `gorm:"primaryKey;column:id;type:uuid" json:"id"`
	ProfileID  string    `gorm:"column:profile_id;type:uuid;not null;index" json:"profile_id"`
	ViewedAt   time.Time `gorm:"column:viewed_at;not null;index" json:"viewed_at"`
	UserAgent  *string   `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	IPAddress  *string   `gorm:"column:ip_address;size:64" json:"ip_address,omitempty"`
	Referrer   *string   `gorm:"column:referrer;size:500" json:"referrer,omitempty"`
	Country    *string   `gorm:"column:country;size:2" json:"country,omitempty"` // ISO country code
	City       *string   `gorm:"column:city;size:100" json:"city,omitempty"`
	DeviceType *string   `gorm:"column:device_type;size:10" json:"device_type,omitempty"` // 'desktop', 'mobile', 'tablet', 'bot'
	Browser    *string   `gorm:"column:browser;size:50" json:"browser,omitempty"`
	OS         *string   `gorm:"column:os;size:50" json:"os,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM
func (PageView) TableName() string {
	return "page_views"
}

func (v *PageView) BeforeCreate(_ *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.ViewedAt.IsZero() {
		v.ViewedAt = time.Now().UTC()
	}
	return nil
}
