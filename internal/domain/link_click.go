package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LinkClick is an immutable append-only event recorded when a visitor
// activates a link. It references both the link and its owning profile so
// per-profile totals never need a join. The link reference is intentional
// rather than enforced: a click on a just-deleted link must still insert.
type LinkClick struct {
	ID         string    `gorm:"primaryKey;column:id;type:uuid" json:"id"`
	LinkID     string    `gorm:"column:link_id;type:uuid;not null;index" json:"link_id"`
	ProfileID  string    `gorm:"column:profile_id;type:uuid;not null;index" json:"profile_id"`
	ClickedAt  time.Time `gorm:"column:clicked_at;not null;index" json:"clicked_at"`
	UserAgent  *string   `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	IPAddress  *string   `gorm:"column:ip_address;size:64" json:"ip_address,omitempty"`
	Referrer   *string   `gorm:"column:referrer;size:500" json:"referrer,omitempty"`
	Country    *string   `gorm:"column:country;size:2" json:"country,omitempty"` // ISO country code
	City       *string   `gorm:"column:city;size:100" json:"city,omitempty"`
	DeviceType *string   `gorm:"column:device_type;size:10" json:"device_type,omitempty"` // 'desktop', 'mobile', 'tablet', 'bot'
	Browser    *string   `gorm:"column:browser;size:50" json:"browser,omitempty"`
	OS         *string   `gorm:"column:os;size:50" json:"os,omitempty"`
}

// TableName returns the table name for GORM
func (LinkClick) TableName() string {
	return "link_clicks"
}

func (c *LinkClick) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.ClickedAt.IsZero() {
		c.ClickedAt = time.Now().UTC()
	}
	return nil
}
