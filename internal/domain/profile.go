package domain

import "time"

// Profile represents a user's public link-in-bio page and its settings.
// The primary key doubles as the owning account id, so a caller can hold
// at most one profile.
type Profile struct {
	ID          string    `gorm:"primaryKey;column:id;type:uuid" json:"id"`
	Username    string    `gorm:"column:username;size:30;uniqueIndex;not null" json:"username"`
	DisplayName *string   `gorm:"column:display_name;size:50" json:"display_name,omitempty"`
	Bio         *string   `gorm:"column:bio;size:200" json:"bio,omitempty"`
	AvatarURL   *string   `gorm:"column:avatar_url;type:text" json:"avatar_url,omitempty"`
	Theme       string    `gorm:"column:theme;size:50;not null;default:default" json:"theme"`
	IsVerified  bool      `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	IsPro       bool      `gorm:"column:is_pro;not null;default:false" json:"is_pro"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Links []Link `gorm:"foreignKey:ProfileID" json:"links,omitempty"`
}

// TableName returns the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}
