package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a loyalty program account. Passwords are stored as bcrypt hashes only.
// The buddy sub-record is embedded: it has no identity or lifecycle of its own,
// which keeps decay-and-feed updates inside one row write.
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Username       string         `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email          string         `gorm:"size:255;uniqueIndex" json:"email"`
	PasswordHash   string         `gorm:"size:255" json:"-"`
	Points         int            `gorm:"default:0" json:"points"`
	LifetimePoints int            `gorm:"default:0" json:"lifetime_points"`
	Buddy          Buddy          `gorm:"embedded;embeddedPrefix:buddy_" json:"buddy"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook ensures timestamps and the buddy decay anchor are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Buddy.LastEnergyUpdateAt.IsZero() {
		u.Buddy.LastEnergyUpdateAt = now
		u.Buddy.Energy = 100
	}
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
