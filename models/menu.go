package models

import "time"

// MenuItem is a purchasable café item shown in the mobile client.
type MenuItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:512" json:"description"`
	PriceCents  int       `gorm:"not null" json:"price_cents"`
	Category    string    `gorm:"size:64;index" json:"category"`
	ImageURL    string    `gorm:"size:512" json:"image_url"`
	Available   bool      `gorm:"default:true" json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Promotion is a time-boxed marketing banner.
type Promotion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:128;not null" json:"title"`
	Body      string    `gorm:"size:1024" json:"body"`
	ImageURL  string    `gorm:"size:512" json:"image_url"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	CreatedAt time.Time `json:"created_at"`
}
