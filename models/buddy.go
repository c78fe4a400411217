package models

import "time"

// Feed item kinds consumable by the buddy.
const (
	FeedKindCoffee = "coffee"
	FeedKindBread  = "bread"
)

// Buddy is the per-account virtual pet, embedded in the users table.
// Energy stays in [0,100]. LastEnergyUpdateAt only advances in whole decay
// steps so fractional elapsed time carries over to the next evaluation.
type Buddy struct {
	Energy             int        `json:"energy"`
	CoffeeCount        int        `gorm:"default:0" json:"coffee_count"`
	BreadCount         int        `gorm:"default:0" json:"bread_count"`
	LastEnergyUpdateAt time.Time  `json:"last_energy_update_at"`
	LastLoginRefillAt  *time.Time `json:"last_login_refill_at"`
	LastLoginAt        *time.Time `json:"last_login_at"`
}
