package models

import "time"

// Redemption statuses. Created is the only non-terminal state.
const (
	RedemptionCreated  = "created"
	RedemptionConsumed = "consumed"
	RedemptionExpired  = "expired"
)

// Redemption represents one in-flight or completed points-for-reward exchange.
// CostPoints is captured at creation and never changes afterwards, so
// outstanding tokens survive later edits to the reward cost table.
type Redemption struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	UserID     uint       `gorm:"index:idx_redemptions_user_created;not null" json:"user_id"`
	RewardKind string     `gorm:"size:64;not null" json:"reward_kind"`
	CostPoints int        `gorm:"not null" json:"cost_points"`
	Status     string     `gorm:"size:16;not null;default:created" json:"status"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at"`
	ConsumedBy string     `gorm:"size:64" json:"consumed_by"`
	CreatedAt  time.Time  `gorm:"index:idx_redemptions_user_created" json:"created_at"`
}
