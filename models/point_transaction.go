package models

import "time"

// Point transaction types.
const (
	PointTxEarn  = "earn"
	PointTxSpend = "spend"
)

// Point transaction sources.
const (
	PointSourceReceipt    = "receipt"
	PointSourcePosSale    = "pos_sale"
	PointSourceRedemption = "redemption"
)

// PointTransaction is an append-only history entry for the points ledger.
// Rows are never mutated or deleted after creation.
type PointTransaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Type      string    `gorm:"size:16;not null" json:"type"`
	Amount    int       `gorm:"not null" json:"amount"`
	Source    string    `gorm:"size:32;not null" json:"source"`
	Reference string    `gorm:"size:128" json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}
