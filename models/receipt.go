package models

import "time"

// Receipt sources. Receipts and direct POS sales share the replay guard but
// live in different external identifier namespaces.
const (
	ReceiptSourcePurchase = "receipt"
	ReceiptSourcePosSale  = "pos_sale"
)

// Receipt is an append-only record proving one external purchase was credited.
// The uniqueness constraint on (source, external_id) is the anti-replay
// mechanism: a failed insert means the purchase was already processed. The
// constraint is scoped per source so a sale identifier can never collide with
// a receipt identifier.
type Receipt struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ExternalID     string    `gorm:"size:128;not null;uniqueIndex:idx_receipts_source_external" json:"external_id"`
	Source         string    `gorm:"size:16;not null;uniqueIndex:idx_receipts_source_external" json:"source"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	TotalCents     int       `gorm:"not null" json:"total_cents"`
	PointsCredited int       `gorm:"not null" json:"points_credited"`
	CreatedAt      time.Time `json:"created_at"`
}
