package models

import "time"

// Gift card statuses.
const (
	GiftCardActive    = "ACTIVE"
	GiftCardRedeemed  = "REDEEMED"
	GiftCardCancelled = "CANCELLED"
)

// GiftCard is a prepaid card sent between accounts. Status moves
// ACTIVE -> REDEEMED or ACTIVE -> CANCELLED, never back.
type GiftCard struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Code        string     `gorm:"size:36;uniqueIndex;not null" json:"code"`
	AmountCents int        `gorm:"not null" json:"amount_cents"`
	Status      string     `gorm:"size:16;not null;default:ACTIVE" json:"status"`
	SenderID    uint       `gorm:"index;not null" json:"sender_id"`
	RecipientID *uint      `gorm:"index" json:"recipient_id"`
	Email       string     `gorm:"size:255" json:"email"`
	Message     string     `gorm:"size:512" json:"message"`
	RedeemedAt  *time.Time `json:"redeemed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}
