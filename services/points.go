package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/beanbuddy/beanbuddy/models"
)

// PointsService tracks current and lifetime point balances per account.
// Balance mutations are single atomic UPDATE statements, never a
// read-modify-write at the application layer, so concurrent credits and
// debits against the same account cannot lose updates.
type PointsService struct {
	db *gorm.DB
}

// Balance holds the spendable and lifetime totals for one account.
type Balance struct {
	Current  int `json:"current"`
	Lifetime int `json:"lifetime"`
}

// NewPointsService creates a PointsService.
func NewPointsService(db *gorm.DB) *PointsService {
	return &PointsService{db: db}
}

// Credit adds amount to both the current and lifetime balance and records an
// immutable history entry. Amount must be positive.
func (s *PointsService) Credit(accountID uint, amount int, source, reference string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return creditTx(tx, accountID, amount, source, reference)
	})
}

// Debit subtracts amount from the current balance only; lifetime totals are
// a cumulative high-water metric and never go down. The balance check and
// decrement are one conditional statement, so the balance can never be driven
// negative by concurrent debits.
func (s *PointsService) Debit(accountID uint, amount int, source, reference string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return debitTx(tx, accountID, amount, source, reference)
	})
}

// BalanceOf returns the current and lifetime balances for an account.
func (s *PointsService) BalanceOf(accountID uint) (*Balance, error) {
	var user models.User
	if err := s.db.Select("points", "lifetime_points").First(&user, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &Balance{Current: user.Points, Lifetime: user.LifetimePoints}, nil
}

// History returns the most recent ledger entries for an account, newest first.
func (s *PointsService) History(accountID uint, limit int) ([]models.PointTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var entries []models.PointTransaction
	err := s.db.Where("user_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func creditTx(tx *gorm.DB, accountID uint, amount int, source, reference string) error {
	res := tx.Model(&models.User{}).Where("id = ?", accountID).Updates(map[string]interface{}{
		"points":          gorm.Expr("points + ?", amount),
		"lifetime_points": gorm.Expr("lifetime_points + ?", amount),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return tx.Create(&models.PointTransaction{
		UserID:    accountID,
		Type:      models.PointTxEarn,
		Amount:    amount,
		Source:    source,
		Reference: reference,
	}).Error
}

func debitTx(tx *gorm.DB, accountID uint, amount int, source, reference string) error {
	res := tx.Model(&models.User{}).
		Where("id = ? AND points >= ?", accountID, amount).
		Update("points", gorm.Expr("points - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either the account is missing or the balance is short; distinguish
		// for the caller.
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", accountID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrInsufficientPoints
	}
	return tx.Create(&models.PointTransaction{
		UserID:    accountID,
		Type:      models.PointTxSpend,
		Amount:    amount,
		Source:    source,
		Reference: reference,
	}).Error
}
