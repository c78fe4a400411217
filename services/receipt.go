package services

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/beanbuddy/beanbuddy/models"
)

// ReceiptService credits purchase points at most once per external purchase
// identifier within its source namespace. The uniqueness constraint on
// (source, external_id) is the sole synchronization point: an insert that
// fails with a duplicate key means the purchase was already processed, and
// the caller gets a zero-point success so retries stay safe.
type ReceiptService struct {
	db     *gorm.DB
	points *PointsService
	logger *zap.SugaredLogger
	// pointsPerCurrencyUnit is how many currency units earn one point.
	pointsPerCurrencyUnit int
}

// CreditResult reports the outcome of a receipt or sale submission.
type CreditResult struct {
	PointsAdded  int `json:"points_added"`
	TotalBalance int `json:"total_balance"`
}

// NewReceiptService creates a ReceiptService.
func NewReceiptService(db *gorm.DB, points *PointsService, logger *zap.SugaredLogger, pointsPerCurrencyUnit int) *ReceiptService {
	if pointsPerCurrencyUnit <= 0 {
		pointsPerCurrencyUnit = 10
	}
	return &ReceiptService{db: db, points: points, logger: logger, pointsPerCurrencyUnit: pointsPerCurrencyUnit}
}

// CreditFromReceipt credits points for a scanned purchase receipt.
func (s *ReceiptService) CreditFromReceipt(receiptID string, accountID uint, totalCents int) (*CreditResult, error) {
	return s.credit(receiptID, models.ReceiptSourcePurchase, accountID, totalCents)
}

// CreditFromPosSale credits points for a sale rung up directly at a terminal.
// Same replay guard as receipts, keyed in the sale identifier namespace.
func (s *ReceiptService) CreditFromPosSale(saleID string, accountID uint, totalCents int) (*CreditResult, error) {
	return s.credit(saleID, models.ReceiptSourcePosSale, accountID, totalCents)
}

func (s *ReceiptService) credit(externalID, source string, accountID uint, totalCents int) (*CreditResult, error) {
	points := totalCents / s.pointsPerCurrencyUnit
	if points <= 0 {
		return nil, ErrNoPointsEarned
	}

	receipt := models.Receipt{
		ExternalID:     externalID,
		Source:         source,
		UserID:         accountID,
		TotalCents:     totalCents,
		PointsCredited: points,
	}
	if err := s.db.Create(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Already processed: idempotent no-op, not an error.
			balance, berr := s.points.BalanceOf(accountID)
			if berr != nil {
				return nil, berr
			}
			return &CreditResult{PointsAdded: 0, TotalBalance: balance.Current}, nil
		}
		return nil, err
	}

	// The receipt row is durable before the ledger is touched. A credit
	// failure here leaves the receipt marked processed with no points
	// applied; that gap is logged for reconciliation rather than retried,
	// because an automatic retry could double-apply side effects.
	if err := s.points.Credit(accountID, points, source, externalID); err != nil {
		if s.logger != nil {
			s.logger.Errorw("receipt recorded but points not credited, needs reconciliation",
				"external_id", externalID,
				"source", source,
				"account_id", accountID,
				"points", points,
				"error", err,
			)
		}
		return nil, err
	}

	balance, err := s.points.BalanceOf(accountID)
	if err != nil {
		return nil, err
	}
	return &CreditResult{PointsAdded: points, TotalBalance: balance.Current}, nil
}
