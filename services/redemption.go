package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beanbuddy/beanbuddy/models"
	"github.com/beanbuddy/beanbuddy/utils"
)

// Reward kinds and their fixed point costs. A redemption captures the cost at
// creation time, so edits here never change outstanding tokens.
var rewardCosts = map[string]int{
	"coffee_free":     200,
	"pastry_free":     150,
	"breakfast_combo": 350,
}

// RewardCost resolves the current cost of a reward kind.
func RewardCost(kind string) (int, bool) {
	cost, ok := rewardCosts[kind]
	return cost, ok
}

// RedemptionService implements the token-mediated points-for-reward exchange:
// a client requests a short-lived signed token, and a POS terminal presents it
// once to consume the reward and debit the points.
type RedemptionService struct {
	db     *gorm.DB
	points *PointsService
	codec  *utils.RewardTokenCodec
	ttl    time.Duration
}

// RedemptionGrant is returned to the client after a successful request.
type RedemptionGrant struct {
	Token        string    `json:"token"`
	RedemptionID string    `json:"redemption_id"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ConsumeResult is returned to the POS terminal for receipt printing.
type ConsumeResult struct {
	RewardKind       string `json:"reward_kind"`
	CostPoints       int    `json:"cost_points"`
	RemainingBalance int    `json:"remaining_balance"`
}

// NewRedemptionService creates a RedemptionService.
func NewRedemptionService(db *gorm.DB, points *PointsService, codec *utils.RewardTokenCodec, ttl time.Duration) *RedemptionService {
	return &RedemptionService{db: db, points: points, codec: codec, ttl: ttl}
}

// Request checks affordability, creates a redemption record, and issues the
// signed bearer token. The balance is not debited here; the check is advisory
// and the strict check happens again at consume time. Two outstanding tokens
// whose combined cost exceeds the balance are allowed, tokens are cheap and
// expire on their own.
func (s *RedemptionService) Request(accountID uint, rewardKind string, now time.Time) (*RedemptionGrant, error) {
	cost, ok := RewardCost(rewardKind)
	if !ok {
		return nil, ErrInvalidReward
	}

	balance, err := s.points.BalanceOf(accountID)
	if err != nil {
		return nil, err
	}
	if balance.Current < cost {
		return nil, ErrInsufficientPoints
	}

	redemption := models.Redemption{
		ID:         uuid.NewString(),
		UserID:     accountID,
		RewardKind: rewardKind,
		CostPoints: cost,
		Status:     models.RedemptionCreated,
		ExpiresAt:  now.Add(s.ttl),
		CreatedAt:  now,
	}
	if err := s.db.Create(&redemption).Error; err != nil {
		return nil, err
	}

	token, err := s.codec.Sign(redemption.ID, accountID, rewardKind, cost, redemption.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &RedemptionGrant{
		Token:        token,
		RedemptionID: redemption.ID,
		ExpiresAt:    redemption.ExpiresAt,
	}, nil
}

// Consume validates a presented token and, exactly once, debits the points
// and marks the redemption consumed. The created->consumed transition is a
// single conditional UPDATE and serves as the serialization point: of N
// concurrent presentations of the same token exactly one wins. The debit runs
// in the same transaction, so a short balance rolls the transition back and
// leaves the record consumable later.
func (s *RedemptionService) Consume(token, posID string, now time.Time) (*ConsumeResult, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	var redemption models.Redemption
	if err := s.db.First(&redemption, "id = ?", claims.RedemptionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch redemption.Status {
	case models.RedemptionConsumed:
		return nil, ErrAlreadyConsumed
	case models.RedemptionExpired:
		return nil, ErrExpired
	}

	// Lazy expiry: the stored expiry gates consumption even if a token were
	// forged with a longer signature lifetime.
	if now.After(redemption.ExpiresAt) {
		res := s.db.Model(&models.Redemption{}).
			Where("id = ? AND status = ?", redemption.ID, models.RedemptionCreated).
			Update("status", models.RedemptionExpired)
		if res.Error != nil {
			return nil, res.Error
		}
		return nil, ErrExpired
	}

	if claims.AccountID != redemption.UserID ||
		claims.RewardKind != redemption.RewardKind ||
		claims.CostPoints != redemption.CostPoints {
		return nil, ErrTokenMismatch
	}

	// Advisory re-check so a short balance fails before any state moves.
	balance, err := s.points.BalanceOf(redemption.UserID)
	if err != nil {
		return nil, err
	}
	if balance.Current < redemption.CostPoints {
		return nil, ErrInsufficientPoints
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Redemption{}).
			Where("id = ? AND status = ?", redemption.ID, models.RedemptionCreated).
			Updates(map[string]interface{}{
				"status":      models.RedemptionConsumed,
				"consumed_at": now,
				"consumed_by": posID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyConsumed
		}
		return debitTx(tx, redemption.UserID, redemption.CostPoints, models.PointSourceRedemption, redemption.ID)
	})
	if err != nil {
		return nil, err
	}

	remaining, err := s.points.BalanceOf(redemption.UserID)
	if err != nil {
		return nil, err
	}
	return &ConsumeResult{
		RewardKind:       redemption.RewardKind,
		CostPoints:       redemption.CostPoints,
		RemainingBalance: remaining.Current,
	}, nil
}
