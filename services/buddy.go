package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/beanbuddy/beanbuddy/models"
)

// How many times a conditional buddy update is retried when another request
// for the same account won the race.
const buddyUpdateRetries = 3

var errBuddyConflict = errors.New("buddy state changed concurrently")

// BuddyService owns the authoritative buddy state for each account.
// Mutations are conditional single-statement updates guarded by the fields
// being changed, so two concurrent requests for the same account cannot lose
// a decay step or double-spend a feed item; the loser simply retries against
// fresh state.
type BuddyService struct {
	db            *gorm.DB
	decayUnit     time.Duration
	decayPerUnit  int
	restoreEnergy int
	refillPerDay  int
}

// BuddyView is the buddy state returned to callers after an operation.
type BuddyView struct {
	Energy             int        `json:"energy"`
	Mood               string     `json:"mood"`
	CoffeeCount        int        `json:"coffee_count"`
	BreadCount         int        `json:"bread_count"`
	LastEnergyUpdateAt time.Time  `json:"last_energy_update_at"`
	LastLoginRefillAt  *time.Time `json:"last_login_refill_at"`
	LastLoginAt        *time.Time `json:"last_login_at"`
}

// NewBuddyService creates a BuddyService with the given decay/feed tunables.
func NewBuddyService(db *gorm.DB, decayUnit time.Duration, decayPerUnit, restoreEnergy, refillPerDay int) *BuddyService {
	return &BuddyService{
		db:            db,
		decayUnit:     decayUnit,
		decayPerUnit:  decayPerUnit,
		restoreEnergy: restoreEnergy,
		refillPerDay:  refillPerDay,
	}
}

// Feed consumes one item of kind and restores a fixed amount of energy.
// Pending decay is applied before the stock check so the returned energy
// always reflects real elapsed time. Returns ErrInvalidFeedKind for kinds
// outside the enumeration and NoStockError when the counter for kind is
// exhausted; no mutation happens in either case.
func (s *BuddyService) Feed(accountID uint, kind string, now time.Time) (*BuddyView, error) {
	if kind != models.FeedKindCoffee && kind != models.FeedKindBread {
		return nil, ErrInvalidFeedKind
	}

	for attempt := 0; attempt < buddyUpdateRetries; attempt++ {
		b, err := s.loadBuddy(accountID)
		if err != nil {
			return nil, err
		}
		prev := *b

		b.Energy, b.LastEnergyUpdateAt = StepDown(b.Energy, b.LastEnergyUpdateAt, now, s.decayUnit, s.decayPerUnit)

		switch kind {
		case models.FeedKindCoffee:
			if b.CoffeeCount <= 0 {
				return nil, &NoStockError{Kind: kind}
			}
			b.CoffeeCount--
		case models.FeedKindBread:
			if b.BreadCount <= 0 {
				return nil, &NoStockError{Kind: kind}
			}
			b.BreadCount--
		}
		b.Energy = clampEnergy(b.Energy + s.restoreEnergy)

		res := s.db.Model(&models.User{}).
			Where("id = ? AND buddy_last_energy_update_at = ? AND buddy_energy = ? AND buddy_coffee_count = ? AND buddy_bread_count = ?",
				accountID, prev.LastEnergyUpdateAt, prev.Energy, prev.CoffeeCount, prev.BreadCount).
			Updates(map[string]interface{}{
				"buddy_energy":                b.Energy,
				"buddy_coffee_count":          b.CoffeeCount,
				"buddy_bread_count":           b.BreadCount,
				"buddy_last_energy_update_at": b.LastEnergyUpdateAt,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			return buddyView(*b), nil
		}
		// Lost the race against another request, retry with fresh state.
	}
	return nil, errBuddyConflict
}

// LoginRefill records a session start. The first ever call only establishes
// the refill anchor; later calls grant refillPerDay of each item per whole
// elapsed day and advance the anchor by exactly those days. The login
// timestamp is always updated regardless of whether a day boundary passed.
// Accumulated counters are not capped.
func (s *BuddyService) LoginRefill(accountID uint, now time.Time) (*BuddyView, error) {
	for attempt := 0; attempt < buddyUpdateRetries; attempt++ {
		b, err := s.loadBuddy(accountID)
		if err != nil {
			return nil, err
		}
		prev := *b

		if b.LastLoginRefillAt == nil {
			anchor := now
			b.LastLoginRefillAt = &anchor
		} else if days := WholeUnits(*b.LastLoginRefillAt, now, 24*time.Hour); days >= 1 {
			b.CoffeeCount += days * s.refillPerDay
			b.BreadCount += days * s.refillPerDay
			anchor := b.LastLoginRefillAt.Add(time.Duration(days) * 24 * time.Hour)
			b.LastLoginRefillAt = &anchor
		}
		login := now
		b.LastLoginAt = &login

		query := s.db.Model(&models.User{}).
			Where("id = ? AND buddy_coffee_count = ? AND buddy_bread_count = ?",
				accountID, prev.CoffeeCount, prev.BreadCount)
		if prev.LastLoginRefillAt == nil {
			query = query.Where("buddy_last_login_refill_at IS NULL")
		} else {
			query = query.Where("buddy_last_login_refill_at = ?", *prev.LastLoginRefillAt)
		}

		res := query.Updates(map[string]interface{}{
			"buddy_coffee_count":         b.CoffeeCount,
			"buddy_bread_count":          b.BreadCount,
			"buddy_last_login_refill_at": b.LastLoginRefillAt,
			"buddy_last_login_at":        b.LastLoginAt,
		})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			return buddyView(*b), nil
		}
	}
	return nil, errBuddyConflict
}

// Get applies any pending decay, persists it, and returns the fresh state.
// Reads never serve stale energy.
func (s *BuddyService) Get(accountID uint, now time.Time) (*BuddyView, error) {
	for attempt := 0; attempt < buddyUpdateRetries; attempt++ {
		b, err := s.loadBuddy(accountID)
		if err != nil {
			return nil, err
		}
		prev := *b

		b.Energy, b.LastEnergyUpdateAt = StepDown(b.Energy, b.LastEnergyUpdateAt, now, s.decayUnit, s.decayPerUnit)
		if b.LastEnergyUpdateAt.Equal(prev.LastEnergyUpdateAt) {
			return buddyView(*b), nil
		}

		res := s.db.Model(&models.User{}).
			Where("id = ? AND buddy_last_energy_update_at = ? AND buddy_energy = ?",
				accountID, prev.LastEnergyUpdateAt, prev.Energy).
			Updates(map[string]interface{}{
				"buddy_energy":                b.Energy,
				"buddy_last_energy_update_at": b.LastEnergyUpdateAt,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			return buddyView(*b), nil
		}
	}
	return nil, errBuddyConflict
}

func (s *BuddyService) loadBuddy(accountID uint) (*models.Buddy, error) {
	var user models.User
	if err := s.db.First(&user, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user.Buddy, nil
}

func buddyView(b models.Buddy) *BuddyView {
	return &BuddyView{
		Energy:             b.Energy,
		Mood:               MoodFor(b.Energy),
		CoffeeCount:        b.CoffeeCount,
		BreadCount:         b.BreadCount,
		LastEnergyUpdateAt: b.LastEnergyUpdateAt,
		LastLoginRefillAt:  b.LastLoginRefillAt,
		LastLoginAt:        b.LastLoginAt,
	}
}
