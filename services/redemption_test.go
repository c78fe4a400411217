package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanbuddy/beanbuddy/models"
	"github.com/beanbuddy/beanbuddy/utils"
)

func testRedemptionService(t *testing.T, points int) (*RedemptionService, *PointsService, *models.User) {
	db := newTestDB(t)
	pointsSvc := NewPointsService(db)
	codec := utils.NewRewardTokenCodec([]byte("test-signing-key"))
	svc := NewRedemptionService(db, pointsSvc, codec, 10*time.Minute)
	user := createAccount(t, db, points, models.Buddy{LastEnergyUpdateAt: time.Now()})
	return svc, pointsSvc, user
}

func TestRedemptionHappyPath(t *testing.T) {
	svc, pointsSvc, user := testRedemptionService(t, 250)
	now := time.Now()

	grant, err := svc.Request(user.ID, "coffee_free", now)
	require.NoError(t, err)
	assert.NotEmpty(t, grant.Token)
	assert.NotEmpty(t, grant.RedemptionID)
	assert.True(t, grant.ExpiresAt.After(now))

	result, err := svc.Consume(grant.Token, "terminal-1", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "coffee_free", result.RewardKind)
	assert.Equal(t, 200, result.CostPoints)
	assert.Equal(t, 50, result.RemainingBalance)

	balance, err := pointsSvc.BalanceOf(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, balance.Current)

	// Replaying the same token within its validity window must fail.
	_, err = svc.Consume(grant.Token, "terminal-2", now.Add(2*time.Minute))
	assert.ErrorIs(t, err, ErrAlreadyConsumed)
}

func TestRequestUnknownReward(t *testing.T) {
	svc, _, user := testRedemptionService(t, 1000)
	_, err := svc.Request(user.ID, "free_yacht", time.Now())
	assert.ErrorIs(t, err, ErrInvalidReward)
}

func TestRequestInsufficientPointsCreatesNothing(t *testing.T) {
	svc, _, user := testRedemptionService(t, 100)
	_, err := svc.Request(user.ID, "coffee_free", time.Now())
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	var count int64
	require.NoError(t, svc.db.Model(&models.Redemption{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestConsumeAfterExpiryMarksExpired(t *testing.T) {
	svc, pointsSvc, user := testRedemptionService(t, 250)
	now := time.Now()

	grant, err := svc.Request(user.ID, "coffee_free", now)
	require.NoError(t, err)

	_, err = svc.Consume(grant.Token, "terminal-1", now.Add(11*time.Minute))
	assert.ErrorIs(t, err, ErrExpired)

	var redemption models.Redemption
	require.NoError(t, svc.db.First(&redemption, "id = ?", grant.RedemptionID).Error)
	assert.Equal(t, models.RedemptionExpired, redemption.Status)

	balance, err := pointsSvc.BalanceOf(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 250, balance.Current, "expiry must not touch the balance")
}

func TestConsumeGarbageToken(t *testing.T) {
	svc, _, _ := testRedemptionService(t, 250)
	_, err := svc.Consume("not-a-token", "terminal-1", time.Now())
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestConsumeMismatchedToken(t *testing.T) {
	svc, _, user := testRedemptionService(t, 1000)
	now := time.Now()

	grant, err := svc.Request(user.ID, "coffee_free", now)
	require.NoError(t, err)

	// Validly signed token pointing at the right record but claiming a
	// different account.
	forged, err := svc.codec.Sign(grant.RedemptionID, user.ID+1, "coffee_free", 200, grant.ExpiresAt)
	require.NoError(t, err)

	_, err = svc.Consume(forged, "terminal-1", now.Add(time.Minute))
	assert.ErrorIs(t, err, ErrTokenMismatch)
}

func TestConsumeInsufficientBalanceLeavesRecordCreated(t *testing.T) {
	svc, pointsSvc, user := testRedemptionService(t, 250)
	now := time.Now()

	grant, err := svc.Request(user.ID, "coffee_free", now)
	require.NoError(t, err)

	// The balance drops between request and consume.
	require.NoError(t, pointsSvc.Debit(user.ID, 100, models.PointSourceRedemption, "other"))

	_, err = svc.Consume(grant.Token, "terminal-1", now.Add(time.Minute))
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	var redemption models.Redemption
	require.NoError(t, svc.db.First(&redemption, "id = ?", grant.RedemptionID).Error)
	assert.Equal(t, models.RedemptionCreated, redemption.Status, "a short balance must not burn the token")
}

func TestRedemptionCostIsImmutable(t *testing.T) {
	svc, pointsSvc, user := testRedemptionService(t, 1000)
	now := time.Now()

	grant, err := svc.Request(user.ID, "coffee_free", now)
	require.NoError(t, err)

	// Repricing the reward after issuance must not affect the outstanding
	// redemption.
	original := rewardCosts["coffee_free"]
	rewardCosts["coffee_free"] = 999
	defer func() { rewardCosts["coffee_free"] = original }()

	result, err := svc.Consume(grant.Token, "terminal-1", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 200, result.CostPoints)

	balance, err := pointsSvc.BalanceOf(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 800, balance.Current)
}

func TestConcurrentConsumeExactlyOneWins(t *testing.T) {
	// A generous balance keeps every contender past the affordability check,
	// so the losers all fail at the conditional status flip.
	svc, pointsSvc, user := testRedemptionService(t, 10000)
	now := time.Now()

	grant, err := svc.Request(user.ID, "coffee_free", now)
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Consume(grant.Token, "terminal-1", now.Add(time.Minute))
		}(i)
	}
	wg.Wait()

	var succeeded, replayed int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case err == ErrAlreadyConsumed:
			replayed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, n-1, replayed)

	balance, err := pointsSvc.BalanceOf(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10000-200, balance.Current, "exactly one debit must land")
}
