package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanbuddy/beanbuddy/models"
)

func testReceiptService(t *testing.T) (*ReceiptService, *PointsService, *models.User) {
	db := newTestDB(t)
	pointsSvc := NewPointsService(db)
	svc := NewReceiptService(db, pointsSvc, nil, 10)
	user := createAccount(t, db, 0, models.Buddy{LastEnergyUpdateAt: time.Now()})
	return svc, pointsSvc, user
}

func TestCreditFromReceipt(t *testing.T) {
	svc, _, user := testReceiptService(t)

	result, err := svc.CreditFromReceipt("R-100", user.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, 10, result.PointsAdded)
	assert.Equal(t, 10, result.TotalBalance)
}

func TestCreditFromReceiptReplayIsNoOp(t *testing.T) {
	svc, pointsSvc, user := testReceiptService(t)

	first, err := svc.CreditFromReceipt("R-100", user.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, 10, first.PointsAdded)

	replay, err := svc.CreditFromReceipt("R-100", user.ID, 100)
	require.NoError(t, err, "retries must be safe, not an error")
	assert.Equal(t, 0, replay.PointsAdded)
	assert.Equal(t, 10, replay.TotalBalance)

	balance, err := pointsSvc.BalanceOf(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, balance.Current, "the receipt credits exactly once")
}

func TestCreditFromReceiptTooSmall(t *testing.T) {
	svc, _, user := testReceiptService(t)

	_, err := svc.CreditFromReceipt("R-101", user.ID, 5)
	assert.ErrorIs(t, err, ErrNoPointsEarned)

	var count int64
	require.NoError(t, svc.db.Model(&models.Receipt{}).Count(&count).Error)
	assert.Zero(t, count, "no receipt record for a zero-point purchase")
}

func TestCreditFromPosSaleIdempotent(t *testing.T) {
	svc, _, user := testReceiptService(t)

	first, err := svc.CreditFromPosSale("S-7", user.ID, 350)
	require.NoError(t, err)
	assert.Equal(t, 35, first.PointsAdded)

	replay, err := svc.CreditFromPosSale("S-7", user.ID, 350)
	require.NoError(t, err)
	assert.Equal(t, 0, replay.PointsAdded)
	assert.Equal(t, 35, replay.TotalBalance)
}

func TestReceiptAndSaleIdentifierNamespacesAreIndependent(t *testing.T) {
	svc, pointsSvc, user := testReceiptService(t)

	receipt, err := svc.CreditFromReceipt("X-1", user.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, 10, receipt.PointsAdded)

	// A sale that happens to carry the same identifier is a different
	// purchase, not a replay.
	sale, err := svc.CreditFromPosSale("X-1", user.ID, 200)
	require.NoError(t, err)
	assert.Equal(t, 20, sale.PointsAdded)
	assert.Equal(t, 30, sale.TotalBalance)

	// Replaying within the same namespace is still a no-op.
	replay, err := svc.CreditFromPosSale("X-1", user.ID, 200)
	require.NoError(t, err)
	assert.Equal(t, 0, replay.PointsAdded)

	balance, err := pointsSvc.BalanceOf(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, balance.Current)
}

func TestConcurrentReceiptSubmissionsCreditOnce(t *testing.T) {
	svc, pointsSvc, user := testReceiptService(t)

	const n = 8
	var wg sync.WaitGroup
	results := make([]*CreditResult, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.CreditFromReceipt("R-200", user.ID, 100)
		}(i)
	}
	wg.Wait()

	var credited int
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		if results[i].PointsAdded > 0 {
			credited++
			assert.Equal(t, 10, results[i].PointsAdded)
		}
	}
	assert.Equal(t, 1, credited, "exactly one submission may credit points")

	balance, err := pointsSvc.BalanceOf(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, balance.Current)
}
