package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanbuddy/beanbuddy/models"
)

func TestCreditUpdatesBothBalances(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	user := createAccount(t, db, 0, models.Buddy{})

	require.NoError(t, svc.Credit(user.ID, 100, models.PointSourceReceipt, "R-1"))

	balance, err := svc.BalanceOf(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, balance.Current)
	assert.Equal(t, 100, balance.Lifetime)
}

func TestCreditRejectsNonPositiveAmounts(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	user := createAccount(t, db, 50, models.Buddy{})

	assert.ErrorIs(t, svc.Credit(user.ID, 0, models.PointSourceReceipt, "R-1"), ErrInvalidAmount)
	assert.ErrorIs(t, svc.Credit(user.ID, -5, models.PointSourceReceipt, "R-1"), ErrInvalidAmount)

	balance, err := svc.BalanceOf(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, balance.Current)
}

func TestDebitReducesOnlyCurrentBalance(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	user := createAccount(t, db, 250, models.Buddy{})

	require.NoError(t, svc.Debit(user.ID, 200, models.PointSourceRedemption, "rd-1"))

	balance, err := svc.BalanceOf(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, balance.Current)
	assert.Equal(t, 250, balance.Lifetime, "spending never reduces the lifetime total")
}

func TestDebitNeverDrivesBalanceNegative(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	user := createAccount(t, db, 100, models.Buddy{})

	err := svc.Debit(user.ID, 101, models.PointSourceRedemption, "rd-1")
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	balance, err := svc.BalanceOf(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, balance.Current, "failed debit must leave the balance unchanged")
}

func TestDebitMissingAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	assert.ErrorIs(t, svc.Debit(9999, 10, models.PointSourceRedemption, "rd-1"), ErrNotFound)
}

func TestLedgerHistoryIsRecorded(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	user := createAccount(t, db, 0, models.Buddy{})

	require.NoError(t, svc.Credit(user.ID, 100, models.PointSourceReceipt, "R-1"))
	require.NoError(t, svc.Credit(user.ID, 30, models.PointSourcePosSale, "S-1"))
	require.NoError(t, svc.Debit(user.ID, 50, models.PointSourceRedemption, "rd-1"))

	entries, err := svc.History(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	var earned, spent int
	for _, e := range entries {
		switch e.Type {
		case models.PointTxEarn:
			earned += e.Amount
		case models.PointTxSpend:
			spent += e.Amount
		}
	}
	assert.Equal(t, 130, earned)
	assert.Equal(t, 50, spent)
}
