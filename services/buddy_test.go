package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanbuddy/beanbuddy/models"
)

func testBuddyService(t *testing.T) (*BuddyService, *models.User) {
	db := newTestDB(t)
	svc := NewBuddyService(db, 30*time.Minute, 1, 40, 1)
	user := createAccount(t, db, 0, models.Buddy{
		Energy:             40,
		CoffeeCount:        1,
		BreadCount:         0,
		LastEnergyUpdateAt: anchorAt(t, "2024-05-01T12:00:00Z"),
	})
	return svc, user
}

func TestFeedSuccess(t *testing.T) {
	svc, user := testBuddyService(t)
	now := anchorAt(t, "2024-05-01T12:10:00Z") // under one decay unit

	view, err := svc.Feed(user.ID, models.FeedKindCoffee, now)
	require.NoError(t, err)

	assert.Equal(t, 80, view.Energy)
	assert.Equal(t, 0, view.CoffeeCount)
	assert.Equal(t, 0, view.BreadCount)
	assert.Equal(t, MoodHappy, view.Mood)
}

func TestFeedAppliesPendingDecayFirst(t *testing.T) {
	svc, user := testBuddyService(t)
	// Two hours pending = 4 decay units before the feed credit.
	now := anchorAt(t, "2024-05-01T14:00:00Z")

	view, err := svc.Feed(user.ID, models.FeedKindCoffee, now)
	require.NoError(t, err)

	assert.Equal(t, 40-4+40, view.Energy)
	assert.True(t, view.LastEnergyUpdateAt.Equal(anchorAt(t, "2024-05-01T14:00:00Z")))
}

func TestFeedClampsAtMax(t *testing.T) {
	db := newTestDB(t)
	svc := NewBuddyService(db, 30*time.Minute, 1, 40, 1)
	user := createAccount(t, db, 0, models.Buddy{
		Energy:             90,
		CoffeeCount:        2,
		LastEnergyUpdateAt: anchorAt(t, "2024-05-01T12:00:00Z"),
	})

	view, err := svc.Feed(user.ID, models.FeedKindCoffee, anchorAt(t, "2024-05-01T12:05:00Z"))
	require.NoError(t, err)
	assert.Equal(t, EnergyMax, view.Energy)
}

func TestFeedExhaustedLeavesStateUnchanged(t *testing.T) {
	svc, user := testBuddyService(t)
	now := anchorAt(t, "2024-05-01T12:10:00Z")

	_, err := svc.Feed(user.ID, models.FeedKindBread, now)
	var noStock *NoStockError
	require.ErrorAs(t, err, &noStock)
	assert.Equal(t, models.FeedKindBread, noStock.Kind)

	view, err := svc.Get(user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 40, view.Energy)
	assert.Equal(t, 1, view.CoffeeCount)
	assert.Equal(t, 0, view.BreadCount)
}

func TestFeedUnknownKindIsValidationError(t *testing.T) {
	svc, user := testBuddyService(t)

	_, err := svc.Feed(user.ID, "tea", anchorAt(t, "2024-05-01T12:10:00Z"))
	assert.ErrorIs(t, err, ErrInvalidFeedKind)
	var noStock *NoStockError
	assert.False(t, errors.As(err, &noStock), "an unknown kind is bad input, not exhausted stock")

	// Bad input leaves the buddy untouched.
	view, err := svc.Get(user.ID, anchorAt(t, "2024-05-01T12:10:00Z"))
	require.NoError(t, err)
	assert.Equal(t, 40, view.Energy)
	assert.Equal(t, 1, view.CoffeeCount)
}

func TestGetAppliesAndPersistsDecay(t *testing.T) {
	svc, user := testBuddyService(t)

	view, err := svc.Get(user.ID, anchorAt(t, "2024-05-01T13:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, 38, view.Energy)

	// The anchor advanced, so an immediate second read decays nothing more.
	view, err = svc.Get(user.ID, anchorAt(t, "2024-05-01T13:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, 38, view.Energy)
}

func TestLoginRefillFirstLoginGrantsNothing(t *testing.T) {
	svc, user := testBuddyService(t)
	now := anchorAt(t, "2024-05-01T12:00:00Z")

	view, err := svc.LoginRefill(user.ID, now)
	require.NoError(t, err)

	assert.Equal(t, 1, view.CoffeeCount)
	assert.Equal(t, 0, view.BreadCount)
	require.NotNil(t, view.LastLoginRefillAt)
	assert.True(t, view.LastLoginRefillAt.Equal(now))
	require.NotNil(t, view.LastLoginAt)
	assert.True(t, view.LastLoginAt.Equal(now))
}

func TestLoginRefillGrantsPerWholeDay(t *testing.T) {
	svc, user := testBuddyService(t)

	_, err := svc.LoginRefill(user.ID, anchorAt(t, "2024-05-01T12:00:00Z"))
	require.NoError(t, err)

	// Three and a half days later: three units of each, half a day carried.
	view, err := svc.LoginRefill(user.ID, anchorAt(t, "2024-05-05T00:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, 1+3, view.CoffeeCount)
	assert.Equal(t, 0+3, view.BreadCount)
	assert.True(t, view.LastLoginRefillAt.Equal(anchorAt(t, "2024-05-04T12:00:00Z")))

	// The carried half day plus another half day crosses the next boundary.
	view, err = svc.LoginRefill(user.ID, anchorAt(t, "2024-05-05T12:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, 5, view.CoffeeCount)
	assert.Equal(t, 4, view.BreadCount)
}

func TestLoginRefillAlwaysUpdatesLoginTimestamp(t *testing.T) {
	svc, user := testBuddyService(t)

	_, err := svc.LoginRefill(user.ID, anchorAt(t, "2024-05-01T12:00:00Z"))
	require.NoError(t, err)

	// Same day: no grant, but the login timestamp still moves.
	later := anchorAt(t, "2024-05-01T18:00:00Z")
	view, err := svc.LoginRefill(user.ID, later)
	require.NoError(t, err)
	assert.Equal(t, 1, view.CoffeeCount)
	require.NotNil(t, view.LastLoginAt)
	assert.True(t, view.LastLoginAt.Equal(later))
	assert.True(t, view.LastLoginRefillAt.Equal(anchorAt(t, "2024-05-01T12:00:00Z")))
}
