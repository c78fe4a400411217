package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/beanbuddy/beanbuddy/models"
)

var testDBSeq int64

// newTestDB opens an isolated in-memory SQLite database. The pool is capped
// at one connection so concurrent test goroutines serialize the same way the
// storage layer's atomic primitives would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.PointTransaction{},
		&models.Redemption{},
		&models.Receipt{},
		&models.GiftCard{},
	))
	return db
}

var testAccountSeq int64

func createAccount(t *testing.T, db *gorm.DB, points int, buddy models.Buddy) *models.User {
	t.Helper()

	n := atomic.AddInt64(&testAccountSeq, 1)
	user := models.User{
		Username:       fmt.Sprintf("tester%d", n),
		Email:          fmt.Sprintf("tester%d@example.com", n),
		Points:         points,
		LifetimePoints: points,
		Buddy:          buddy,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func anchorAt(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}
