// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"kos-manager/internal/config"
	"kos-manager/internal/database"
	"kos-manager/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewDB opens a migrated sqlite database in a temp dir that is removed when
// the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err, "init test database")
	require.NoError(t, database.AutoMigrate(db), "migrate test database")

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

// CreateUser inserts a user with a bcrypt hash of password (min cost).
func CreateUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateRoom inserts an available room for userID.
func CreateRoom(t *testing.T, db *gorm.DB, userID uint, number string, rentCent int64) *models.Room {
	t.Helper()

	r := &models.Room{
		UserID:          userID,
		Number:          number,
		MonthlyRentCent: rentCent,
		Status:          models.RoomAvailable,
	}
	require.NoError(t, db.Create(r).Error)
	return r
}

// Date returns the UTC midnight of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
