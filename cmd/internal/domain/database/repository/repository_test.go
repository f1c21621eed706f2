package repository

import (
	"context"
	"github.com/stretchr/testify/require"
	"gobarber/cmd/internal/domain/database"
	"gobarber/cmd/internal/domain/entity"
	"gorm.io/gorm"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, provider bool, avatar *entity.File) *entity.User {
	t.Helper()

	user := &entity.User{Name: name, Email: name + "@gobarber.com", Provider: provider}
	if avatar != nil {
		require.NoError(t, db.Create(avatar).Error)
		user.AvatarID = &avatar.ID
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func hour(h int) int64 {
	return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(h) * time.Hour).UnixMilli()
}

var ctx = context.Background()
