package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"comparecarts/internal/model"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "whatever", nil)
	assert.ErrorContains(t, err, "unsupported driver")
}

func TestMigrate_SQLite(t *testing.T) {
	gormDB, err := Open("sqlite", ":memory:", nil)
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(gormDB, false))
	assert.True(t, gormDB.Migrator().HasTable(&model.User{}))
	assert.True(t, gormDB.Migrator().HasTable(&model.Review{}))

	require.NoError(t, gormDB.Create(&model.User{Name: "Ann", Email: "a@x.com", PasswordHash: "h"}).Error)
	require.NoError(t, Migrate(gormDB, true))

	var count int64
	require.NoError(t, gormDB.Model(&model.User{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.NoError(t, Ping(context.Background(), gormDB))
}

func TestOpen_LogsThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gormDB, err := Open("sqlite", ":memory:", zap.New(core))
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, Migrate(gormDB, false))

	var user model.User
	err = gormDB.Where("email = ?", "nobody@x.com").First(&user).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len(), "record not found is an expected outcome")

	require.Error(t, gormDB.Exec("SELECT * FROM missing_table").Error)
	entries := logs.FilterLoggerName("gorm").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Contains(t, entries[0].Message, "missing_table")
}
