package database

import (
	"context"
	"testing"

	"slotbook/cmd/internal/config"
	"slotbook/cmd/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func memoryConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"}
}

func TestInit_LogsFailingStatements(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	db, err := Init(memoryConfig(), zap.New(core))
	require.NoError(t, err)
	defer Close(db)

	err = db.Exec("SELECT * FROM no_such_table").Error
	require.Error(t, err)

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.NotEmpty(t, entries, "failing SQL should reach the application logger")
	assert.Equal(t, "gorm", entries[0].LoggerName)
}

func TestInit_DoesNotLogMissingRows(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	db, err := Init(memoryConfig(), zap.New(core))
	require.NoError(t, err)
	defer Close(db)

	var appt entity.Appointment
	err = db.First(&appt, 42).Error
	require.Error(t, err)
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestInit_RejectsUnknownDriver(t *testing.T) {
	_, err := Init(&config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestPinger(t *testing.T) {
	db, err := Init(memoryConfig(), zap.NewNop())
	require.NoError(t, err)

	pinger := NewPinger(db)
	require.NoError(t, pinger.Ping(context.Background()))

	require.NoError(t, Close(db))
	assert.Error(t, pinger.Ping(context.Background()))
}
