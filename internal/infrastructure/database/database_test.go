package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runsheet/core/internal/infrastructure/config"
)

func TestDriverAndDSN(t *testing.T) {
	driver, dsn := driverAndDSN(config.DatabaseConfig{Driver: "sqlite", Path: "data/runsheet.db"})
	assert.Equal(t, "sqlite", driver)
	assert.Equal(t, "data/runsheet.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dsn)

	_, dsn = driverAndDSN(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	assert.Equal(t, ":memory:", dsn)

	driver, dsn = driverAndDSN(config.DatabaseConfig{
		Driver: "postgres", Host: "db", Port: 5432, User: "app", Password: "pw", Name: "runsheet", SSLMode: "disable",
	})
	assert.Equal(t, "postgres", driver)
	assert.Equal(t, "host=db port=5432 user=app password=pw dbname=runsheet sslmode=disable", dsn)
}

func TestNewSQLite(t *testing.T) {
	db, err := New(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:", MaxOpenConns: 5})
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.HealthCheck())
	assert.NoError(t, db.Ping())

	info := db.GetConnectionInfo()
	assert.Equal(t, "sqlite", info["driver"])
	assert.Equal(t, 1, info["max_open_connections"])
}
