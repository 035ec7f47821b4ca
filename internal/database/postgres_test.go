package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/betmind/internal/config"
)

func TestPoolConfig_DiscreteFields(t *testing.T) {
	pc, err := poolConfig(&config.DatabaseConfig{
		Host:           "db.internal",
		Port:           5433,
		Name:           "betmind",
		User:           "betmind",
		Password:       "secret",
		SSLMode:        "disable",
		MaxConnections: 7,
	})
	require.NoError(t, err)

	assert.Equal(t, "db.internal", pc.ConnConfig.Host)
	assert.EqualValues(t, 5433, pc.ConnConfig.Port)
	assert.Equal(t, "betmind", pc.ConnConfig.Database)
	assert.EqualValues(t, 7, pc.MaxConns)
	assert.EqualValues(t, minConns, pc.MinConns)
	assert.Equal(t, maxConnLifetime, pc.MaxConnLifetime)
}

func TestPoolConfig_URLWins(t *testing.T) {
	pc, err := poolConfig(&config.DatabaseConfig{
		Host: "ignored",
		URL:  "postgres://u:p@cache.local:6543/fixtures?sslmode=disable",
	})
	require.NoError(t, err)

	assert.Equal(t, "cache.local", pc.ConnConfig.Host)
	assert.Equal(t, "fixtures", pc.ConnConfig.Database)
}

func TestPoolConfig_Invalid(t *testing.T) {
	_, err := poolConfig(&config.DatabaseConfig{URL: "postgres://u:p@host:notaport/db"})
	assert.Error(t, err)
}
