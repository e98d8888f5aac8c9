package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alexivanou/wetter-proxy/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectAndMigrate_Memory(t *testing.T) {
	cfg := config.DBConfig{
		Type: config.DBTypeMemory,
		Name: fmt.Sprintf("migrate_test_%d", time.Now().UnixNano()),
	}

	db, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db, cfg.Type))
	// a second run is a no-op
	require.NoError(t, Migrate(db, cfg.Type))

	var tables []string
	err = db.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'schema_%' ORDER BY name")
	require.NoError(t, err)
	assert.Equal(t, []string{"cities", "city_translations", "countries", "country_translations"}, tables)
}
