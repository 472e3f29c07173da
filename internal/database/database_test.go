package database_test

import (
	"testing"

	"katalog/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestOpen_SQLiteMigratesProducts(t *testing.T) {
	db, err := database.Open(database.DriverSQLite, "file:open_test?mode=memory&cache=shared", logger.Silent)
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable("products"))
	assert.True(t, db.Migrator().HasColumn("products", "quantity_in_stock"))
	assert.True(t, db.Migrator().HasColumn("products", "date_added"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	db, err := database.Open("mysql", "whatever", logger.Silent)
	assert.Nil(t, db)
	assert.ErrorContains(t, err, "unsupported database driver")
}
