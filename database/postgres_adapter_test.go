package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	model "trivia-token-service/models"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newDryRunGorm gorm on the postgres dialect that renders SQL without connecting
func newDryRunGorm(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, err := sql.Open("postgres", "host=127.0.0.1 port=1 user=none dbname=none sslmode=disable")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert claim: %w", dup)))

	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("duplicate key")))
	assert.False(t, isUniqueViolation(nil))
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, notFound(fmt.Errorf("take: %w", gorm.ErrRecordNotFound)), ErrNotFound)

	other := errors.New("connection refused")
	assert.Equal(t, other, notFound(other))
	assert.NoError(t, notFound(nil))
}

func TestAvailableItemLocksWithoutWaiting(t *testing.T) {
	db := newDryRunGorm(t)

	query := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var item model.CatalogItem
		return availableItem(tx, "science").Take(&item)
	})
	assert.Contains(t, query, `FROM "tb_catalog_item"`)
	assert.Contains(t, query, `category_id = 'science'`)
	assert.Contains(t, query, "LIMIT 1")
	assert.Contains(t, query, "FOR UPDATE SKIP LOCKED")
}

func TestForgeInputIndexIsPartial(t *testing.T) {
	assert.Contains(t, forgeInputActiveIndex, "UNIQUE INDEX")
	assert.Contains(t, forgeInputActiveIndex, "tb_forge_input (asset_identifier)")
	assert.Contains(t, forgeInputActiveIndex, "WHERE active")
}
