// Package repotest opens throwaway databases for repository and service tests.
package repotest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iyunix/hammer/internal/repository"
)

// NewDB returns a migrated SQLite database stored in the test's temp dir.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := repository.Open(repository.DriverSQLite, filepath.Join(t.TempDir(), "hammer_test.db"))
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
