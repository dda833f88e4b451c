package adapter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/ectokit/ectokit/internal/apps"
)

const (
	sqliteDriverApplicationConstant = "sqlite_driver"
	sqliteDSNTemplateConstant       = "%s.db"
)

// SQLiteAdapter backs repositories with a file-based SQLite database through Bun.
type SQLiteAdapter struct{}

// Name returns the canonical adapter name.
func (adapter *SQLiteAdapter) Name() string {
	return sqliteAdapterNameConstant
}

// StartServices starts the shared SQL runtime and the SQLite driver application.
func (adapter *SQLiteAdapter) StartServices(executionContext context.Context, lifecycle *apps.Lifecycle, settings Settings, mode apps.StartMode) ([]apps.ApplicationName, error) {
	return startServiceApplications(executionContext, lifecycle, mode, []apps.ApplicationName{
		sharedSQLApplicationNameConstant,
		sqliteDriverApplicationConstant,
	})
}

// OpenConnection opens a pooled SQLite connection derived from the configured database name.
func (adapter *SQLiteAdapter) OpenConnection(executionContext context.Context, settings Settings, poolSize int) (*bun.DB, error) {
	var connection connectionSettings
	if decodeError := settings.Decode(&connection); decodeError != nil {
		return nil, decodeError
	}

	sqlDatabase, openError := sql.Open(sqliteshim.ShimName, buildSQLiteDSN(connection))
	if openError != nil {
		return nil, fmt.Errorf(connectionOpenErrorTemplateConstant, adapter.Name(), openError)
	}

	database := bun.NewDB(sqlDatabase, sqlitedialect.New())
	return configureConnection(executionContext, database, settings, poolSize, adapter.Name(), connection.connectTimeout())
}

func buildSQLiteDSN(connection connectionSettings) string {
	return fmt.Sprintf(sqliteDSNTemplateConstant, connection.Database)
}
