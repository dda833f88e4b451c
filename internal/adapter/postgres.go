package adapter

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/ectokit/ectokit/internal/apps"
)

const (
	postgresDriverNameConstant          = "postgres"
	postgresDriverApplicationConstant   = "pq"
	postgresDefaultSSLModeConstant      = "disable"
	postgresDSNTemplateConstant         = "postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d"
)

// PostgresAdapter backs repositories with a PostgreSQL database through Bun.
type PostgresAdapter struct{}

// Name returns the canonical adapter name.
func (adapter *PostgresAdapter) Name() string {
	return postgresAdapterNameConstant
}

// StartServices starts the shared SQL runtime and the PostgreSQL driver application.
func (adapter *PostgresAdapter) StartServices(executionContext context.Context, lifecycle *apps.Lifecycle, settings Settings, mode apps.StartMode) ([]apps.ApplicationName, error) {
	return startServiceApplications(executionContext, lifecycle, mode, []apps.ApplicationName{
		sharedSQLApplicationNameConstant,
		postgresDriverApplicationConstant,
	})
}

// OpenConnection opens a pooled PostgreSQL connection configured from the repository settings.
func (adapter *PostgresAdapter) OpenConnection(executionContext context.Context, settings Settings, poolSize int) (*bun.DB, error) {
	var connection connectionSettings
	if decodeError := settings.Decode(&connection); decodeError != nil {
		return nil, decodeError
	}

	sqlDatabase, openError := sql.Open(postgresDriverNameConstant, buildPostgresDSN(connection))
	if openError != nil {
		return nil, fmt.Errorf(connectionOpenErrorTemplateConstant, adapter.Name(), openError)
	}

	database := bun.NewDB(sqlDatabase, pgdialect.New())
	return configureConnection(executionContext, database, settings, poolSize, adapter.Name(), connection.connectTimeout())
}

func buildPostgresDSN(connection connectionSettings) string {
	sslMode := connection.SSLMode
	if len(sslMode) == 0 {
		sslMode = postgresDefaultSSLModeConstant
	}
	return fmt.Sprintf(
		postgresDSNTemplateConstant,
		connection.Username,
		connection.Password,
		connection.Hostname,
		connection.Port,
		connection.Database,
		sslMode,
		int(connection.connectTimeout().Seconds()),
	)
}
