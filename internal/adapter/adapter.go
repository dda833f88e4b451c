package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/ectokit/ectokit/internal/apps"
)

const (
	postgresAdapterNameConstant              = "postgres"
	postgresAdapterAliasConstant             = "postgresql"
	mysqlAdapterNameConstant                 = "mysql"
	sqliteAdapterNameConstant                = "sqlite"
	sqliteAdapterAliasConstant               = "sqlite3"
	sharedSQLApplicationNameConstant         = "ectokit_sql"
	unsupportedAdapterTemplateConstant       = "unsupported storage adapter: %s"
	connectionOpenErrorTemplateConstant      = "unable to open %s connection: %w"
	connectionPingErrorTemplateConstant      = "%s connection test failed: %w"
	queryLogSettingKeyConstant               = "enable_query_log"
	bundebugEnvironmentVariableNameConstant  = "BUNDEBUG"
	defaultConnectTimeoutSecondsConstant     = 30
)

// Adapter is the pluggable storage backend a repository delegates to.
type Adapter interface {
	// Name returns the canonical adapter name.
	Name() string
	// StartServices starts the backing service applications the adapter depends on
	// and returns the names of the applications it started.
	StartServices(executionContext context.Context, lifecycle *apps.Lifecycle, settings Settings, mode apps.StartMode) ([]apps.ApplicationName, error)
	// OpenConnection opens a pooled database handle configured from the repository settings.
	OpenConnection(executionContext context.Context, settings Settings, poolSize int) (*bun.DB, error)
}

// ForName resolves a configured adapter name to an Adapter implementation.
func ForName(adapterName string) (Adapter, error) {
	switch adapterName {
	case postgresAdapterNameConstant, postgresAdapterAliasConstant:
		return &PostgresAdapter{}, nil
	case mysqlAdapterNameConstant:
		return &MySQLAdapter{}, nil
	case sqliteAdapterNameConstant, sqliteAdapterAliasConstant:
		return &SQLiteAdapter{}, nil
	default:
		return nil, fmt.Errorf(unsupportedAdapterTemplateConstant, adapterName)
	}
}

// connectionSettings captures the connection entries shared by the SQL adapters.
type connectionSettings struct {
	Hostname       string `mapstructure:"hostname"`
	Port           int    `mapstructure:"port"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	Database       string `mapstructure:"database"`
	SSLMode        string `mapstructure:"ssl_mode"`
	ConnectTimeout int    `mapstructure:"connect_timeout"`
}

func (connection connectionSettings) connectTimeout() time.Duration {
	timeoutSeconds := connection.ConnectTimeout
	if timeoutSeconds <= 0 {
		timeoutSeconds = defaultConnectTimeoutSecondsConstant
	}
	return time.Duration(timeoutSeconds) * time.Second
}

func startServiceApplications(executionContext context.Context, lifecycle *apps.Lifecycle, mode apps.StartMode, applicationNames []apps.ApplicationName) ([]apps.ApplicationName, error) {
	startedApplications := []apps.ApplicationName{}
	for _, applicationName := range applicationNames {
		if lifecycle.Started(applicationName) {
			continue
		}
		if !lifecycle.Registered(applicationName) {
			lifecycle.Register(apps.Application{Name: applicationName})
		}
		if startError := lifecycle.Start(executionContext, applicationName, mode); startError != nil {
			return startedApplications, startError
		}
		startedApplications = append(startedApplications, applicationName)
	}
	return startedApplications, nil
}

func configureConnection(executionContext context.Context, database *bun.DB, settings Settings, poolSize int, adapterName string, connectTimeout time.Duration) (*bun.DB, error) {
	if poolSize > 0 {
		database.DB.SetMaxOpenConns(poolSize)
		database.DB.SetMaxIdleConns(poolSize)
	}

	if queryLogEnabled(settings) {
		database.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv(bundebugEnvironmentVariableNameConstant),
		))
	}

	pingContext, cancelPing := context.WithTimeout(executionContext, connectTimeout)
	defer cancelPing()
	if pingError := database.PingContext(pingContext); pingError != nil {
		closeIgnoringError(database)
		return nil, fmt.Errorf(connectionPingErrorTemplateConstant, adapterName, pingError)
	}

	return database, nil
}

func queryLogEnabled(settings Settings) bool {
	rawValue, exists := settings[queryLogSettingKeyConstant]
	if !exists {
		return false
	}
	enabled, isBoolean := rawValue.(bool)
	return isBoolean && enabled
}

func closeIgnoringError(database *bun.DB) {
	_ = database.Close()
}
