package adapter

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"

	"github.com/ectokit/ectokit/internal/apps"
)

const (
	mysqlDriverNameConstant        = "mysql"
	mysqlDriverApplicationConstant = "mysql_driver"
	mysqlDSNTemplateConstant       = "%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%s"
)

// MySQLAdapter backs repositories with a MySQL database through Bun.
type MySQLAdapter struct{}

// Name returns the canonical adapter name.
func (adapter *MySQLAdapter) Name() string {
	return mysqlAdapterNameConstant
}

// StartServices starts the shared SQL runtime and the MySQL driver application.
func (adapter *MySQLAdapter) StartServices(executionContext context.Context, lifecycle *apps.Lifecycle, settings Settings, mode apps.StartMode) ([]apps.ApplicationName, error) {
	return startServiceApplications(executionContext, lifecycle, mode, []apps.ApplicationName{
		sharedSQLApplicationNameConstant,
		mysqlDriverApplicationConstant,
	})
}

// OpenConnection opens a pooled MySQL connection configured from the repository settings.
func (adapter *MySQLAdapter) OpenConnection(executionContext context.Context, settings Settings, poolSize int) (*bun.DB, error) {
	var connection connectionSettings
	if decodeError := settings.Decode(&connection); decodeError != nil {
		return nil, decodeError
	}

	sqlDatabase, openError := sql.Open(mysqlDriverNameConstant, buildMySQLDSN(connection))
	if openError != nil {
		return nil, fmt.Errorf(connectionOpenErrorTemplateConstant, adapter.Name(), openError)
	}

	database := bun.NewDB(sqlDatabase, mysqldialect.New())
	return configureConnection(executionContext, database, settings, poolSize, adapter.Name(), connection.connectTimeout())
}

func buildMySQLDSN(connection connectionSettings) string {
	return fmt.Sprintf(
		mysqlDSNTemplateConstant,
		connection.Username,
		connection.Password,
		connection.Hostname,
		connection.Port,
		connection.Database,
		connection.connectTimeout(),
	)
}
