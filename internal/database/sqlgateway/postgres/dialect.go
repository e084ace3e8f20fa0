package postgres

import (
	"fmt"
	"github.com/denismitr/zmigrate/internal/database"
	"github.com/jmoiron/sqlx"
	"net"
	"net/url"
	"strconv"
)

const (
	DefaultPort         = 5432
	MaintenanceDatabase = "postgres"
	defaultSSLMode      = "disable"
)

type Dialect struct{}

var _ database.Dialect = Dialect{}

func NewDialect() Dialect {
	return Dialect{}
}

func (Dialect) BindType() int {
	return sqlx.DOLLAR
}

func (Dialect) ColumnDefinition(c database.Column) string {
	var typ string
	switch c.Type {
	case database.Serial:
		typ = "SERIAL"
	default:
		typ = "TEXT"
	}

	return c.Name + " " + typ + database.Constraints(c)
}

func (d Dialect) CreateTableQuery(table string, columns []database.Column) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, database.ColumnList(d, columns))
}

// DSN builds a lib/pq connection URL for the given database
func DSN(cfg database.ConnectConfig, dbName string) string {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:     "/" + dbName,
		RawQuery: url.Values{"sslmode": []string{defaultSSLMode}}.Encode(),
	}

	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	} else if cfg.User != "" {
		u.User = url.User(cfg.User)
	}

	return u.String()
}
