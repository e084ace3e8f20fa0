package mysql

import (
	"fmt"
	"github.com/denismitr/zmigrate/internal/database"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"net"
	"strconv"
)

const DefaultPort = 3306

type Dialect struct {
	charset string
}

var _ database.Dialect = (*Dialect)(nil)

func NewDialect(charset string) *Dialect {
	return &Dialect{charset: charset}
}

func (*Dialect) BindType() int {
	return sqlx.QUESTION
}

// ColumnDefinition maps Text to VARCHAR(255), since MySQL can not index a TEXT column
// without a prefix length
func (*Dialect) ColumnDefinition(c database.Column) string {
	var typ string
	switch c.Type {
	case database.Serial:
		typ = "BIGINT UNSIGNED AUTO_INCREMENT"
	default:
		typ = "VARCHAR(255)"
	}

	return c.Name + " " + typ + database.Constraints(c)
}

func (d *Dialect) CreateTableQuery(table string, columns []database.Column) string {
	q := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s) ENGINE=InnoDB", table, database.ColumnList(d, columns))
	if d.charset != "" {
		q += " CHARACTER SET=" + d.charset
	}
	return q
}

// DSN enables multi statement execution, so a script file can hold more than one statement
func DSN(cfg database.ConnectConfig) string {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	c.DBName = cfg.Database
	c.MultiStatements = true
	c.ParseTime = true

	return c.FormatDSN()
}

// EnableMultiStatements rewrites a user supplied DSN the same way DSN does
func EnableMultiStatements(dsn string) (string, error) {
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}

	c.MultiStatements = true
	c.ParseTime = true

	return c.FormatDSN(), nil
}
