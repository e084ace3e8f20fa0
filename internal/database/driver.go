package database

import (
	"github.com/pkg/errors"
	"strings"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Driver enumerates the database engines zmigrate can talk to
type Driver int

const (
	Postgres Driver = iota + 1
	MySQL
	Sqlite
)

func ParseDriver(name string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pg", "postgres", "postgresql", "pgsql":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	case "sqlite", "sqlite3", "file":
		return Sqlite, nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedDriver, "[%s]", name)
	}
}

// SQLDriverName is the name the driver registers with database/sql
func (d Driver) SQLDriverName() string {
	switch d {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	case Sqlite:
		return "sqlite3"
	default:
		return ""
	}
}

func (d Driver) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	case Sqlite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// ConnectConfig carries the connection parameters through to the store.
// URL, when set, takes precedence over the discrete fields.
type ConnectConfig struct {
	Driver         Driver
	URL            string
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	CreateDatabase bool
}
