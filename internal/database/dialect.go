package database

import (
	"context"
	"database/sql"
	"github.com/jmoiron/sqlx"
)

// Executor is satisfied by *sqlx.Conn, *sqlx.DB and *sqlx.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

// Dialect renders engine specific SQL for the store primitives.
// Query placeholders are written as "?" and rebound by the gateway.
type Dialect interface {
	BindType() int
	ColumnDefinition(c Column) string
	CreateTableQuery(table string, columns []Column) string
}

type Locker interface {
	Lock(ctx context.Context, ex Executor) error
	Unlock(ctx context.Context, ex Executor) error
}

type NullLocker struct{}

var _ Locker = NullLocker{}

func (NullLocker) Lock(context.Context, Executor) error {
	return nil
}

func (NullLocker) Unlock(context.Context, Executor) error {
	return nil
}

// Constraints renders the column constraints shared by all supported engines
func Constraints(c Column) string {
	var s string
	if c.PrimaryKey {
		s += " PRIMARY KEY"
	}
	if c.NotNull {
		s += " NOT NULL"
	}
	if c.Unique {
		s += " UNIQUE"
	}
	return s
}

func ColumnList(d Dialect, columns []Column) string {
	var s string
	for i := range columns {
		if i > 0 {
			s += ", "
		}
		s += d.ColumnDefinition(columns[i])
	}
	return s
}
