package sqlite

import (
	"fmt"
	"github.com/denismitr/zmigrate/internal/database"
	"github.com/jmoiron/sqlx"
)

type Dialect struct{}

var _ database.Dialect = Dialect{}

func NewDialect() Dialect {
	return Dialect{}
}

func (Dialect) BindType() int {
	return sqlx.QUESTION
}

// ColumnDefinition turns a serial primary key into a rowid alias with AUTOINCREMENT
func (Dialect) ColumnDefinition(c database.Column) string {
	if c.Type == database.Serial && c.PrimaryKey {
		c.PrimaryKey = false
		return c.Name + " INTEGER PRIMARY KEY AUTOINCREMENT" + database.Constraints(c)
	}

	var typ string
	switch c.Type {
	case database.Serial:
		typ = "INTEGER"
	default:
		typ = "TEXT"
	}

	return c.Name + " " + typ + database.Constraints(c)
}

func (d Dialect) CreateTableQuery(table string, columns []database.Column) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, database.ColumnList(d, columns))
}
