package database

import (
	"context"
	"github.com/pkg/errors"
	"regexp"
)

var (
	ErrInvalidIdentifier = errors.New("invalid SQL identifier")
	ErrLockNotAcquired   = errors.New("could not acquire migration lock")
	ErrLockNotHeld       = errors.New("migration lock is not held by this session")
)

const DefaultMigrationsTable = "migrations"

type ColumnType int

const (
	Serial ColumnType = iota + 1
	Text
)

// Column describes one column of a table the store has to create.
// The concrete SQL type is chosen by the dialect.
type Column struct {
	Name       string
	Type       ColumnType
	PrimaryKey bool
	NotNull    bool
	Unique     bool
}

type Value struct {
	Column string
	Value  interface{}
}

// Eq is an equality filter, rendered as "column = ?" with a bound parameter
type Eq struct {
	Column string
	Value  interface{}
}

type Row map[string]interface{}

// Store is everything the migration engine needs from a database engine
type Store interface {
	CreateTable(ctx context.Context, table string, columns []Column) error
	ExecuteScript(ctx context.Context, script string) error
	InsertRow(ctx context.Context, table string, values []Value) error
	DeleteRows(ctx context.Context, table string, filters ...Eq) error
	QueryRows(ctx context.Context, table string, columns []string, limit int, filters ...Eq) ([]Row, error)

	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error

	Close() error
}

// TrackingColumns is the schema of the migrations table
func TrackingColumns() []Column {
	return []Column{
		{Name: "id", Type: Serial, PrimaryKey: true},
		{Name: "revision", Type: Text, NotNull: true, Unique: true},
	}
}

var identifierRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdentifier guards table and column names, which can not be bound as parameters
func ValidateIdentifier(name string) error {
	if !identifierRegexp.MatchString(name) {
		return errors.Wrapf(ErrInvalidIdentifier, "[%s]", name)
	}

	return nil
}

func ValidateIdentifiers(names ...string) error {
	for _, n := range names {
		if err := ValidateIdentifier(n); err != nil {
			return err
		}
	}

	return nil
}
