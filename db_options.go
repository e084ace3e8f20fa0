package zmigrate

import (
	"context"
	"database/sql"
	"github.com/denismitr/zmigrate/internal/database"
	"github.com/denismitr/zmigrate/internal/database/sqlgateway"
	"github.com/denismitr/zmigrate/internal/database/sqlgateway/postgres"
	"github.com/jmoiron/sqlx"
	"time"
)

type DatabaseOptionFunc func(*sqlgateway.Options)

// ConnectConfig describes the database UseDatabase connects to
type ConnectConfig = database.ConnectConfig

type Driver = database.Driver

const (
	Postgres = database.Postgres
	MySQL    = database.MySQL
	Sqlite   = database.Sqlite
)

// ParseDriver understands pg, postgres, postgresql, mysql, sqlite and sqlite3
func ParseDriver(name string) (Driver, error) {
	return database.ParseDriver(name)
}

// UseDatabase opens the database described by cfg, the driver comes
// either from cfg.Driver or from the scheme of cfg.URL
func UseDatabase(cfg ConnectConfig, options ...DatabaseOptionFunc) OptionFunc {
	return func(m *Migrator) error {
		opts := newDatabaseOptions(options)
		opts.Logger = m.lg

		ctx, cancel := context.WithTimeout(context.Background(), opts.Connect.MaxTimeout)
		defer cancel()

		g, err := sqlgateway.Open(ctx, cfg, opts)
		if err != nil {
			return err
		}

		m.store = g
		return nil
	}
}

func UsePostgres(db *sql.DB, options ...DatabaseOptionFunc) OptionFunc {
	return func(m *Migrator) error {
		opts := newDatabaseOptions(options)
		connector := sqlgateway.MakeRetryingConnector(sqlx.NewDb(db, database.Postgres.SQLDriverName()), opts.Connect)
		m.store = sqlgateway.NewPostgresGateway(connector, &opts.Postgres)
		return nil
	}
}

// UseMySQL expects db to be opened with multiStatements=true when scripts hold more than one statement
func UseMySQL(db *sql.DB, options ...DatabaseOptionFunc) OptionFunc {
	return func(m *Migrator) error {
		opts := newDatabaseOptions(options)
		connector := sqlgateway.MakeRetryingConnector(sqlx.NewDb(db, database.MySQL.SQLDriverName()), opts.Connect)
		m.store = sqlgateway.NewMySQLGateway(connector, &opts.MySQL)
		return nil
	}
}

func UseSqlite(db *sql.DB, options ...DatabaseOptionFunc) OptionFunc {
	return func(m *Migrator) error {
		opts := newDatabaseOptions(options)
		connector := sqlgateway.MakeRetryingConnector(sqlx.NewDb(db, database.Sqlite.SQLDriverName()), opts.Connect)
		m.store = sqlgateway.NewSqliteGateway(connector)
		return nil
	}
}

// WithLockKey names the run lock, postgres gets a bigint derived from the name
func WithLockKey(key string) DatabaseOptionFunc {
	return func(opts *sqlgateway.Options) {
		opts.MySQL.LockKey = key
		opts.Postgres.LockKey = postgres.LockKeyFor(key)
	}
}

// WithLockTimeout is how long mysql waits for GET_LOCK, postgres waits until the context is done
func WithLockTimeout(timeout time.Duration) DatabaseOptionFunc {
	return func(opts *sqlgateway.Options) {
		opts.MySQL.LockFor = int(timeout.Seconds())
	}
}

func WithNoLock() DatabaseOptionFunc {
	return func(opts *sqlgateway.Options) {
		opts.MySQL.NoLock = true
		opts.Postgres.NoLock = true
	}
}

func WithMySQLCharset(charset string) DatabaseOptionFunc {
	return func(opts *sqlgateway.Options) {
		opts.MySQL.Charset = charset
	}
}

func WithMaxConnectionAttempts(attempts int) DatabaseOptionFunc {
	return func(opts *sqlgateway.Options) {
		opts.Connect.MaxAttempts = attempts
	}
}

func WithConnectionTimeout(timeout time.Duration) DatabaseOptionFunc {
	return func(opts *sqlgateway.Options) {
		opts.Connect.MaxTimeout = timeout
	}
}

func newDatabaseOptions(options []DatabaseOptionFunc) sqlgateway.Options {
	opts := sqlgateway.Options{Connect: sqlgateway.NewDefaultConnectOptions()}
	for _, oFunc := range options {
		oFunc(&opts)
	}

	return opts
}
