package sqlgateway

import (
	"context"
	"github.com/denismitr/zmigrate/internal/database"
	"github.com/denismitr/zmigrate/internal/database/sqlgateway/mysql"
	"github.com/denismitr/zmigrate/internal/database/sqlgateway/postgres"
	"github.com/denismitr/zmigrate/internal/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/xo/dburl"
)

type Options struct {
	Connect  *ConnectOptions
	Postgres PostgresOptions
	MySQL    MySQLOptions
	Logger   logger.Logger
}

// Open resolves the driver and DSN from cfg and returns a gateway that owns
// the resulting pool. Nothing is dialed until the first store operation.
func Open(ctx context.Context, cfg database.ConnectConfig, opts Options) (*SQLGateway, error) {
	if opts.Logger == nil {
		opts.Logger = logger.NullLogger{}
	}

	driver, dsn, err := ResolveDSN(cfg)
	if err != nil {
		return nil, err
	}

	if driver == database.Postgres && cfg.CreateDatabase && cfg.URL == "" {
		if err := bootstrapPostgres(ctx, cfg, opts); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open(driver.SQLDriverName(), dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s database", driver)
	}

	connector := MakeRetryingConnector(db, opts.Connect)

	var g *SQLGateway
	switch driver {
	case database.Postgres:
		g = NewPostgresGateway(connector, &opts.Postgres)
	case database.MySQL:
		g = NewMySQLGateway(connector, &opts.MySQL)
	case database.Sqlite:
		g = NewSqliteGateway(connector)
	default:
		_ = db.Close()
		return nil, errors.Wrapf(database.ErrUnsupportedDriver, "[%d]", driver)
	}

	g.SetLogger(opts.Logger)

	return g, nil
}

// ResolveDSN picks the driver and builds the data source name, a database URL wins over the discrete fields
func ResolveDSN(cfg database.ConnectConfig) (database.Driver, string, error) {
	if cfg.URL != "" {
		u, err := dburl.Parse(cfg.URL)
		if err != nil {
			return 0, "", errors.Wrapf(err, "could not parse database url")
		}

		driver, err := database.ParseDriver(u.Driver)
		if err != nil {
			return 0, "", err
		}

		dsn := u.DSN
		if driver == database.MySQL {
			if dsn, err = mysql.EnableMultiStatements(dsn); err != nil {
				return 0, "", errors.Wrap(err, "could not parse mysql dsn")
			}
		}

		return driver, dsn, nil
	}

	switch cfg.Driver {
	case database.Postgres:
		return cfg.Driver, postgres.DSN(cfg, cfg.Database), nil
	case database.MySQL:
		return cfg.Driver, mysql.DSN(cfg), nil
	case database.Sqlite:
		if cfg.Database == "" {
			return 0, "", errors.New("sqlite database file path was not defined")
		}
		return cfg.Driver, cfg.Database, nil
	default:
		return 0, "", errors.Wrapf(database.ErrUnsupportedDriver, "[%d]", cfg.Driver)
	}
}

func bootstrapPostgres(ctx context.Context, cfg database.ConnectConfig, opts Options) error {
	if cfg.Database == "" || cfg.Database == postgres.MaintenanceDatabase {
		return nil
	}

	db, err := sqlx.Open(database.Postgres.SQLDriverName(), postgres.DSN(cfg, postgres.MaintenanceDatabase))
	if err != nil {
		return errors.Wrap(err, "could not open postgres maintenance database")
	}

	connector := MakeRetryingConnector(db, opts.Connect)
	defer func() {
		if err := connector.Close(); err != nil {
			opts.Logger.Error(err)
		}
	}()

	conn, err := connector.Connect(ctx)
	if err != nil {
		return err
	}

	created, err := postgres.EnsureDatabase(ctx, conn, cfg.Database)
	if err != nil {
		return err
	}

	if created {
		opts.Logger.Infof("created database %s", cfg.Database)
	}

	return nil
}
