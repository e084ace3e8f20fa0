package cli

import (
	"github.com/denismitr/zmigrate"
	"github.com/denismitr/zmigrate/internal/database"
	"log"
)

func (a *App) createMigrator(c *CLI) (*zmigrate.Migrator, zmigrate.CloserFunc, error) {
	cfg, err := connectConfig(c)
	if err != nil {
		return nil, nil, err
	}

	var dbOpts []zmigrate.DatabaseOptionFunc
	if c.NoLock {
		dbOpts = append(dbOpts, zmigrate.WithNoLock())
	}

	printer := log.New(a.stdout, "", 0)

	var opts []zmigrate.OptionFunc
	if c.NoColor {
		opts = append(opts, zmigrate.UseLogger(printer, c.SQL, a.logLevel(c)))
	} else {
		opts = append(opts, zmigrate.UseColorLogger(printer, c.SQL, a.logLevel(c)))
	}

	opts = append(
		opts,
		zmigrate.UseDatabase(cfg, dbOpts...),
		zmigrate.UseFSSource(a.fs, c.MigrationDir),
		zmigrate.WithMigrationsTable(c.MigrationsTable),
	)

	return zmigrate.NewMigrator(opts...)
}

// connectConfig leaves the driver unset when a database url is given, the url scheme decides
func connectConfig(c *CLI) (database.ConnectConfig, error) {
	cfg := database.ConnectConfig{
		URL:            c.DatabaseURL,
		Host:           c.Host,
		Port:           c.Port,
		User:           c.User,
		Password:       c.Password,
		Database:       c.Database,
		CreateDatabase: !c.NoCreateDatabase,
	}

	if cfg.URL != "" {
		return cfg, nil
	}

	driver, err := database.ParseDriver(c.Driver)
	if err != nil {
		return cfg, err
	}

	cfg.Driver = driver

	return cfg, nil
}
