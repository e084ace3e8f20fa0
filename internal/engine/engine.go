package engine

import (
	"context"
	"github.com/denismitr/zmigrate/internal/database"
	"github.com/denismitr/zmigrate/internal/logger"
	"github.com/denismitr/zmigrate/internal/source"
	"github.com/denismitr/zmigrate/migration"
	"github.com/pkg/errors"
	"time"
)

var ErrMissingScript = errors.New("missing migration script")

const revisionColumn = "revision"

// unlock has to happen even when the run context is already cancelled
const unlockTimeout = 10 * time.Second

type Source interface {
	Versions(ctx context.Context) (migration.Versions, error)
	Script(v migration.Version, name string) (string, bool, error)
	Readme(v migration.Version) ([]string, error)
	Path(v migration.Version, name string) string
}

type Params struct {
	Direction   migration.Direction
	Range       migration.Range
	Seed        bool
	SkipMissing bool
}

// Report lists the versions touched by a run in the order they were processed
type Report struct {
	Applied  migration.Versions
	Reverted migration.Versions
	Skipped  migration.Versions
}

type Engine struct {
	src   Source
	store database.Store
	lg    logger.Logger
	table string
}

func New(src Source, store database.Store, lg logger.Logger, table string) (*Engine, error) {
	if table == "" {
		table = database.DefaultMigrationsTable
	}

	if err := database.ValidateIdentifier(table); err != nil {
		return nil, errors.Wrap(err, "migrations table name")
	}

	if lg == nil {
		lg = logger.NullLogger{}
	}

	return &Engine{src: src, store: store, lg: lg, table: table}, nil
}

// Run applies or reverts every discovered version that falls into the range.
// Versions completed before a failure stay recorded in the tracking table,
// so the next run resumes from the first unfinished one.
func (e *Engine) Run(ctx context.Context, p Params) (report Report, err error) {
	if p.Direction == "" {
		p.Direction = migration.Up
	}

	if _, err := migration.ParseDirection(p.Direction.String()); err != nil {
		return report, err
	}

	if err := p.Range.Validate(p.Direction); err != nil {
		return report, err
	}

	versions, err := e.src.Versions(ctx)
	if err != nil {
		return report, err
	}

	versions.SortFor(p.Direction)

	if err := e.store.Lock(ctx); err != nil {
		return report, err
	}

	defer func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
		defer cancel()

		if unlockErr := e.store.Unlock(unlockCtx); unlockErr != nil {
			if err != nil {
				err = errors.Wrap(err, unlockErr.Error())
			} else {
				err = unlockErr
			}
		}
	}()

	if err := e.store.CreateTable(ctx, e.table, database.TrackingColumns()); err != nil {
		return report, errors.Wrapf(err, "could not create [%s] table", e.table)
	}

	for _, v := range versions {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if !p.Range.Contains(p.Direction, v) {
			continue
		}

		var done bool
		if p.Direction == migration.Down {
			done, err = e.downgrade(ctx, v, p)
		} else {
			done, err = e.upgrade(ctx, v, p)
		}

		if err != nil {
			return report, err
		}

		switch {
		case !done:
			report.Skipped = append(report.Skipped, v)
		case p.Direction == migration.Down:
			report.Reverted = append(report.Reverted, v)
		default:
			report.Applied = append(report.Applied, v)
		}
	}

	return report, nil
}

func (e *Engine) upgrade(ctx context.Context, v migration.Version, p Params) (bool, error) {
	migrated, err := e.isMigrated(ctx, v)
	if err != nil {
		return false, err
	}

	if migrated {
		e.lg.Infof("%s is already migrated. Skipping", v)
		return false, nil
	}

	up, ok, err := e.src.Script(v, source.UpScript)
	if err != nil {
		return false, errors.Wrapf(err, "version %s", v)
	}

	// without up.sql there is nothing to record, the version stays pending
	if !ok {
		path := e.src.Path(v, source.UpScript)
		if !p.SkipMissing {
			return false, errors.Wrapf(ErrMissingScript, "%s", path)
		}

		e.lg.Infof("%s is missing. Skipping %s", path, v)
		return false, nil
	}

	e.lg.Infof("Migrating %s", v)

	readme, err := e.src.Readme(v)
	if err != nil {
		return false, err
	}

	for _, line := range readme {
		e.lg.Infof("|- %s", line)
	}

	if err := e.execute(ctx, v, source.UpScript, up); err != nil {
		return false, err
	}

	if p.Seed {
		seed, ok, err := e.src.Script(v, source.SeedScript)
		if err != nil {
			return false, errors.Wrapf(err, "version %s", v)
		}

		if ok {
			if err := e.execute(ctx, v, source.SeedScript, seed); err != nil {
				return false, err
			}
		} else if !p.SkipMissing {
			return false, errors.Wrapf(ErrMissingScript, "%s", e.src.Path(v, source.SeedScript))
		} else {
			e.lg.Infof("%s is missing. Skipping", e.src.Path(v, source.SeedScript))
		}
	}

	if err := e.store.InsertRow(ctx, e.table, []database.Value{{Column: revisionColumn, Value: v.String()}}); err != nil {
		return false, errors.Wrapf(err, "could not record %s as migrated", v)
	}

	return true, nil
}

func (e *Engine) downgrade(ctx context.Context, v migration.Version, p Params) (bool, error) {
	migrated, err := e.isMigrated(ctx, v)
	if err != nil {
		return false, err
	}

	if !migrated {
		e.lg.Infof("%s not migrated. No downgrading needed", v)
		return false, nil
	}

	e.lg.Infof("Downgrading %s", v)

	down, ok, err := e.src.Script(v, source.DownScript)
	if err != nil {
		return false, errors.Wrapf(err, "version %s", v)
	}

	if ok {
		if err := e.execute(ctx, v, source.DownScript, down); err != nil {
			return false, err
		}
	} else if !p.SkipMissing {
		return false, errors.Wrapf(ErrMissingScript, "%s", e.src.Path(v, source.DownScript))
	} else {
		e.lg.Infof("%s is missing. Skipping", e.src.Path(v, source.DownScript))
	}

	if err := e.store.DeleteRows(ctx, e.table, database.Eq{Column: revisionColumn, Value: v.String()}); err != nil {
		return false, errors.Wrapf(err, "could not remove %s from migrated", v)
	}

	return true, nil
}

func (e *Engine) execute(ctx context.Context, v migration.Version, name, script string) error {
	path := e.src.Path(v, name)
	e.lg.Infof("Executing %s", path)

	if err := e.store.ExecuteScript(ctx, script); err != nil {
		return errors.Wrapf(err, "version %s failed executing %s", v, path)
	}

	return nil
}

func (e *Engine) isMigrated(ctx context.Context, v migration.Version) (bool, error) {
	rows, err := e.store.QueryRows(
		ctx,
		e.table,
		[]string{revisionColumn},
		1,
		database.Eq{Column: revisionColumn, Value: v.String()},
	)
	if err != nil {
		return false, errors.Wrapf(err, "could not read migration state of %s", v)
	}

	return len(rows) > 0, nil
}
