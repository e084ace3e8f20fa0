package zmigrate

import (
	"context"
	"github.com/denismitr/zmigrate/internal/database"
	"github.com/denismitr/zmigrate/internal/engine"
	"github.com/denismitr/zmigrate/internal/logger"
	"github.com/denismitr/zmigrate/internal/source"
	"github.com/denismitr/zmigrate/migration"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/pkg/errors"
	"sync"
)

var ErrStoreNotInitialized = errors.New("database store has not been initialized")

type CloserFunc func() error

// Report is the outcome of a single run
type Report = engine.Report

type Migrator struct {
	lg     logger.Logger
	store  database.Store
	engine *engine.Engine

	fs              vfs.FileSystem
	folder          string
	migrationsTable string

	closeOnce sync.Once
	closeErr  error
}

// NewMigrator creates a migrator configured by the option callbacks,
// a store option is required, the source defaults to ./migration on the local disk
func NewMigrator(opts ...OptionFunc) (*Migrator, CloserFunc, error) {
	m := new(Migrator)
	m.lg = logger.NullLogger{}
	m.migrationsTable = database.DefaultMigrationsTable

	for _, oFunc := range opts {
		if err := oFunc(m); err != nil {
			if m.store != nil {
				if closeErr := m.store.Close(); closeErr != nil {
					return nil, nil, errors.Wrap(err, closeErr.Error())
				}
			}
			return nil, nil, err
		}
	}

	if m.store == nil {
		return nil, nil, ErrStoreNotInitialized
	}

	if s, ok := m.store.(interface{ SetLogger(logger.Logger) }); ok {
		s.SetLogger(m.lg)
	}

	if m.fs == nil {
		m.fs = osfs.New()
	}

	if m.folder == "" {
		m.folder = source.DefaultMigrationsFolder
	}

	e, err := engine.New(source.NewLocalSource(m.fs, m.folder, m.lg), m.store, m.lg, m.migrationsTable)
	if err != nil {
		if closeErr := m.store.Close(); closeErr != nil {
			return nil, nil, errors.Wrap(err, closeErr.Error())
		}
		return nil, nil, err
	}

	m.engine = e

	return m, m.close, nil
}

// Up applies every pending version in ascending order
func (m *Migrator) Up(ctx context.Context, cfs ...ActionConfigurator) (Report, error) {
	return m.Run(ctx, migration.Up, cfs...)
}

// Down reverts every migrated version in descending order
func (m *Migrator) Down(ctx context.Context, cfs ...ActionConfigurator) (Report, error) {
	return m.Run(ctx, migration.Down, cfs...)
}

func (m *Migrator) Run(ctx context.Context, d migration.Direction, cfs ...ActionConfigurator) (Report, error) {
	act := new(Action)
	for _, f := range cfs {
		if err := f(act); err != nil {
			return Report{}, err
		}
	}

	report, err := m.engine.Run(ctx, engine.Params{
		Direction:   d,
		Range:       act.versionRange,
		Seed:        act.seed,
		SkipMissing: act.skipMissing,
	})
	if err != nil {
		return report, err
	}

	switch d {
	case migration.Down:
		m.lg.Successf("reverted %d version(s), %d skipped", len(report.Reverted), len(report.Skipped))
	default:
		m.lg.Successf("applied %d version(s), %d skipped", len(report.Applied), len(report.Skipped))
	}

	return report, nil
}

// close releases the store exactly once
func (m *Migrator) close() error {
	m.closeOnce.Do(func() {
		if err := m.store.Close(); err != nil {
			m.lg.Error(err)
			m.closeErr = err
		}
	})

	return m.closeErr
}
