package zmigrate

import (
	"github.com/denismitr/zmigrate/internal/database"
	"github.com/denismitr/zmigrate/internal/logger"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/pkg/errors"
)

type OptionFunc func(*Migrator) error

type LogLevel = logger.Level

const (
	LogDebug = logger.LevelDebug
	LogInfo  = logger.LevelInfo
	LogError = logger.LevelError
)

func UseColorLogger(p logger.Printer, printSql bool, level LogLevel) OptionFunc {
	return func(m *Migrator) error {
		m.lg = logger.NewColorLogger(p, printSql, level)
		return nil
	}
}

func UseLogger(p logger.Printer, printSql bool, level LogLevel) OptionFunc {
	return func(m *Migrator) error {
		m.lg = logger.NewBWLogger(p, printSql, level)
		return nil
	}
}

// UseLocalFolderSource reads version directories from a folder on the local disk
func UseLocalFolderSource(folder string) OptionFunc {
	return func(m *Migrator) error {
		if folder == "" {
			return errors.New("migrations folder can not be empty")
		}

		m.folder = folder
		return nil
	}
}

// UseFSSource reads version directories from root on any vfs filesystem
func UseFSSource(fs vfs.FileSystem, root string) OptionFunc {
	return func(m *Migrator) error {
		if fs == nil {
			return errors.New("source filesystem can not be nil")
		}

		m.fs = fs
		m.folder = root
		return nil
	}
}

func WithMigrationsTable(table string) OptionFunc {
	return func(m *Migrator) error {
		if err := database.ValidateIdentifier(table); err != nil {
			return errors.Wrap(err, "migrations table name")
		}

		m.migrationsTable = table
		return nil
	}
}
