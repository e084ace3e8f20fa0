package postgres

import (
	"context"
	"github.com/denismitr/zmigrate/internal/database"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// EnsureDatabase creates the database unless pg_database already lists it.
// ex must be connected to another database, usually the maintenance one.
func EnsureDatabase(ctx context.Context, ex database.Executor, name string) (bool, error) {
	rows, err := ex.QueryxContext(ctx, "SELECT 1 FROM pg_catalog.pg_database WHERE datname = $1", name)
	if err != nil {
		return false, errors.Wrapf(err, "could not look up database [%s]", name)
	}

	exists := rows.Next()
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return false, errors.Wrapf(err, "could not look up database [%s]", name)
	}

	if err := rows.Close(); err != nil {
		return false, err
	}

	if exists {
		return false, nil
	}

	if _, err := ex.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return false, errors.Wrapf(err, "could not create database [%s]", name)
	}

	return true, nil
}
