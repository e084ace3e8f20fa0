package cli

import (
	"bytes"
	"context"
	"github.com/denismitr/zmigrate/internal/database"
	"github.com/jmoiron/sqlx"
	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"path"
	"path/filepath"
	"testing"
	"time"
)

func newTestFS(t *testing.T, files map[string]string) vfs.FileSystem {
	t.Helper()

	fs := memoryfs.New()
	for name, content := range files {
		require.NoError(t, fs.MkdirAll(path.Dir(name), 0o755))
		require.NoError(t, vfs.WriteFile(fs, name, []byte(content), 0o644))
	}

	return fs
}

func TestApp_Parse(t *testing.T) {
	t.Setenv(ConfigFileEnv, "/config.json")

	t.Run("defaults come from the built-in config", func(t *testing.T) {
		var out bytes.Buffer
		app := New(newTestFS(t, nil), &out, &out)

		c, err := app.Parse(nil)
		require.NoError(t, err)

		assert.Equal(t, "up", c.Direction)
		assert.False(t, bool(c.Seed))
		assert.False(t, bool(c.SkipMissing))
		assert.Equal(t, "migration", c.MigrationDir)
		assert.Equal(t, "pg", c.Driver)
		assert.Equal(t, "localhost", c.Host)
		assert.Equal(t, 0, c.Port)
		assert.Equal(t, "postgres", c.User)
		assert.Equal(t, "postgres", c.Database)
		assert.Equal(t, "migrations", c.MigrationsTable)
		assert.Equal(t, "INFO", c.LogLevel)
		assert.Equal(t, time.Duration(0), c.Timeout)
	})

	t.Run("config file values become defaults and flags win", func(t *testing.T) {
		var out bytes.Buffer
		app := New(newTestFS(t, map[string]string{
			"/config.json": `{"direction": "down", "seed": "yes", "driver": "mysql", "user": "zmigrate"}`,
		}), &out, &out)

		c, err := app.Parse([]string{"-u", "root", "--no-seed", "-r", "0.0.2^0.0.1"})
		require.NoError(t, err)

		assert.Equal(t, "down", c.Direction)
		assert.False(t, bool(c.Seed))
		assert.Equal(t, "mysql", c.Driver)
		assert.Equal(t, "root", c.User)
		assert.Equal(t, "0.0.2^0.0.1", c.Range)
	})

	t.Run("environment variables override the config file", func(t *testing.T) {
		t.Setenv("ZMIGRATE_LOG_LEVEL", "DEBUG")
		t.Setenv("ZMIGRATE_HOST", "db.internal")

		var out bytes.Buffer
		app := New(newTestFS(t, map[string]string{
			"/config.json": `{"host": "localhost"}`,
		}), &out, &out)

		c, err := app.Parse([]string{"-s", "-S"})
		require.NoError(t, err)

		assert.Equal(t, "DEBUG", c.LogLevel)
		assert.Equal(t, "db.internal", c.Host)
		assert.True(t, bool(c.Seed))
		assert.True(t, bool(c.SkipMissing))
	})

	t.Run("seed and skip missing accept a yes or no value", func(t *testing.T) {
		tt := []struct {
			name        string
			args        []string
			seed        bool
			skipMissing bool
		}{
			{name: "separate values", args: []string{"--seed", "yes", "-S", "no"}, seed: true},
			{name: "short flags with values", args: []string{"-s", "no", "-S", "yes"}, skipMissing: true},
			{name: "equals form", args: []string{"--seed=no", "--skip-missing=y"}, skipMissing: true},
			{name: "bare flags", args: []string{"--seed", "--skip-missing", "-d", "up"}, seed: true, skipMissing: true},
			{name: "negated", args: []string{"--no-seed", "--no-skip-missing"}},
		}

		for _, tc := range tt {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				var out bytes.Buffer
				app := New(newTestFS(t, map[string]string{
					"/config.json": `{"seed": "yes", "skip_missing": "yes"}`,
				}), &out, &out)

				c, err := app.Parse(tc.args)
				require.NoError(t, err)

				assert.Equal(t, tc.seed, bool(c.Seed))
				assert.Equal(t, tc.skipMissing, bool(c.SkipMissing))
			})
		}
	})

	t.Run("invalid yes or no value is rejected", func(t *testing.T) {
		var out bytes.Buffer
		app := New(newTestFS(t, nil), &out, &out)

		_, err := app.Parse([]string{"--seed=maybe"})
		assert.Error(t, err)
	})

	t.Run("invalid direction is rejected", func(t *testing.T) {
		var out bytes.Buffer
		app := New(newTestFS(t, nil), &out, &out)

		_, err := app.Parse([]string{"-d", "sideways"})
		assert.Error(t, err)
	})
}

func TestRunContext(t *testing.T) {
	t.Parallel()

	t.Run("no timeout means no deadline", func(t *testing.T) {
		ctx, cancel := runContext(context.Background(), 0)
		defer cancel()

		_, ok := ctx.Deadline()
		assert.False(t, ok)
		assert.NoError(t, ctx.Err())
	})

	t.Run("positive timeout sets a deadline", func(t *testing.T) {
		ctx, cancel := runContext(context.Background(), time.Minute)
		defer cancel()

		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
	})

	t.Run("cancelling the parent still stops the run", func(t *testing.T) {
		parent, cancelParent := context.WithCancel(context.Background())
		ctx, cancel := runContext(parent, 0)
		defer cancel()

		cancelParent()
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	})
}

func TestConnectConfig(t *testing.T) {
	t.Parallel()

	cfg, err := connectConfig(&CLI{Driver: "postgresql", Host: "db", User: "u", Database: "d"})
	require.NoError(t, err)
	assert.Equal(t, database.Postgres, cfg.Driver)
	assert.True(t, cfg.CreateDatabase)

	cfg, err = connectConfig(&CLI{Driver: "oracle", DatabaseURL: "mysql://u:p@db/d", NoCreateDatabase: true})
	require.NoError(t, err)
	assert.Equal(t, "mysql://u:p@db/d", cfg.URL)
	assert.False(t, cfg.CreateDatabase)

	_, err = connectConfig(&CLI{Driver: "oracle"})
	assert.Error(t, err)
}

func TestApp_RunAgainstSqlite(t *testing.T) {
	t.Setenv(ConfigFileEnv, "/config.json")

	dbPath := filepath.Join(t.TempDir(), "cli.db")

	fs := newTestFS(t, map[string]string{
		"/migration/0.0.1/up.sql":   "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);",
		"/migration/0.0.1/seed.sql": "INSERT INTO users (name) VALUES ('john');",
		"/migration/0.0.1/down.sql": "DROP TABLE users;",
		"/migration/0.0.1/readme":   "users table",
		"/migration/0.1.0/up.sql":   "CREATE TABLE posts (id INTEGER PRIMARY KEY, title TEXT);",
		"/migration/0.1.0/down.sql": "DROP TABLE posts;",
	})

	var out bytes.Buffer
	app := New(fs, &out, &out)

	base := []string{"--driver", "sqlite", "-D", dbPath, "-m", "/migration", "--no-color"}

	require.NoError(t, app.Run(append(base, "--seed", "--skip-missing")))
	assert.Contains(t, out.String(), "|- users table")

	inspect, err := sqlx.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer inspect.Close()

	var revisions []string
	require.NoError(t, inspect.Select(&revisions, "SELECT revision FROM migrations ORDER BY id"))
	assert.Equal(t, []string{"0.0.1", "0.1.0"}, revisions)

	var users int
	require.NoError(t, inspect.Get(&users, "SELECT COUNT(*) FROM users"))
	assert.Equal(t, 1, users)

	c, err := app.Parse(append(base, "-d", "down", "-r", "0.1.0^0.1.0"))
	require.NoError(t, err)
	require.NoError(t, app.Migrate(context.Background(), c))

	revisions = nil
	require.NoError(t, inspect.Select(&revisions, "SELECT revision FROM migrations ORDER BY id"))
	assert.Equal(t, []string{"0.0.1"}, revisions)

	err = app.Run(append(base, "-d", "up", "-r", "0.1.0^0.0.1"))
	assert.Error(t, err)
}
