package cli

import (
	"context"
	"github.com/alecthomas/kong"
	"github.com/denismitr/zmigrate"
	"github.com/denismitr/zmigrate/internal/logger"
	"github.com/denismitr/zmigrate/migration"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/pkg/errors"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// CLI holds the command line flags. Every flag falls back to ZMIGRATE_<FLAG>,
// then to the config file, then to the built-in default.
type CLI struct {
	Direction        string        `short:"d" enum:"up,down" default:"${direction}" help:"Migration direction (${enum})."`
	Seed             YesNo         `short:"s" negatable:"" default:"${seed}" help:"Run seed.sql after up.sql, accepts an optional yes/no value."`
	SkipMissing      YesNo         `short:"S" negatable:"" default:"${skipMissing}" help:"Skip missing scripts instead of failing, accepts an optional yes/no value."`
	MigrationDir     string        `short:"m" default:"${migrationDir}" help:"Directory holding the version directories."`
	Driver           string        `default:"${driver}" help:"Database driver (pg, mysql, sqlite)."`
	User             string        `short:"u" default:"${user}" help:"Database user."`
	Password         string        `short:"p" default:"${password}" help:"Database password."`
	Host             string        `short:"H" default:"${host}" help:"Database host."`
	Port             int           `short:"P" default:"${port}" help:"Database port, 0 picks the driver default."`
	Database         string        `short:"D" default:"${database}" help:"Database name, or the file path for sqlite."`
	DatabaseURL      string        `name:"database-url" default:"${databaseURL}" help:"Database URL, overrides driver and connection flags."`
	Range            string        `short:"r" help:"Limit the run to first^last, either side may be empty."`
	MigrationsTable  string        `default:"${migrationsTable}" help:"Name of the tracking table."`
	NoLock           bool          `help:"Do not take the advisory lock for the run."`
	NoCreateDatabase bool          `help:"Do not create a missing postgres database."`
	LogLevel         string        `enum:"DEBUG,INFO,WARN,ERROR" default:"INFO" help:"Log level (${enum})."`
	SQL              bool          `name:"sql" help:"Print every statement sent to the database."`
	NoColor          bool          `help:"Disable colored output."`
	Timeout          time.Duration `default:"0s" help:"Timeout of the whole run, 0 waits until the run ends or is interrupted."`
}

// yesNoMapper decodes a boolean flag that may be followed by yes or no,
// so both "--seed" and "--seed yes" work
type yesNoMapper struct{}

var _ kong.BoolMapper = yesNoMapper{}

func (yesNoMapper) Decode(ctx *kong.DecodeContext, target reflect.Value) error {
	token := ctx.Scan.Peek()
	if token.Type != kong.FlagValueToken && !(token.IsValue() && isYesNo(token.String())) {
		target.SetBool(true)
		return nil
	}

	token = ctx.Scan.Pop()
	switch v := token.Value.(type) {
	case bool:
		target.SetBool(v)
	case string:
		b, err := ParseYesNo(v)
		if err != nil {
			return err
		}
		target.SetBool(b)
	default:
		return errors.Errorf("expected yes or no but got %q (%T)", token.Value, token.Value)
	}

	return nil
}

func (yesNoMapper) IsBool() bool {
	return true
}

func isYesNo(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}

	_, err := ParseYesNo(s)
	return err == nil
}

type App struct {
	fs     vfs.FileSystem
	stdout io.Writer
	stderr io.Writer
	exit   func(int)
}

type AppOption func(*App)

// WithExit replaces the function kong calls after printing help
func WithExit(exit func(int)) AppOption {
	return func(a *App) {
		a.exit = exit
	}
}

func New(fs vfs.FileSystem, stdout, stderr io.Writer, opts ...AppOption) *App {
	a := &App{fs: fs, stdout: stdout, stderr: stderr}
	for _, o := range opts {
		o(a)
	}

	return a
}

// Parse reads the config file and the command line
func (a *App) Parse(args []string) (*CLI, error) {
	cfg, err := LoadConfig(a.fs, ConfigPath())
	if err != nil {
		return nil, err
	}

	c := &CLI{}

	kopts := []kong.Option{
		kong.Name("zmigrate"),
		kong.Description("Apply or revert versioned SQL migration directories."),
		kong.UsageOnError(),
		kong.DefaultEnvars("ZMIGRATE"),
		kong.Writers(a.stdout, a.stderr),
		kong.TypeMapper(reflect.TypeOf(YesNo(false)), yesNoMapper{}),
		kong.Vars{
			"direction":       cfg.Direction,
			"seed":            strconv.FormatBool(bool(cfg.Seed)),
			"skipMissing":     strconv.FormatBool(bool(cfg.SkipMissing)),
			"migrationDir":    cfg.MigrationDir,
			"driver":          cfg.Driver,
			"user":            cfg.User,
			"password":        cfg.Password,
			"host":            cfg.Host,
			"port":            cfg.Port,
			"database":        cfg.Database,
			"databaseURL":     cfg.DatabaseURL,
			"migrationsTable": cfg.MigrationsTable,
		},
	}

	if a.exit != nil {
		kopts = append(kopts, kong.Exit(a.exit))
	}

	parser, err := kong.New(c, kopts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed creating the command line parser")
	}

	if _, err := parser.Parse(args); err != nil {
		return nil, errors.Wrap(err, "failed parsing command line arguments")
	}

	return c, nil
}

// Run parses args and runs the migrations they describe
func (a *App) Run(args []string) error {
	c, err := a.Parse(args)
	if err != nil {
		return err
	}

	return a.Migrate(context.Background(), c)
}

func (a *App) Migrate(ctx context.Context, c *CLI) (err error) {
	d, err := migration.ParseDirection(c.Direction)
	if err != nil {
		return err
	}

	m, closer, err := a.createMigrator(c)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closer(); closeErr != nil {
			if err != nil {
				err = errors.Wrap(err, closeErr.Error())
			} else {
				err = closeErr
			}
		}
	}()

	ctx, cancel := runContext(ctx, c.Timeout)
	defer cancel()

	_, err = m.Run(ctx, d, zmigrate.CreateConfigurators(bool(c.Seed), bool(c.SkipMissing), c.Range)...)

	return err
}

// runContext puts a deadline on the run only when a positive timeout is given
func runContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}

func (a *App) logLevel(c *CLI) logger.Level {
	return logger.ParseLevel(c.LogLevel)
}
