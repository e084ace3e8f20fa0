package cli

import (
	"github.com/denismitr/zmigrate/internal/database"
	"github.com/denismitr/zmigrate/migration"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultConfigFile = "config.json"
	ConfigFileEnv     = "ZMIGRATE_CONFIG"
)

var ErrInvalidYesNo = errors.New("invalid yes/no value")

// Config mirrors config.json. The file is parsed as YAML, which also accepts JSON.
type Config struct {
	Direction       string `yaml:"direction"`
	Seed            YesNo  `yaml:"seed"`
	SkipMissing     YesNo  `yaml:"skip_missing"`
	MigrationDir    string `yaml:"migration_dir"`
	Driver          string `yaml:"driver"`
	Host            string `yaml:"host"`
	Port            string `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	DatabaseURL     string `yaml:"database_url"`
	MigrationsTable string `yaml:"migrations_table"`
}

func DefaultConfig() Config {
	return Config{
		Direction:       migration.Up.String(),
		MigrationDir:    "migration",
		Driver:          "pg",
		Host:            "localhost",
		Port:            "0",
		User:            "postgres",
		Database:        "postgres",
		MigrationsTable: database.DefaultMigrationsTable,
	}
}

// YesNo is a boolean that also understands "yes", "no", "y" and "n"
type YesNo bool

func (yn *YesNo) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	v, err := ParseYesNo(expandEnv(s))
	if err != nil {
		return err
	}

	*yn = YesNo(v)
	return nil
}

func ParseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return true, nil
	case "no", "n", "false", "0", "":
		return false, nil
	default:
		return false, errors.Wrapf(ErrInvalidYesNo, "[%s]", s)
	}
}

// ConfigPath is the value of ZMIGRATE_CONFIG or config.json in the working directory
func ConfigPath() string {
	if p := os.Getenv(ConfigFileEnv); p != "" {
		return p
	}

	return DefaultConfigFile
}

// LoadConfig reads the config file at path on top of the defaults,
// a missing file leaves the defaults untouched
func LoadConfig(fs vfs.FileSystem, path string) (Config, error) {
	cfg := DefaultConfig()

	b, err := vfs.ReadFile(fs, path)
	if err != nil {
		if vfs.IsErrNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "could not read zmigrate configuration file [%s]", path)
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "could not parse zmigrate configuration file [%s]", path)
	}

	for _, field := range []*string{
		&cfg.Direction,
		&cfg.MigrationDir,
		&cfg.Driver,
		&cfg.Host,
		&cfg.Port,
		&cfg.User,
		&cfg.Password,
		&cfg.Database,
		&cfg.DatabaseURL,
		&cfg.MigrationsTable,
	} {
		*field = expandEnv(*field)
	}

	if err := cfg.validate(); err != nil {
		return cfg, errors.Wrapf(err, "zmigrate configuration file [%s]", path)
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	d, err := migration.ParseDirection(cfg.Direction)
	if err != nil {
		return err
	}
	cfg.Direction = d.String()

	if cfg.Port == "" {
		cfg.Port = "0"
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return errors.Wrapf(err, "port [%s]", cfg.Port)
	}

	if cfg.DatabaseURL == "" {
		if _, err := database.ParseDriver(cfg.Driver); err != nil {
			return err
		}
	}

	return nil
}

// expandEnv replaces a whole "%%NAME%%" value with the NAME environment variable
func expandEnv(s string) string {
	if len(s) > 4 && strings.HasPrefix(s, "%%") && strings.HasSuffix(s, "%%") {
		return os.Getenv(strings.TrimSuffix(strings.TrimPrefix(s, "%%"), "%%"))
	}

	return s
}
