package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vancomm/minesweeper/internal/mines"
)

const (
	DefaultRows  = 16
	DefaultCols  = 30
	DefaultMines = 99
)

type Records struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
	Migrate bool   `mapstructure:"migrate"`
}

type Config struct {
	Rows    int     `mapstructure:"rows"`
	Cols    int     `mapstructure:"cols"`
	Mines   int     `mapstructure:"mines"`
	Board   string  `mapstructure:"board"`
	Seed    uint64  `mapstructure:"seed"`
	Records Records `mapstructure:"records"`
}

func (c Config) Params() mines.Params {
	return mines.Params{Rows: c.Rows, Cols: c.Cols, Mines: c.Mines}
}

// flags maps viper keys to their command line names.
var flags = map[string]string{
	"rows":            "rows",
	"cols":            "cols",
	"mines":           "mines",
	"board":           "board",
	"seed":            "seed",
	"records.backend": "records",
	"records.path":    "records-path",
	"records.dsn":     "records-dsn",
	"records.migrate": "migrate",
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Int("rows", DefaultRows, "number of rows")
	fs.Int("cols", DefaultCols, "number of columns")
	fs.Int("mines", DefaultMines, "number of mines")
	fs.String("board", "", "board preset (beginner, intermediate, expert) or query such as rows=9&cols=9&mines=10")
	fs.Uint64("seed", 0, "mine placement seed, 0 picks a random one")
	fs.String("records", "file", "best time backend: file, sqlite or postgres")
	fs.String("records-path", "local/high_score.csv", "best time file for the file and sqlite backends")
	fs.String("records-dsn", "", "postgres url, defaults to DATABASE_URL or POSTGRES_* variables")
	fs.Bool("migrate", false, "apply postgres migrations on start")
	fs.String("config", "", "config file (yaml, json or toml)")
	return fs
}

// Load reads the configuration from args, MINES_* environment variables
// and an optional config file, in that order of precedence. A board that
// cannot be played is rejected with [mines.ErrBadParams].
func Load(name string, args []string) (*Config, error) {
	fs := newFlagSet(name)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("MINES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, flag := range flags {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("unable to bind flag %s: %w", flag, err)
		}
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate resolves the board preset into rows, cols and mines and checks
// that the board is playable.
func (c *Config) Validate() error {
	if c.Board != "" {
		params, err := DecodeBoard(c.Board)
		if err != nil {
			return err
		}
		c.Rows, c.Cols, c.Mines = params.Unpack()
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.Records.Backend != "postgres" && c.Records.Path == "" {
		return errors.New("records path must not be empty")
	}
	return nil
}
