package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres holds the connection settings read from the POSTGRES_*
// environment variables.
type Postgres struct {
	Username string
	Password string
	Host     string
	Port     uint16
	DBName   string
	SSLMode  string
}

func lookupEnv(name string) (string, error) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", fmt.Errorf("no %s env variable set", name)
	}
	return value, nil
}

func loadPassword() (string, error) {
	if password, ok := os.LookupEnv("POSTGRES_PASSWORD"); ok {
		return password, nil
	}
	passwordFile, ok := os.LookupEnv("POSTGRES_PASSWORD_FILE")
	if !ok {
		return "", fmt.Errorf("no POSTGRES_PASSWORD or POSTGRES_PASSWORD_FILE env variable set")
	}
	data, err := os.ReadFile(passwordFile)
	if err != nil {
		return "", fmt.Errorf("unable to read from password file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func LoadPostgres() (*Postgres, error) {
	var (
		cfg  Postgres
		port string
		err  error
	)
	for name, dst := range map[string]*string{
		"POSTGRES_USER":    &cfg.Username,
		"POSTGRES_HOST":    &cfg.Host,
		"POSTGRES_PORT":    &port,
		"POSTGRES_DB":      &cfg.DBName,
		"POSTGRES_SSLMODE": &cfg.SSLMode,
	} {
		if *dst, err = lookupEnv(name); err != nil {
			return nil, err
		}
	}
	if cfg.Password, err = loadPassword(); err != nil {
		return nil, fmt.Errorf("unable to load password: %w", err)
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("unable to parse POSTGRES_PORT: %w", err)
	}
	cfg.Port = uint16(p)
	return &cfg, nil
}

func (c Postgres) URL() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.Username),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode,
	)
}

// DbURL returns DATABASE_URL, or a URL built from the POSTGRES_* variables.
func DbURL() (string, error) {
	if dbURL, ok := os.LookupEnv("DATABASE_URL"); ok {
		return dbURL, nil
	}
	cfg, err := LoadPostgres()
	if err != nil {
		return "", fmt.Errorf("no DATABASE_URL set; %w", err)
	}
	return cfg.URL(), nil
}

func NewPgxpoolConfig() (*pgxpool.Config, error) {
	dbURL, err := DbURL()
	if err != nil {
		return nil, err
	}
	return pgxpool.ParseConfig(dbURL)
}
