package database

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/config/errz"
)

// sql driver names registered by lib/pq and modernc.org/sqlite
const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// DataSource returns the sql driver name and connection string for cfg.
// Relative sqlite paths are resolved with resolve.
func DataSource(cfg config.DatabaseConfig, resolve func(string) string) (string, string, error) {
	switch cfg.Type {
	case config.DatabaseTypePostgres:
		if cfg.DSN != "" {
			return driverPostgres, cfg.DSN, nil
		}
		return driverPostgres, postgresURL(cfg), nil
	case config.DatabaseTypeSQLite:
		if cfg.DSN != "" {
			return driverSQLite, cfg.DSN, nil
		}
		path := cfg.Database
		if resolve != nil && path != ":memory:" {
			path = resolve(path)
		}
		if q := encodeOptions(cfg.Options); q != "" {
			path += "?" + q
		}
		return driverSQLite, path, nil
	default:
		return "", "", fmt.Errorf("%w: database type %q", errz.ErrUnknownDriver, cfg.Type)
	}
}

func postgresURL(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   cfg.Hostname,
		Path:   "/" + strings.TrimLeft(cfg.Database, "/"),
	}
	if u.Host == "" {
		u.Host = "localhost"
	}
	if cfg.Port != 0 {
		u.Host += ":" + strconv.Itoa(cfg.Port)
	}
	switch {
	case cfg.Username != "" && cfg.Password != "":
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	case cfg.Username != "":
		u.User = url.User(cfg.Username)
	}
	opts := maps.Clone(cfg.Options)
	if opts == nil {
		opts = map[string]string{}
	}
	if _, ok := opts["sslmode"]; !ok {
		opts["sslmode"] = "disable"
	}
	u.RawQuery = encodeOptions(opts)
	return u.String()
}

// encodeOptions encodes options as a query string with sorted keys.
func encodeOptions(opts map[string]string) string {
	if len(opts) == 0 {
		return ""
	}
	q := url.Values{}
	for _, k := range slices.Sorted(maps.Keys(opts)) {
		q.Set(k, opts[k])
	}
	return q.Encode()
}
