package config

import (
	"flag"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/and161185/pgsql-check/internal/errs"
	"github.com/and161185/pgsql-check/storage"
)

// State backends.
const (
	BackendFile     = storage.BackendFile
	BackendRedis    = storage.BackendRedis
	BackendPostgres = storage.BackendPostgres
)

// Connection describes how to reach the monitored server.
type Connection struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	DSN      string // full connection string, replaces the fields above
}

// ConnString returns the DSN, or a postgres URL built from the other fields.
func (c Connection) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"application_name": {"check_pgsql"}}.Encode(),
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}
	return u.String()
}

func (c Connection) validate() error {
	if c.DSN != "" {
		if c.Host != "" {
			return fmt.Errorf("%w: -dsn and -H", errs.ErrConflictingOptions)
		}
		return nil
	}
	if c.Host == "" {
		return fmt.Errorf("%w: server address (-H) is required", errs.ErrConfiguration)
	}
	if c.User == "" {
		return fmt.Errorf("%w: user (-U) is required", errs.ErrConfiguration)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port %d", errs.ErrConfiguration, c.Port)
	}
	return nil
}

// State selects and configures the delta store.
type State = storage.Options

func validateState(s State) error {
	switch s.Backend {
	case BackendFile:
	case BackendRedis:
		if s.RedisAddr == "" {
			return fmt.Errorf("%w: redis backend needs -redis-addr", errs.ErrConfiguration)
		}
	case BackendPostgres:
		if s.DSN == "" {
			return fmt.Errorf("%w: postgres backend needs -state-dsn", errs.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown state backend %q", errs.ErrConfiguration, s.Backend)
	}
	return nil
}

type commonFlags struct {
	host, user, password, database, dsn strFlag
	port                                intFlag
	backend, dir, stateDSN              strFlag
	redisAddr, redisPassword            strFlag
	redisDB                             intFlag
	ttl                                 durationFlag
	modesFile, logLevel                 strFlag
	timeout                             intFlag
	conf, envFile                       strFlag
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.Var(&f.host, "H", "server address")
	fs.Var(&f.port, "p", "server port")
	fs.Var(&f.user, "U", "user")
	fs.Var(&f.password, "P", "password")
	fs.Var(&f.database, "d", "database")
	fs.Var(&f.dsn, "dsn", "full connection string (instead of -H/-p/-U/-P/-d)")
	fs.Var(&f.backend, "state-backend", "delta state backend: file, redis or postgres")
	fs.Var(&f.stateDSN, "state-dsn", "connection string of the postgres state database")
	fs.Var(&f.dir, "state-dir", "directory for delta state files")
	fs.Var(&f.redisAddr, "redis-addr", "redis address for delta state")
	fs.Var(&f.redisPassword, "redis-password", "redis password")
	fs.Var(&f.redisDB, "redis-db", "redis database number")
	fs.Var(&f.ttl, "state-ttl", "expiry of redis delta state, 0 keeps it forever")
	fs.Var(&f.modesFile, "modes", "YAML file with additional modes")
	fs.Var(&f.logLevel, "log-level", "log level")
	fs.Var(&f.timeout, "t", "connect and query timeout (seconds)")
	fs.Var(&f.conf, "config", "Path to JSON config file")
	fs.Var(&f.envFile, "env-file", "Path to .env file")
}

// applyJSON copies every field present in the JSON file.
func applyJSON(js *fileJSON, conn *Connection, state *State, modesFile, logLevel *string, timeout *time.Duration) error {
	setStr(&conn.Host, js.Host)
	setInt(&conn.Port, js.Port)
	setStr(&conn.User, js.User)
	setStr(&conn.Password, js.Password)
	setStr(&conn.Database, js.Database)
	setStr(&conn.DSN, js.DatabaseDSN)
	setStr(&state.Backend, js.StateBackend)
	setStr(&state.Dir, js.StateDir)
	setStr(&state.DSN, js.StateDSN)
	setStr(&state.RedisAddr, js.RedisAddr)
	setStr(&state.RedisPassword, js.RedisPassword)
	setInt(&state.RedisDB, js.RedisDB)
	setStr(modesFile, js.ModesFile)
	setStr(logLevel, js.LogLevel)

	if js.StateTTL != nil {
		d, err := parseDuration("state_ttl", *js.StateTTL)
		if err != nil {
			return err
		}
		state.TTL = d
	}
	if js.Timeout != nil {
		d, err := parseDuration("timeout", *js.Timeout)
		if err != nil {
			return err
		}
		*timeout = d
	}
	return nil
}

// applyFlags copies the flags given on the command line. It runs last, so an
// explicit flag beats the JSON file and the environment.
func (f *commonFlags) applyFlags(conn *Connection, state *State, modesFile, logLevel *string, timeout *time.Duration) {
	pickStr(&conn.Host, f.host)
	pickInt(&conn.Port, f.port)
	pickStr(&conn.User, f.user)
	pickStr(&conn.Password, f.password)
	pickStr(&conn.Database, f.database)
	pickStr(&conn.DSN, f.dsn)
	pickStr(&state.Backend, f.backend)
	pickStr(&state.Dir, f.dir)
	pickStr(&state.DSN, f.stateDSN)
	pickStr(&state.RedisAddr, f.redisAddr)
	pickStr(&state.RedisPassword, f.redisPassword)
	pickInt(&state.RedisDB, f.redisDB)
	pickStr(modesFile, f.modesFile)
	pickStr(logLevel, f.logLevel)
	if f.ttl.set {
		state.TTL = f.ttl.v
	}
	if f.timeout.set {
		*timeout = time.Duration(f.timeout.v) * time.Second
	}
}

// resolveTarget settles a host and a DSN arriving from different layers.
// A value set by flag or JSON file beats one inherited from the environment;
// only two explicit values are left in place to conflict.
func (f *commonFlags) resolveTarget(js *fileJSON, conn *Connection) {
	if conn.DSN == "" || conn.Host == "" {
		return
	}
	explicitHost := f.host.set || js.Host != nil
	explicitDSN := f.dsn.set || js.DatabaseDSN != nil
	switch {
	case !explicitHost:
		conn.Host = ""
	case !explicitDSN:
		conn.DSN = ""
	}
}

func setStr(dst *string, js *string) {
	if js != nil {
		*dst = *js
	}
}

func setInt(dst *int, js *int) {
	if js != nil {
		*dst = *js
	}
}

func pickStr(dst *string, f strFlag) {
	if f.set {
		*dst = f.v
	}
}

func pickInt(dst *int, f intFlag) {
	if f.set {
		*dst = f.v
	}
}

// configPath returns the JSON config path from the flag or CONFIG.
func (f *commonFlags) configPath() string {
	if f.conf.v != "" {
		return f.conf.v
	}
	return os.Getenv("CONFIG")
}

// loadEnvFile fills the process environment from the .env file. Variables
// already present in the environment are kept.
func (f *commonFlags) loadEnvFile() error {
	if f.envFile.v == "" {
		return nil
	}
	if err := godotenv.Load(f.envFile.v); err != nil {
		return fmt.Errorf("%w: env file: %w", errs.ErrConfiguration, err)
	}
	return nil
}

func readCommonEnvironment(conn *Connection, state *State, modesFile, logLevel *string, timeout *time.Duration) error {
	envStr(&conn.Host, "PGHOST")
	envStr(&conn.User, "PGUSER")
	envStr(&conn.Password, "PGPASSWORD")
	envStr(&conn.Database, "PGDATABASE")
	envStr(&conn.DSN, "DATABASE_DSN")
	envStr(&state.Backend, "CHECK_STATE_BACKEND")
	envStr(&state.Dir, "CHECK_STATE_DIR")
	envStr(&state.DSN, "CHECK_STATE_DSN")
	envStr(&state.RedisAddr, "REDIS_ADDR")
	envStr(&state.RedisPassword, "REDIS_PASSWORD")
	envStr(modesFile, "CHECK_MODES_FILE")
	envStr(logLevel, "LOG_LEVEL")

	if err := envInt(&conn.Port, "PGPORT"); err != nil {
		return err
	}
	if err := envInt(&state.RedisDB, "REDIS_DB"); err != nil {
		return err
	}
	if v := os.Getenv("CHECK_STATE_TTL"); v != "" {
		d, err := parseDuration("CHECK_STATE_TTL", v)
		if err != nil {
			return err
		}
		state.TTL = d
	}
	var seconds int
	if err := envInt(&seconds, "CHECK_TIMEOUT"); err != nil {
		return err
	}
	if seconds != 0 {
		*timeout = time.Duration(seconds) * time.Second
	}
	return nil
}

func envStr(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func envInt(dst *int, name string) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: invalid %s env var: %w", errs.ErrConfiguration, name, err)
	}
	*dst = i
	return nil
}

func defaultConnection() Connection {
	return Connection{Port: 5432, Database: "postgres"}
}

func defaultState() State {
	return State{Backend: BackendFile}
}
