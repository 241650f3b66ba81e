package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/and161185/pgsql-check/internal/errs"
)

// ServerConfig holds the configuration settings for the check server.
type ServerConfig struct {
	Connection
	State         State
	Addr          string        // listen address
	TrustedSubnet string        // CIDR, ex. "192.168.1.0/24"
	ModesFile     string        // YAML file with extra modes
	Timeout       time.Duration // per-request connect and query bound
	LogLevel      string
}

// NewServerConfig parses args (without the program name) the same way as
// NewCheckConfig, minus the per-invocation options.
func NewServerConfig(args []string, usage io.Writer) (*ServerConfig, error) {
	cfg := &ServerConfig{
		Connection: defaultConnection(),
		State:      defaultState(),
		Addr:       "localhost:8080",
		Timeout:    10 * time.Second,
		LogLevel:   "info",
	}

	fs := flag.NewFlagSet("check-server", flag.ContinueOnError)
	fs.SetOutput(usage)

	var common commonFlags
	common.register(fs)

	var fAddr, fTrustedSubnet strFlag
	fs.Var(&fAddr, "a", "HTTP server address")
	fs.Var(&fTrustedSubnet, "trusted-subnet", "trusted subnet")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, fmt.Errorf("%w: usage requested", errs.ErrConfiguration)
		}
		return nil, fmt.Errorf("%w: %w", errs.ErrConfiguration, err)
	}

	// JSON, then .env and environment, then flags
	js, err := loadJSON(common.configPath())
	if err != nil {
		return nil, err
	}
	if err := applyJSON(js, &cfg.Connection, &cfg.State, &cfg.ModesFile, &cfg.LogLevel, &cfg.Timeout); err != nil {
		return nil, err
	}
	setStr(&cfg.Addr, js.Address)
	setStr(&cfg.TrustedSubnet, js.TrustedSubnet)

	if err := common.loadEnvFile(); err != nil {
		return nil, err
	}
	if err := readServerEnvironment(cfg); err != nil {
		return nil, err
	}

	common.applyFlags(&cfg.Connection, &cfg.State, &cfg.ModesFile, &cfg.LogLevel, &cfg.Timeout)
	pickStr(&cfg.Addr, fAddr)
	pickStr(&cfg.TrustedSubnet, fTrustedSubnet)
	common.resolveTarget(js, &cfg.Connection)

	if err := cfg.Connection.validate(); err != nil {
		return nil, err
	}
	if err := validateState(cfg.State); err != nil {
		return nil, err
	}
	if cfg.TrustedSubnet != "" {
		if _, _, err := net.ParseCIDR(cfg.TrustedSubnet); err != nil {
			return nil, fmt.Errorf("%w: trusted subnet: %w", errs.ErrConfiguration, err)
		}
	}
	return cfg, nil
}

func readServerEnvironment(cfg *ServerConfig) error {
	envStr(&cfg.Addr, "ADDRESS")
	envStr(&cfg.TrustedSubnet, "TRUSTED_SUBNET")
	return readCommonEnvironment(&cfg.Connection, &cfg.State, &cfg.ModesFile, &cfg.LogLevel, &cfg.Timeout)
}
