package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/and161185/pgsql-check/internal/errs"
)

// fileJSON is the JSON config file. Every field is optional; a flag given on
// the command line wins over the file.
type fileJSON struct {
	Host          *string `json:"host"`
	Port          *int    `json:"port"`
	User          *string `json:"user"`
	Password      *string `json:"password"`
	Database      *string `json:"database"`
	DatabaseDSN   *string `json:"database_dsn"`
	Warning       *string `json:"warning"`
	Critical      *string `json:"critical"`
	Mode          *string `json:"mode"`
	ModesFile     *string `json:"modes_file"`
	Timeout       *string `json:"timeout"` // "10s"
	StateBackend  *string `json:"state_backend"`
	StateDir      *string `json:"state_dir"`
	StateDSN      *string `json:"state_dsn"`
	RedisAddr     *string `json:"redis_addr"`
	RedisPassword *string `json:"redis_password"`
	RedisDB       *int    `json:"redis_db"`
	StateTTL      *string `json:"state_ttl"`
	Textfile      *string `json:"textfile"`
	LogLevel      *string `json:"log_level"`
	Address       *string `json:"address"`
	TrustedSubnet *string `json:"trusted_subnet"`
}

func loadJSON(path string) (*fileJSON, error) {
	if path == "" {
		return &fileJSON{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: config file: %w", errs.ErrConfiguration, err)
	}
	var c fileJSON
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: config file %s: %w", errs.ErrConfiguration, path, err)
	}
	return &c, nil
}

func parseDuration(name, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", errs.ErrConfiguration, name, err)
	}
	return d, nil
}
