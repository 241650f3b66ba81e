// Package config provides application configuration structures and helpers.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/and161185/pgsql-check/internal/errs"
)

// CheckConfig holds the settings of one plugin invocation.
type CheckConfig struct {
	Connection
	State     State
	Warning   string        // warning range
	Critical  string        // critical range
	Mode      string        // selected mode, empty means the default one
	ModesFile string        // YAML file with extra modes
	Timeout   time.Duration // bound for connect and query
	Textfile  string        // Prometheus textfile to write, if any
	LogLevel  string
	Version   bool // print build info only
}

// NewCheckConfig parses args (without the program name). modeNames are the
// built-in modes, each of which also gets a boolean flag of its own. Usage
// goes to usage. Every failure wraps errs.ErrConfiguration.
func NewCheckConfig(args []string, modeNames []string, usage io.Writer) (*CheckConfig, error) {
	cfg := &CheckConfig{
		Connection: defaultConnection(),
		State:      defaultState(),
		Timeout:    10 * time.Second,
		LogLevel:   "warn",
	}

	fs := flag.NewFlagSet("check_pgsql", flag.ContinueOnError)
	fs.SetOutput(usage)

	var common commonFlags
	common.register(fs)

	var fWarn, fCrit, fMode, fText strFlag
	var fVersion boolFlag
	fs.Var(&fWarn, "w", "warning range")
	fs.Var(&fCrit, "c", "critical range")
	fs.Var(&fMode, "mode", "mode to run ("+modes(modeNames)+")")
	fs.Var(&fText, "textfile", "write the outcome to this Prometheus textfile")
	fs.Var(&fVersion, "V", "print version and exit")

	modeFlags := make(map[string]*boolFlag, len(modeNames))
	for _, name := range modeNames {
		f := &boolFlag{}
		modeFlags[name] = f
		fs.Var(f, name, "run the "+name+" mode")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, fmt.Errorf("%w: usage requested", errs.ErrConfiguration)
		}
		return nil, fmt.Errorf("%w: %w", errs.ErrConfiguration, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", errs.ErrConfiguration, fs.Args())
	}

	if fVersion.v {
		cfg.Version = true
		return cfg, nil
	}

	js, err := loadJSON(common.configPath())
	if err != nil {
		return nil, err
	}
	if err := applyJSON(js, &cfg.Connection, &cfg.State, &cfg.ModesFile, &cfg.LogLevel, &cfg.Timeout); err != nil {
		return nil, err
	}
	setStr(&cfg.Warning, js.Warning)
	setStr(&cfg.Critical, js.Critical)
	setStr(&cfg.Mode, js.Mode)
	setStr(&cfg.Textfile, js.Textfile)

	if err := common.loadEnvFile(); err != nil {
		return nil, err
	}
	if err := readCheckEnvironment(cfg); err != nil {
		return nil, err
	}

	common.applyFlags(&cfg.Connection, &cfg.State, &cfg.ModesFile, &cfg.LogLevel, &cfg.Timeout)
	pickStr(&cfg.Warning, fWarn)
	pickStr(&cfg.Critical, fCrit)
	pickStr(&cfg.Mode, fMode)
	pickStr(&cfg.Textfile, fText)
	common.resolveTarget(js, &cfg.Connection)

	if err := cfg.selectMode(fMode.set, modeFlags); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// selectMode merges -mode with the per-mode boolean flags. Naming two
// different modes is a conflict.
func (cfg *CheckConfig) selectMode(modeSet bool, modeFlags map[string]*boolFlag) error {
	chosen := map[string]struct{}{}
	if modeSet && cfg.Mode != "" {
		chosen[cfg.Mode] = struct{}{}
	}
	for name, f := range modeFlags {
		if f.v {
			chosen[name] = struct{}{}
		}
	}
	if len(chosen) > 1 {
		names := make([]string, 0, len(chosen))
		for n := range chosen {
			names = append(names, n)
		}
		sort.Strings(names)
		return fmt.Errorf("%w: more than one mode selected %v", errs.ErrConflictingOptions, names)
	}
	for n := range chosen {
		cfg.Mode = n
	}
	return nil
}

func (cfg *CheckConfig) validate() error {
	if err := cfg.Connection.validate(); err != nil {
		return err
	}
	if err := validateState(cfg.State); err != nil {
		return err
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", errs.ErrConfiguration)
	}
	return nil
}

func readCheckEnvironment(cfg *CheckConfig) error {
	envStr(&cfg.Textfile, "CHECK_TEXTFILE")
	return readCommonEnvironment(&cfg.Connection, &cfg.State, &cfg.ModesFile, &cfg.LogLevel, &cfg.Timeout)
}

func modes(names []string) string {
	s := ""
	for i, n := range names {
		if i > 0 {
			s += ", "
		}
		s += n
	}
	return s
}
