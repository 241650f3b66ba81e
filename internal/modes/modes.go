// Package modes holds the table of named checks.
//
// The built-in table covers common PostgreSQL health metrics. A YAML file can add
// modes or replace built-in ones:
//
//	modes:
//	  replication_lag:
//	    help: Replication lag in seconds
//	    query: SELECT COALESCE(EXTRACT(EPOCH FROM now() - pg_last_xact_replay_timestamp()), 0)
//	    type: direct
//	    label: lag
//	    unit: s
//	    message: Replication lag is %ss
package modes

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/and161185/pgsql-check/internal/errs"
	"github.com/and161185/pgsql-check/model"
)

// SelfTest is the reserved mode name that runs every other mode.
const SelfTest = "test"

// ConnectTime is the mode reported when no mode is selected.
const ConnectTime = "time2connect"

// Table maps mode names to modes.
type Table map[string]model.Mode

// Lookup returns the mode called name.
func (t Table) Lookup(name string) (model.Mode, error) {
	m, ok := t[name]
	if !ok {
		return model.Mode{}, fmt.Errorf("%w %q", errs.ErrUnknownMode, name)
	}
	return m, nil
}

// Names returns the mode names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns a fresh copy of the built-in table.
func Default() Table {
	t := make(Table, len(builtin))
	for _, m := range builtin {
		t[m.Name] = m
	}
	return t
}

type fileMode struct {
	Help     string   `yaml:"help"`
	Query    string   `yaml:"query"`
	Type     string   `yaml:"type"`
	Label    string   `yaml:"label"`
	Unit     string   `yaml:"unit"`
	Message  string   `yaml:"message"`
	Modifier *float64 `yaml:"modifier"`
}

type fileTable struct {
	Modes map[string]fileMode `yaml:"modes"`
}

// Load reads path and merges its modes over the built-in table.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read modes file: %w", errs.ErrConfiguration, err)
	}
	return Parse(data)
}

// Parse merges the YAML document data over the built-in table.
func Parse(data []byte) (Table, error) {
	var ft fileTable
	if err := yaml.Unmarshal(data, &ft); err != nil {
		return nil, fmt.Errorf("%w: parse modes file: %w", errs.ErrConfiguration, err)
	}

	t := Default()
	for name, fm := range ft.Modes {
		m, err := fm.toMode(name)
		if err != nil {
			return nil, err
		}
		t[name] = m
	}
	return t, nil
}

func (fm fileMode) toMode(name string) (model.Mode, error) {
	if name == SelfTest {
		return model.Mode{}, fmt.Errorf("%w: mode name %q is reserved", errs.ErrConfiguration, name)
	}
	kind, err := model.ParseStrategyKind(fm.Type)
	if err != nil {
		return model.Mode{}, fmt.Errorf("%w: mode %q: %w", errs.ErrConfiguration, name, err)
	}
	if fm.Query == "" && name != ConnectTime {
		return model.Mode{}, fmt.Errorf("%w: mode %q has no query", errs.ErrConfiguration, name)
	}

	m := model.Mode{
		Name:     name,
		Help:     fm.Help,
		Query:    fm.Query,
		Kind:     kind,
		Label:    fm.Label,
		Unit:     fm.Unit,
		Message:  fm.Message,
		Modifier: 1,
	}
	if m.Label == "" {
		m.Label = name
	}
	if fm.Modifier != nil {
		m.Modifier = *fm.Modifier
	}
	return m, nil
}
