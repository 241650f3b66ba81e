package model

import "fmt"

// StrategyKind selects how raw rows are turned into a Result.
type StrategyKind string

const (
	Direct StrategyKind = "direct" // Direct uses the first value of the first row.
	Ratio  StrategyKind = "ratio"  // Ratio divides the first column of row 0 by row 1.
	Rate   StrategyKind = "rate"   // Rate is the change per second since the previous run.
)

// ParseStrategyKind accepts the current names and the legacy standard/divide/delta ones.
// An empty string means Direct.
func ParseStrategyKind(s string) (StrategyKind, error) {
	switch s {
	case "", "direct", "standard":
		return Direct, nil
	case "ratio", "divide":
		return Ratio, nil
	case "rate", "delta":
		return Rate, nil
	}
	return "", fmt.Errorf("unknown strategy type %q", s)
}

// Mode is one entry of the mode table.
type Mode struct {
	Name     string
	Help     string
	Query    string // empty query reports the connection time
	Kind     StrategyKind
	Label    string
	Unit     string
	Message  string // prose template, "%s" is replaced by the value
	Modifier float64
}

// Scale returns the modifier, defaulting to 1.
func (m Mode) Scale() float64 {
	if m.Modifier == 0 {
		return 1
	}
	return m.Modifier
}
