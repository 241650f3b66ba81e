// Package model contains core data types for the project.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Severity is the outcome of a check. Its numeric value is the process exit code.
type Severity int

const (
	OK       Severity = iota // OK is exit code 0.
	Warning                  // Warning is exit code 1.
	Critical                 // Critical is exit code 2.
	Unknown                  // Unknown is exit code 3, used for faults.
)

func (s Severity) String() string {
	switch s {
	case OK:
		return "OK"
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Prefix returns the status prefix of a report line, e.g. "WARNING: ".
func (s Severity) Prefix() string {
	return s.String() + ": "
}

// Rows is the raw output of a metric query: ordered rows of numeric columns.
type Rows [][]float64

// Result is a computed metric value. A nil Value means the value is absent.
type Result struct {
	Value *float64
	Label string
	Unit  string
}

// Absent reports whether the result carries no value.
func (r Result) Absent() bool {
	return r.Value == nil
}

// Identity identifies a persisted metric stream.
type Identity struct {
	Host  string
	Query string
}

// Key returns a stable storage key for the identity.
func (id Identity) Key() string {
	sum := sha256.Sum256([]byte(id.Host + "\x00" + id.Query))
	return hex.EncodeToString(sum[:])
}

// DeltaRecord is the last observed sample of a metric stream.
type DeltaRecord struct {
	ObservedAt time.Time `json:"observed_at"`
	Value      float64   `json:"value"`
}

// Report is the terminal result of an evaluated check.
type Report struct {
	Severity Severity
	Message  string
	Label    string
	Value    *float64
	Unit     string
	Warning  string // warning range text as given by the operator
	Critical string // critical range text as given by the operator
}

// String renders the report as a single plugin output line with perfdata.
func (r Report) String() string {
	return fmt.Sprintf("%s%s|%s=%s%s;%s;%s;;",
		r.Severity.Prefix(), r.Message, r.Label, FormatValue(r.Value), r.Unit, r.Warning, r.Critical)
}

// FormatValue renders a value the way it appears in report lines.
// Absent values are rendered as "U".
func FormatValue(v *float64) string {
	if v == nil {
		return "U"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
