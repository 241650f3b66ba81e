// Package buildinfo carries version data injected with -ldflags.
package buildinfo

import (
	"fmt"
	"io"
)

var (
	BuildVersion string
	BuildDate    string
	BuildCommit  string
)

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Write prints a single version line for program to w.
func Write(w io.Writer, program string) {
	fmt.Fprintf(w, "%s version %s (commit %s, built %s)\n",
		program, orNA(BuildVersion), orNA(BuildCommit), orNA(BuildDate))
}
