// Package threshold parses and evaluates warning/critical range specifications.
//
// Accepted forms, tried in this order (N and M are signed decimals):
//
//	N      alert when v > N or v < 0
//	N:     alert when v < N
//	~:N    alert when v > N
//	N:M    alert when v < N or v > M
//	@N:M   alert when N <= v <= M
package threshold

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/and161185/pgsql-check/internal/errs"
)

// Kind is the shape of a range.
type Kind int

const (
	AtMost Kind = iota
	BelowOnly
	AboveOnly
	Outside
	Inside
)

const number = `(-?[0-9]+(?:\.[0-9]+)?)`

var patterns = []struct {
	kind Kind
	re   *regexp.Regexp
}{
	{AtMost, regexp.MustCompile(`^` + number + `$`)},
	{BelowOnly, regexp.MustCompile(`^` + number + `:$`)},
	{AboveOnly, regexp.MustCompile(`^~:` + number + `$`)},
	{Outside, regexp.MustCompile(`^` + number + `:` + number + `$`)},
	{Inside, regexp.MustCompile(`^@` + number + `:` + number + `$`)},
}

// Range is a parsed threshold. A nil *Range means no threshold is configured.
type Range struct {
	Kind Kind
	Lo   float64
	Hi   float64
	text string
}

// Parse parses text into a Range. Empty text yields (nil, nil).
func Parse(text string) (*Range, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	for _, p := range patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		r := &Range{Kind: p.kind, text: text}
		// the regexp guarantees valid decimals
		r.Lo, _ = strconv.ParseFloat(m[1], 64)
		if len(m) > 2 {
			r.Hi, _ = strconv.ParseFloat(m[2], 64)
		}
		if p.kind == AtMost || p.kind == AboveOnly {
			r.Lo, r.Hi = 0, r.Lo
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w: %q", errs.ErrMalformedRange, text)
}

// MustParse is like Parse but panics on malformed text. Intended for tests and literals.
func MustParse(text string) *Range {
	r, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return r
}

// Alerts reports whether v falls into the alert region of r.
func (r *Range) Alerts(v float64) bool {
	if r == nil {
		return false
	}
	switch r.Kind {
	case AtMost:
		return v > r.Hi || v < 0
	case BelowOnly:
		return v < r.Lo
	case AboveOnly:
		return v > r.Hi
	case Outside:
		return v < r.Lo || v > r.Hi
	case Inside:
		return !(v < r.Lo || v > r.Hi)
	}
	return false
}

// String returns the text the range was parsed from, or "" for a nil range.
func (r *Range) String() string {
	if r == nil {
		return ""
	}
	return r.text
}
