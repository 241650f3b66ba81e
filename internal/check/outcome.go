package check

import (
	"errors"
	"fmt"

	"github.com/and161185/pgsql-check/internal/errs"
	"github.com/and161185/pgsql-check/model"
)

// Outcome is the terminal result of one check: either a report or a fault.
type Outcome struct {
	Severity model.Severity
	Line     string
	Report   *model.Report
	Err      error
}

// ExitCode is the plugin exit status for the outcome.
func (o Outcome) ExitCode() int {
	return int(o.Severity)
}

// Reported wraps a finished evaluation.
func Reported(rep model.Report) Outcome {
	return Outcome{Severity: rep.Severity, Line: rep.String(), Report: &rep}
}

// Failure maps err to an UNKNOWN outcome. Known fault classes keep their
// message; anything else is reported as unexpected with its type.
func Failure(err error) Outcome {
	var line string
	switch {
	case errors.Is(err, errs.ErrConfiguration),
		errors.Is(err, errs.ErrDataAccess),
		errors.Is(err, errs.ErrPersistence):
		line = model.Unknown.Prefix() + err.Error()
	default:
		line = fmt.Sprintf("%sunexpected error (%T): %v", model.Unknown.Prefix(), err, err)
	}
	return Outcome{Severity: model.Unknown, Line: line, Err: err}
}
