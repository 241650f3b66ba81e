// Package evaluator classifies a metric result against warning and critical ranges.
package evaluator

import (
	"fmt"
	"strings"

	"github.com/and161185/pgsql-check/internal/threshold"
	"github.com/and161185/pgsql-check/model"
)

const slot = "%s"

// Evaluate builds the report for res. Critical is checked before warning.
// An absent result is reported as OK because nothing can be compared yet.
func Evaluate(res model.Result, message string, warning, critical *threshold.Range) model.Report {
	rep := model.Report{
		Severity: model.OK,
		Label:    res.Label,
		Value:    res.Value,
		Unit:     res.Unit,
		Warning:  warning.String(),
		Critical: critical.String(),
	}

	if res.Absent() {
		rep.Message = fmt.Sprintf("no previous sample for %s, value will be available on the next run", res.Label)
		return rep
	}

	v := *res.Value
	switch {
	case critical.Alerts(v):
		rep.Severity = model.Critical
	case warning.Alerts(v):
		rep.Severity = model.Warning
	}
	rep.Message = Render(message, model.FormatValue(res.Value))
	return rep
}

// Render substitutes value into the "%s" of template. "%%" stands for a
// literal percent sign. A template is only formatted when it holds exactly one
// "%s" and no other verb; anything else is returned unchanged.
func Render(template, value string) string {
	bare := strings.ReplaceAll(template, "%%", "")
	if strings.Count(bare, slot) != 1 || strings.Count(bare, "%") != 1 {
		return template
	}
	return fmt.Sprintf(template, value)
}
