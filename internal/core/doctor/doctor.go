// Package doctor runs health checks over a vbisect installation: tools the
// hooks need, configuration, the version catalog, and stored sessions.
package doctor

import "context"

type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// CheckItem is one line of a check's output.
type CheckItem struct {
	Label   string `json:"label"`
	Status  Status `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Fixable bool   `json:"fixable,omitempty"`
}

// needsFix reports whether the item is a problem the check can repair.
func (i CheckItem) needsFix() bool {
	return i.Fixable && i.Status != StatusPass
}

type Result struct {
	Name  string      `json:"name"`
	Items []CheckItem `json:"items"`
}

func (r Result) fixable() bool {
	for _, item := range r.Items {
		if item.needsFix() {
			return true
		}
	}
	return false
}

type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// Fixer is implemented by checks that can repair what they report.
type Fixer interface {
	Fix(ctx context.Context) error
}

// Tally counts items by status across a report.
type Tally struct {
	Passed  int `json:"passed"`
	Warned  int `json:"warned"`
	Failed  int `json:"failed"`
	Fixable int `json:"fixable"`
}

// Report is the outcome of a doctor run.
type Report struct {
	Healthy bool     `json:"healthy"`
	Summary Tally    `json:"summary"`
	Checks  []Result `json:"checks"`
}

func (r *Report) add(result Result) {
	r.Checks = append(r.Checks, result)
	for _, item := range result.Items {
		switch item.Status {
		case StatusPass:
			r.Summary.Passed++
		case StatusWarn:
			r.Summary.Warned++
		case StatusFail:
			r.Summary.Failed++
		}
		if item.needsFix() {
			r.Summary.Fixable++
		}
	}
	r.Healthy = r.Summary.Failed == 0
}

// RunAll runs checks in order. With autofix, a check that implements Fixer
// and reports a fixable item is fixed and run again, so its result reflects
// the repaired state. A failed fix is appended to the check's items.
func RunAll(ctx context.Context, checks []Check, autofix bool) Report {
	report := Report{Healthy: true, Checks: make([]Result, 0, len(checks))}
	for _, check := range checks {
		result := check.Run(ctx)

		if fixer, ok := check.(Fixer); ok && autofix && result.fixable() {
			if err := fixer.Fix(ctx); err != nil {
				result.Items = append(result.Items, CheckItem{Label: "autofix", Status: StatusFail, Detail: err.Error()})
			} else {
				result = check.Run(ctx)
			}
		}

		report.add(result)
	}
	return report
}
