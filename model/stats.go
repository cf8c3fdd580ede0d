package model

// Counter tallies statuses at one level of the hierarchy.
type Counter struct {
	Total   int `json:"total" yaml:"total"`
	Passed  int `json:"passed" yaml:"passed"`
	Failed  int `json:"failed" yaml:"failed"`
	Skipped int `json:"skipped" yaml:"skipped"`
}

// Add counts one status. StatusNone only raises the total.
func (c *Counter) Add(status Status) {
	c.Total++
	switch status {
	case StatusPass:
		c.Passed++
	case StatusFail:
		c.Failed++
	case StatusSkip:
		c.Skipped++
	}
}

// ReportStats holds the aggregated counters of a run.
type ReportStats struct {
	// Summary is the headline figure shown at the top of the report.
	Summary    Counter `json:"summary" yaml:"summary"`
	Containers Counter `json:"containers" yaml:"containers"`
	Tests      Counter `json:"tests" yaml:"tests"`
	Steps      Counter `json:"steps" yaml:"steps"`
}

// Result returns the overall outcome: fail if anything failed, pass if
// anything passed, skip if everything was skipped.
func (s ReportStats) Result() Status {
	switch {
	case s.Summary.Failed > 0:
		return StatusFail
	case s.Summary.Passed > 0:
		return StatusPass
	case s.Summary.Skipped > 0:
		return StatusSkip
	}
	return StatusNone
}

// Env flattens the counters into snake_case keys.
func (s ReportStats) Env() map[string]any {
	env := make(map[string]any, 16)
	put := func(prefix string, c Counter) {
		env["total_"+prefix] = c.Total
		env["passed_"+prefix] = c.Passed
		env["failed_"+prefix] = c.Failed
		env["skipped_"+prefix] = c.Skipped
	}
	put("summary", s.Summary)
	put("containers", s.Containers)
	put("tests", s.Tests)
	put("steps", s.Steps)
	env["total"] = s.Summary.Total
	env["passed"] = s.Summary.Passed
	env["failed"] = s.Summary.Failed
	env["skipped"] = s.Summary.Skipped
	env["result"] = s.Result().String()
	return env
}
