package model

import (
	"fmt"
	"strings"
)

// Status is the outcome recorded on a container, test or step.
type Status int

// Status constants. StatusNone is the zero value of a node that has not
// recorded an outcome yet.
const (
	StatusNone Status = iota
	StatusPass
	StatusSkip
	StatusFail
)

// priorities is the fixed escalation table. Anything missing from it
// ranks below every recognized status.
var priorities = map[Status]int{
	StatusPass: 1,
	StatusSkip: 2,
	StatusFail: 4,
}

// Priority returns the escalation rank of the status, or -1 for
// unset and unrecognized values.
func (s Status) Priority() int {
	if p, ok := priorities[s]; ok {
		return p
	}
	return -1
}

// Escalate returns next when it outranks current, current otherwise.
func Escalate(current, next Status) Status {
	if next.Priority() > current.Priority() {
		return next
	}
	return current
}

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusSkip:
		return "skip"
	case StatusFail:
		return "fail"
	default:
		return "none"
	}
}

// Label returns the capitalized name used in summaries.
func (s Status) Label() string {
	switch s {
	case StatusPass:
		return "Passed"
	case StatusSkip:
		return "Skipped"
	case StatusFail:
		return "Failed"
	default:
		return "Pending"
	}
}

// ParseStatus parses a status name. Accepted forms are the ones
// String and Label return, case insensitive, plus "passed", "failed"
// and "skipped".
func ParseStatus(in string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(in)) {
	case "pass", "passed":
		return StatusPass, nil
	case "skip", "skipped":
		return StatusSkip, nil
	case "fail", "failed":
		return StatusFail, nil
	case "", "none", "pending":
		return StatusNone, nil
	}
	return StatusNone, fmt.Errorf("unknown status %q", in)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
