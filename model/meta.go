package model

import "time"

// DefaultExecutor is the executor name used when none is configured.
const DefaultExecutor = "Automation Tester"

// MetaInfo describes the environment a run executed in.
type MetaInfo struct {
	Executor         string            `json:"executor" yaml:"executor" toml:"executor"`
	Mode             string            `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode"`
	Date             string            `json:"date" yaml:"date" toml:"date"`
	Sprint           string            `json:"sprint,omitempty" yaml:"sprint,omitempty" toml:"sprint"`
	Build            string            `json:"build,omitempty" yaml:"build,omitempty" toml:"build"`
	Environment      string            `json:"environment,omitempty" yaml:"environment,omitempty" toml:"environment"`
	ReleaseVersion   string            `json:"release_version,omitempty" yaml:"release_version,omitempty" toml:"release_version"`
	CommitHash       string            `json:"commit_hash,omitempty" yaml:"commit_hash,omitempty" toml:"commit_hash"`
	BranchName       string            `json:"branch_name,omitempty" yaml:"branch_name,omitempty" toml:"branch_name"`
	ChangeLogSummary string            `json:"change_log_summary,omitempty" yaml:"change_log_summary,omitempty" toml:"change_log_summary"`
	CustomFields     map[string]string `json:"custom_fields,omitempty" yaml:"custom_fields,omitempty" toml:"custom_fields"`
}

// NewMetaInfo returns metadata with the default executor and today's date.
func NewMetaInfo() MetaInfo {
	return MetaInfo{
		Executor: DefaultExecutor,
		Date:     FormatDate(time.Now()),
	}
}

// WithDefaults fills blank executor and date fields.
func (m MetaInfo) WithDefaults(now time.Time) MetaInfo {
	if m.Executor == "" {
		m.Executor = DefaultExecutor
	}
	if m.Date == "" {
		m.Date = FormatDate(now)
	}
	return m
}

// FormatDate renders t as d/M/yyyy.
func FormatDate(t time.Time) string {
	return t.Format("2/1/2006")
}
