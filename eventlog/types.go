package eventlog

import (
	"time"

	"github.com/titpetric/verdict/model"
)

// Result represents the final outcome of a node.
type Result string

const (
	ResultPass    Result = "pass"
	ResultFail    Result = "fail"
	ResultSkipped Result = "skipped"
)

// Event represents a single finished test in the log.
type Event struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Result      Result  `yaml:"result,omitempty"`
	Start       float64 `yaml:"start"`                  // Seconds since run started
	Duration    float64 `yaml:"duration"`               // Seconds
	Steps       int     `yaml:"steps,omitempty"`        // Number of steps recorded
	Error       string  `yaml:"error,omitempty"`        // Last log message of a failed test
	GoroutineID uint64  `yaml:"goroutine_id,omitempty"` // Only when debug is enabled
}

// StateNode represents a node of the report hierarchy for YAML output.
type StateNode struct {
	Name       string       `yaml:"name"`
	Kind       string       `yaml:"kind"` // report, container, test or step
	Status     string       `yaml:"status"`
	Result     Result       `yaml:"result,omitempty"`
	Categories []string     `yaml:"categories,omitempty"`
	Keyword    string       `yaml:"keyword,omitempty"`
	Screenshot int          `yaml:"screenshot,omitempty"`
	Logs       int          `yaml:"logs,omitempty"`
	Start      float64      `yaml:"start,omitempty"`    // Seconds offset from run start
	Duration   float64      `yaml:"duration,omitempty"` // Seconds
	Children   []*StateNode `yaml:"children,omitempty"`
}

// RunMetadata contains information about the execution environment.
type RunMetadata struct {
	RunID      string         `yaml:"run_id"`
	CreatedAt  time.Time      `yaml:"created_at"`
	Report     string         `yaml:"report,omitempty"`
	Inputs     []string       `yaml:"inputs,omitempty"`
	ModulePath string         `yaml:"module_path,omitempty"`
	Git        *GitInfo       `yaml:"git,omitempty"`
	Meta       model.MetaInfo `yaml:"meta"`
}

// GitInfo contains git repository information.
type GitInfo struct {
	Commit     string `yaml:"commit,omitempty"`
	Branch     string `yaml:"branch,omitempty"`
	RemoteURL  string `yaml:"remote_url,omitempty"`
	Repository string `yaml:"repository,omitempty"` // Extracted from remote URL
}

// Log is the complete log structure written to YAML.
type Log struct {
	Metadata RunMetadata `yaml:"metadata"`
	State    *StateNode  `yaml:"state"`
	Events   []*Event    `yaml:"events"`
	Summary  *RunSummary `yaml:"summary,omitempty"`
}

// RunSummary provides aggregate statistics for the run.
type RunSummary struct {
	Duration    float64       `yaml:"duration"` // Total duration in seconds
	Summary     model.Counter `yaml:"summary"`
	Containers  model.Counter `yaml:"containers"`
	Tests       model.Counter `yaml:"tests"`
	Steps       model.Counter `yaml:"steps"`
	Result      Result        `yaml:"result"`                 // Overall result
	MemoryAlloc uint64        `yaml:"memory_alloc,omitempty"` // Memory allocated in bytes
	Goroutines  int           `yaml:"goroutines,omitempty"`   // Number of goroutines running
}
