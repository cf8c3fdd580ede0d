package metrics

import (
	"bytes"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/titpetric/verdict/model"
)

var levels = []string{"container", "test", "step"}

// Results holds per-level result gauges for a finished report.
type Results struct {
	results *prometheus.GaugeVec
}

// NewResults registers the result gauges with reg.
func NewResults(reg prometheus.Registerer) *Results {
	return &Results{
		results: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "results",
			Help:      "Aggregated report results by level and status",
		}, []string{"level", "result"}),
	}
}

// Record sets the gauges from stats.
func (m *Results) Record(stats model.ReportStats) {
	if m == nil {
		return
	}
	counters := []model.Counter{stats.Containers, stats.Tests, stats.Steps}
	for i, level := range levels {
		c := counters[i]
		m.results.WithLabelValues(level, "total").Set(float64(c.Total))
		m.results.WithLabelValues(level, "pass").Set(float64(c.Passed))
		m.results.WithLabelValues(level, "fail").Set(float64(c.Failed))
		m.results.WithLabelValues(level, "skip").Set(float64(c.Skipped))
	}
}

// WriteFile writes every metric gathered from g to path in the
// prometheus text exposition format.
func WriteFile(path string, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
