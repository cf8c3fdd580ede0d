package report

import "github.com/titpetric/verdict/model"

// Aggregate computes the run counters. It must run after every goroutine
// writing to the hierarchy has finished.
//
// The headline summary counts the tests of the default container when it
// is the only container, and the containers themselves otherwise. The
// per-level counters always count every container, test and step.
func Aggregate(containers []*Container) model.ReportStats {
	var stats model.ReportStats

	switch {
	case len(containers) == 0:
	case len(containers) == 1 && containers[0].IsDefault():
		for _, t := range containers[0].Tests() {
			stats.Summary.Add(t.Status())
		}
	default:
		for _, c := range containers {
			stats.Summary.Add(c.Status())
		}
	}

	for _, c := range containers {
		stats.Containers.Add(c.Status())
		for _, t := range c.Tests() {
			stats.Tests.Add(t.Status())
			for _, s := range t.Steps() {
				stats.Steps.Add(s.Status())
			}
		}
	}
	return stats
}

// finalizeDurations formats the duration of every node.
func finalizeDurations(containers []*Container) {
	for _, c := range containers {
		c.details.SetDuration()
		for _, t := range c.Tests() {
			t.details.SetDuration()
			for _, s := range t.Steps() {
				s.details.SetDuration()
			}
		}
	}
}
