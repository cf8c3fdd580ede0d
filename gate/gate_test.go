package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titpetric/verdict/model"
)

func TestCompile_Blank(t *testing.T) {
	g, err := Compile("  ")
	require.NoError(t, err)
	assert.Nil(t, g)

	failed, err := g.Failed(model.ReportStats{Summary: model.Counter{Total: 1, Failed: 1}})
	require.NoError(t, err)
	assert.False(t, failed)
	assert.Equal(t, "", g.String())
}

func TestCompile_Errors(t *testing.T) {
	for _, src := range []string{
		"failed_tests >",
		"unknown_counter > 0",
		"total_tests + 1",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := Compile(src)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrConfig)
		})
	}
}

func TestFailed(t *testing.T) {
	stats := model.ReportStats{
		Summary: model.Counter{Total: 3, Passed: 2, Skipped: 1},
		Tests:   model.Counter{Total: 3, Passed: 2, Skipped: 1},
		Steps:   model.Counter{Total: 5, Passed: 4, Failed: 1},
	}

	tests := []struct {
		expr string
		want bool
	}{
		{"failed_tests > 0", false},
		{"failed_steps > 0", true},
		{"skipped > 0", true},
		{`result == "fail"`, false},
		{`result == "pass" && passed_tests < total_tests`, true},
		{"total_containers == 0", true},
	}

	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			g, err := Compile(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.expr, g.String())

			failed, err := g.Failed(stats)
			require.NoError(t, err)
			assert.Equal(t, tc.want, failed)
		})
	}
}
