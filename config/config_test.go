package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titpetric/verdict/config"
	"github.com/titpetric/verdict/model"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "Automation Report", cfg.Heading)
	assert.Equal(t, 75, cfg.ImageQuality)
	assert.Equal(t, model.TimeAmPm, cfg.TimeStyle)
	assert.Equal(t, "Execution Overview", cfg.Charts.ContainerTitle)
	assert.Equal(t, "Test Overview", cfg.Charts.TestTitle)
	assert.Equal(t, "Steps Overview", cfg.Charts.StepTitle)
	assert.Equal(t, model.DefaultChartOrder, cfg.Charts.Order)
	assert.Equal(t, model.DefaultExecutor, cfg.Meta.Executor)
	assert.True(t, cfg.UseEmojis)
	assert.False(t, cfg.Offline)
}

func TestSetters(t *testing.T) {
	cfg := config.Default()

	t.Run("image quality", func(t *testing.T) {
		assert.True(t, errors.Is(cfg.SetImageQuality(101), model.ErrConfig))
		assert.True(t, errors.Is(cfg.SetImageQuality(-1), model.ErrConfig))
		require.NoError(t, cfg.SetImageQuality(0))
		assert.Equal(t, 0, cfg.ImageQuality)
	})

	t.Run("chart order", func(t *testing.T) {
		err := cfg.SetChartOrder(model.ChartStep, model.ChartStep, model.ChartTest)
		assert.True(t, errors.Is(err, model.ErrConfig))
		assert.Equal(t, model.DefaultChartOrder, cfg.Charts.Order)

		require.NoError(t, cfg.SetChartOrder(model.ChartStep, model.ChartTest, model.ChartContainer))
		assert.Equal(t, []model.Chart{model.ChartStep, model.ChartTest, model.ChartContainer}, cfg.Charts.Order)
	})

	t.Run("chart titles", func(t *testing.T) {
		err := cfg.SetChartTitles("A", " ", "C")
		assert.True(t, errors.Is(err, model.ErrConfig))
		assert.Equal(t, "Test Overview", cfg.Charts.TestTitle)

		require.NoError(t, cfg.SetChartTitles("A", "B", "C"))
		assert.Equal(t, "B", cfg.Charts.TestTitle)
	})

	t.Run("heading", func(t *testing.T) {
		assert.True(t, errors.Is(cfg.SetHeading(""), model.ErrConfig))
	})

	t.Run("time style", func(t *testing.T) {
		assert.True(t, errors.Is(cfg.SetTimeStyle("epoch"), model.ErrConfig))
		require.NoError(t, cfg.SetTimeStyle(model.TimeOnly))
	})
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".verdict.yml")
	content := `heading: Nightly
image_quality: 40
time_style: datetime
charts:
  order: [test, step]
meta:
  build: "1234"
  environment: staging
gate: failed_tests > 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Nightly", cfg.Heading)
	assert.Equal(t, 40, cfg.ImageQuality)
	assert.Equal(t, model.DateAndTime, cfg.TimeStyle)
	assert.Equal(t, []model.Chart{model.ChartTest, model.ChartStep}, cfg.Charts.Order)
	assert.Equal(t, "Test Overview", cfg.Charts.TestTitle)
	assert.Equal(t, "1234", cfg.Meta.Build)
	assert.Equal(t, "staging", cfg.Meta.Environment)
	assert.Equal(t, model.DefaultExecutor, cfg.Meta.Executor)
	assert.Equal(t, "failed_tests > 0", cfg.Gate)
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".verdict.toml")
	content := `heading = "From TOML"
show_duration = false

[meta]
executor = "ci-bot"

[meta.custom_fields]
region = "eu"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "From TOML", cfg.Heading)
	assert.False(t, cfg.ShowDuration)
	assert.Equal(t, "ci-bot", cfg.Meta.Executor)
	assert.Equal(t, map[string]string{"region": "eu"}, cfg.Meta.CustomFields)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	t.Run("out of range quality", func(t *testing.T) {
		path := filepath.Join(dir, "q.yml")
		require.NoError(t, os.WriteFile(path, []byte("image_quality: 300\n"), 0o644))
		_, err := config.Load(path)
		assert.True(t, errors.Is(err, model.ErrConfig))
	})

	t.Run("duplicate charts", func(t *testing.T) {
		path := filepath.Join(dir, "c.yml")
		require.NoError(t, os.WriteFile(path, []byte("charts:\n  order: [step, step]\n"), 0o644))
		_, err := config.Load(path)
		assert.True(t, errors.Is(err, model.ErrConfig))
	})

	t.Run("unknown key", func(t *testing.T) {
		path := filepath.Join(dir, "u.yml")
		require.NoError(t, os.WriteFile(path, []byte("headline: typo\n"), 0o644))
		_, err := config.Load(path)
		assert.True(t, errors.Is(err, model.ErrConfig))
	})

	t.Run("unknown toml key", func(t *testing.T) {
		path := filepath.Join(dir, "u.toml")
		require.NoError(t, os.WriteFile(path, []byte("headline = \"typo\"\n"), 0o644))
		_, err := config.Load(path)
		assert.True(t, errors.Is(err, model.ErrConfig))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(dir, "missing.yml"))
		assert.Error(t, err)
	})

	t.Run("empty file uses defaults", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yml")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, config.DefaultHeading, cfg.Heading)
	})
}

func TestDiscover(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "sub", "folder")
	require.NoError(t, os.MkdirAll(subDir, 0o755))

	configPath := filepath.Join(tmpDir, ".verdict.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("heading: found\n"), 0o644))

	found, err := config.Discover(subDir)
	require.NoError(t, err)
	assert.Equal(t, configPath, found)

	t.Run("prefers dot file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "verdict.yml"), []byte("heading: other\n"), 0o644))
		found, err := config.Discover(tmpDir)
		require.NoError(t, err)
		assert.Equal(t, configPath, found)
	})

	t.Run("resolve loads discovered file", func(t *testing.T) {
		cfg, path, err := config.Resolve("", subDir)
		require.NoError(t, err)
		assert.Equal(t, configPath, path)
		assert.Equal(t, "found", cfg.Heading)
	})
}
