// Package config holds the report settings, their defaults and the
// fail-fast validation applied by every setter and by Load.
package config

import (
	"strings"

	"github.com/titpetric/verdict/artifact"
	"github.com/titpetric/verdict/model"
)

// Defaults.
const (
	DefaultHeading        = "Automation Report"
	DefaultContainerTitle = "Execution Overview"
	DefaultTestTitle      = "Test Overview"
	DefaultStepTitle      = "Steps Overview"
	DefaultMaxColumns     = 10
)

// Config is the report configuration.
type Config struct {
	Heading      string          `yaml:"heading" toml:"heading"`
	Offline      bool            `yaml:"offline" toml:"offline"`
	UseEmojis    bool            `yaml:"use_emojis" toml:"use_emojis"`
	ShowCategory bool            `yaml:"show_category" toml:"show_category"`
	ShowEndTime  bool            `yaml:"show_end_time" toml:"show_end_time"`
	ShowDuration bool            `yaml:"show_duration" toml:"show_duration"`
	TimeStyle    model.TimeStyle `yaml:"time_style" toml:"time_style"`
	ImageQuality int             `yaml:"image_quality" toml:"image_quality"`
	Charts       Charts          `yaml:"charts" toml:"charts"`
	Meta         model.MetaInfo  `yaml:"meta" toml:"meta"`
	Gate         string          `yaml:"gate,omitempty" toml:"gate"`
	Table        Table           `yaml:"table" toml:"table"`
}

// Charts configures the overview chart titles and their order.
type Charts struct {
	ContainerTitle string        `yaml:"container_title" toml:"container_title"`
	TestTitle      string        `yaml:"test_title" toml:"test_title"`
	StepTitle      string        `yaml:"step_title" toml:"step_title"`
	Order          []model.Chart `yaml:"order" toml:"order"`
}

// Table declares the outcome table columns.
type Table struct {
	MaxColumns int      `yaml:"max_columns" toml:"max_columns"`
	Columns    []string `yaml:"columns" toml:"columns"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Heading:      DefaultHeading,
		UseEmojis:    true,
		ShowCategory: true,
		ShowEndTime:  true,
		ShowDuration: true,
		TimeStyle:    model.TimeAmPm,
		ImageQuality: artifact.DefaultQuality,
		Charts: Charts{
			ContainerTitle: DefaultContainerTitle,
			TestTitle:      DefaultTestTitle,
			StepTitle:      DefaultStepTitle,
			Order:          append([]model.Chart(nil), model.DefaultChartOrder...),
		},
		Meta: model.NewMetaInfo(),
		Table: Table{
			MaxColumns: DefaultMaxColumns,
			Columns:    []string{"Package", "Test", "Result", "Duration"},
		},
	}
}

// SetHeading sets the report heading.
func (c *Config) SetHeading(heading string) error {
	if strings.TrimSpace(heading) == "" {
		return model.NewError(model.ErrCodeConfig, "report heading cannot be empty")
	}
	c.Heading = heading
	return nil
}

// SetImageQuality sets the JPEG quality for screenshots.
func (c *Config) SetImageQuality(quality int) error {
	if quality < 0 || quality > 100 {
		return model.Errorf(model.ErrCodeConfig, "invalid image quality %d, must be between 0 and 100", quality)
	}
	c.ImageQuality = quality
	return nil
}

// SetTimeStyle sets the timestamp style.
func (c *Config) SetTimeStyle(style model.TimeStyle) error {
	if !style.Valid() {
		return model.Errorf(model.ErrCodeConfig, "unknown time style %q", style)
	}
	c.TimeStyle = style
	return nil
}

// SetChartTitles sets all three chart titles. None may be blank.
func (c *Config) SetChartTitles(container, test, step string) error {
	titles := Charts{ContainerTitle: container, TestTitle: test, StepTitle: step}
	if err := titles.validateTitles(); err != nil {
		return err
	}
	c.Charts.ContainerTitle = container
	c.Charts.TestTitle = test
	c.Charts.StepTitle = step
	return nil
}

// SetChartOrder sets the chart order. Charts may not repeat.
func (c *Config) SetChartOrder(order ...model.Chart) error {
	if err := model.ValidateChartOrder(order); err != nil {
		return err
	}
	c.Charts.Order = append([]model.Chart(nil), order...)
	return nil
}

func (ch Charts) validateTitles() error {
	for name, title := range map[string]string{
		"container": ch.ContainerTitle,
		"test":      ch.TestTitle,
		"step":      ch.StepTitle,
	} {
		if strings.TrimSpace(title) == "" {
			return model.Errorf(model.ErrCodeConfig, "%s chart title cannot be empty", name)
		}
	}
	return nil
}

// Validate checks every setting the setters would reject.
func (c *Config) Validate() error {
	if err := c.SetHeading(c.Heading); err != nil {
		return err
	}
	if err := c.SetImageQuality(c.ImageQuality); err != nil {
		return err
	}
	if err := c.SetTimeStyle(c.TimeStyle); err != nil {
		return err
	}
	if err := c.Charts.validateTitles(); err != nil {
		return err
	}
	if err := model.ValidateChartOrder(c.Charts.Order); err != nil {
		return err
	}
	if c.Table.MaxColumns < 1 {
		return model.Errorf(model.ErrCodeConfig, "table max_columns must be at least 1, got %d", c.Table.MaxColumns)
	}
	if len(c.Table.Columns) > c.Table.MaxColumns {
		return model.Errorf(model.ErrCodeConfig, "table declares %d columns, limit is %d", len(c.Table.Columns), c.Table.MaxColumns)
	}
	return nil
}
