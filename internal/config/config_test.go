package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formfit/formfit/internal/sizing"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "console", cfg.Logger().Format)
	assert.Equal(t, "formfit", cfg.Logger().ServiceName)
	assert.Equal(t, sizing.DefaultBaseSelector, cfg.Sizing().BaseSelector)
	assert.Equal(t, sizing.DefaultFilterSelector, cfg.Sizing().FilterSelector)
	assert.Equal(t, sizing.DefaultArrowWidth, cfg.Sizing().ArrowWidth)
	assert.True(t, cfg.Browser().Headless)
	assert.Equal(t, 90*time.Second, cfg.Browser().NavigationTimeout)
	assert.Equal(t, 4, cfg.Concurrency())

	require.NoError(t, cfg.Validate())
}

func TestNewConfigFromViper(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("sizing.arrow_width", "3em")
		v.Set("concurrency", 8)

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "3em", cfg.Sizing().ArrowWidth)
		assert.Equal(t, 8, cfg.Concurrency())
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("concurrency", 0)

		_, err := NewConfigFromViper(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "concurrency")
	})

	t.Run("rejects empty base selector", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("sizing.base_selector", "")

		_, err := NewConfigFromViper(v)
		assert.Error(t, err)
	})
}

func TestSetters(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SetSizingBaseSelector("textarea")
	cfg.SetSizingFilterSelector(".fit")
	cfg.SetSizingArrowWidth("1.5em")
	cfg.SetBrowserHeadless(false)
	cfg.SetBrowserNavigationTimeout(time.Minute)
	cfg.SetOutputPath("out.html")
	cfg.SetOutputReportPath("report.json")
	cfg.SetConcurrency(2)

	assert.Equal(t, "textarea", cfg.Sizing().BaseSelector)
	assert.Equal(t, ".fit", cfg.Sizing().FilterSelector)
	assert.Equal(t, "1.5em", cfg.Sizing().ArrowWidth)
	assert.False(t, cfg.Browser().Headless)
	assert.Equal(t, time.Minute, cfg.Browser().NavigationTimeout)
	assert.Equal(t, "out.html", cfg.Output().Path)
	assert.Equal(t, "report.json", cfg.Output().ReportPath)
	assert.Equal(t, 2, cfg.Concurrency())
}

func TestEngineConfigConversion(t *testing.T) {
	sc := SizingConfig{BaseSelector: "a", FilterSelector: "b", ArrowWidth: "c"}
	ec := sc.EngineConfig()
	assert.Equal(t, sizing.Config{BaseSelector: "a", FilterSelector: "b", ArrowWidth: "c"}, ec)
}
