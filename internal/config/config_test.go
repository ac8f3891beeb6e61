package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inkcanvas/internal/canvas"
	"github.com/inamate/inkcanvas/internal/geom"
	"github.com/inamate/inkcanvas/internal/stroke"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, HexColor(stroke.Black), cfg.DefaultStrokeColor)
	assert.Equal(t, 1.0, cfg.PixelDensity)
	assert.False(t, cfg.MDNSEnabled)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ALLOWED_ORIGINS", "*")
	t.Setenv("DEFAULT_STROKE_COLOR", "#ff0000")
	t.Setenv("PIXEL_DENSITY", "2")
	t.Setenv("HIT_SLOP", "4")
	t.Setenv("MDNS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, HexColor(0xFFFF0000), cfg.DefaultStrokeColor)
	assert.True(t, cfg.MDNSEnabled)

	c := canvas.New(cfg.CanvasOptions()...)
	assert.Equal(t, 2.0, c.Density())
	assert.Equal(t, canvas.GraphicsState{StrokeColor: 0xFFFF0000, StrokeWidth: 6}, c.DefaultStyle())
	assert.Equal(t, geom.UniformHitSlop(8), c.HitSlop())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad colour", "DEFAULT_STROKE_COLOR", "red"},
		{"zero density", "PIXEL_DENSITY", "0"},
		{"negative slop", "HIT_SLOP", "-1"},
		{"bad level", "LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
