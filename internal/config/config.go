package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"

	"github.com/inamate/inkcanvas/internal/canvas"
	"github.com/inamate/inkcanvas/internal/geom"
	"github.com/inamate/inkcanvas/internal/stroke"
)

type Config struct {
	Port           int        `envconfig:"PORT" default:"8080"`
	LogLevel       slog.Level `envconfig:"LOG_LEVEL" default:"info"`
	JWTSecret      string     `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	AccessKeyHash  string     `envconfig:"ACCESS_KEY_HASH"`
	AllowedOrigins []string   `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	MetricsPath    string     `envconfig:"METRICS_PATH" default:"/metrics"`

	// Playground is the canvas anyone may join without a token.
	Playground string `envconfig:"PLAYGROUND_CANVAS" default:"canvas_playground"`

	PixelDensity       float64  `envconfig:"PIXEL_DENSITY" default:"1"`
	CanvasWidth        float64  `envconfig:"CANVAS_WIDTH" default:"1280"`
	CanvasHeight       float64  `envconfig:"CANVAS_HEIGHT" default:"720"`
	DefaultStrokeColor HexColor `envconfig:"DEFAULT_STROKE_COLOR" default:"#FF000000"`
	DefaultStrokeWidth float64  `envconfig:"DEFAULT_STROKE_WIDTH" default:"3"`
	HitSlop            float64  `envconfig:"HIT_SLOP" default:"0"`

	MDNSEnabled bool   `envconfig:"MDNS_ENABLED" default:"false"`
	MDNSService string `envconfig:"MDNS_SERVICE" default:"_inkcanvas._tcp"`
}

// HexColor is a stroke colour written as #RRGGBB or #AARRGGBB.
type HexColor stroke.Color

func (c *HexColor) Decode(value string) error {
	parsed, err := stroke.ParseColor(value)
	if err != nil {
		return err
	}
	*c = HexColor(parsed)
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.PixelDensity <= 0:
		return fmt.Errorf("PIXEL_DENSITY must be positive, got %v", c.PixelDensity)
	case c.DefaultStrokeWidth < 0:
		return fmt.Errorf("DEFAULT_STROKE_WIDTH must not be negative, got %v", c.DefaultStrokeWidth)
	case c.HitSlop < 0:
		return fmt.Errorf("HIT_SLOP must not be negative, got %v", c.HitSlop)
	case c.CanvasWidth < 0 || c.CanvasHeight < 0:
		return fmt.Errorf("canvas size must not be negative, got %vx%v", c.CanvasWidth, c.CanvasHeight)
	}
	return nil
}

// CanvasOptions returns the defaults every new canvas is built with.
func (c *Config) CanvasOptions() []canvas.Option {
	return []canvas.Option{
		canvas.WithDensity(c.PixelDensity),
		canvas.WithSize(c.CanvasWidth, c.CanvasHeight),
		canvas.WithDefaultStyle(stroke.Color(c.DefaultStrokeColor), c.DefaultStrokeWidth*c.PixelDensity),
		canvas.WithHitSlop(geom.UniformHitSlop(c.HitSlop).Scale(c.PixelDensity)),
	}
}
