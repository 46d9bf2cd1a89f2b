// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/Faultbox/castle-book/internal/assets"
	"github.com/Faultbox/castle-book/internal/book"
	"github.com/Faultbox/castle-book/internal/engine/bend"
	"github.com/Faultbox/castle-book/internal/engine/lighting"
	"github.com/Faultbox/castle-book/internal/engine/page"
	pmath "github.com/Faultbox/castle-book/pkg/math"
)

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Camera   CameraConfig   `yaml:"camera"`
	Lighting LightingConfig `yaml:"lighting"`
	Book     BookConfig     `yaml:"book"`
	Bend     BendConfig     `yaml:"bend"`
	Audio    AudioConfig    `yaml:"audio"`
	Logging  LoggingConfig  `yaml:"logging"`
	Debug    DebugConfig    `yaml:"debug"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// CameraConfig holds the perspective camera setup. FOV is vertical, in degrees.
type CameraConfig struct {
	FOV      float32    `yaml:"fov"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
	Position [3]float32 `yaml:"position"`
	Target   [3]float32 `yaml:"target"`
}

// LightingConfig holds the background color and light rig.
type LightingConfig struct {
	Background       string     `yaml:"background"`
	SunColor         string     `yaml:"sun_color"`
	SunIntensity     float32    `yaml:"sun_intensity"`
	SunPosition      [3]float32 `yaml:"sun_position"`
	AmbientColor     string     `yaml:"ambient_color"`
	AmbientIntensity float32    `yaml:"ambient_intensity"`
	Shadows          bool       `yaml:"shadows"`
	ShadowBias       float32    `yaml:"shadow_bias"`
	ShadowResolution int32      `yaml:"shadow_resolution"`
}

// BookConfig holds page dimensions, layout and the page list.
type BookConfig struct {
	PageWidth      float32  `yaml:"page_width"`
	PageHeight     float32  `yaml:"page_height"`
	PageDepth      float32  `yaml:"page_depth"`
	Segments       int      `yaml:"segments"`
	Layout         string   `yaml:"layout"`      // spread | triple
	BackSource     string   `yaml:"back_source"` // current | next
	AssetsDir      string   `yaml:"assets_dir"`
	MaxTextureSize int      `yaml:"max_texture_size"`
	Pages          []string `yaml:"pages"`
}

// BendConfig selects a bend preset and optionally overrides its tunables.
// Unset overrides keep the preset's value.
type BendConfig struct {
	Preset        string   `yaml:"preset"`
	Easing        *float64 `yaml:"easing,omitempty"`
	InsideCurve   *float64 `yaml:"inside_curve,omitempty"`
	OutsideCurve  *float64 `yaml:"outside_curve,omitempty"`
	TurnStrength  *float64 `yaml:"turn_strength,omitempty"`
	FullTurnAngle *float64 `yaml:"full_turn_angle,omitempty"`
	Curve         *string  `yaml:"curve,omitempty"`
	ProgressStep  *float64 `yaml:"progress_step,omitempty"`
	InsideJoints  *int     `yaml:"inside_joints,omitempty"`

	TickRate  float64 `yaml:"tick_rate"`
	FixedStep bool    `yaml:"fixed_step"`
}

// AudioConfig holds sound settings.
type AudioConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Volume        float64 `yaml:"volume"`
	PageTurnSound string  `yaml:"page_turn_sound"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DebugConfig holds developer helpers.
type DebugConfig struct {
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	shape := page.DefaultShape()
	return &Config{
		Window: WindowConfig{
			Title:      "Castle Book",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Camera: CameraConfig{
			FOV:      75,
			Near:     0.1,
			Far:      100,
			Position: [3]float32{0, 0, 1.5},
		},
		Lighting: LightingConfig{
			Background:       "#222222",
			SunColor:         "#ffffff",
			SunIntensity:     2,
			SunPosition:      [3]float32{2, 4, 2},
			AmbientColor:     "#404040",
			AmbientIntensity: 1,
			Shadows:          true,
			ShadowBias:       -0.001,
			ShadowResolution: 2048,
		},
		Book: BookConfig{
			PageWidth:      shape.Width,
			PageHeight:     shape.Height,
			PageDepth:      shape.Depth,
			Segments:       shape.Segments,
			Layout:         "spread",
			BackSource:     "current",
			AssetsDir:      "assets",
			MaxTextureSize: 2048,
			Pages:          append([]string(nil), assets.DefaultPages...),
		},
		Bend: BendConfig{
			Preset:   "curl",
			TickRate: book.DefaultTickRate,
		},
		Audio: AudioConfig{
			Enabled:       true,
			Volume:        0.8,
			PageTurnSound: "sounds/page-turn.wav",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Debug: DebugConfig{
			ScreenshotDir: "screenshots",
		},
	}
}

// Variant returns the defaults adjusted to a named look.
//
//	classic  two-page spread, page curl
//	triple   spread plus a back page under the turning sheet
//	flip     two-page spread, rigid half-turn flip
func Variant(name string) (*Config, error) {
	cfg := Default()
	switch name {
	case "", "classic":
	case "triple":
		cfg.Book.Layout = "triple"
		cfg.Book.BackSource = "current"
	case "flip":
		cfg.Bend.Preset = "flip"
		cfg.Camera.Position = [3]float32{0, 0.4, 2}
	default:
		return nil, fmt.Errorf("unknown variant %q (have classic, triple, flip)", name)
	}
	return cfg, nil
}

// Shape returns the page shape described by the book section.
func (c *Config) Shape() page.Shape {
	return page.Shape{
		Width:    c.Book.PageWidth,
		Height:   c.Book.PageHeight,
		Depth:    c.Book.PageDepth,
		Segments: c.Book.Segments,
	}
}

// BendParams resolves the preset and applies any overrides.
func (c *Config) BendParams() (bend.Params, error) {
	return c.Bend.Params()
}

// Params resolves the preset and applies any overrides.
func (b BendConfig) Params() (bend.Params, error) {
	name := b.Preset
	if name == "" {
		name = "curl"
	}
	p, err := bend.Preset(name)
	if err != nil {
		return bend.Params{}, err
	}
	if b.Easing != nil {
		p.Easing = *b.Easing
	}
	if b.InsideCurve != nil {
		p.InsideStrength = *b.InsideCurve
	}
	if b.OutsideCurve != nil {
		p.OutsideStrength = *b.OutsideCurve
	}
	if b.TurnStrength != nil {
		p.TurnStrength = *b.TurnStrength
	}
	if b.FullTurnAngle != nil {
		p.FullTurnAngle = *b.FullTurnAngle
	}
	if b.Curve != nil {
		curve, err := bend.ParseCurve(*b.Curve)
		if err != nil {
			return bend.Params{}, err
		}
		p.Curve = curve
	}
	if b.ProgressStep != nil {
		p.Step = *b.ProgressStep
	}
	if b.InsideJoints != nil {
		p.InsideJoints = *b.InsideJoints
	}
	return p, nil
}

// DriverOptions returns the animation driver settings.
func (c *Config) DriverOptions() book.DriverOptions {
	return book.DriverOptions{
		TickRate:  c.Bend.TickRate,
		FixedStep: c.Bend.FixedStep,
	}
}

// BookOptions parses the layout settings. Hooks are left for the caller.
func (c *Config) BookOptions() (book.Options, error) {
	layout, err := book.ParseLayout(c.Book.Layout)
	if err != nil {
		return book.Options{}, err
	}
	back, err := book.ParseBackSource(c.Book.BackSource)
	if err != nil {
		return book.Options{}, err
	}
	return book.Options{Layout: layout, BackSource: back}, nil
}

// Rig builds the light rig.
func (c *Config) Rig() (lighting.Rig, error) {
	l := c.Lighting
	sun, err := lighting.ParseHex(l.SunColor)
	if err != nil {
		return lighting.Rig{}, fmt.Errorf("sun_color: %w", err)
	}
	ambient, err := lighting.ParseHex(l.AmbientColor)
	if err != nil {
		return lighting.Rig{}, fmt.Errorf("ambient_color: %w", err)
	}
	return lighting.Rig{
		Sun: lighting.Directional{
			Color:       sun,
			Intensity:   l.SunIntensity,
			Position:    pmath.Vec3FromArray(l.SunPosition),
			CastShadows: l.Shadows,
			ShadowBias:  l.ShadowBias,
		},
		Ambient: lighting.Ambient{
			Color:     ambient,
			Intensity: l.AmbientIntensity,
		},
	}, nil
}

// Background returns the clear color.
func (c *Config) Background() ([3]float32, error) {
	bg, err := lighting.ParseHex(c.Lighting.Background)
	if err != nil {
		return [3]float32{}, fmt.Errorf("background: %w", err)
	}
	return bg, nil
}

// Validate checks every section that would otherwise fail later at runtime.
// Shape and bend errors wrap page.ErrInvalidShape and bend.ErrInvalidParams.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window: invalid size %dx%d", c.Window.Width, c.Window.Height)
	}
	if !(c.Camera.FOV > 0 && c.Camera.FOV < 180) {
		return fmt.Errorf("camera: fov must be in (0,180), got %v", c.Camera.FOV)
	}
	if !(c.Camera.Near > 0 && c.Camera.Far > c.Camera.Near) {
		return fmt.Errorf("camera: need 0 < near < far, got near=%v far=%v", c.Camera.Near, c.Camera.Far)
	}
	if _, err := c.Background(); err != nil {
		return fmt.Errorf("lighting: %w", err)
	}
	if _, err := c.Rig(); err != nil {
		return fmt.Errorf("lighting: %w", err)
	}
	if c.Lighting.Shadows && c.Lighting.ShadowResolution <= 0 {
		return fmt.Errorf("lighting: shadow_resolution must be positive, got %d", c.Lighting.ShadowResolution)
	}
	if err := c.Shape().Validate(); err != nil {
		return fmt.Errorf("book: %w", err)
	}
	if _, err := c.BookOptions(); err != nil {
		return fmt.Errorf("book: %w", err)
	}
	if len(c.Book.Pages) == 0 {
		return fmt.Errorf("book: %w", book.ErrNoPages)
	}
	p, err := c.BendParams()
	if err != nil {
		return fmt.Errorf("bend: %w", err)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("bend: %w", err)
	}
	// Zero selects the default rate.
	if rate := c.Bend.TickRate; rate != 0 && book.TickPeriod(rate) <= 0 {
		return fmt.Errorf("bend: tick_rate %v Hz has no tick period between 1ns and %v", rate, time.Duration(math.MaxInt64))
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("audio: volume must be in [0,1], got %v", c.Audio.Volume)
	}
	return nil
}
