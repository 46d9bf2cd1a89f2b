package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagVariant    = flag.String("variant", "", "Start from a named variant: classic, triple, flip")
	flagPreset     = flag.String("preset", "", "Bend preset: curl, gentle, flip")
	flagLayout     = flag.String("layout", "", "Spread layout: spread, triple")
	flagAssets     = flag.String("assets", "", "Directory holding descriptions/ and photos/")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagFixedStep  = flag.Bool("fixed-step", false, "Advance turns one tick per frame")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagPreset != "" {
		cfg.Bend.Preset = *flagPreset
	}
	if *flagLayout != "" {
		cfg.Book.Layout = *flagLayout
	}
	if *flagAssets != "" {
		cfg.Book.AssetsDir = *flagAssets
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagFixedStep {
		cfg.Bend.FixedStep = true
	}
}
