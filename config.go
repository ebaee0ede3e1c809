package gputext

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/gputext/batch"
	"github.com/gogpu/gputext/shaders"
	"github.com/gogpu/gputext/text"
)

// SiteConfigFilename is the name of the optional configuration file placed
// next to the executable.
const SiteConfigFilename = "gputext.yml"

// maxConfigSize bounds the size of a configuration file.
const maxConfigSize = 1024 * 1024

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("gputext: invalid config")

// RGBA is a color as four components in [0, 1].
type RGBA [4]float32

// Color converts c to a batch.Color.
func (c RGBA) Color() batch.Color {
	return batch.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// WindowConfig describes the demo window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// FontConfig describes the font the text is set in.
type FontConfig struct {
	// File is resolved relative to the executable's directory unless it
	// is absolute.
	File  string             `yaml:"file"`
	Size  float64            `yaml:"size"`
	SDF   bool               `yaml:"sdf"`
	Align text.WrapAlignment `yaml:"align"`
}

// TextConfig describes the animated string.
type TextConfig struct {
	// Message follows a first line of PrefixLength blanks that are
	// replaced by random capital letters each frame.
	Message      string `yaml:"message"`
	PrefixLength int    `yaml:"prefix_length"`
}

// CameraConfig describes the projection and the rotating model transform.
type CameraConfig struct {
	FovY         float32 `yaml:"fovy"`
	Near         float32 `yaml:"near"`
	Far          float32 `yaml:"far"`
	Distance     float32 `yaml:"distance"`
	Scale        float32 `yaml:"scale"`
	RotationStep float32 `yaml:"rotation_step"`
}

// Config is the demo configuration. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	Window WindowConfig `yaml:"window"`
	Font   FontConfig   `yaml:"font"`
	Text   TextConfig   `yaml:"text"`
	Camera CameraConfig `yaml:"camera"`

	Tint  RGBA `yaml:"tint"`
	Clear RGBA `yaml:"clear"`

	// ShaderFormat is "wgsl" or "spirv" to force a format, or "auto" (or
	// empty) to use the one the graphics backend prefers.
	ShaderFormat string `yaml:"shader_format"`

	// LogLevel is a slog level name: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{Title: "GPU text test", Width: 800, Height: 600},
		Font: FontConfig{
			File:  "Inter-VariableFont.ttf",
			Size:  50,
			Align: text.AlignCenter,
		},
		Text: TextConfig{Message: "SDL is cool", PrefixLength: 5},
		Camera: CameraConfig{
			FovY:         math.Pi / 2,
			Near:         0.1,
			Far:          100,
			Distance:     80,
			Scale:        0.3,
			RotationStep: 0.01,
		},
		Tint:         RGBA{1, 1, 0, 1},
		Clear:        RGBA{0.3, 0.4, 0.5, 1},
		ShaderFormat: "auto",
		LogLevel:     "info",
	}
}

// Validate reports the first problem found in c.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case c.Font.File == "":
		return fmt.Errorf("%w: font file not set", ErrInvalidConfig)
	case c.Font.Size <= 0:
		return fmt.Errorf("%w: font size %v", ErrInvalidConfig, c.Font.Size)
	case c.Text.PrefixLength < 0:
		return fmt.Errorf("%w: prefix length %d", ErrInvalidConfig, c.Text.PrefixLength)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: clip planes %v..%v", ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	case c.Camera.FovY <= 0 || c.Camera.FovY >= math.Pi:
		return fmt.Errorf("%w: fovy %v", ErrInvalidConfig, c.Camera.FovY)
	}
	if _, _, err := c.shaderOverride(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Shaders returns the shader format for a backend that accepts supported,
// most preferred first. A format named by ShaderFormat overrides the
// backend's preference.
func (c *Config) Shaders(supported ...shaders.Format) (shaders.Format, error) {
	f, forced, err := c.shaderOverride()
	if err != nil || forced {
		return f, err
	}
	return shaders.SelectFormat(supported...)
}

func (c *Config) shaderOverride() (f shaders.Format, forced bool, err error) {
	switch strings.ToLower(c.ShaderFormat) {
	case "", "auto":
		return 0, false, nil
	case "wgsl":
		return shaders.FormatWGSL, true, nil
	case "spirv", "spir-v":
		return shaders.FormatSPIRV, true, nil
	default:
		return 0, false, fmt.Errorf("%w: shader format %q", ErrInvalidConfig, c.ShaderFormat)
	}
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return l, nil
}

// FontPath returns Font.File resolved against dir.
func (c *Config) FontPath(dir string) string {
	if filepath.IsAbs(c.Font.File) {
		return c.Font.File
	}
	return filepath.Join(dir, c.Font.File)
}

// ParseConfig decodes YAML over DefaultConfig. Unknown keys are an error.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// LoadConfig reads the configuration file at path.
func LoadConfig(path string) (Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return DefaultConfig(), err
	}
	// World-writable files are refused. On Windows the permission bits say
	// nothing about ACLs, so the check is skipped there.
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o002 != 0 {
		return DefaultConfig(), fmt.Errorf("%w: %s is world-writable (%v)", ErrInvalidConfig, path, info.Mode())
	}
	if info.Size() > maxConfigSize {
		return DefaultConfig(), fmt.Errorf("%w: %s is %d bytes", ErrInvalidConfig, path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), err
	}
	return ParseConfig(data)
}

// ExecutableDir returns the directory containing the running executable.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// LoadSiteConfig reads SiteConfigFilename from dir. A missing file yields
// DefaultConfig silently; any other problem is logged and also yields
// DefaultConfig.
func LoadSiteConfig(dir string) Config {
	path := filepath.Join(dir, SiteConfigFilename)
	cfg, err := LoadConfig(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			Logger().Warn("gputext: ignoring site config", "path", path, "err", err)
		}
		return DefaultConfig()
	}
	Logger().Info("gputext: loaded site config", "path", path)
	return cfg
}
