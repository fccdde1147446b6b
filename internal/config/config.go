package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ogadix/splash/internal/paths"
	"github.com/ogadix/splash/internal/splash"
)

// DefaultBackgroundColor matches the app's SplashScreen.backgroundColor.
const DefaultBackgroundColor = "#8b5cf6"

// Shadow holds the drop-shadow settings of the rounded style.
type Shadow struct {
	Offset int `json:"offset"`
	Blur   int `json:"blur"`
	Alpha  int `json:"alpha"`
}

// MQTT holds the optional broker that receives a notice after each run.
type MQTT struct {
	Broker   string `json:"broker,omitempty"`
	Topic    string `json:"topic,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	QoS      byte   `json:"qos,omitempty"`
	Retain   bool   `json:"retain,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// Enabled reports whether a broker and topic are configured.
func (m MQTT) Enabled() bool {
	return m.Broker != "" && m.Topic != ""
}

// Webhook is an optional HTTP endpoint that receives the same notice as MQTT.
type Webhook struct {
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Config holds every setting of a splash run. Zero values never reach the
// renderer: Default and UnmarshalJSON fill them in.
type Config struct {
	BackgroundColor string  `json:"background_color"`
	IconSize        int     `json:"icon_size"`
	Style           string  `json:"style"`
	CornerRatio     float64 `json:"corner_ratio"`
	Shadow          Shadow  `json:"shadow"`
	OutputDir       string  `json:"output_dir,omitempty"`
	Language        string  `json:"language,omitempty"`
	Contents        bool    `json:"contents,omitempty"`
	Log             bool    `json:"log,omitempty"`
	MQTT            MQTT    `json:"mqtt,omitempty"`
	Webhook         Webhook `json:"webhook,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BackgroundColor: DefaultBackgroundColor,
		IconSize:        splash.DefaultIconSize,
		Style:           string(splash.StylePlain),
		CornerRatio:     splash.DefaultCornerRatio,
		Shadow: Shadow{
			Offset: splash.DefaultShadowOffset,
			Blur:   splash.DefaultShadowBlur,
			Alpha:  splash.DefaultShadowAlpha,
		},
	}
}

// UnmarshalJSON sets defaults then decodes the JSON structure.
// Go's json.Unmarshal merges into existing struct fields, so only
// values present in JSON override the defaults.
func (c *Config) UnmarshalJSON(data []byte) error {
	*c = Default()
	type Alias Config
	return json.Unmarshal(data, (*Alias)(c))
}

// FindPath returns the config file to use. It tries, in order:
//  1. explicitPath (if non-empty; must exist)
//  2. splash-config.json in the project root
//  3. splash-config.json in the user data directory
//
// An empty path with a nil error means no config file exists.
func FindPath(explicitPath, root string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicitPath, nil
	}
	for _, dir := range []string{root, paths.DataDir()} {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, paths.ConfigFileName)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// Load resolves the config file with FindPath and parses it. Without a
// config file it returns Default(). The returned path is the file used.
func Load(explicitPath, root string) (Config, string, error) {
	p, err := FindPath(explicitPath, root)
	if err != nil {
		return Config{}, "", err
	}
	if p == "" {
		return Default(), "", nil
	}
	cfg, err := readConfig(p)
	if err != nil {
		return Config{}, "", err
	}
	if cfg.OutputDir != "" && !filepath.IsAbs(cfg.OutputDir) {
		cfg.OutputDir = filepath.Join(filepath.Dir(p), cfg.OutputDir)
	}
	return cfg, p, nil
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks fields that the renderer does not check itself.
func (c Config) Validate() error {
	var errs []error
	if _, err := ParseColor(c.BackgroundColor); err != nil {
		errs = append(errs, err)
	}
	if _, err := splash.ParseStyle(c.Style); err != nil {
		errs = append(errs, err)
	}
	if c.Shadow.Alpha < 0 || c.Shadow.Alpha > 255 {
		errs = append(errs, fmt.Errorf("shadow alpha must be within 0-255, got %d", c.Shadow.Alpha))
	}
	if c.MQTT.QoS > 2 {
		errs = append(errs, fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", c.MQTT.QoS))
	}
	if (c.MQTT.Broker == "") != (c.MQTT.Topic == "") {
		errs = append(errs, errors.New("mqtt needs both broker and topic"))
	}
	if u := c.Webhook.URL; u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		errs = append(errs, fmt.Errorf("webhook url must start with http:// or https://, got %q", u))
	}
	return errors.Join(errs...)
}

// Options converts the config into render options.
func (c Config) Options() (splash.Options, error) {
	if err := c.Validate(); err != nil {
		return splash.Options{}, err
	}
	bg, _ := ParseColor(c.BackgroundColor)
	style, _ := splash.ParseStyle(c.Style)

	opts := splash.DefaultOptions()
	opts.IconSize = c.IconSize
	opts.Background = bg
	opts.Style = style
	opts.CornerRatio = c.CornerRatio
	opts.ShadowOffset = c.Shadow.Offset
	opts.ShadowBlur = c.Shadow.Blur
	opts.ShadowAlpha = uint8(c.Shadow.Alpha)
	return opts, opts.Validate()
}

// ParseColor parses an opaque "#rgb" or "#rrggbb" hex color. The leading
// '#' is optional.
func ParseColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q (want #rrggbb)", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q (want #rrggbb)", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
