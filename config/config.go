package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/synanno/maskdraw"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Duration is a time.Duration written as a string such as "30s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the maskd service configuration.
type Config struct {
	Listen   string     `toml:"listen"`
	LogLevel slog.Level `toml:"log_level"`

	// Catalog is the YAML image catalog. Relative paths are resolved
	// against the directory of the config file.
	Catalog string `toml:"catalog"`

	Gateway Gateway `toml:"gateway"`
	Canvas  Canvas  `toml:"canvas"`
	Lookup  Lookup  `toml:"lookup"`
	MDNS    MDNS    `toml:"mdns"`
}

// Gateway selects where rasters are stored. Exactly one of URL and
// StoreDir is set.
type Gateway struct {
	URL        string   `toml:"url"`
	MaskPrefix string   `toml:"mask_prefix"`
	Timeout    Duration `toml:"timeout"`

	// StoreDir keeps rasters in a local directory and serves them over
	// the annotation server protocol.
	StoreDir string `toml:"store_dir"`
}

// Canvas holds the drawing parameters of the session.
type Canvas struct {
	Width           int     `toml:"width"`
	Height          int     `toml:"height"`
	Thickness       float64 `toml:"thickness"`
	MarkerRadius    float64 `toml:"marker_radius"`
	AutoSaveMarkers bool    `toml:"auto_save_markers"`

	// MaxSize bounds the width and height a NewTarget may request.
	MaxSize int `toml:"max_size"`
}

// Lookup configures the cache of stored-mask lookups.
type Lookup struct {
	CacheSize int      `toml:"cache_size"`
	TTL       Duration `toml:"ttl"`
}

// MDNS configures the service advertisement.
type MDNS struct {
	Enabled  bool   `toml:"enabled"`
	Instance string `toml:"instance"`
	Service  string `toml:"service"`
}

// Default returns the configuration used for absent keys.
func Default() Config {
	return Config{
		Listen:   ":8090",
		LogLevel: slog.LevelInfo,
		Gateway: Gateway{
			MaskPrefix: "/static/Images/Mask/",
			Timeout:    Duration(30 * time.Second),
		},
		Canvas: Canvas{
			Width:           maskdraw.DefaultCanvasSize,
			Height:          maskdraw.DefaultCanvasSize,
			Thickness:       maskdraw.DefaultThickness,
			MarkerRadius:    maskdraw.DefaultMarkerRadius,
			AutoSaveMarkers: true,
			MaxSize:         maskdraw.MaxCanvasSize,
		},
		Lookup: Lookup{
			CacheSize: 256,
			TTL:       Duration(time.Minute),
		},
		MDNS: MDNS{
			Instance: "maskd",
			Service:  "_maskd._tcp",
		},
	}
}

// Parse decodes a TOML document over the defaults and validates it.
// Unknown keys are rejected.
func Parse(r io.Reader) (Config, error) {
	c, err := decode(r)
	if err != nil {
		return c, err
	}
	return c, c.Validate()
}

func decode(r io.Reader) (Config, error) {
	c := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return c, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return c, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// Load reads the config file at path, applies overrides and validates
// the result. Relative paths in the file are resolved against its
// directory.
func Load(path string, overrides ...func(*Config)) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := decode(bytes.NewReader(data))
	if err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	if c.Catalog != "" && !filepath.IsAbs(c.Catalog) {
		c.Catalog = filepath.Join(filepath.Dir(path), c.Catalog)
	}
	if c.Gateway.StoreDir != "" && !filepath.IsAbs(c.Gateway.StoreDir) {
		c.Gateway.StoreDir = filepath.Join(filepath.Dir(path), c.Gateway.StoreDir)
	}
	for _, o := range overrides {
		o(&c)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks the configuration for contradictions.
func (c Config) Validate() error {
	var errs []error
	switch {
	case c.Gateway.URL == "" && c.Gateway.StoreDir == "":
		errs = append(errs, errors.New("gateway needs url or store_dir"))
	case c.Gateway.URL != "" && c.Gateway.StoreDir != "":
		errs = append(errs, errors.New("gateway url and store_dir are exclusive"))
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas size %dx%d", c.Canvas.Width, c.Canvas.Height))
	}
	if c.Canvas.MaxSize <= 0 || c.Canvas.MaxSize > maskdraw.MaxCanvasSize {
		errs = append(errs, fmt.Errorf("canvas max_size %d", c.Canvas.MaxSize))
	} else if c.Canvas.Width > c.Canvas.MaxSize || c.Canvas.Height > c.Canvas.MaxSize {
		errs = append(errs, fmt.Errorf("canvas size %dx%d above max_size %d", c.Canvas.Width, c.Canvas.Height, c.Canvas.MaxSize))
	}
	if c.Canvas.Thickness <= 0 {
		errs = append(errs, fmt.Errorf("canvas thickness %v", c.Canvas.Thickness))
	}
	if c.Canvas.MarkerRadius <= 0 {
		errs = append(errs, fmt.Errorf("canvas marker_radius %v", c.Canvas.MarkerRadius))
	}
	if c.Lookup.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("lookup cache_size %d", c.Lookup.CacheSize))
	}
	if c.MDNS.Enabled && c.MDNS.Service == "" {
		errs = append(errs, errors.New("mdns service is empty"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// SessionOptions returns the session options for the canvas settings.
func (c Config) SessionOptions() []maskdraw.Option {
	return []maskdraw.Option{
		maskdraw.WithMaxCanvasSize(c.Canvas.MaxSize),
		maskdraw.WithCanvasSize(c.Canvas.Width, c.Canvas.Height),
		maskdraw.WithThickness(c.Canvas.Thickness),
		maskdraw.WithMarkerRadius(c.Canvas.MarkerRadius),
		maskdraw.WithAutoSaveMarkers(c.Canvas.AutoSaveMarkers),
	}
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
