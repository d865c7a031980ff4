// Package config loads runtime settings from YAML on top of built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/valerio/go-yellow/yellow/keypad"
	"github.com/valerio/go-yellow/yellow/timing"
	"github.com/valerio/go-yellow/yellow/video"
)

// Config holds everything the CLI needs to assemble a session.
type Config struct {
	ROM    string `yaml:"rom"`
	Save   string `yaml:"save"`
	Script string `yaml:"script"`

	Audio Audio `yaml:"audio"`
	Relay Relay `yaml:"relay"`
	Link  Link  `yaml:"link"`

	Limiter timing.Kind `yaml:"limiter"`

	// Keys maps host key names to keypad key names, on top of the default map.
	Keys map[string]string `yaml:"keys"`
	// Palette lists four hex colours, lightest shade first.
	Palette []string `yaml:"palette"`
	// AutoReleaseFrames releases keys from hosts that never report a release.
	AutoReleaseFrames int `yaml:"auto_release_frames"`

	LogLevel string `yaml:"log_level"`
}

type Audio struct {
	Enabled    bool   `yaml:"enabled"`
	SampleRate int    `yaml:"sample_rate"`
	Record     string `yaml:"record"`
	Mute       []int  `yaml:"mute"`
}

type Relay struct {
	Listen string `yaml:"listen"`
}

type Link struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	return Config{
		Audio: Audio{
			Enabled:    true,
			SampleRate: 44100,
		},
		Link:              Link{Baud: 115200},
		Limiter:           timing.KindAdaptive,
		Palette:           []string{"#FFFFFF", "#989898", "#4C4C4C", "#000000"},
		AutoReleaseFrames: 6,
		LogLevel:          "info",
	}
}

// Load reads path and applies it over Defaults. A missing file is an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields that would otherwise fail late, after the
// terminal has been taken over.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.ParsedPalette(); err != nil {
		errs = append(errs, err)
	}
	for host, name := range c.Keys {
		if _, err := keypad.ParseKey(name); err != nil {
			errs = append(errs, fmt.Errorf("keys.%s: %w", host, err))
		}
	}
	if err := c.Limiter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("limiter: %w", err))
	}
	for _, ch := range c.Audio.Mute {
		if ch < 1 || ch > 4 {
			errs = append(errs, fmt.Errorf("audio.mute: channel %d out of range", ch))
		}
	}
	if c.AutoReleaseFrames < 0 {
		errs = append(errs, errors.New("auto_release_frames must not be negative"))
	}
	return errors.Join(errs...)
}

// ParsedPalette converts the hex strings into a display palette.
func (c Config) ParsedPalette() (video.Palette, error) {
	var p video.Palette
	if len(c.Palette) != len(p) {
		return p, fmt.Errorf("palette: want %d colours, got %d", len(p), len(c.Palette))
	}
	for i, hex := range c.Palette {
		col, err := colorful.Hex(hex)
		if err != nil {
			return p, fmt.Errorf("palette[%d]: %w", i, err)
		}
		r, g, b := col.RGB255()
		p[i] = video.RGB{R: r, G: g, B: b}
	}
	return p, nil
}
