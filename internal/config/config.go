// Package config loads host-side editor settings from a TOML file.
// The library itself never reads config; hosts load it and apply the
// result through the editor's setters.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"
)

type EditorOptions struct {
	TabWidth      int `toml:"tab-width"`
	HistoryLength int `toml:"history-length"`
}

type Theme struct {
	Palette []string `toml:"palette"`
}

type Config struct {
	Editor EditorOptions `toml:"editor"`
	Theme  Theme         `toml:"theme"`
}

func Default() Config {
	return Config{
		Editor: EditorOptions{
			TabWidth:      2,
			HistoryLength: -1,
		},
	}
}

// Load overlays <config dir>/config.toml onto the defaults. A missing
// file yields the defaults.
func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, err
	}

	if userCfg.Editor.TabWidth > 0 {
		cfg.Editor.TabWidth = userCfg.Editor.TabWidth
	}
	if userCfg.Editor.HistoryLength != 0 {
		cfg.Editor.HistoryLength = userCfg.Editor.HistoryLength
	}
	if len(userCfg.Theme.Palette) > 0 {
		cfg.Theme.Palette = userCfg.Theme.Palette
	}
	return cfg, nil
}

// Palette resolves the configured colour strings into packed colour
// codes: "default" → -1, "#RRGGBB" → 0x01RRGGBB, bare integers pass
// through as ANSI/xterm indices.
func (c Config) Palette() ([]int, error) {
	out := make([]int, 0, len(c.Theme.Palette))
	for _, s := range c.Theme.Palette {
		code, err := ParseColor(s)
		if err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, nil
}

// ParseColor converts one palette entry into a packed colour code.
func ParseColor(s string) (int, error) {
	if s == "" || s == "default" {
		return -1, nil
	}
	if s[0] == '#' {
		c, err := colorful.Hex(s)
		if err != nil {
			return 0, fmt.Errorf("config: palette entry %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return 0x01000000 | int(r)<<16 | int(g)<<8 | int(b), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("config: palette entry %q: %w", s, err)
	}
	if n < -1 || n > 255 {
		return 0, fmt.Errorf("config: palette entry %q out of range", s)
	}
	return n, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QLINE_CONFIG_HOME"); v != "" {
		return v, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qline"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qline"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
