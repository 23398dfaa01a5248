package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Editor.TabWidth != 2 {
		t.Fatalf("tab-width = %d, want 2", cfg.Editor.TabWidth)
	}
	if cfg.Editor.HistoryLength != -1 {
		t.Fatalf("history-length = %d, want -1", cfg.Editor.HistoryLength)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("QLINE_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Editor.TabWidth != 2 {
		t.Fatalf("tab-width = %d, want 2", cfg.Editor.TabWidth)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QLINE_CONFIG_HOME", dir)
	content := `
[editor]
tab-width = 8
history-length = 50

[theme]
palette = ["default", "#FF8040", "3", "214"]
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Editor.TabWidth != 8 {
		t.Fatalf("tab-width = %d, want 8", cfg.Editor.TabWidth)
	}
	if cfg.Editor.HistoryLength != 50 {
		t.Fatalf("history-length = %d, want 50", cfg.Editor.HistoryLength)
	}

	palette, err := cfg.Palette()
	if err != nil {
		t.Fatalf("palette: %v", err)
	}
	want := []int{-1, 0x01FF8040, 3, 214}
	if len(palette) != len(want) {
		t.Fatalf("palette len = %d, want %d", len(palette), len(want))
	}
	for i := range want {
		if palette[i] != want[i] {
			t.Fatalf("palette[%d] = %#x, want %#x", i, palette[i], want[i])
		}
	}
}

func TestParseColorErrors(t *testing.T) {
	for _, s := range []string{"#12", "chartreuse", "999"} {
		if _, err := ParseColor(s); err == nil {
			t.Fatalf("ParseColor(%q) err = nil, want error", s)
		}
	}
}
