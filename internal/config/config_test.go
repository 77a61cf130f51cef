package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultChunkingValues(t *testing.T) {
	cfg := Default()
	if cfg.Chunking.MaxNotesPerChunk != 1000 || cfg.Chunking.MaxMeasuresPerChunk != 32 || cfg.Chunking.OverlapMeasures != 4 {
		t.Errorf("unexpected chunking defaults: %+v", cfg.Chunking)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("chunking:\n  maxMeasuresPerChunk: 16\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Chunking.MaxMeasuresPerChunk != 16 {
		t.Errorf("maxMeasuresPerChunk = %d, want 16 (overridden)", cfg.Chunking.MaxMeasuresPerChunk)
	}
	if cfg.Chunking.MaxNotesPerChunk != 1000 {
		t.Errorf("maxNotesPerChunk = %d, want 1000 (default preserved)", cfg.Chunking.MaxNotesPerChunk)
	}
}
