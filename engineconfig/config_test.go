package engineconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() should validate, got %v", err)
	}
}

func TestPerFrameParitySize(t *testing.T) {
	cfg := Default()
	if got, want := cfg.PerFrameParitySize(), uint32(250_000); got != want {
		t.Errorf("PerFrameParitySize() = %d, want %d", got, want)
	}
}

func TestValidateRejectsMismatchedPartitions(t *testing.T) {
	cfg := Default()
	cfg.PerFrameDescriptorsPartition = 499_999
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for mismatched partition sizes")
	}
}

func TestValidateRejectsOddPerFramePartition(t *testing.T) {
	cfg := Default()
	cfg.PerFrameDescriptorsPartition = 500_001
	cfg.BindlessSRVPartitionSize = 499_999
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for odd per-frame partition size")
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	contents := "maxRenderPassesPerCommandList: 32\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write override file: %v", err)
	}

	cfg, err := LoadOverrides(path)
	if err != nil {
		t.Fatalf("LoadOverrides: %v", err)
	}
	if cfg.MaxRenderPassesPerCommandList != 32 {
		t.Errorf("MaxRenderPassesPerCommandList = %d, want 32", cfg.MaxRenderPassesPerCommandList)
	}
	if cfg.ResourceDescriptorHeapSize != DefaultResourceDescriptorHeapSize {
		t.Errorf("unset fields should keep their default, got %d", cfg.ResourceDescriptorHeapSize)
	}
}

func TestLoadOverridesMissingFile(t *testing.T) {
	if _, err := LoadOverrides(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
