// Package engineconfig holds the frame graph core's compile-time tunables
// and an optional loader for environment-specific overrides.
package engineconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default tunables, matching the spec's configuration constants exactly.
const (
	// DefaultMaxRenderPassesPerCommandList bounds how many render passes a
	// single command-list recorder accepts before a new recorder is
	// created.
	DefaultMaxRenderPassesPerCommandList = 50

	// DefaultResourceDescriptorHeapSize is the total slot count of the
	// shader-visible descriptor heap.
	DefaultResourceDescriptorHeapSize = 1_000_000

	// DefaultBindlessSRVPartitionSize is the size of the persistent
	// bindless-SRV partition, occupying [0, DefaultBindlessSRVPartitionSize).
	DefaultBindlessSRVPartitionSize = 500_000

	// DefaultPerFrameDescriptorsPartitionSize is the combined size of the
	// two per-frame-parity partitions (split evenly between them).
	DefaultPerFrameDescriptorsPartitionSize = 500_000

	// DefaultMaxFramesInFlight bounds how many frames' worth of
	// resource-teardown bookkeeping is retained before reclamation.
	DefaultMaxFramesInFlight = 2
)

// Config bundles every tunable this module's components read at
// construction time. The zero value is not valid; use Default().
type Config struct {
	MaxRenderPassesPerCommandList int    `yaml:"maxRenderPassesPerCommandList"`
	ResourceDescriptorHeapSize    uint32 `yaml:"resourceDescriptorHeapSize"`
	BindlessSRVPartitionSize      uint32 `yaml:"bindlessSRVPartitionSize"`
	PerFrameDescriptorsPartition  uint32 `yaml:"perFrameDescriptorsPartitionSize"`
	MaxFramesInFlight             uint64 `yaml:"maxFramesInFlight"`
}

// Default returns the tunables named in the specification.
func Default() Config {
	return Config{
		MaxRenderPassesPerCommandList: DefaultMaxRenderPassesPerCommandList,
		ResourceDescriptorHeapSize:    DefaultResourceDescriptorHeapSize,
		BindlessSRVPartitionSize:      DefaultBindlessSRVPartitionSize,
		PerFrameDescriptorsPartition:  DefaultPerFrameDescriptorsPartitionSize,
		MaxFramesInFlight:             DefaultMaxFramesInFlight,
	}
}

// Validate checks that the partitions are internally consistent: the
// bindless and per-frame partitions must exactly cover the heap, and the
// per-frame partition must split evenly in two.
func (c Config) Validate() error {
	if c.BindlessSRVPartitionSize+c.PerFrameDescriptorsPartition != c.ResourceDescriptorHeapSize {
		return fmt.Errorf("engineconfig: bindless (%d) + per-frame (%d) partitions must cover the heap (%d)",
			c.BindlessSRVPartitionSize, c.PerFrameDescriptorsPartition, c.ResourceDescriptorHeapSize)
	}
	if c.PerFrameDescriptorsPartition%2 != 0 {
		return fmt.Errorf("engineconfig: per-frame partition size (%d) must split evenly across frame parities", c.PerFrameDescriptorsPartition)
	}
	if c.MaxRenderPassesPerCommandList <= 0 {
		return fmt.Errorf("engineconfig: maxRenderPassesPerCommandList must be positive")
	}
	if c.MaxFramesInFlight == 0 {
		return fmt.Errorf("engineconfig: maxFramesInFlight must be positive")
	}
	return nil
}

// PerFrameParitySize returns the size of a single frame-parity partition
// (even or odd).
func (c Config) PerFrameParitySize() uint32 {
	return c.PerFrameDescriptorsPartition / 2
}

// LoadOverrides reads a YAML override file layered on top of Default(),
// for deployment environments (e.g. a memory-constrained device profile)
// that need smaller descriptor-heap partitions without a recompile.
//
// Fields absent from the file keep their Default() value.
func LoadOverrides(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("engineconfig: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("engineconfig: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
