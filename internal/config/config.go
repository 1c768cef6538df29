// Package config holds the plain option structs used to start up the
// engine, mirroring the teacher's CreateDeviceOptions/CreateSwapchainOptions
// pattern of a struct with sane zero-value defaults handed to a New* call.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TransferConfig configures the per-thread staging-buffer pool.
type TransferConfig struct {
	StagingPoolEnabled   bool   `yaml:"stagingPoolEnabled"`
	MaxPooledBuffers     int    `yaml:"maxPooledBuffers"`
	MinStagingBufferSize uint64 `yaml:"minStagingBufferSize"`
	MaxStagingBufferSize uint64 `yaml:"maxStagingBufferSize"`
}

// DefaultTransferConfig mirrors the original TransferManagerConfig defaults.
func DefaultTransferConfig() TransferConfig {
	return TransferConfig{
		StagingPoolEnabled:   true,
		MaxPooledBuffers:     8,
		MinStagingBufferSize: 1 << 20,
		MaxStagingBufferSize: 64 << 20,
	}
}

// Config is the engine-wide set of startup options.
type Config struct {
	FramesInFlight    int            `yaml:"framesInFlight"`
	SwapchainPreferred string        `yaml:"swapchainPreferred"`
	Transfer          TransferConfig `yaml:"transfer"`
}

// Default returns the engine's zero-value-safe defaults.
func Default() Config {
	return Config{
		FramesInFlight:     3,
		SwapchainPreferred: "mailbox",
		Transfer:           DefaultTransferConfig(),
	}
}

// Load reads an optional YAML config file, starting from Default() and
// overlaying whatever the file specifies.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
