package config

import (
	"fmt"
	"os"
	"strconv"

	"sigs.k8s.io/yaml"

	"github.com/Godmook/multigpu-be/internal/constants"
)

// Config carries every tunable the services need. Components never read
// process environment themselves; everything flows in through this struct so
// tests can vary it freely.
type Config struct {
	ListenAddr string `json:"listenAddr"`
	Kubeconfig string `json:"kubeconfig"`

	// FleetPrefix is the leading token of the node naming convention
	// "<prefix>-<family>-<3 digits>".
	FleetPrefix string `json:"fleetPrefix"`

	// SlotCount is the fixed presentation width of every node's GPU list.
	SlotCount int `json:"slotCount"`

	// GPUResourcePrefix selects which extended resources count as GPUs,
	// e.g. "example.com" or "nvidia.com".
	GPUResourcePrefix string `json:"gpuResourcePrefix"`

	QueueName    string `json:"queueName"`
	JobNamespace string `json:"jobNamespace"`
	JobImage     string `json:"jobImage"`
}

func Default() *Config {
	return &Config{
		ListenAddr:        ":8080",
		FleetPrefix:       constants.DefaultFleetPrefix,
		SlotCount:         constants.DefaultSlotCount,
		GPUResourcePrefix: constants.DefaultGPUResourcePrefix,
		QueueName:         constants.DefaultQueueName,
		JobNamespace:      "default",
		JobImage:          "ubuntu:22.04",
	}
}

// Load builds the effective config: defaults, then the optional YAML file,
// then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}
	cfg.applyEnv()
	if cfg.SlotCount <= 0 {
		return nil, fmt.Errorf("slotCount must be positive, got %d", cfg.SlotCount)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("KUBECONFIG"); v != "" {
		c.Kubeconfig = v
	}
	if v := os.Getenv("FLEET_PREFIX"); v != "" {
		c.FleetPrefix = v
	}
	if v := os.Getenv("GPU_RESOURCE_PREFIX"); v != "" {
		c.GPUResourcePrefix = v
	}
	if v := os.Getenv("GPU_SLOT_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SlotCount = n
		}
	}
	if v := os.Getenv("JOB_NAMESPACE"); v != "" {
		c.JobNamespace = v
	}
}
