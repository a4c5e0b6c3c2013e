package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the node's on-disk configuration. A single yaml file replaces
// the teacher's cmd/thor CLI-flag surface, since this core has no p2p
// client to configure — the whole committee is this process's own devnet
// key set (see genesis.DevAccounts).
type Config struct {
	DataDir       string        `yaml:"data_dir"`        // empty means in-memory, for local experimentation
	CommitteeSize int           `yaml:"committee_size"`
	Threshold     int           `yaml:"threshold"`
	BlockInterval time.Duration `yaml:"block_interval"`
	MetricsAddr   string        `yaml:"metrics_addr"`
	MailboxSize   int           `yaml:"mailbox_size"`
	WorkerCount   int           `yaml:"worker_count"`
	MempoolBatch  int           `yaml:"mempool_batch"`
	DrainDeadline time.Duration `yaml:"drain_deadline"`
}

// DefaultConfig mirrors a small local devnet: four committee members,
// three-of-four threshold signing, one block every two seconds.
func DefaultConfig() Config {
	return Config{
		CommitteeSize: 4,
		Threshold:     3,
		BlockInterval: 2 * time.Second,
		MetricsAddr:   "127.0.0.1:2112",
		MailboxSize:   256,
		WorkerCount:   4,
		MempoolBatch:  64,
		DrainDeadline: 5 * time.Second,
	}
}

// LoadConfig reads and overlays path onto DefaultConfig. A missing file is
// not an error — the defaults alone describe a runnable devnet.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
