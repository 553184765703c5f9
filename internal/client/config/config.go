package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the healthlog CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the remote store gRPC endpoint.
//   - DataDir: directory holding the local database and the device key.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - RemoteTimeout: bound on every single remote call.
//   - BackoffBase: first delay of the sync retry loop; later delays double.
//   - SyncAttempts: how many times the sync command tries before giving up.
//   - ResyncOnEdit: push edited records again on the next sync.
//   - Verbose: debug logging to stderr.
type Config struct {
	ServerEndpointAddr  string
	DataDir             string
	OnlineCheckInterval time.Duration
	RemoteTimeout       time.Duration
	BackoffBase         time.Duration
	SyncAttempts        int
	ResyncOnEdit        bool
	Verbose             bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DataDir = defaultDataDir()
	c.OnlineCheckInterval = 3 * time.Second
	c.RemoteTimeout = 10 * time.Second
	c.BackoffBase = time.Second
	c.SyncAttempts = 3
	c.ResyncOnEdit = false
	c.Verbose = false
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "healthlog")
	}
	return ".healthlog"
}

// DatabasePath is the SQLite file inside DataDir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "healthlog.db")
}

// DeviceKeyPath is the wrap key file for the secure store.
func (c *Config) DeviceKeyPath() string {
	return filepath.Join(c.DataDir, "device.key")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
