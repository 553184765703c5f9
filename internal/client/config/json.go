package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/healthlog/internal/flagx"
	"github.com/dmitrijs2005/healthlog/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept strings like "3s" or integer nanoseconds. Absent fields leave the
// current value alone.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	DataDir             string         `json:"data_dir"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RemoteTimeout       timex.Duration `json:"remote_timeout"`
	BackoffBase         timex.Duration `json:"backoff_base"`
	SyncAttempts        int            `json:"sync_attempts"`
	ResyncOnEdit        *bool          `json:"resync_on_edit"`
	Verbose             *bool          `json:"verbose"`
}

// parseJson overlays Config with values from the file named by -c or
// -config. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RemoteTimeout.Duration > 0 {
		cfg.RemoteTimeout = jc.RemoteTimeout.Duration
	}
	if jc.BackoffBase.Duration > 0 {
		cfg.BackoffBase = jc.BackoffBase.Duration
	}
	if jc.SyncAttempts > 0 {
		cfg.SyncAttempts = jc.SyncAttempts
	}
	if jc.ResyncOnEdit != nil {
		cfg.ResyncOnEdit = *jc.ResyncOnEdit
	}
	if jc.Verbose != nil {
		cfg.Verbose = *jc.Verbose
	}
}
