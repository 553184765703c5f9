// Package config loads runtime configuration for the healthlog CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "data_dir": "/home/me/.config/healthlog",
//	  "online_check_interval": "3s",
//	  "remote_timeout": "10s",
//	  "backoff_base": "1s",
//	  "sync_attempts": 3,
//	  "resync_on_edit": false,
//	  "verbose": false
//	}
package config
