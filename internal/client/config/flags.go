package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/healthlog/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   address and port of the remote store
//	-d string   data directory
//	-i int      online check interval in seconds
//	-t int      remote call timeout in seconds
//	-r int      sync attempts
//	-e          re-sync records after they are edited
//	-v          verbose logging
//
// Only the flags above are taken from os.Args (see flagx.FilterArgs).
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i", "-t", "-r", "-e", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	remoteTimeout := fs.Int("t", int(cfg.RemoteTimeout.Seconds()), "remote call timeout (in seconds)")
	fs.IntVar(&cfg.SyncAttempts, "r", cfg.SyncAttempts, "sync attempts")
	fs.BoolVar(&cfg.ResyncOnEdit, "e", cfg.ResyncOnEdit, "re-sync edited records")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.RemoteTimeout = time.Duration(*remoteTimeout) * time.Second
}
