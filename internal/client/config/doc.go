// Package config loads runtime configuration for the roomchat client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the document store gRPC endpoint
//	-n string   nickname
//	-r string   room to join on start
//	-k string   room passkey
//	-p          prompt for the passkey without echo
//	-d string   directory for the local state database and log file
//	-l string   log level (debug, info, warn, error)
//	-i int      online status check interval (seconds)
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "nickname": "ann",
//	  "room": "lobby",
//	  "data_dir": "~/.roomchat",
//	  "log_level": "info",
//	  "online_check_interval": "3s",
//	  "scroll_threshold": 3,
//	  "highlight_duration": "2s",
//	  "viewport_height": 20
//	}
//
// The passkey is never read from JSON.
package config
