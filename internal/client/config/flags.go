package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/roomchat/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. os.Args is
// filtered with flagx.FilterArgs first so flags of other loaders don't
// break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-n", "-r", "-k", "-p", "-d", "-l", "-i"},
		"-p",
	)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.Nickname, "n", cfg.Nickname, "nickname")
	fs.StringVar(&cfg.Room, "r", cfg.Room, "room to join on start")
	fs.StringVar(&cfg.Passkey, "k", cfg.Passkey, "room passkey")
	fs.BoolVar(&cfg.PromptPasskey, "p", cfg.PromptPasskey, "prompt for the room passkey")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "directory for local state")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
