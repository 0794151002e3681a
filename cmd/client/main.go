package main

import (
	"bufio"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/roomchat/internal/buildinfo"
	"github.com/dmitrijs2005/roomchat/internal/client/cli"
	"github.com/dmitrijs2005/roomchat/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	if cfg.Nickname == "" {
		nick, err := cli.GetSimpleText(bufio.NewReader(os.Stdin), "Nickname", os.Stdout)
		if err != nil {
			log.Fatalf("%v", err)
		}
		cfg.Nickname = nick
	}

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
