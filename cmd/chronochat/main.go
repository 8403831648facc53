package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/chronochat/internal/buildinfo"
	"github.com/dmitrijs2005/chronochat/internal/cli"
	"github.com/dmitrijs2005/chronochat/internal/common"
	"github.com/dmitrijs2005/chronochat/internal/config"
	"github.com/dmitrijs2005/chronochat/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg, logging.New(os.Stderr, cfg.LogLevel))
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, common.ErrLocked) {
		log.Printf("%v", err)
		os.Exit(1)
	}

}
