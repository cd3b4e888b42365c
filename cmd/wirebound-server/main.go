package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wirebound/wirebound/internal/config"
	"github.com/wirebound/wirebound/internal/observability"
	"github.com/wirebound/wirebound/internal/server"
	"github.com/wirebound/wirebound/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config")
	writeConfig := flag.String("write-config", "", "write an example config to this path and exit")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.WriteExample(*writeConfig, "wirebound-server"); err != nil {
			fmt.Fprintf(os.Stderr, "wirebound-server: %v\n", err)
			os.Exit(1)
		}
		return
	}

	name := "wirebound-server"
	cfg := session.DefaultConfig()
	if *configPath != "" {
		var err error
		name, cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "wirebound-server: %v\n", err)
			os.Exit(1)
		}
	}

	logger := observability.InitLogger(name)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(name, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}
	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}
