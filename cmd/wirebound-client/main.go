package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wirebound/wirebound/internal/client"
	"github.com/wirebound/wirebound/internal/config"
	"github.com/wirebound/wirebound/internal/observability"
	"github.com/wirebound/wirebound/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config")
	writeConfig := flag.String("write-config", "", "write an example config to this path and exit")
	message := flag.String("message", "", "payload to send once the session opens")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.WriteExample(*writeConfig, "wirebound-client"); err != nil {
			fmt.Fprintf(os.Stderr, "wirebound-client: %v\n", err)
			os.Exit(1)
		}
		return
	}

	name := "wirebound-client"
	cfg := session.DefaultConfig()
	if *configPath != "" {
		var err error
		name, cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "wirebound-client: %v\n", err)
			os.Exit(1)
		}
	}

	logger := observability.InitLogger(name)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var initial []byte
	if *message != "" {
		initial = []byte(*message)
	}

	svc := client.NewService(name, cfg, initial, os.Stdin)
	if err := svc.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("client exited")
		os.Exit(1)
	}
}
