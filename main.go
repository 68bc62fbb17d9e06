package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/kfsoftware/ssh-ip-tunnel/cmd"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logLevel := os.Getenv("LOG_LEVEL")
	zeroLogLevel, err := zerolog.ParseLevel(logLevel)
	if err != nil || logLevel == "" {
		zeroLogLevel = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger().Level(zeroLogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cmd.NewCmdSSHIPTunnel().ExecuteContext(ctx); err != nil {
		log.Error().Msgf("Operation failed: %v", err)
		stop()
		os.Exit(1)
	}
}
