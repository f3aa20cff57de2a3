package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/app"
	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/config"
	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/logx"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "-h", "--help", "help":
			printUsage()
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, closer := logx.New(logx.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = app.Run(ctx, args, cfg, os.Stdout, logger)
	stop()
	if err != nil {
		logger.Error().Err(err).Msg("command failed")
		_ = closer.Close()
		os.Exit(2)
	}
	_ = closer.Close()
}

func printUsage() {
	fmt.Println("momoyama-schedule <status|future|past|refresh|export-ics PATH|serve|watch>")
}
