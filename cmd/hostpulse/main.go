package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/hostpulse/hostpulse/internal/config"
	"github.com/hostpulse/hostpulse/internal/csvlog"
	"github.com/hostpulse/hostpulse/internal/monitor"
	"github.com/hostpulse/hostpulse/internal/sampler"
	"github.com/hostpulse/hostpulse/internal/ui"
)

func main() {
	_ = godotenv.Load()

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	defaults := config.Default()
	return &cli.Command{
		Name:  "hostpulse",
		Usage: "sample host CPU, memory, disk and top processes to a CSV log",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "interval",
				Usage:   "delay between samples",
				Sources: cli.EnvVars("HOSTPULSE_INTERVAL"),
				Value:   defaults.Interval,
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "CSV file where samples are appended",
				Sources: cli.EnvVars("HOSTPULSE_LOG_FILE"),
				Value:   defaults.LogFile,
			},
			&cli.IntFlag{
				Name:    "top",
				Usage:   "how many top CPU-consuming processes to record",
				Sources: cli.EnvVars("HOSTPULSE_TOP"),
				Value:   5,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print one snapshot as JSON and exit",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "show a live dashboard instead of line output",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "verbose logging",
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.Config{
		Interval: cmd.Duration("interval"),
		LogFile:  cmd.String("log-file"),
		TopN:     int(cmd.Int("top")),
		JSON:     cmd.Bool("json"),
		TUI:      cmd.Bool("tui"),
		Debug:    cmd.Bool("debug"),
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.Debug)
	collector := sampler.New(cfg.TopN, logger)

	if cfg.JSON {
		snap, err := collector.Collect(ctx)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	writer := csvlog.New(cfg.LogFile)

	// The TUI owns the terminal, so line output goes nowhere in that mode.
	var out io.Writer = os.Stdout
	if cfg.TUI {
		out = io.Discard
	}
	mon := monitor.New(cfg.Interval, collector, writer, out, logger)

	if cfg.TUI {
		sub := mon.Subscribe()
		mon.Start()
		err := ui.Run(sub)
		mon.Stop()
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	mon.Start()
	logger.Info().Str("log_file", cfg.LogFile).Msg("press ctrl-c to stop")
	<-ctx.Done()
	logger.Info().Msg("interrupt received, shutting down")
	mon.Stop()
	return nil
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().
		Logger()
}
