package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/gabrielkryss/s-talk/pkg/config"
	"github.com/gabrielkryss/s-talk/pkg/observability"
	"github.com/gabrielkryss/s-talk/pkg/relay"
	"github.com/gabrielkryss/s-talk/pkg/report"
	"github.com/gabrielkryss/s-talk/pkg/transports"
)

// run is the main entry point; it returns the process exit code.
// Argument errors are reported before any configuration or socket is touched.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := ParseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if len(opts.Args) != 3 {
		fmt.Fprintln(stderr, usage)
		return 1
	}
	addr, err := relay.ParseAddressing(opts.Args[0], opts.Args[1], opts.Args[2])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintln(stderr, "failed to load config: "+err.Error())
		return 1
	}
	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(stderr, "failed to setup logger: "+err.Error())
		return 1
	}
	defer func() { _ = logger.Sync() }()
	zap.L().Debug("effective configuration", zap.Any("config", cfg))

	tr, err := transports.NewByKind(cfg.Relay.Transport)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := relay.Run(ctx, relay.Options{
		Addressing:       addr,
		Transport:        tr,
		RecvBufferBytes:  cfg.Relay.RecvBufferBytes,
		OutboundCapacity: cfg.Relay.OutboundCapacity,
		InboundCapacity:  cfg.Relay.InboundCapacity,
		SendRateBytes:    cfg.Relay.SendRateBytes,
		Stdin:            stdin,
		Stdout:           stdout,
		Console:          cfg.Console,
	})
	if err != nil {
		zap.L().Error("relay failed", zap.Error(err))
		fmt.Fprintln(stderr, err)
		return 1
	}

	if cfg.Report.Path != "" {
		if err := report.Write(cfg.Report.Path, cfg.Report.Format, report.FromSummary(sum)); err != nil {
			zap.L().Warn("session report not written", zap.String("path", cfg.Report.Path), zap.Error(err))
		}
	}
	return 0
}
