package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/yurifrl/achu/pkg/config"
	"github.com/yurifrl/achu/pkg/server"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "achu-server",
	})

	var (
		port    = pflag.String("port", "3000", "Server port")
		cfgFile = pflag.StringP("config", "c", "", "Config file (default is ./achu.yaml)")
	)
	pflag.String("log-level", "info", "Log level (debug, info, warn, error)")
	pflag.String("origin-id", "", "Immediate origin ID for rendered files")
	pflag.String("dest-id", "", "Immediate destination ID for rendered files")
	pflag.Parse()

	cfg, err := config.Build(*cfgFile, pflag.CommandLine)
	if err != nil {
		logger.Fatal("config error", "err", err)
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	srv := server.New(cfg, logger)
	addr := fmt.Sprintf("0.0.0.0:%s", *port)
	logger.Info("starting server", "addr", addr)
	if err := srv.Start(addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
