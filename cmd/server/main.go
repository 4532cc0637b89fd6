package main

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/JorgeHRP/renato-bi/pkg/config"
	"github.com/JorgeHRP/renato-bi/pkg/server"
	"github.com/JorgeHRP/renato-bi/pkg/service"
)

func main() {
	cfgFile := pflag.StringP("config", "c", "", "Config file (default is ./config.yaml)")
	config.RegisterFlags(pflag.CommandLine)
	pflag.Parse()

	cfg, err := config.Build(*cfgFile, pflag.CommandLine)
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}
	logger := cfg.NewLogger("renato-bi")

	svc, err := service.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to start", "err", err)
	}
	defer svc.Close()

	srv := server.New(cfg, logger, svc.Ingester, svc.Records, svc.Companies)
	logger.Info("starting server", "addr", cfg.Addr, "store", cfg.Store.Backend)
	if err := srv.Start(cfg.Addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
