package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/AvalonLA/atelier/config"
	"github.com/AvalonLA/atelier/internal/adminapi"
	"github.com/AvalonLA/atelier/internal/app"
	"github.com/AvalonLA/atelier/internal/shopapi"
	"github.com/AvalonLA/atelier/internal/webserver"
)

var (
	cfile   = flag.String("c", "atelier.yml", "config file")
	initdb  = flag.Bool("initdb", false, "drop and recreate all tables")
	showVer = flag.Bool("v", false, "print version and exit")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("atelier", version)
		return
	}

	cfg := config.LoadConfig(*cfile)
	if err := os.MkdirAll(cfg.System.Workdir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "workdir error: %v\n", err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	webserver.Init(application)
	adminapi.Boot()
	shopapi.Boot()

	done := make(chan error, 1)
	go func() {
		done <- webserver.Listen()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-done:
		if err != nil {
			zap.L().Error("web server stopped", zap.Error(err))
		}
	case s := <-sig:
		zap.L().Info("shutting down", zap.String("signal", s.String()))
		webserver.Shutdown()
	}
}
