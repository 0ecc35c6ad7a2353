package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/qgclink/internal/config"
	"github.com/banshee-data/qgclink/internal/diag"
	"github.com/banshee-data/qgclink/internal/version"
)

var (
	configPath  = flag.String("config", "", "Path to a JSON or YAML config file (defaults apply when empty)")
	devMode     = flag.Bool("dev", false, "Drive the downlink from the built-in helicopter simulation")
	adminListen = flag.String("admin-listen", "", "Admin HTTP listen address, overrides admin_listen from the config")
	verbose     = flag.Bool("v", false, "Log day-to-day diagnostics")
	traceSends  = flag.Bool("trace", false, "Log every packet sent")
	showVersion = flag.Bool("version", false, "Print the version and exit")
)

// simStep is the simulation tick in dev mode.
const simStep = 20 * time.Millisecond

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Empty()
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	for _, w := range cfg.SlowStreams() {
		log.Printf("warning: %s", w)
	}
	log.Printf("starting %s", version.String())

	logs := diag.LogWriters{Ops: os.Stderr}
	if path := cfg.GetLogFile(); path != "" {
		f, err := diag.NewRotatingFile(path, diag.DefaultRotateOptions())
		if err != nil {
			log.Fatalf("failed to open log file: %v", err)
		}
		defer f.Close()
		logs.Ops = f
	}
	if *verbose {
		logs.Diag = logs.Ops
	}
	if *traceSends {
		logs.Trace = logs.Ops
	}

	a, err := newApp(cfg, *devMode, logs)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer a.Close()

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.heli != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.heli.Run(ctx, nil, simStep); err != nil && err != context.Canceled {
				log.Printf("simulation stopped: %v", err)
			}
			log.Print("simulation routine terminated")
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.sender.Run(ctx); err != nil {
			log.Printf("downlink stopped: %v", err)
			stop()
		}
		log.Print("downlink routine terminated")
	}()

	listen := cfg.GetAdminListen()
	if *adminListen != "" {
		listen = *adminListen
	}
	if listen != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveAdmin(ctx, listen, a.adminMux())
		}()
	}

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

func serveAdmin(ctx context.Context, listen string, mux *http.ServeMux) {
	server := &http.Server{
		Addr:    listen,
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("admin server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down admin server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("admin server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("admin server force close error: %v", err)
		}
	}
	log.Printf("admin server routine stopped")
}
