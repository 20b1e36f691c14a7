// Command maskd hosts a mask editing session over HTTP.
//
// Gestures are posted as JSON to /events; session signals are streamed
// on /ws; the layers can be fetched as PNG from /layers/{kind}.png and
// /composite.png.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/synanno/maskdraw"
	"github.com/synanno/maskdraw/config"
	"github.com/synanno/maskdraw/gateway"
	"github.com/synanno/maskdraw/notify"
)

func main() {
	var (
		configPath = flag.String("config", "maskd.toml", "config file")
		listen     = flag.String("listen", "", "listen address (overrides config)")
		storeDir   = flag.String("store", "", "local raster store directory (overrides config gateway)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath, *storeDir)
	if err != nil {
		log.Fatal(err)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	maskdraw.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		maskdraw.Logger().Error("maskd stopped", "err", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file. With a store directory the file is
// optional and the directory replaces its gateway.
func loadConfig(path, storeDir string) (config.Config, error) {
	if storeDir == "" {
		return config.Load(path)
	}
	useStore := func(c *config.Config) {
		c.Gateway.URL = ""
		c.Gateway.StoreDir = storeDir
	}
	cfg, err := config.Load(path, useStore)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
		useStore(&cfg)
		return cfg, cfg.Validate()
	}
	return cfg, err
}

// newGateway builds the gateway named by the config. The returned handler
// serves the local store and is nil for a remote gateway.
func newGateway(cfg config.Config) (maskdraw.Gateway, http.Handler, error) {
	if cfg.Gateway.URL != "" {
		gw, err := gateway.NewHTTP(cfg.Gateway.URL,
			gateway.WithClient(&http.Client{Timeout: time.Duration(cfg.Gateway.Timeout)}),
			gateway.WithMaskPrefix(cfg.Gateway.MaskPrefix))
		if err != nil {
			return nil, nil, err
		}
		return gw, nil, nil
	}

	var catalog []maskdraw.Target
	if cfg.Catalog != "" {
		var err error
		if catalog, err = config.LoadCatalog(cfg.Catalog); err != nil {
			return nil, nil, err
		}
	}
	store, err := gateway.NewFileStore(cfg.Gateway.StoreDir, catalog)
	if err != nil {
		return nil, nil, err
	}
	return store, gateway.NewHandler(store, cfg.Gateway.MaskPrefix), nil
}

func run(ctx context.Context, cfg config.Config) error {
	gw, storeHandler, err := newGateway(cfg)
	if err != nil {
		return err
	}
	if cfg.Lookup.CacheSize > 0 {
		gw = gateway.NewCachedGateway(gw, cfg.Lookup.CacheSize, time.Duration(cfg.Lookup.TTL))
	}

	hub := notify.NewHub()
	defer hub.Close()
	opts := append(cfg.SessionOptions(), maskdraw.WithNotifier(hub))
	s := &server{session: maskdraw.NewSession(gw, opts...), hub: hub, maxCanvas: cfg.Canvas.MaxSize}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.routes(storeHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.MDNS.Enabled {
		adv, err := advertise(cfg.MDNS, cfg.Listen)
		if err != nil {
			maskdraw.Logger().Warn("mdns disabled", "err", err)
		} else {
			defer adv.Shutdown()
		}
	}

	errc := make(chan error, 1)
	go func() {
		maskdraw.Logger().Info("listening", "addr", cfg.Listen, "session", s.session.ID().String())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
