package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/cryptopulse/cryptopulse/internal/api"
	"github.com/cryptopulse/cryptopulse/internal/cache"
	"github.com/cryptopulse/cryptopulse/internal/config"
	"github.com/cryptopulse/cryptopulse/internal/credential"
	"github.com/cryptopulse/cryptopulse/internal/gateway"
	"github.com/cryptopulse/cryptopulse/internal/gateway/gemini"
	"github.com/cryptopulse/cryptopulse/internal/gateway/openai"
	"github.com/cryptopulse/cryptopulse/internal/market"
	"github.com/cryptopulse/cryptopulse/internal/publisher/telegram"
	"github.com/cryptopulse/cryptopulse/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	setupKey := flag.String("setup-key", "", "persist the given API key to the key file and exit")
	flag.Parse()

	// .env is optional; real env vars win.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Logging)

	resolver := credential.NewResolver(cfg.Credential.KeyFile)

	// One-time setup flow: store a user-entered key and stop.
	if *setupKey != "" {
		if err := resolver.Persist(*setupKey); err != nil {
			log.WithError(err).Fatal("persist API key")
		}
		log.WithField("key_file", cfg.Credential.KeyFile).Info("API key saved")
		return
	}

	if _, err := resolver.Resolve(); err != nil {
		log.Warn("no API credential configured yet; gateway calls will fail until one is set")
	}

	var gw gateway.Client
	switch cfg.Gateway.Provider {
	case "openai":
		gw = openai.New(resolver, cfg.Gateway.TextModel)
	default:
		gw = gemini.New(resolver, gemini.Config{
			BaseURL:    cfg.Gateway.BaseURL,
			TextModel:  cfg.Gateway.TextModel,
			ImageModel: cfg.Gateway.ImageModel,
			Timeout:    cfg.Gateway.Timeout,
			MaxRetries: cfg.Gateway.MaxRetries,
			RetryWait:  cfg.Gateway.RetryWait,
		}, log)
	}

	var snapCache service.SnapshotCache
	if cfg.Cache.Enabled {
		c, err := cache.New(cache.Config{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      cfg.Cache.TTL,
		}, log)
		if err != nil {
			log.WithError(err).Fatal("connect snapshot cache")
		}
		defer c.Close()
		snapCache = c
	}

	var ticker service.ContextProvider
	if cfg.Market.Enabled {
		ticker = market.NewBinanceProvider(cfg.Market.APIKey, cfg.Market.SecretKey)
	}

	var pub service.Publisher
	if cfg.Telegram.Enabled {
		p, err := telegram.New(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.WithError(err).Fatal("create telegram publisher")
		}
		pub = p
	}

	dashboard := service.New(gw, snapCache, ticker, pub, log)

	server := api.NewServer(&api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimitRPS:    cfg.Server.RateLimitRPS,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
	}, dashboard, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Fatal("api server failed")
		}
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
		if err := server.Shutdown(context.Background()); err != nil {
			log.WithError(err).Error("shutdown")
		}
	}
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}
