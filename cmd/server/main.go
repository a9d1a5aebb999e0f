package main

import (
	"context"
	"flag"
	stdlog "log"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/azalea-web/contact-service/pkg/api"
	"github.com/azalea-web/contact-service/pkg/config"
	"github.com/azalea-web/contact-service/pkg/contact"
	"github.com/azalea-web/contact-service/pkg/mail"
	"github.com/azalea-web/contact-service/pkg/ratelimit"
	"github.com/azalea-web/contact-service/pkg/store"
	"github.com/azalea-web/contact-service/pkg/zoho"
)

// Set via -ldflags "-X main.version=..." at build time.
var version = "dev"

func main() {
	var (
		debug      bool
		configPath string
	)
	flag.BoolVar(&debug, "debug", false, "enable debug level logging")
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONTACT_CONFIG_PATH)")
	flag.Parse()

	zl := setupLogger(debug)
	log := zl.Sugar()
	log.With("version", version).Info("Starting contact service")

	var paths []string
	if configPath != "" {
		paths = append(paths, configPath)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		log.Fatalf("Error loading contact service config: %v", err)
	}

	contacts := store.New(cfg.Store, log)
	sender := mail.NewSender(cfg.Mail, log)
	notifier := mail.NewNotifier(sender, cfg.Mail.OperatorAddress, log)

	tokens := zoho.NewTokenSource(cfg.Zoho, log)
	crm := zoho.NewClient(cfg.Zoho, tokens, log)
	if !cfg.Zoho.Enabled() {
		log.Warnw("Zoho CRM credentials not fully configured; lead sync will report failures")
	}

	orchestrator := contact.NewOrchestrator(contacts, crm, notifier, log)

	limiter := ratelimit.New(ratelimit.DefaultContactConfig())
	defer limiter.Stop()

	server := api.NewServer(log.Desugar(), cfg, debug)
	err = server.RegisterAll([]api.APIController{
		contact.NewController(orchestrator, log, limiter.Middleware()),
	})
	if err != nil {
		log.Fatalf("Error registering contact controllers: %v", err)
	}

	// Warm the store connection and check SMTP reachability off the serving
	// path; the first request establishes both anyway if these fail here.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := contacts.Connect(ctx); err != nil {
			log.Warnw("Store pre-connect failed, will retry on first submission", "error", err)
		}
	}()
	go func() {
		if err := sender.Verify(); err != nil {
			log.Warnw("SMTP verification failed, sends will be retried per submission",
				"host", sender.Host(), "error", err)
		} else {
			log.Infow("SMTP connection verified", "host", sender.Host())
		}
	}()

	server.Listen()
}

func setupLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339))
	}
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		stdlog.Fatalf("failed to set up logger: %v", err)
	}
	return logger
}
