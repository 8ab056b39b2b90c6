package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	quotegateway "github.com/verso-labs/quote-gateway"
	"github.com/verso-labs/quote-gateway/internal/version"
	"github.com/verso-labs/quote-gateway/providers"
)

func main() {
	// Load and validate config if QUOTEGW_CONFIG is set.
	var cfg *quotegateway.Config
	if cfgPath := os.Getenv("QUOTEGW_CONFIG"); cfgPath != "" {
		loaded, err := quotegateway.LoadConfig(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if err := quotegateway.ValidateConfig(*loaded); err != nil {
			log.Fatalf("Invalid config: %v", err)
		}
		cfg = loaded
		log.Printf("Config loaded: strategy=%s, targets=%d", cfg.Strategy.Mode, len(cfg.Targets))
	}

	registry := buildRegistry()
	if len(registry.List()) == 0 {
		log.Fatal("No providers configured")
	}

	if cfg == nil {
		defaultTargets := make([]quotegateway.Target, 0, len(registry.List()))
		for _, name := range registry.List() {
			defaultTargets = append(defaultTargets, quotegateway.Target{Provider: name})
		}
		cfg = &quotegateway.Config{
			Strategy: quotegateway.StrategyConfig{Mode: quotegateway.ModeFallback},
			Targets:  defaultTargets,
		}
		log.Printf("No QUOTEGW_CONFIG set; using default strategy=%s with %d target(s)", cfg.Strategy.Mode, len(cfg.Targets))
	}

	gw, err := quotegateway.New(*cfg)
	if err != nil {
		log.Fatalf("Failed to create gateway: %v", err)
	}
	defer func() { _ = gw.Close() }()
	for _, name := range registry.List() {
		if p, ok := registry.Get(name); ok {
			gw.RegisterProvider(p)
		}
	}

	r := newRouter(gw)

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Println("Shutting down gracefully…")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("quote-gateway %s listening on %s (%d provider(s))", version.Short(), addr, len(registry.List()))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stop()
		log.Fatalf("Server error: %v", err) //nolint:gocritic
	}
	log.Println("Server stopped.")
}

// buildRegistry registers the keyless archive providers unconditionally and
// the OpenAI-backed generator when an API key is present. Base URLs can be
// overridden per provider for testing against fakes.
func buildRegistry() *providers.Registry {
	registry := providers.NewRegistry()

	if os.Getenv("QUOTEGW_DISABLE_KANYE") == "" {
		p, err := providers.NewKanye(os.Getenv("KANYE_BASE_URL"))
		if err != nil {
			log.Fatalf("kanye provider: %v", err)
		}
		registry.Register(p)
		log.Println("Provider registered: kanye")
	}
	if os.Getenv("QUOTEGW_DISABLE_QUOTABLE") == "" {
		p, err := providers.NewQuotable(os.Getenv("QUOTABLE_BASE_URL"))
		if err != nil {
			log.Fatalf("quotable provider: %v", err)
		}
		registry.Register(p)
		log.Println("Provider registered: quotable")
	}
	if os.Getenv("QUOTEGW_DISABLE_TRONALD") == "" {
		p, err := providers.NewTronald(os.Getenv("TRONALD_BASE_URL"))
		if err != nil {
			log.Fatalf("tronald provider: %v", err)
		}
		registry.Register(p)
		log.Println("Provider registered: tronald")
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		p, err := providers.NewOpenAI(key, os.Getenv("OPENAI_BASE_URL"), os.Getenv("OPENAI_MODEL"))
		if err != nil {
			log.Fatalf("openai provider: %v", err)
		}
		registry.Register(p)
		log.Println("Provider registered: openai")
	}

	return registry
}
