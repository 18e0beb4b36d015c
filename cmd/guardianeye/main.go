package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/guardianeye/guardianeye/internal/config"
	"github.com/guardianeye/guardianeye/internal/detect"
	"github.com/guardianeye/guardianeye/internal/phishguard"
	"github.com/guardianeye/guardianeye/internal/rules"
	"github.com/guardianeye/guardianeye/internal/safebrowsing"
	"github.com/guardianeye/guardianeye/internal/server"
)

func main() {
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "guardianeye.yaml", "Path to config file")
	flag.Parse()

	_ = godotenv.Load() // silently ignore if .env is missing in prod

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *addrFlag != "" {
		cfg.Server.Addr = *addrFlag
	}

	opts := detect.Options{
		ExtractURLs:         rules.ExtractURLs,
		AnnotateUnavailable: cfg.Degradation.Annotate,
	}

	if cfg.Rules.Disabled {
		log.Printf("rules: disabled via config")
	} else {
		opts.RuleText = rules.CheckText
		opts.RuleURL = rules.CheckURL
	}

	if cfg.Model.Disabled {
		log.Printf("phishguard: disabled via config; running without ML classifier")
	} else {
		model, err := phishguard.Load(cfg.Model.BundleDir, cfg.Model.SeqLen)
		if err != nil {
			// The collector stays in the signal set, reporting
			// unavailable per request, so degradation is observable.
			log.Printf("phishguard: model load failed: %v; ML signals will be unavailable", err)
			opts.Classifier = phishguard.Unavailable{Err: err}
		} else {
			log.Printf("phishguard: model loaded from %s", cfg.Model.BundleDir)
			opts.Classifier = model
		}
	}

	apiKey := os.Getenv(cfg.SafeBrowsing.APIKeyEnv)
	if apiKey == "" {
		log.Printf("safebrowsing: %s not set; URL reputation checks disabled", cfg.SafeBrowsing.APIKeyEnv)
	} else {
		client, err := safebrowsing.New(safebrowsing.Config{
			APIKey:         apiKey,
			Endpoint:       cfg.SafeBrowsing.Endpoint,
			MinInterval:    time.Duration(cfg.SafeBrowsing.MinIntervalSeconds) * time.Second,
			RequestTimeout: time.Duration(cfg.SafeBrowsing.RequestTimeoutSeconds) * time.Second,
		})
		if err != nil {
			log.Fatalf("safebrowsing: %v", err)
		}
		opts.Reputation = client
	}

	engine := detect.New(opts)
	srv := server.New(cfg, engine)

	log.Printf("GuardianEye starting with sources %v", engine.Sources())
	if err := srv.Start(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
