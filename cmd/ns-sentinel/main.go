package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NetSentra/internal/ai"
	"NetSentra/internal/alert"
	"NetSentra/internal/api"
	"NetSentra/internal/capture"
	"NetSentra/internal/classifier"
	"NetSentra/internal/config"
	"NetSentra/internal/distributor"
	"NetSentra/internal/export"
	"NetSentra/internal/model"
	"NetSentra/internal/notification"
	"NetSentra/internal/pipeline"
	"NetSentra/internal/probe"
	"NetSentra/internal/tracker"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	flag.Parse()

	log.Println("Starting ns-sentinel...")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	window, err := time.ParseDuration(cfg.Tracker.Window)
	if err != nil {
		log.Fatalf("Invalid tracker window: %v", err)
	}
	sweepInterval, err := time.ParseDuration(cfg.Tracker.SweepInterval)
	if err != nil {
		log.Fatalf("Invalid tracker sweep interval: %v", err)
	}

	// Detection core.
	trk := tracker.New(window, sweepInterval, cfg.Tracker.NumShards)
	cls := classifier.New(cfg.Classifier.PortScanThreshold, cfg.Classifier.ICMPFloodThreshold)
	store := alert.NewStore(cfg.Alerts.LogCapacity)
	dist := distributor.New(cfg.Distributor.QueueCapacity, cfg.Distributor.MaxFailures)

	// Capture sources: the local interface, plus remote probes over NATS
	// when configured.
	var sources []model.Source
	live, err := capture.NewLiveSource(cfg.Capture)
	if err != nil {
		log.Fatalf("Failed to open capture interface: %v", err)
	}
	sources = append(sources, live)

	if cfg.NATS.Enabled {
		remote, err := probe.NewSubscriberSource(cfg.NATS, cfg.Capture.Timeout)
		if err != nil {
			log.Fatalf("Failed to subscribe to remote probes: %v", err)
		}
		sources = append(sources, remote)
	}

	// Alert subscribers.
	hub := api.NewHub()
	dist.Subscribe(hub)

	if cfg.NATS.Enabled {
		pub, err := export.NewNATSPublisher(cfg.NATS)
		if err != nil {
			log.Fatalf("Failed to create NATS alert publisher: %v", err)
		}
		defer pub.Close()
		dist.Subscribe(pub)
	}

	if cfg.ClickHouse.Enabled {
		archiver, err := export.NewArchiver(cfg.ClickHouse)
		if err != nil {
			log.Fatalf("Failed to create ClickHouse archiver: %v", err)
		}
		defer archiver.Close()
		dist.Subscribe(archiver)
	}

	if cfg.Notify.Enabled {
		var notifiers []model.Notifier
		if cfg.SMTP.Host != "" {
			notifiers = append(notifiers, notification.NewEmailNotifier(cfg.SMTP))
		}
		if cfg.Webhook.URL != "" {
			notifiers = append(notifiers, notification.NewWebhookNotifier(cfg.Webhook))
		}

		var analyzer model.Analyzer
		if cfg.AI.Enabled {
			analyzer, err = ai.NewIncidentAnalyzer(&cfg.AI)
			if err != nil {
				log.Printf("AI analysis disabled: %v", err)
			}
		}

		if len(notifiers) > 0 {
			bridge := notification.NewBridge(notifiers, analyzer, model.Severity(cfg.Notify.MinSeverity))
			dist.Subscribe(bridge)
			log.Printf("Notifications enabled for severity >= %s across %d channel(s).", cfg.Notify.MinSeverity, len(notifiers))
		} else {
			log.Println("Notifications are enabled in config, but no channels are configured.")
		}
	}

	// Ingestion pipeline.
	pipe := pipeline.New(trk, cls, store, dist, sources)
	trk.Start()
	if err := pipe.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}

	// HTTP API.
	server := api.NewServer(cfg.API, pipe, trk, store, hub)
	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	// Wait for a shutdown signal for graceful shutdown.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, stopping...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("API server forced to shutdown: %v", err)
	}

	if err := pipe.Stop(); err != nil {
		log.Printf("Error stopping pipeline: %v", err)
	}
	trk.Stop()
	for _, src := range sources {
		src.Close()
	}
	dist.Close()
	hub.Close()
	log.Println("Shutdown complete.")
}
