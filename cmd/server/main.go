package main

import (
	"context"
	"database/sql"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"corridor_dispatch/internal/api"
	"corridor_dispatch/internal/auth"
	"corridor_dispatch/internal/config"
	"corridor_dispatch/internal/journal"
	"corridor_dispatch/internal/sim"
)

const memoryJournalLimit = 1000

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sinks, db := buildSinks(ctx, cfg)
	if db != nil {
		defer db.Close()
	}
	dispatcher := journal.NewDispatcher(cfg.JournalBuffer, sinks...)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	engine := sim.NewEngine(sim.Options{
		TickInterval:     cfg.TickInterval,
		EventLogCapacity: cfg.EventLogCapacity,
		Rand:             rand.New(rand.NewSource(seed)),
		Recorder:         dispatcher,
	})
	if cfg.Autostart {
		engine.StartSimulation()
	}

	authn := auth.New(cfg.JWTSecret)
	if !authn.Enabled() {
		log.Printf("[startup] CORRIDOR_JWT_SECRET not set; operator routes are unauthenticated")
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.New(engine, authn),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Corridor dispatch listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	waitForShutdown(cancel, httpServer)

	engine.StopSimulation()
	if err := dispatcher.Close(); err != nil {
		log.Printf("journal close: %v", err)
	}
}

// buildSinks enables each journal sink whose settings are present. The
// memory sink is always on.
func buildSinks(ctx context.Context, cfg config.Config) ([]journal.Sink, *sql.DB) {
	sinks := []journal.Sink{journal.NewMemorySink(memoryJournalLimit)}
	var db *sql.DB

	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(30 * time.Minute)

		pg := journal.NewPGSink(db)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := pg.Ping(pingCtx); err != nil {
			log.Fatalf("db ping: %v", err)
		}
		if err := pg.EnsureSchema(pingCtx); err != nil {
			log.Fatalf("db schema: %v", err)
		}
		sinks = append(sinks, pg)
		log.Printf("[startup] journal: postgres enabled")
	}

	if len(cfg.KafkaBrokers) > 0 {
		ks, err := journal.NewKafkaSink(journal.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			log.Fatalf("kafka sink init: %v", err)
		}
		sinks = append(sinks, ks)
		log.Printf("[startup] journal: kafka enabled (topic=%s)", cfg.KafkaTopic)
	}

	if cfg.S3Bucket != "" {
		arch, err := journal.NewS3Archiver(ctx, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			log.Fatalf("s3 archiver init: %v", err)
		}
		sinks = append(sinks, arch)
		log.Printf("[startup] journal: s3 run archive enabled (bucket=%s)", cfg.S3Bucket)
	}

	return sinks, db
}

func waitForShutdown(cancel context.CancelFunc, srv *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancel()
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
