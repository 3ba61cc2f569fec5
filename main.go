package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/synoptic.report/api"
	"github.com/banshee-data/synoptic.report/db"
	"github.com/banshee-data/synoptic.report/internal/config"
	"github.com/banshee-data/synoptic.report/internal/gridstore"
	"github.com/banshee-data/synoptic.report/internal/version"
)

var (
	devMode       = flag.Bool("dev", false, "Run in dev mode (mounts admin debug routes)")
	listen        = flag.String("listen", ":8080", "Listen address")
	dbPath        = flag.String("db", "density_grids.db", "Path to the grid database")
	configPath    = flag.String("config", "", "Path to a tuning config JSON (optional)")
	migrationsDir = flag.String("migrations", "migrations", "Path to the migrations directory")
)

func main() {
	flag.Parse()

	log.Printf("synoptic-density %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if err := database.MigrateUp(*migrationsDir); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if version, dirty, err := database.MigrateVersion(*migrationsDir); err == nil {
		log.Printf("database schema at version %d (dirty=%v)", version, dirty)
	}

	store := gridstore.NewGridStore(database.DB)
	apiServer := api.NewServer(cfg, store)

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// Admin debugging routes are for dev machines or tailnet-only
		// deployments; keep them off the open internet.
		if *devMode {
			database.AttachAdminRoutes(mux)
		}

		mux.Handle("/api/", http.StripPrefix("/api", apiServer.ServeMux()))
		mux.HandleFunc("/health", apiServer.HandleHealth)

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("got request %q", r.URL.Path)
			mux.ServeHTTP(w, r)
		})

		server := &http.Server{
			Addr:    *listen,
			Handler: h,
		}

		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()
		log.Printf("listening on %s", *listen)

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	wg.Wait()
	os.Exit(0)
}
