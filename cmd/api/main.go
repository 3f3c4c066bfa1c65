package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/district-compass/school-search-api/internal/adapters/arcgis"
	"github.com/district-compass/school-search-api/internal/adapters/httpapi"
	memsource "github.com/district-compass/school-search-api/internal/adapters/memory/featuresource"
	memquerylog "github.com/district-compass/school-search-api/internal/adapters/memory/querylog"
	"github.com/district-compass/school-search-api/internal/adapters/postgres"
	pgquerylog "github.com/district-compass/school-search-api/internal/adapters/postgres/querylog"
	"github.com/district-compass/school-search-api/internal/app/search"
	"github.com/district-compass/school-search-api/internal/app/sessions"
	platformclock "github.com/district-compass/school-search-api/internal/platform/clock"
	"github.com/district-compass/school-search-api/internal/platform/config"
	"github.com/district-compass/school-search-api/internal/platform/logging"
	"github.com/district-compass/school-search-api/internal/ports/out/featuresource"
	querylogport "github.com/district-compass/school-search-api/internal/ports/out/querylog"
)

func main() {
	_ = godotenv.Load()
	log := logging.Setup()

	srvCfg, err := config.LoadServerConfigFromEnv()
	if err != nil {
		fatal(log, "invalid server config", err)
	}

	clk := platformclock.NewSystemClock()

	// Source backend:
	// - arcgis (default): the two real feature services, configured via env
	// - fixture: built-in demo dataset, no upstream connectivity needed
	var (
		searchCfg       config.SearchConfig
		districtSources []featuresource.Source
		schoolSources   []featuresource.Source
	)
	switch getenv("SOURCE_BACKEND", "arcgis") {
	case "fixture":
		searchCfg, err = config.LoadFixtureSearchConfigFromEnv()
		if err != nil {
			fatal(log, "invalid search config", err)
		}
		districtSources = []featuresource.Source{
			memsource.NewSource("fixture-districts", "NAME", "", memsource.DemoDistricts()),
		}
		schoolSources = []featuresource.Source{
			memsource.NewSource("fixture-schools", "NAME", "LEAID", memsource.DemoSchools()),
		}
	default:
		searchCfg, err = config.LoadSearchConfigFromEnv()
		if err != nil {
			fatal(log, "invalid search config", err)
		}
		httpClient := &http.Client{Timeout: searchCfg.HTTPTimeout}
		for _, lc := range searchCfg.DistrictLayers {
			districtSources = append(districtSources, arcgis.New(lc, httpClient, log))
		}
		for _, lc := range searchCfg.SchoolLayers {
			schoolSources = append(schoolSources, arcgis.New(lc, httpClient, log))
		}
	}

	var queryLog querylogport.Store
	switch getenv("QUERYLOG_BACKEND", "memory") {
	case "postgres":
		pool, err := postgres.NewPool(context.Background(), os.Getenv("DATABASE_URL"), postgres.PoolOptions{})
		if err != nil {
			fatal(log, "invalid postgres config", err)
		}
		defer pool.Close()
		queryLog = pgquerylog.NewStore(pool)
	default:
		queryLog = memquerylog.NewStore()
	}

	executor := search.NewExecutor(districtSources, schoolSources, queryLog, clk, log)
	executor.MinQueryLength = searchCfg.MinQueryLength
	executor.DistrictRecordCap = searchCfg.DistrictRecordCap
	executor.SchoolRecordCap = searchCfg.SchoolRecordCap

	registry := sessions.NewRegistry(func() *search.Session {
		return search.NewSession(executor, search.SessionConfig{
			DebounceInterval: searchCfg.DebounceInterval,
			MinQueryLength:   searchCfg.MinQueryLength,
		}, log)
	}, clk, log, srvCfg.SessionTTL)
	defer registry.Close()

	api := httpapi.NewServer(executor, registry, queryLog, srvCfg.MapAPIKey, log)
	handler := httpapi.NewRouter(api, log, srvCfg.APIToken)

	srv := &http.Server{
		Addr:              ":" + srvCfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go registry.RunSweeper(ctx, time.Minute)

	go func() {
		log.Info("api listening", "port", srvCfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal(log, "listen", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "err", err)
	os.Exit(1)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
