package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KmNeetuSingh/Exam-Proctor/internal/cache"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/config"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/db"
	httpx "github.com/KmNeetuSingh/Exam-Proctor/internal/http"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/observability"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/storage"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/verify"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	// tracing
	shutdownTracer, err := observability.InitTracer(context.Background(), "exam-proctor", cfg.OTLPEndpoint)

	if err != nil {
		log.Warn("tracing disabled", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	// database
	if err := db.RunMigrations(cfg.DBURL); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connection failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	seedCtx, seedCancel := config.WithTimeout(5 * time.Second)
	if err := db.EnsureProctorUser(seedCtx, pool, cfg); err != nil {
		log.Error("proctor seed failed", "err", err)
		seedCancel()
		os.Exit(1)
	}
	seedCancel()

	// exam reads are cached briefly; redis is optional
	examCache := cache.New(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, "exams:", 30*time.Second)

	defer examCache.Close()

	uploads, err := storage.NewUploadStore(cfg.UploadDir)

	if err != nil {
		log.Error("upload dir setup failed", "err", err)
		os.Exit(1)
	}

	promReg := prometheus.NewRegistry()
	prom := observability.NewProm(promReg)

	router := httpx.NewRouter(cfg, httpx.Deps{
		Log:      log,
		Pool:     pool,
		Cache:    examCache,
		Uploads:  uploads,
		Verifier: verify.NewSimulatedVerifier(),
		Prom:     prom,
		PromReg:  promReg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	ctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}

	if err := shutdownTracer(ctx); err != nil {
		log.Error("tracer shutdown failed", "err", err)
	}

	log.Info("shutdown complete")
}
