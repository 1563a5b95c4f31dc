package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasknest.org/internal/auth"
	"tasknest.org/internal/config"
	"tasknest.org/internal/httpapi"
	"tasknest.org/internal/obs"
	"tasknest.org/internal/store/pg"
	"tasknest.org/internal/todo"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	var (
		users     auth.UserStore
		todoStore todo.Store
		probe     httpapi.ReadyProbe
		pgStore   *pg.Store
	)
	if cfg.DatabaseDSN != "" {
		pgStore, err = pg.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		users = auth.NewPGStore(pgStore.DB())
		todoStore = pgStore
		probe = httpapi.ReadyProbe{DB: pgStore.DB()}
	} else {
		log.Println("TASKNEST_PG_DSN not set, using in-memory stores")
		users = auth.NewMemoryStore()
		todoStore = todo.NewInMemory()
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, auth.WithAccessTTL(cfg.AccessTokenTTL()))
	authSvc := auth.NewService(users, tokens)
	resolver := auth.NewResolver(users)
	todoSvc := todo.NewService(todoStore)

	api := httpapi.New(httpapi.Options{
		Auth:       authSvc,
		Resolver:   resolver,
		Todos:      todoSvc,
		ReadyProbe: probe,
		Version:    version,
		RateBurst:  cfg.RateBurst,
		RatePerSec: cfg.RatePerSec,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting tasknest-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if pgStore != nil {
		_ = pgStore.Close()
	}
	log.Println("Stopped")
}
