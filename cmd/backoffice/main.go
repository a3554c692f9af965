// Command backoffice serves the back-office administration screens in front of
// the upstream REST service.
//
// @title        Back office gateway
// @version      1.0
// @description  JSON endpoints of the back-office gateway.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/mboutique/backoffice/internal/api"
	"github.com/mboutique/backoffice/internal/core/domain"
	"github.com/mboutique/backoffice/internal/core/ports"
	"github.com/mboutique/backoffice/internal/core/service"
	"github.com/mboutique/backoffice/internal/infrastructure/db/memory"
	"github.com/mboutique/backoffice/internal/infrastructure/db/mongo"
	"github.com/mboutique/backoffice/internal/infrastructure/db/redis"
	"github.com/mboutique/backoffice/internal/infrastructure/rest"
	"github.com/mboutique/backoffice/internal/pkg/config"
	"github.com/mboutique/backoffice/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Dev()})

	ctx := context.Background()

	// Session backend
	var (
		kv  ports.KeyValueOpener
		rdb *goredis.Client
		mdb *gomongo.Client
	)
	switch cfg.Session.Backend {
	case "mongo":
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			log.Fatal().Err(err).Msg("connect mongo")
		}
		mdb = client
		if kv, err = mongo.NewSessionKV(ctx, db, cfg.Session.TTL); err != nil {
			log.Fatal().Err(err).Msg("init mongo sessions")
		}
	case "redis":
		var err error
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		kv = redis.NewSessionKV(rdb, cfg.Session.TTL)
	default:
		kv = memory.NewSessionKV()
	}

	// Upstream clients
	restLog := rest.WithLogger(logger.For("rest"))
	auth := rest.NewAuthClient(cfg.APIURL, restLog)
	typeProduits := rest.NewClient[domain.TypeProduit](cfg.APIURL, "type-produits", restLog)

	sessions := service.NewSessionManager(kv, auth, logger.For("session"))

	e, err := api.NewRouter(api.Deps{
		Config:       cfg,
		Log:          log,
		Sessions:     sessions,
		TypeProduits: typeProduits,
		Upstream:     typeProduits,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build router")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().Str("addr", srv.Addr).Str("api_url", cfg.APIURL).Str("sessions", cfg.Session.Backend).Msg("starting backoffice")

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if mdb != nil {
		_ = mdb.Disconnect(shutdownCtx)
	}
	log.Info().Msg("stopped")
}
