package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tazhibayda/identity-service/docs"
	"github.com/tazhibayda/identity-service/internal/config"
	api "github.com/tazhibayda/identity-service/internal/http"
	"github.com/tazhibayda/identity-service/internal/images"
	applog "github.com/tazhibayda/identity-service/internal/log"
	"github.com/tazhibayda/identity-service/internal/metrics"
	"github.com/tazhibayda/identity-service/internal/oauth"
	"github.com/tazhibayda/identity-service/internal/queue"
	"github.com/tazhibayda/identity-service/internal/repo"
	"github.com/tazhibayda/identity-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := applog.Init(cfg.Env == "production")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer store.Close(context.Background())

	if err := store.EnsureUserIndexes(ctx); err != nil {
		log.Fatalf("mongo indexes: %v", err)
	}

	var rds *repo.Redis
	if cfg.RedisAddr != "" {
		rds = repo.NewRedis(cfg.RedisAddr)
		defer rds.Close()
	}

	pub := queue.NewNoop()
	if cfg.RabbitURL != "" {
		pub, err = queue.NewRabbit(cfg.RabbitURL, cfg.EventsExchange)
		if err != nil {
			log.Fatalf("rabbit connect: %v", err)
		}
	}
	defer pub.Close()

	metrics.MustRegister()

	bridge := oauth.NewGitHub(cfg.GithubClientID, cfg.GithubClientSecret)
	idn := service.NewIdentity(store, images.NewMemory(), bridge, logger,
		cfg.JWTSecret, time.Duration(cfg.AccessTTLMin)*time.Minute, cfg.DefaultAvatarURL)

	h := api.NewHandler(idn, cfg.JWTSecret, store, rds, cfg.RateLimitPerMin, pub, cfg.EventsExchange)
	r := api.NewRouter(h, logger)

	srvErr := make(chan error, 1)
	go func() { srvErr <- r.Run(":" + cfg.Port) }()

	log.Printf("identity-service listening on :%s", cfg.Port)

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("signal: %s, shutting down", s)
	case err := <-srvErr:
		log.Printf("server error: %v", err)
	}
}
