package main

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xrplist/warden/adapters/events"
	"github.com/xrplist/warden/adapters/store"
	"github.com/xrplist/warden/adapters/tokenizer"
	"github.com/xrplist/warden/internal/config"
	"github.com/xrplist/warden/ports"
	"github.com/xrplist/warden/service"
	"github.com/xrplist/warden/transport/http"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx := context.Background()

	var (
		challenges  ports.ChallengeStore
		admins      ports.AdminStore
		allowlist   ports.AllowlistStore
		collections ports.CollectionStore
	)

	if cfg.DatabaseURL != "" {
		pool, err := store.NewPostgresPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pool.Close()

		if err := store.RunMigrations(ctx, pool, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}

		pg := store.NewPostgresStore(pool)
		challenges, admins, allowlist, collections = pg, pg, pg, pg
	} else {
		mem := store.NewMemoryStore()
		challenges, admins, allowlist, collections = mem, mem, mem, mem
	}

	eventPub := events.NewNopPublisher()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("failed to parse redis URL", zap.Error(err))
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			log.Fatal("failed to create event publisher", zap.Error(err))
		}
		eventPub = events.NewWatermillPublisher(publisher)

		// With Redis available, challenges live there so that replicas share
		// one challenge namespace even when Postgres is absent.
		if cfg.DatabaseURL == "" {
			challenges = store.NewRedisChallengeStore(redisClient)
		}
	}

	jwtTokenizer := tokenizer.NewJWTTokenizer([]byte(cfg.JWTSecret), cfg.AccessTTL)

	authService := service.NewAuthService(challenges, admins, jwtTokenizer, eventPub, cfg.Domain, cfg.ChallengeTTL, log)
	adminService := service.NewAdminService(admins, eventPub, log)
	registryService := service.NewRegistryService(allowlist, collections, log)

	if cfg.SuperAdminWallet != "" {
		if err := adminService.Bootstrap(ctx, cfg.SuperAdminWallet); err != nil {
			log.Fatal("failed to bootstrap super admin", zap.Error(err))
		}
	}

	router := http.SetupRouter(authService, adminService, registryService, log)

	log.Info("starting server", zap.String("addr", cfg.ListenAddr))
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
