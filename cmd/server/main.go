// Command server runs the health-authority user registry API.
//
//	@title						Health Registry API
//	@version					1.0
//	@description				User registration and bearer-token authentication.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/healthid/registry/internal/api"
	"github.com/healthid/registry/internal/core/ports"
	"github.com/healthid/registry/internal/core/service"
	"github.com/healthid/registry/internal/infrastructure/config"
	"github.com/healthid/registry/internal/infrastructure/db/mongo"
	"github.com/healthid/registry/internal/infrastructure/db/postgres"
	"github.com/healthid/registry/internal/infrastructure/db/redis"
	httpserver "github.com/healthid/registry/internal/infrastructure/http"
	"github.com/healthid/registry/internal/infrastructure/http/handlers"
	"github.com/healthid/registry/internal/infrastructure/password"
	"github.com/healthid/registry/internal/infrastructure/token"
	"github.com/healthid/registry/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx, nil)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "health-registry",
	})

	readiness := map[string]handlers.Pinger{}

	repo, closeStore, err := openStore(ctx, cfg, log, readiness)
	if err != nil {
		return err
	}
	defer closeStore()

	var throttle ports.LoginThrottle
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		throttle = redis.NewLoginThrottle(rdb, cfg.Login.MaxFailures, cfg.Login.FailureWindow)
		readiness["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("login throttle enabled")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, login throttle disabled")
	}

	tokens, err := token.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	hasher := password.NewBcryptHasher(cfg.BcryptCost)

	authService := service.NewAuthService(repo, hasher, tokens, throttle, log)

	router := api.NewRouter(api.Deps{
		AuthService:   authService,
		TokenVerifier: tokens,
		Readiness:     readiness,
		CORSOrigins:   splitOrigins(cfg.CORSOrigin),
		Logger:        log,
	})

	return httpserver.NewServer(router, cfg.Port, log).Run(ctx)
}

func openStore(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
	readiness map[string]handlers.Pinger,
) (ports.UserRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = db.Client().Disconnect(context.Background()) }

		repo := mongo.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		readiness["mongodb"] = handlers.PingFunc(mongo.Ping(db))
		log.Info().Str("database", cfg.Mongo.Database).Msg("using mongo credential store")
		return repo, closeFn, nil

	default:
		db, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = db.Close() }

		if err := postgres.Migrate(ctx, db); err != nil {
			closeFn()
			return nil, nil, err
		}
		readiness["postgres"] = handlers.PingFunc(db.PingContext)
		log.Info().Msg("using postgres credential store")
		return postgres.NewUserRepository(db), closeFn, nil
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
