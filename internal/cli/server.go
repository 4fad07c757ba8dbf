package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"mission-quiz-service/internal/app"
	"mission-quiz-service/internal/catalog"
	"mission-quiz-service/internal/config"
	"mission-quiz-service/internal/infra/memory"
	pgstore "mission-quiz-service/internal/infra/postgres"
	"mission-quiz-service/internal/infra/rabbitmq"
	rediscache "mission-quiz-service/internal/infra/redis"
	"mission-quiz-service/internal/platform/logger"
	transport "mission-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

type persistence interface {
	app.Store
	app.PlayerStore
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, log, err := loadRuntime(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	missionCatalog, err := catalog.Default()
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var (
		loader memory.MissionLoader = memory.NewCatalogLoader(missionCatalog)
		store  persistence          = memory.NewStore()
	)
	if cfg.Postgres.URL != "" {
		db, err := openBun(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := migrateDB(ctx, db, log); err != nil {
			return err
		}
		if err := seedIfEmpty(ctx, db, missionCatalog, log); err != nil {
			return err
		}

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		loader = pgstore.NewMissionLoader(pool)
		store = pgstore.NewStore(db)
		log.Info("using postgres persistence")
	} else {
		log.Warn("postgres not configured, progress is kept in memory")
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	missionTTL := config.TTLDuration(cfg.Missions.TTL, 10*time.Minute)

	var missions app.MissionRepository
	var sessions app.SessionRepository
	if redisClient != nil {
		missions = rediscache.NewMissionRepository(redisClient, loader, missionTTL)
		sessions = rediscache.NewSessionStore(redisClient, redisTTL)
	} else {
		missions = memory.NewMissionRepository(loader, missionTTL)
		sessions = memory.NewSessionStore()
	}

	var events app.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		publisher, err := rabbitmq.Dial(cfg.RabbitMQ.URL, cfg.QueueName())
		if err != nil {
			log.Warn("rabbitmq unavailable, completion events disabled", "error", err)
		} else {
			defer publisher.Close()
			events = publisher
		}
	}

	service := app.NewGameService(sessions, missions, store, store, events, log)
	router := transport.NewRouter(
		transport.NewAPIHandler(service, log),
		transport.NewWSHandler(service, missionCatalog, log),
	)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting mission quiz service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func seedIfEmpty(ctx context.Context, db pgstore.DB, c *catalog.Catalog, log *logger.Logger) error {
	n, err := pgstore.CountMissions(ctx, db)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	seeded, err := pgstore.SeedMissions(ctx, db, c.Missions())
	if err != nil {
		return err
	}
	log.Info("seeded empty missions table from embedded catalog", "count", seeded)
	return nil
}
