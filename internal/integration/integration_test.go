package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"mission-quiz-service/internal/app"
	"mission-quiz-service/internal/catalog"
	"mission-quiz-service/internal/domain"
	pgstore "mission-quiz-service/internal/infra/postgres"
	pgmigrations "mission-quiz-service/internal/infra/postgres/migrations"
	infraredis "mission-quiz-service/internal/infra/redis"
	"mission-quiz-service/internal/platform/logger"
)

func TestCompleteMissionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	missionCatalog := catalog.MustDefault()
	db := migrateAndSeed(t, ctx, pgURL, missionCatalog)
	defer db.Close()

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	store := pgstore.NewStore(db)
	missions := infraredis.NewMissionRepository(redisClient, pgstore.NewMissionLoader(pool), 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewGameService(sessions, missions, store, store, nil, logger.Nop())

	mission, ok := missionCatalog.Mission("basics-interface")
	if !ok {
		t.Fatalf("expected basics-interface in catalog")
	}

	if _, err := service.Login(ctx, "player-1", "Ada"); err != nil {
		t.Fatalf("login: %v", err)
	}
	first := playPerfect(t, ctx, service, mission)
	if !first.Perfect || first.Attempts != 1 {
		t.Fatalf("unexpected first result %+v", first)
	}
	wantBadges := map[domain.BadgeType]bool{
		domain.BadgeFirstMission:   true,
		domain.BadgeStreak3:        true,
		domain.BadgePerfectMission: true,
		domain.BadgeFlawlessTheme:  true,
	}
	if len(first.EarnedBadges) != len(wantBadges) {
		t.Fatalf("expected %d badges, got %+v", len(wantBadges), first.EarnedBadges)
	}
	for _, b := range first.EarnedBadges {
		if !wantBadges[b.Type] || b.ID == "" || b.Data.MissionID != mission.ID {
			t.Fatalf("unexpected badge %+v", b)
		}
	}

	second := playPerfect(t, ctx, service, mission)
	if second.Attempts != 2 || len(second.EarnedBadges) != 0 {
		t.Fatalf("expected repeat run without new badges, got %+v", second)
	}

	player, err := store.GetPlayer(ctx, "player-1")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if player.TotalBadges != 4 || player.TotalPoints != first.Score+second.Score {
		t.Fatalf("unexpected player totals %+v", player)
	}

	board, err := service.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 1 || board[0].TotalScore != second.Score || board[0].MissionsCompleted != 1 {
		t.Fatalf("unexpected leaderboard %+v", board)
	}
}

func TestStoreTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	db := migrateAndSeed(t, ctx, pgURL, catalog.MustDefault())
	defer db.Close()
	store := pgstore.NewStore(db)

	if _, err := store.EnsurePlayer(ctx, "player-2", ""); err != nil {
		t.Fatalf("ensure player: %v", err)
	}

	boom := errors.New("boom")
	err := store.RunInTx(ctx, func(ctx context.Context, tx app.Store) error {
		if err := tx.InsertScores(ctx, []domain.Score{{PlayerID: "player-2", MissionID: "m", Points: 10}}); err != nil {
			return err
		}
		if err := tx.UpsertProgress(ctx, domain.Progress{PlayerID: "player-2", MissionID: "m", Completed: true, Attempts: 1}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, found, err := store.GetProgress(ctx, "player-2", "m"); err != nil || found {
		t.Fatalf("expected progress rolled back, found=%v err=%v", found, err)
	}
	var scores int
	if err := db.NewRaw("SELECT count(*) FROM scores WHERE player_id = ?", "player-2").Scan(ctx, &scores); err != nil {
		t.Fatalf("count scores: %v", err)
	}
	if scores != 0 {
		t.Fatalf("expected scores rolled back, got %d", scores)
	}
}

func playPerfect(t *testing.T, ctx context.Context, service *app.GameService, mission domain.Mission) domain.MissionResult {
	t.Helper()
	if _, err := service.StartMission(ctx, "player-1", mission.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i, q := range mission.Questions {
		res, err := service.SubmitAnswer(ctx, "player-1", q.CorrectAnswer, 8)
		if err != nil {
			t.Fatalf("answer %s: %v", q.ID, err)
		}
		if !res.Correct {
			t.Fatalf("expected %s correct", q.ID)
		}
		if i < len(mission.Questions)-1 {
			if _, err := service.NextQuestion(ctx, "player-1"); err != nil {
				t.Fatalf("next: %v", err)
			}
		}
	}
	result, err := service.CompleteMission(ctx, "player-1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	return result
}

func migrateAndSeed(t *testing.T, ctx context.Context, dsn string, c *catalog.Catalog) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pgstore.SeedMissions(ctx, db, c.Missions()); err != nil {
		t.Fatalf("seed missions: %v", err)
	}
	return db
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
