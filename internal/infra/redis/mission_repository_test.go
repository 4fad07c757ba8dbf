package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"mission-quiz-service/internal/catalog"
	"mission-quiz-service/internal/domain"
	"mission-quiz-service/internal/infra/memory"
)

func TestMissionRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{MissionLoader: memory.NewCatalogLoader(catalog.MustDefault())}
	repo := NewMissionRepository(newClient(mr), loader, time.Minute)

	m, err := repo.GetMission(context.Background(), "basics-interface")
	if err != nil {
		t.Fatalf("get mission: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader called once, got %d", loader.count())
	}
	if !mr.Exists("mission:basics-interface") {
		t.Fatalf("expected mission cached in redis")
	}
	if ttl := mr.TTL("mission:basics-interface"); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl with jitter, got %s", ttl)
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetMission(context.Background(), "basics-interface")
	if err != nil {
		t.Fatalf("get cached mission: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.count())
	}
	if len(cached.Questions) != len(m.Questions) {
		t.Fatalf("expected questions to survive the cache")
	}
	for i, q := range cached.Questions {
		if q.CorrectAnswer.Kind() != m.Questions[i].CorrectAnswer.Kind() {
			t.Fatalf("question %s lost its answer shape in cache", q.ID)
		}
	}
}

func TestMissionRepositoryListAndInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{MissionLoader: memory.NewCatalogLoader(catalog.MustDefault())}
	repo := NewMissionRepository(newClient(mr), loader, time.Minute)

	missions, err := repo.ListMissions(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(missions) != 6 || missions[0].ID != "basics-interface" {
		t.Fatalf("unexpected missions %d", len(missions))
	}
	if _, err := repo.GetMission(context.Background(), "review-final"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if loader.count() != 0 {
		t.Fatalf("expected list to warm mission keys, loader calls=%d", loader.count())
	}

	if err := repo.Invalidate(context.Background(), "review-final"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("missions:all") || mr.Exists("mission:review-final") {
		t.Fatalf("expected keys removed")
	}
}

func TestMissionRepositoryPropagatesNotFound(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := NewMissionRepository(newClient(mr), memory.NewCatalogLoader(catalog.MustDefault()), time.Minute)
	if _, err := repo.GetMission(context.Background(), "missing"); !errors.Is(err, domain.ErrMissionNotFound) {
		t.Fatalf("expected ErrMissionNotFound, got %v", err)
	}
}

type countingLoader struct {
	MissionLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadMission(ctx context.Context, missionID string) (domain.Mission, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.MissionLoader.LoadMission(ctx, missionID)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
