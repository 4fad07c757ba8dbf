package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mission-quiz-service/internal/catalog"
	"mission-quiz-service/internal/domain"
)

func TestMissionRepositoryCaches(t *testing.T) {
	loader := &countingLoader{MissionLoader: NewCatalogLoader(catalog.MustDefault())}
	repo := NewMissionRepository(loader, time.Minute)

	if _, err := repo.GetMission(context.Background(), "basics-interface"); err != nil {
		t.Fatalf("get mission: %v", err)
	}
	if loader.missionCalls() != 1 {
		t.Fatalf("expected loader once, got %d", loader.missionCalls())
	}

	m, err := repo.GetMission(context.Background(), "basics-interface")
	if err != nil {
		t.Fatalf("get mission 2: %v", err)
	}
	if loader.missionCalls() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.missionCalls())
	}
	if len(m.Questions) == 0 {
		t.Fatalf("expected questions in cached mission")
	}
}

func TestMissionRepositoryListWarmsMissionCache(t *testing.T) {
	loader := &countingLoader{MissionLoader: NewCatalogLoader(catalog.MustDefault())}
	repo := NewMissionRepository(loader, time.Minute)

	missions, err := repo.ListMissions(context.Background())
	if err != nil {
		t.Fatalf("list missions: %v", err)
	}
	if len(missions) != 6 {
		t.Fatalf("expected 6 missions, got %d", len(missions))
	}
	if _, err := repo.GetMission(context.Background(), missions[2].ID); err != nil {
		t.Fatalf("get mission: %v", err)
	}
	if loader.missionCalls() != 0 {
		t.Fatalf("expected listed missions to be cached, loader calls %d", loader.missionCalls())
	}
}

func TestMissionRepositoryExpires(t *testing.T) {
	loader := &countingLoader{MissionLoader: NewCatalogLoader(catalog.MustDefault())}
	repo := NewMissionRepository(loader, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	if _, err := repo.GetMission(context.Background(), "basics-interface"); err != nil {
		t.Fatalf("get mission: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetMission(context.Background(), "basics-interface"); err != nil {
		t.Fatalf("get mission after ttl: %v", err)
	}
	if loader.missionCalls() != 2 {
		t.Fatalf("expected reload after expiry, got %d loads", loader.missionCalls())
	}
}

func TestMissionRepositoryUnknownMission(t *testing.T) {
	repo := NewMissionRepository(NewCatalogLoader(catalog.MustDefault()), time.Minute)
	if _, err := repo.GetMission(context.Background(), "nope"); !errors.Is(err, domain.ErrMissionNotFound) {
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

func (l *countingLoader) missionCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}
