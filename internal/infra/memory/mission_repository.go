package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"mission-quiz-service/internal/catalog"
	"mission-quiz-service/internal/domain"
)

// MissionLoader fetches mission content from a backing store (catalog, Postgres).
type MissionLoader interface {
	LoadMission(ctx context.Context, missionID string) (domain.Mission, error)
	LoadMissions(ctx context.Context) ([]domain.Mission, error)
}

const listKey = "\x00all"

// MissionRepository caches missions with TTL to avoid repeated loader hits.
type MissionRepository struct {
	loader MissionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedMission
	list  *cachedList
}

type cachedMission struct {
	mission   domain.Mission
	expiresAt time.Time
}

type cachedList struct {
	missions  []domain.Mission
	expiresAt time.Time
}

func NewMissionRepository(loader MissionLoader, ttl time.Duration) *MissionRepository {
	return &MissionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedMission),
	}
}

func (r *MissionRepository) GetMission(ctx context.Context, missionID string) (domain.Mission, error) {
	if m, ok := r.cached(missionID); ok {
		return m, nil
	}

	result, err, _ := r.sf.Do(missionID, func() (interface{}, error) {
		if m, ok := r.cached(missionID); ok {
			return m, nil
		}
		mission, err := r.loader.LoadMission(ctx, missionID)
		if err != nil {
			return domain.Mission{}, err
		}

		expiresAt := r.clock().Add(r.ttlWithJitter())
		r.mu.Lock()
		r.cache[missionID] = cachedMission{mission: mission, expiresAt: expiresAt}
		r.mu.Unlock()
		return mission, nil
	})
	if err != nil {
		return domain.Mission{}, err
	}
	return result.(domain.Mission), nil
}

// ListMissions returns every mission in catalog order.
func (r *MissionRepository) ListMissions(ctx context.Context) ([]domain.Mission, error) {
	r.mu.RLock()
	if r.list != nil && r.list.expiresAt.After(r.clock()) {
		out := r.list.missions
		r.mu.RUnlock()
		return out, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(listKey, func() (interface{}, error) {
		missions, err := r.loader.LoadMissions(ctx)
		if err != nil {
			return nil, err
		}
		expiresAt := r.clock().Add(r.ttlWithJitter())
		r.mu.Lock()
		r.list = &cachedList{missions: missions, expiresAt: expiresAt}
		for _, m := range missions {
			r.cache[m.ID] = cachedMission{mission: m, expiresAt: expiresAt}
		}
		r.mu.Unlock()
		return missions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Mission), nil
}

func (r *MissionRepository) cached(missionID string) (domain.Mission, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[missionID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Mission{}, false
	}
	return entry.mission, true
}

func (r *MissionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// CatalogLoader serves missions from the embedded catalog.
type CatalogLoader struct {
	catalog *catalog.Catalog
}

func NewCatalogLoader(c *catalog.Catalog) *CatalogLoader {
	return &CatalogLoader{catalog: c}
}

func (l *CatalogLoader) LoadMission(_ context.Context, missionID string) (domain.Mission, error) {
	if m, ok := l.catalog.Mission(missionID); ok {
		return m, nil
	}
	return domain.Mission{}, domain.ErrMissionNotFound
}

func (l *CatalogLoader) LoadMissions(_ context.Context) ([]domain.Mission, error) {
	return l.catalog.Missions(), nil
}
