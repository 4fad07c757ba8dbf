package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"mission-quiz-service/internal/domain"
)

// MissionLoader fetches mission content from a backing store (catalog, Postgres).
type MissionLoader interface {
	LoadMission(ctx context.Context, missionID string) (domain.Mission, error)
	LoadMissions(ctx context.Context) ([]domain.Mission, error)
}

// MissionRepository caches missions in Redis and falls back to a loader on cache miss.
// Each mission is stored as JSON: SET mission:{missionID} {json}
// The ordered catalog is stored as:  SET missions:all {json array}
type MissionRepository struct {
	client *redis.Client
	loader MissionLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewMissionRepository(client *redis.Client, loader MissionLoader, ttl time.Duration) *MissionRepository {
	return &MissionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *MissionRepository) GetMission(ctx context.Context, missionID string) (domain.Mission, error) {
	key := r.missionKey(missionID)

	var mission domain.Mission
	if ok := r.readJSON(ctx, key, &mission); ok {
		return mission, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		var cached domain.Mission
		if ok := r.readJSON(ctx, key, &cached); ok {
			return cached, nil
		}

		loaded, err := r.loader.LoadMission(ctx, missionID)
		if err != nil {
			return domain.Mission{}, err
		}
		r.writeJSON(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return domain.Mission{}, err
	}
	return result.(domain.Mission), nil
}

func (r *MissionRepository) ListMissions(ctx context.Context) ([]domain.Mission, error) {
	var missions []domain.Mission
	if ok := r.readJSON(ctx, r.listKey(), &missions); ok {
		return missions, nil
	}

	result, err, _ := r.sf.Do(r.listKey(), func() (interface{}, error) {
		loaded, err := r.loader.LoadMissions(ctx)
		if err != nil {
			return nil, err
		}
		r.writeJSON(ctx, r.listKey(), loaded)
		for _, m := range loaded {
			r.writeJSON(ctx, r.missionKey(m.ID), m)
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Mission), nil
}

// Invalidate drops cached content so the next read goes to the loader.
func (r *MissionRepository) Invalidate(ctx context.Context, missionIDs ...string) error {
	keys := []string{r.listKey()}
	for _, id := range missionIDs {
		keys = append(keys, r.missionKey(id))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate missions: %w", err)
	}
	return nil
}

func (r *MissionRepository) readJSON(ctx context.Context, key string, dst interface{}) bool {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil || len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// writeJSON is best-effort: a failed cache write only costs a later reload.
func (r *MissionRepository) writeJSON(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
}

func (r *MissionRepository) missionKey(missionID string) string {
	return "mission:" + missionID
}

func (r *MissionRepository) listKey() string {
	return "missions:all"
}

func (r *MissionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
