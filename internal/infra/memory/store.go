package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"mission-quiz-service/internal/app"
	"mission-quiz-service/internal/domain"
)

// Store is an in-memory implementation of app.Store and app.PlayerStore.
// A transaction holds the store lock for its whole duration and restores a snapshot on error.
type Store struct {
	mu    sync.Mutex
	clock func() time.Time
	data  *dataset
}

type progressKey struct {
	playerID  string
	missionID string
}

type dataset struct {
	players     map[string]domain.Player
	scores      []domain.Score
	progress    map[progressKey]domain.Progress
	badges      []domain.Badge
	leaderboard map[string]domain.LeaderboardEntry
}

var (
	_ app.Store       = (*Store)(nil)
	_ app.PlayerStore = (*Store)(nil)
	_ app.Store       = (*storeTx)(nil)
)

func newDataset() *dataset {
	return &dataset{
		players:     make(map[string]domain.Player),
		progress:    make(map[progressKey]domain.Progress),
		leaderboard: make(map[string]domain.LeaderboardEntry),
	}
}

func (d *dataset) clone() *dataset {
	cp := newDataset()
	for k, v := range d.players {
		cp.players[k] = v
	}
	cp.scores = append([]domain.Score(nil), d.scores...)
	for k, v := range d.progress {
		cp.progress[k] = v
	}
	cp.badges = append([]domain.Badge(nil), d.badges...)
	for k, v := range d.leaderboard {
		cp.leaderboard[k] = v
	}
	return cp
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

func NewStoreWithClock(clock func() time.Time) *Store {
	return &Store{clock: clock, data: newDataset()}
}

func (s *Store) tx() *storeTx {
	return &storeTx{data: s.data, clock: s.clock}
}

// RunInTx runs fn against the store; if fn fails or panics every write it made is discarded.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx app.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	committed := false
	defer func() {
		if !committed {
			s.data = snapshot
		}
	}()

	if err := fn(ctx, s.tx()); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) InsertScores(ctx context.Context, scores []domain.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().InsertScores(ctx, scores)
}

func (s *Store) GetProgress(ctx context.Context, playerID, missionID string) (domain.Progress, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().GetProgress(ctx, playerID, missionID)
}

func (s *Store) UpsertProgress(ctx context.Context, progress domain.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().UpsertProgress(ctx, progress)
}

func (s *Store) ListProgress(ctx context.Context, playerID string) ([]domain.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().ListProgress(ctx, playerID)
}

func (s *Store) ListBadges(ctx context.Context, playerID string, types []domain.BadgeType) ([]domain.Badge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().ListBadges(ctx, playerID, types)
}

func (s *Store) InsertBadges(ctx context.Context, badges []domain.Badge) ([]domain.Badge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().InsertBadges(ctx, badges)
}

func (s *Store) UpdatePlayerStatsAndLeaderboard(ctx context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().UpdatePlayerStatsAndLeaderboard(ctx, playerID)
}

// Scores returns every stored score row; used by tests and diagnostics.
func (s *Store) Scores(playerID string) []domain.Score {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Score
	for _, sc := range s.data.scores {
		if sc.PlayerID == playerID {
			out = append(out, sc)
		}
	}
	return out
}

// EnsurePlayer returns the player, creating an anonymous one on first sight.
// An empty playerID gets a fresh uuid.
func (s *Store) EnsurePlayer(_ context.Context, playerID, displayName string) (domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if playerID == "" {
		playerID = uuid.NewString()
	}
	if p, ok := s.data.players[playerID]; ok {
		if displayName != "" && displayName != p.DisplayName {
			p.DisplayName = displayName
			p.UpdatedAt = s.clock()
			s.data.players[playerID] = p
		}
		return p, nil
	}
	if displayName == "" {
		displayName = "Player " + playerID[:min(8, len(playerID))]
	}
	now := s.clock()
	p := domain.Player{
		ID:          playerID,
		DisplayName: displayName,
		IsAnonymous: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.data.players[playerID] = p
	return p, nil
}

func (s *Store) GetPlayer(_ context.Context, playerID string) (domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.players[playerID]
	if !ok {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	return p, nil
}

// Leaderboard returns the top entries by total score, then missions completed, then name.
func (s *Store) Leaderboard(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.LeaderboardEntry, 0, len(s.data.leaderboard))
	for _, e := range s.data.leaderboard {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.MissionsCompleted != b.MissionsCompleted {
			return a.MissionsCompleted > b.MissionsCompleted
		}
		if a.DisplayName != b.DisplayName {
			return a.DisplayName < b.DisplayName
		}
		return a.PlayerID < b.PlayerID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// storeTx operates on a dataset without locking; the owning Store holds the lock.
type storeTx struct {
	data  *dataset
	clock func() time.Time
}

func (t *storeTx) RunInTx(ctx context.Context, fn func(ctx context.Context, tx app.Store) error) error {
	return fn(ctx, t)
}

func (t *storeTx) InsertScores(_ context.Context, scores []domain.Score) error {
	t.data.scores = append(t.data.scores, scores...)
	return nil
}

func (t *storeTx) GetProgress(_ context.Context, playerID, missionID string) (domain.Progress, bool, error) {
	p, ok := t.data.progress[progressKey{playerID, missionID}]
	return p, ok, nil
}

func (t *storeTx) UpsertProgress(_ context.Context, progress domain.Progress) error {
	t.data.progress[progressKey{progress.PlayerID, progress.MissionID}] = progress
	return nil
}

func (t *storeTx) ListProgress(_ context.Context, playerID string) ([]domain.Progress, error) {
	var out []domain.Progress
	for k, p := range t.data.progress {
		if k.playerID == playerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MissionID < out[j].MissionID })
	return out, nil
}

func (t *storeTx) ListBadges(_ context.Context, playerID string, types []domain.BadgeType) ([]domain.Badge, error) {
	var want map[domain.BadgeType]struct{}
	if len(types) > 0 {
		want = make(map[domain.BadgeType]struct{}, len(types))
		for _, bt := range types {
			want[bt] = struct{}{}
		}
	}
	var out []domain.Badge
	for _, b := range t.data.badges {
		if b.PlayerID != playerID {
			continue
		}
		if want != nil {
			if _, ok := want[b.Type]; !ok {
				continue
			}
		}
		out = append(out, b)
	}
	return out, nil
}

func (t *storeTx) InsertBadges(_ context.Context, badges []domain.Badge) ([]domain.Badge, error) {
	stored := make([]domain.Badge, 0, len(badges))
	for _, b := range badges {
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		if b.EarnedAt.IsZero() {
			b.EarnedAt = t.clock()
		}
		stored = append(stored, b)
	}
	t.data.badges = append(t.data.badges, stored...)
	return stored, nil
}

func (t *storeTx) UpdatePlayerStatsAndLeaderboard(_ context.Context, playerID string) error {
	player, ok := t.data.players[playerID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	now := t.clock()

	totalPoints := 0
	for _, sc := range t.data.scores {
		if sc.PlayerID == playerID {
			totalPoints += sc.Points
		}
	}
	totalBadges := 0
	for _, b := range t.data.badges {
		if b.PlayerID == playerID {
			totalBadges++
		}
	}
	player.TotalPoints = totalPoints
	player.TotalBadges = totalBadges
	player.UpdatedAt = now
	t.data.players[playerID] = player

	entry := domain.LeaderboardEntry{
		PlayerID:    playerID,
		DisplayName: player.DisplayName,
		IsAnonymous: player.IsAnonymous,
		UpdatedAt:   now,
	}
	var timeTotal int64
	rows := 0
	for k, p := range t.data.progress {
		if k.playerID != playerID {
			continue
		}
		rows++
		entry.TotalScore += p.Score
		timeTotal += p.TimeSpent
		if p.Completed {
			entry.MissionsCompleted++
		}
	}
	if rows > 0 {
		entry.AverageTime = timeTotal / int64(rows)
	}
	t.data.leaderboard[playerID] = entry
	return nil
}
