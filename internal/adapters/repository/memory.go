package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/metrics"
)

// MemoryStore keeps the roster in process, ranked by a treap.
type MemoryStore struct {
	mu          sync.RWMutex
	players     map[string]model.Player
	playerOrder []string
	teams       map[string]model.Team
	teamOrder   []string
	slugs       map[string]string // slug -> team id
	ranking     *ranking
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players: make(map[string]model.Player),
		teams:   make(map[string]model.Team),
		slugs:   make(map[string]string),
		ranking: newRanking(),
	}
}

// observe records the latency of op; call as defer observe(op, time.Now()).
func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Milliseconds()))
}

func fail(op string, err error) error {
	metrics.RecordStoreError(op)
	return err
}

func (s *MemoryStore) CreatePlayer(_ context.Context, p model.Player) error {
	defer observe("create_player", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[p.ID]; ok {
		return fail("create_player", ErrDuplicatePlayer)
	}
	s.players[p.ID] = p
	s.playerOrder = append(s.playerOrder, p.ID)
	s.ranking.add(p.ID, p.Overall())
	return nil
}

func (s *MemoryStore) GetPlayer(_ context.Context, id string) (model.Player, error) {
	defer observe("get_player", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return model.Player{}, ErrPlayerNotFound
	}
	return p, nil
}

func (s *MemoryStore) ListPlayers(_ context.Context) ([]model.Player, error) {
	defer observe("list_players", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Player, 0, len(s.playerOrder))
	for _, id := range s.playerOrder {
		out = append(out, s.players[id])
	}
	return out, nil
}

func (s *MemoryStore) UpdatePlayer(_ context.Context, p model.Player) (model.Player, error) {
	defer observe("update_player", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.players[p.ID]
	if !ok {
		return model.Player{}, fail("update_player", ErrPlayerNotFound)
	}
	cur.Name = p.Name
	cur.Email = p.Email
	cur.UpdatedAt = p.UpdatedAt
	s.players[p.ID] = cur
	return cur, nil
}

func (s *MemoryStore) UpdateSkills(_ context.Context, id string, skills model.Skills, at time.Time) (model.Player, error) {
	defer observe("update_skills", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.players[id]
	if !ok {
		return model.Player{}, fail("update_skills", ErrPlayerNotFound)
	}
	s.ranking.remove(id, cur.Overall())
	cur.Skills = skills
	cur.UpdatedAt = at
	s.players[id] = cur
	s.ranking.add(id, cur.Overall())
	return cur, nil
}

func (s *MemoryStore) DeletePlayer(_ context.Context, id string) error {
	defer observe("delete_player", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.players[id]
	if !ok {
		return fail("delete_player", ErrPlayerNotFound)
	}
	for _, t := range s.teams {
		if t.HasPlayer(id) {
			return fail("delete_player", ErrPlayerInUse)
		}
	}
	s.ranking.remove(id, cur.Overall())
	delete(s.players, id)
	s.playerOrder = slices.DeleteFunc(s.playerOrder, func(v string) bool { return v == id })
	return nil
}

func (s *MemoryStore) CountPlayers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players), nil
}

func (s *MemoryStore) Rank(_ context.Context, playerID string) (Entry, error) {
	defer observe("rank", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[playerID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrPlayerNotFound
	}
	return Entry{
		Rank:     s.ranking.denseRank(p.Overall()),
		PlayerID: p.ID,
		Name:     p.Name,
		Overall:  p.Overall(),
	}, nil
}

func (s *MemoryStore) TopN(_ context.Context, n int) ([]Entry, error) {
	defer observe("top_n", time.Now())

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ranking.top(n, func(id string) string { return s.players[id].Name }), nil
}

func (s *MemoryStore) CreateTeam(_ context.Context, t model.Team) error {
	defer observe("create_team", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[t.ID]; ok {
		return fail("create_team", ErrDuplicateTeam)
	}
	if _, ok := s.slugs[t.Slug]; ok {
		return fail("create_team", ErrDuplicateTeamName)
	}
	for _, id := range t.PlayerIDs {
		if _, ok := s.players[id]; !ok {
			return fail("create_team", ErrPlayerNotFound)
		}
	}
	t.PlayerIDs = slices.Clone(t.PlayerIDs)
	s.teams[t.ID] = t
	s.slugs[t.Slug] = t.ID
	s.teamOrder = append(s.teamOrder, t.ID)
	return nil
}

func (s *MemoryStore) GetTeam(_ context.Context, id string) (model.Team, error) {
	defer observe("get_team", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	if !ok {
		return model.Team{}, ErrTeamNotFound
	}
	t.PlayerIDs = slices.Clone(t.PlayerIDs)
	return t, nil
}

func (s *MemoryStore) ListTeams(_ context.Context) ([]model.Team, error) {
	defer observe("list_teams", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Team, 0, len(s.teamOrder))
	for _, id := range s.teamOrder {
		t := s.teams[id]
		t.PlayerIDs = slices.Clone(t.PlayerIDs)
		out = append(out, t)
	}
	return out, nil
}

func (s *MemoryStore) DeleteTeam(_ context.Context, id string) error {
	defer observe("delete_team", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[id]
	if !ok {
		return fail("delete_team", ErrTeamNotFound)
	}
	delete(s.teams, id)
	delete(s.slugs, t.Slug)
	s.teamOrder = slices.DeleteFunc(s.teamOrder, func(v string) bool { return v == id })
	return nil
}

func (s *MemoryStore) CountTeams(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.teams), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
