package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/squad/internal/domain/model"
)

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newPlayer(id string, rating int, seq int) model.Player {
	at := base.Add(time.Duration(seq) * time.Second)
	return model.Player{
		ID:        id,
		Name:      "Player " + id,
		Skills:    model.UniformSkills(rating),
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func newTeam(id, name string, seq int, players ...string) model.Team {
	return model.Team{
		ID:        id,
		Name:      name,
		Slug:      model.TeamSlug(name),
		PlayerIDs: players,
		CreatedAt: base.Add(time.Duration(seq) * time.Second),
	}
}

func mustCreate(t *testing.T, s Store, players ...model.Player) {
	t.Helper()
	for _, p := range players {
		if err := s.CreatePlayer(context.Background(), p); err != nil {
			t.Fatalf("create %s: %v", p.ID, err)
		}
	}
}

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.PlayerID)
	}
	return out
}

// runStoreSuite checks behaviour every Store implementation shares.
// newStore must return an empty store.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("player lifecycle", func(t *testing.T) {
		s := newStore(t)
		p := newPlayer("p1", 3, 0)
		mustCreate(t, s, p)

		if err := s.CreatePlayer(ctx, p); !errors.Is(err, ErrDuplicatePlayer) {
			t.Fatalf("duplicate create: got %v", err)
		}

		got, err := s.GetPlayer(ctx, "p1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Name != p.Name || got.Skills != p.Skills {
			t.Fatalf("get: got %+v", got)
		}

		p.Name, p.Email = "Renamed", "r@example.com"
		upd, err := s.UpdatePlayer(ctx, p)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if upd.Name != "Renamed" || upd.Email != "r@example.com" || upd.Skills != p.Skills {
			t.Fatalf("update: got %+v", upd)
		}

		skills := model.Skills{Speed: 5, Knowledge: 4, Strength: 3, Power: 2, Vision: 1}
		rated, err := s.UpdateSkills(ctx, "p1", skills, base.Add(time.Hour))
		if err != nil {
			t.Fatalf("update skills: %v", err)
		}
		if rated.Skills != skills || rated.Name != "Renamed" {
			t.Fatalf("update skills: got %+v", rated)
		}

		if err := s.DeletePlayer(ctx, "p1"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := s.GetPlayer(ctx, "p1"); !errors.Is(err, ErrPlayerNotFound) {
			t.Fatalf("get after delete: got %v", err)
		}
		if err := s.DeletePlayer(ctx, "p1"); !errors.Is(err, ErrPlayerNotFound) {
			t.Fatalf("second delete: got %v", err)
		}
	})

	t.Run("unknown players", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.UpdatePlayer(ctx, newPlayer("ghost", 3, 0)); !errors.Is(err, ErrPlayerNotFound) {
			t.Fatalf("update: got %v", err)
		}
		if _, err := s.UpdateSkills(ctx, "ghost", model.DefaultSkills(), base); !errors.Is(err, ErrPlayerNotFound) {
			t.Fatalf("update skills: got %v", err)
		}
		if _, err := s.Rank(ctx, "ghost"); !errors.Is(err, ErrPlayerNotFound) {
			t.Fatalf("rank: got %v", err)
		}
	})

	t.Run("list keeps creation order", func(t *testing.T) {
		s := newStore(t)
		mustCreate(t, s, newPlayer("c", 1, 0), newPlayer("a", 5, 1), newPlayer("b", 3, 2))
		list, err := s.ListPlayers(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		var got []string
		for _, p := range list {
			got = append(got, p.ID)
		}
		if fmt.Sprint(got) != "[c a b]" {
			t.Fatalf("order: got %v", got)
		}
		if n, _ := s.CountPlayers(ctx); n != 3 {
			t.Fatalf("count: got %d", n)
		}
	})

	t.Run("ranking", func(t *testing.T) {
		s := newStore(t)
		mustCreate(t, s,
			newPlayer("d", 3, 0),
			newPlayer("b", 5, 1),
			newPlayer("a", 5, 2),
			newPlayer("c", 4, 3),
			newPlayer("e", 1, 4),
		)

		top, err := s.TopN(ctx, 10)
		if err != nil {
			t.Fatalf("top: %v", err)
		}
		if fmt.Sprint(ids(top)) != "[a b c d e]" {
			t.Fatalf("top order: got %v", ids(top))
		}
		wantRanks := []int{1, 1, 2, 3, 4}
		for i, e := range top {
			if e.Rank != wantRanks[i] {
				t.Fatalf("rank of %s: got %d want %d", e.PlayerID, e.Rank, wantRanks[i])
			}
		}
		if top[2].Overall != 4.0 || top[2].Name != "Player c" {
			t.Fatalf("entry: got %+v", top[2])
		}

		top2, err := s.TopN(ctx, 2)
		if err != nil || len(top2) != 2 {
			t.Fatalf("top 2: %v %v", top2, err)
		}
		if _, err := s.TopN(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
			t.Fatalf("top 0: got %v", err)
		}

		e, err := s.Rank(ctx, "d")
		if err != nil || e.Rank != 3 || e.Overall != 3.0 {
			t.Fatalf("rank d: %+v %v", e, err)
		}

		// A rating change moves the player.
		if _, err := s.UpdateSkills(ctx, "e", model.UniformSkills(5), base); err != nil {
			t.Fatalf("update skills: %v", err)
		}
		e, err = s.Rank(ctx, "e")
		if err != nil || e.Rank != 1 {
			t.Fatalf("rank e after update: %+v %v", e, err)
		}
		e, err = s.Rank(ctx, "d")
		if err != nil || e.Rank != 3 {
			t.Fatalf("rank d after update: %+v %v", e, err)
		}
	})

	t.Run("teams", func(t *testing.T) {
		s := newStore(t)
		mustCreate(t, s, newPlayer("p1", 3, 0), newPlayer("p2", 3, 1), newPlayer("p3", 3, 2), newPlayer("p4", 3, 3))

		red := newTeam("t1", "Red Lions", 0, "p3", "p1", "p2")
		if err := s.CreateTeam(ctx, red); err != nil {
			t.Fatalf("create team: %v", err)
		}
		got, err := s.GetTeam(ctx, "t1")
		if err != nil {
			t.Fatalf("get team: %v", err)
		}
		if got.Name != "Red Lions" || got.Slug != "red-lions" || fmt.Sprint(got.PlayerIDs) != "[p3 p1 p2]" {
			t.Fatalf("get team: got %+v", got)
		}

		clash := newTeam("t2", "  red LIONS ", 1, "p4", "p1", "p2")
		if err := s.CreateTeam(ctx, clash); !errors.Is(err, ErrDuplicateTeamName) {
			t.Fatalf("slug clash: got %v", err)
		}
		ghost := newTeam("t3", "Ghosts", 2, "p1", "nobody", "p2")
		if err := s.CreateTeam(ctx, ghost); !errors.Is(err, ErrPlayerNotFound) {
			t.Fatalf("unknown member: got %v", err)
		}

		blue := newTeam("t4", "Blue", 3, "p4", "p2", "p1")
		if err := s.CreateTeam(ctx, blue); err != nil {
			t.Fatalf("create blue: %v", err)
		}
		teams, err := s.ListTeams(ctx)
		if err != nil || len(teams) != 2 || teams[0].ID != "t1" || teams[1].ID != "t4" {
			t.Fatalf("list teams: %+v %v", teams, err)
		}
		if n, _ := s.CountTeams(ctx); n != 2 {
			t.Fatalf("count teams: got %d", n)
		}

		if err := s.DeletePlayer(ctx, "p1"); !errors.Is(err, ErrPlayerInUse) {
			t.Fatalf("delete referenced player: got %v", err)
		}

		if err := s.DeleteTeam(ctx, "t1"); err != nil {
			t.Fatalf("delete team: %v", err)
		}
		if _, err := s.GetTeam(ctx, "t1"); !errors.Is(err, ErrTeamNotFound) {
			t.Fatalf("get deleted team: got %v", err)
		}
		if err := s.DeleteTeam(ctx, "t1"); !errors.Is(err, ErrTeamNotFound) {
			t.Fatalf("second delete: got %v", err)
		}

		// The name is free again once the team is gone.
		again := newTeam("t5", "Red Lions", 4, "p3", "p2", "p4")
		if err := s.CreateTeam(ctx, again); err != nil {
			t.Fatalf("reuse name: %v", err)
		}
		if err := s.DeletePlayer(ctx, "p1"); !errors.Is(err, ErrPlayerInUse) {
			t.Fatalf("p1 still on blue: got %v", err)
		}
		if err := s.DeleteTeam(ctx, "t4"); err != nil {
			t.Fatalf("delete blue: %v", err)
		}
		if err := s.DeletePlayer(ctx, "p1"); err != nil {
			t.Fatalf("delete free player: %v", err)
		}
	})
}
