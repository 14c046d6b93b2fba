package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/okian/squad/internal/domain/model"
)

type playerRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"not null"`
	Email     string
	Speed     int
	Knowledge int
	Strength  int
	Power     int
	Vision    int
	Overall   float64   `gorm:"index"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (playerRow) TableName() string { return "players" }

type teamRow struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Name      string    `gorm:"not null"`
	Slug      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (teamRow) TableName() string { return "teams" }

// teamMemberRow references both sides, so the database refuses to delete a
// player still on a team even if the application check is raced.
type teamMemberRow struct {
	TeamID   string `gorm:"primaryKey;size:64"`
	PlayerID string `gorm:"primaryKey;size:64;index"`
	Position int

	Team   teamRow   `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
	Player playerRow `gorm:"foreignKey:PlayerID;constraint:OnDelete:RESTRICT"`
}

func (teamMemberRow) TableName() string { return "team_players" }

func toPlayerRow(p model.Player) playerRow {
	return playerRow{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Speed:     p.Skills.Speed,
		Knowledge: p.Skills.Knowledge,
		Strength:  p.Skills.Strength,
		Power:     p.Skills.Power,
		Vision:    p.Skills.Vision,
		Overall:   p.Overall(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (r playerRow) toModel() model.Player {
	return model.Player{
		ID:    r.ID,
		Name:  r.Name,
		Email: r.Email,
		Skills: model.Skills{
			Speed:     r.Speed,
			Knowledge: r.Knowledge,
			Strength:  r.Strength,
			Power:     r.Power,
			Vision:    r.Vision,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// PostgresStore persists the roster with gorm.
type PostgresStore struct {
	db *gorm.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore migrates the schema and returns the store.
func NewPostgresStore(ctx context.Context, db *gorm.DB) (*PostgresStore, error) {
	if err := db.WithContext(ctx).AutoMigrate(&playerRow{}, &teamRow{}, &teamMemberRow{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) CreatePlayer(ctx context.Context, p model.Player) error {
	defer observe("create_player", time.Now())

	row := toPlayerRow(p)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail("create_player", ErrDuplicatePlayer)
		}
		return fail("create_player", fmt.Errorf("create player: %w", err))
	}
	return nil
}

func (s *PostgresStore) GetPlayer(ctx context.Context, id string) (model.Player, error) {
	defer observe("get_player", time.Now())

	var row playerRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Player{}, ErrPlayerNotFound
		}
		return model.Player{}, fail("get_player", fmt.Errorf("get player: %w", err))
	}
	return row.toModel(), nil
}

func (s *PostgresStore) ListPlayers(ctx context.Context) ([]model.Player, error) {
	defer observe("list_players", time.Now())

	var rows []playerRow
	if err := s.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fail("list_players", fmt.Errorf("list players: %w", err))
	}
	out := make([]model.Player, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *PostgresStore) UpdatePlayer(ctx context.Context, p model.Player) (model.Player, error) {
	defer observe("update_player", time.Now())

	res := s.db.WithContext(ctx).Model(&playerRow{}).Where("id = ?", p.ID).
		Updates(map[string]any{"name": p.Name, "email": p.Email, "updated_at": p.UpdatedAt})
	if res.Error != nil {
		return model.Player{}, fail("update_player", fmt.Errorf("update player: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return model.Player{}, fail("update_player", ErrPlayerNotFound)
	}
	return s.GetPlayer(ctx, p.ID)
}

func (s *PostgresStore) UpdateSkills(ctx context.Context, id string, skills model.Skills, at time.Time) (model.Player, error) {
	defer observe("update_skills", time.Now())

	res := s.db.WithContext(ctx).Model(&playerRow{}).Where("id = ?", id).
		Updates(map[string]any{
			"speed":      skills.Speed,
			"knowledge":  skills.Knowledge,
			"strength":   skills.Strength,
			"power":      skills.Power,
			"vision":     skills.Vision,
			"overall":    skills.Overall(),
			"updated_at": at,
		})
	if res.Error != nil {
		return model.Player{}, fail("update_skills", fmt.Errorf("update skills: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return model.Player{}, fail("update_skills", ErrPlayerNotFound)
	}
	return s.GetPlayer(ctx, id)
}

func (s *PostgresStore) DeletePlayer(ctx context.Context, id string) error {
	defer observe("delete_player", time.Now())

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&teamMemberRow{}).Where("player_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("count team references: %w", err)
		}
		if refs > 0 {
			return ErrPlayerInUse
		}
		res := tx.Where("id = ?", id).Delete(&playerRow{})
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return ErrPlayerInUse
		}
		if res.Error != nil {
			return fmt.Errorf("delete player: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrPlayerNotFound
		}
		return nil
	})
	if err != nil {
		return fail("delete_player", err)
	}
	return nil
}

func (s *PostgresStore) CountPlayers(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&playerRow{}).Count(&n).Error; err != nil {
		return 0, fail("count_players", fmt.Errorf("count players: %w", err))
	}
	return int(n), nil
}

func (s *PostgresStore) Rank(ctx context.Context, playerID string) (Entry, error) {
	defer observe("rank", time.Now())

	p, err := s.GetPlayer(ctx, playerID)
	if err != nil {
		return Entry{}, err
	}
	var higher int64
	if err := s.db.WithContext(ctx).Model(&playerRow{}).
		Where("overall > ?", p.Overall()).
		Distinct("overall").Count(&higher).Error; err != nil {
		return Entry{}, fail("rank", fmt.Errorf("count higher ratings: %w", err))
	}
	return Entry{Rank: int(higher) + 1, PlayerID: p.ID, Name: p.Name, Overall: p.Overall()}, nil
}

func (s *PostgresStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	defer observe("top_n", time.Now())

	if n < 1 {
		return nil, ErrInvalidLimit
	}
	var rows []playerRow
	if err := s.db.WithContext(ctx).Order("overall DESC").Order("id ASC").Limit(n).Find(&rows).Error; err != nil {
		return nil, fail("top_n", fmt.Errorf("top players: %w", err))
	}
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, Entry{PlayerID: r.ID, Name: r.Name, Overall: r.Overall})
	}
	assignDenseRanks(out)
	return out, nil
}

func (s *PostgresStore) CreateTeam(ctx context.Context, t model.Team) error {
	defer observe("create_team", time.Now())

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&playerRow{}).Where("id IN ?", t.PlayerIDs).Count(&existing).Error; err != nil {
			return fmt.Errorf("check members: %w", err)
		}
		if int(existing) != len(distinct(t.PlayerIDs)) {
			return ErrPlayerNotFound
		}

		var taken int64
		if err := tx.Model(&teamRow{}).Where("slug = ?", t.Slug).Count(&taken).Error; err != nil {
			return fmt.Errorf("check slug: %w", err)
		}
		if taken > 0 {
			return ErrDuplicateTeamName
		}

		row := teamRow{ID: t.ID, Name: t.Name, Slug: t.Slug, CreatedAt: t.CreatedAt}
		if err := tx.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateTeam
			}
			return fmt.Errorf("create team: %w", err)
		}
		if len(t.PlayerIDs) == 0 {
			return nil
		}
		members := make([]teamMemberRow, 0, len(t.PlayerIDs))
		for i, id := range t.PlayerIDs {
			members = append(members, teamMemberRow{TeamID: t.ID, PlayerID: id, Position: i})
		}
		if err := tx.Omit(clause.Associations).Create(&members).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return ErrPlayerNotFound
			}
			return fmt.Errorf("add team members: %w", err)
		}
		return nil
	})
	if err != nil {
		return fail("create_team", err)
	}
	return nil
}

func (s *PostgresStore) GetTeam(ctx context.Context, id string) (model.Team, error) {
	defer observe("get_team", time.Now())

	var row teamRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Team{}, ErrTeamNotFound
		}
		return model.Team{}, fail("get_team", fmt.Errorf("get team: %w", err))
	}
	members, err := s.members(ctx, []string{id})
	if err != nil {
		return model.Team{}, fail("get_team", err)
	}
	return row.toModel(members[id]), nil
}

func (s *PostgresStore) ListTeams(ctx context.Context) ([]model.Team, error) {
	defer observe("list_teams", time.Now())

	var rows []teamRow
	if err := s.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fail("list_teams", fmt.Errorf("list teams: %w", err))
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	members, err := s.members(ctx, ids)
	if err != nil {
		return nil, fail("list_teams", err)
	}
	out := make([]model.Team, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel(members[r.ID]))
	}
	return out, nil
}

func (s *PostgresStore) DeleteTeam(ctx context.Context, id string) error {
	defer observe("delete_team", time.Now())

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&teamMemberRow{}).Error; err != nil {
			return fmt.Errorf("delete team members: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&teamRow{})
		if res.Error != nil {
			return fmt.Errorf("delete team: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrTeamNotFound
		}
		return nil
	})
	if err != nil {
		return fail("delete_team", err)
	}
	return nil
}

func (s *PostgresStore) CountTeams(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&teamRow{}).Count(&n).Error; err != nil {
		return 0, fail("count_teams", fmt.Errorf("count teams: %w", err))
	}
	return int(n), nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// members loads ordered player IDs for the given teams.
func (s *PostgresStore) members(ctx context.Context, teamIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(teamIDs))
	if len(teamIDs) == 0 {
		return out, nil
	}
	var rows []teamMemberRow
	if err := s.db.WithContext(ctx).Where("team_id IN ?", teamIDs).
		Order("team_id").Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load team members: %w", err)
	}
	for _, r := range rows {
		out[r.TeamID] = append(out[r.TeamID], r.PlayerID)
	}
	return out, nil
}

func (r teamRow) toModel(playerIDs []string) model.Team {
	if playerIDs == nil {
		playerIDs = []string{}
	}
	return model.Team{ID: r.ID, Name: r.Name, Slug: r.Slug, PlayerIDs: playerIDs, CreatedAt: r.CreatedAt}
}

func distinct(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
