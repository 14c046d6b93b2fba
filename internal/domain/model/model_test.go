package model_test

import (
	"errors"
	"testing"

	"github.com/okian/squad/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestSkillsOverall(t *testing.T) {
	tests := []struct {
		name   string
		skills model.Skills
		want   float64
	}{
		{"all fives", model.UniformSkills(5), 5.0},
		{"all ones", model.UniformSkills(1), 1.0},
		{"defaults", model.DefaultSkills(), 3.0},
		{"mixed", model.Skills{Speed: 5, Knowledge: 5, Strength: 3, Power: 4, Vision: 5}, 4.4},
		{"low mixed", model.Skills{Speed: 1, Knowledge: 2, Strength: 1, Power: 2, Vision: 1}, 1.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.skills.Overall(); got != tt.want {
				t.Errorf("Overall() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoundRating(t *testing.T) {
	convey.Convey("Given ratings with more than one decimal", t, func() {
		convey.So(model.RoundRating(3.44), convey.ShouldEqual, 3.4)
		convey.So(model.RoundRating(3.45), convey.ShouldEqual, 3.5)
		convey.So(model.RoundRating(2.96), convey.ShouldEqual, 3.0)
	})
}

func TestSkillsValidate(t *testing.T) {
	convey.Convey("Given a skill vector", t, func() {
		convey.Convey("When every attribute is in range", func() {
			convey.So(model.DefaultSkills().Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When an attribute is above the maximum", func() {
			s := model.DefaultSkills()
			s.Power = 6
			err := s.Validate()

			convey.Convey("Then the offending attribute is named", func() {
				convey.So(errors.Is(err, model.ErrInvalidSkill), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "power=6")
			})
		})

		convey.Convey("When an attribute is missing", func() {
			s := model.DefaultSkills()
			s.Vision = 0
			convey.So(errors.Is(s.Validate(), model.ErrInvalidSkill), convey.ShouldBeTrue)
		})
	})
}

func TestPlayerValidate(t *testing.T) {
	convey.Convey("Given players", t, func() {
		ok := model.Player{ID: "p1", Name: "Ana", Skills: model.DefaultSkills()}
		convey.So(ok.Validate(), convey.ShouldBeNil)
		convey.So(ok.Overall(), convey.ShouldEqual, 3.0)

		noName := ok
		noName.Name = "  "
		convey.So(noName.Validate(), convey.ShouldEqual, model.ErrMissingName)

		noID := ok
		noID.ID = ""
		convey.So(noID.Validate(), convey.ShouldEqual, model.ErrMissingID)
	})
}

func TestTeam(t *testing.T) {
	convey.Convey("Given a team", t, func() {
		team := model.Team{Name: "Los Pibes", PlayerIDs: []string{"a", "b", "c"}}

		convey.Convey("Then size and membership are reported", func() {
			convey.So(team.Size(), convey.ShouldEqual, 3)
			convey.So(team.HasPlayer("b"), convey.ShouldBeTrue)
			convey.So(team.HasPlayer("z"), convey.ShouldBeFalse)
		})

		convey.Convey("Then names differing only in case and spacing share a slug", func() {
			convey.So(model.TeamSlug("Los Pibes"), convey.ShouldEqual, "los-pibes")
			convey.So(model.TeamSlug("  los   PIBES "), convey.ShouldEqual, model.TeamSlug("Los Pibes"))
		})
	})
}
