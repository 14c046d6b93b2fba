// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Attribute bounds for every skill.
const (
	MinSkill     = 1
	MaxSkill     = 5
	DefaultSkill = 3
	SkillCount   = 5
)

// SkillNames lists the attributes in vector order.
var SkillNames = [SkillCount]string{"speed", "knowledge", "strength", "power", "vision"}

// Skills is the five-attribute rating vector of a player.
type Skills struct {
	Speed     int `json:"speed"`
	Knowledge int `json:"knowledge"`
	Strength  int `json:"strength"`
	Power     int `json:"power"`
	Vision    int `json:"vision"`
}

// DefaultSkills is the vector given to players created without ratings.
func DefaultSkills() Skills {
	return Skills{
		Speed:     DefaultSkill,
		Knowledge: DefaultSkill,
		Strength:  DefaultSkill,
		Power:     DefaultSkill,
		Vision:    DefaultSkill,
	}
}

// UniformSkills returns a vector with every attribute set to v.
func UniformSkills(v int) Skills {
	return Skills{Speed: v, Knowledge: v, Strength: v, Power: v, Vision: v}
}

// Values returns the attributes in SkillNames order.
func (s Skills) Values() [SkillCount]int {
	return [SkillCount]int{s.Speed, s.Knowledge, s.Strength, s.Power, s.Vision}
}

// Validate reports the first attribute outside [MinSkill, MaxSkill].
func (s Skills) Validate() error {
	for i, v := range s.Values() {
		if v < MinSkill || v > MaxSkill {
			return fmt.Errorf("%w: %s=%d must be between %d and %d",
				ErrInvalidSkill, SkillNames[i], v, MinSkill, MaxSkill)
		}
	}
	return nil
}

// Overall is the mean of the attributes rounded to one decimal.
func (s Skills) Overall() float64 {
	sum := 0
	for _, v := range s.Values() {
		sum += v
	}
	return RoundRating(float64(sum) / SkillCount)
}

// RoundRating rounds to one decimal place, half away from zero.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// Player is a rated roster member.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Skills    Skills    `json:"skills"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Overall is the player's derived overall rating.
func (p Player) Overall() float64 {
	return p.Skills.Overall()
}

// Validate checks the fields a stored player must carry.
func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrMissingName
	}
	return p.Skills.Validate()
}
