// Package seed loads a sample roster into a running squad server and plays
// a match with it.
package seed

import "github.com/okian/squad/internal/domain/model"

// SamplePlayer is one member of the built-in roster.
type SamplePlayer struct {
	Name   string
	Email  string
	Skills model.Skills
}

// SampleTeam lists members by index into Roster.
type SampleTeam struct {
	Name    string
	Members []int
}

// Roster returns the built-in players.
func Roster() []SamplePlayer {
	return []SamplePlayer{
		{"Lionel Messi", "jugador1@ejemplo.com", model.Skills{Speed: 5, Knowledge: 5, Strength: 3, Power: 4, Vision: 5}},
		{"Cristiano Ronaldo", "jugador2@ejemplo.com", model.Skills{Speed: 5, Knowledge: 4, Strength: 5, Power: 5, Vision: 4}},
		{"Neymar Jr", "jugador3@ejemplo.com", model.Skills{Speed: 5, Knowledge: 4, Strength: 3, Power: 4, Vision: 4}},
		{"Kylian Mbappé", "jugador4@ejemplo.com", model.Skills{Speed: 5, Knowledge: 3, Strength: 4, Power: 4, Vision: 3}},
		{"Robert Lewandowski", "jugador5@ejemplo.com", model.Skills{Speed: 4, Knowledge: 5, Strength: 4, Power: 5, Vision: 4}},
		{"Kevin De Bruyne", "jugador6@ejemplo.com", model.Skills{Speed: 4, Knowledge: 5, Strength: 3, Power: 4, Vision: 5}},
		{"Manuel Neuer", "jugador7@ejemplo.com", model.Skills{Speed: 3, Knowledge: 5, Strength: 4, Power: 4, Vision: 5}},
		{"Sergio Ramos", "jugador8@ejemplo.com", model.Skills{Speed: 3, Knowledge: 5, Strength: 5, Power: 4, Vision: 4}},
	}
}

// Teams returns the built-in saved teams.
func Teams() []SampleTeam {
	return []SampleTeam{
		{Name: "Dream Team", Members: []int{0, 1, 2, 5}},
		{Name: "Power Squad", Members: []int{3, 4, 6, 7}},
	}
}
