package lottery

import (
	"fmt"
	"strings"
)

// GameType identifies one of the supported lottery games
type GameType string

const (
	GameDaletou GameType = "dlt"
	GameSSQ     GameType = "ssq"
	GameHappy8  GameType = "kl8"
	GameQXC     GameType = "qxc"
)

// Pool describes the shape of one number pool of a game
type Pool struct {
	Count        int  `json:"count"`
	Min          int  `json:"min"`
	Max          int  `json:"max"`
	// AllowRepeats marks digit pools where a value may appear in more
	// than one position of the same draw.
	AllowRepeats bool `json:"allowRepeats,omitempty"`
}

// Game holds the fixed shape constants of a lottery game
type Game struct {
	Type      GameType `json:"type"`
	Name      string   `json:"name"`
	Primary   Pool     `json:"primary"`
	Secondary *Pool    `json:"secondary,omitempty"`
}

// HasSecondary reports whether the game draws a secondary pool
func (g Game) HasSecondary() bool {
	return g.Secondary != nil && g.Secondary.Count > 0
}

// games is the closed set of supported games, in display order
var games = []Game{
	{
		Type:      GameDaletou,
		Name:      "大乐透",
		Primary:   Pool{Count: 5, Min: 1, Max: 35},
		Secondary: &Pool{Count: 2, Min: 1, Max: 12},
	},
	{
		Type:      GameSSQ,
		Name:      "双色球",
		Primary:   Pool{Count: 6, Min: 1, Max: 33},
		Secondary: &Pool{Count: 1, Min: 1, Max: 16},
	},
	{
		Type:    GameHappy8,
		Name:    "快乐八",
		Primary: Pool{Count: 20, Min: 1, Max: 80},
	},
	{
		Type:    GameQXC,
		Name:    "七星彩",
		Primary: Pool{Count: 7, Min: 0, Max: 9, AllowRepeats: true},
	},
}

// Games returns all supported games in display order
func Games() []Game {
	out := make([]Game, len(games))
	copy(out, games)
	return out
}

// Lookup returns the shape of a game
func Lookup(t GameType) (Game, bool) {
	for _, g := range games {
		if g.Type == t {
			return g, true
		}
	}
	return Game{}, false
}

// ParseGameType converts a user supplied identifier into a GameType.
// Both the short code ("ssq") and the display name ("双色球") are accepted.
func ParseGameType(s string) (GameType, error) {
	s = strings.TrimSpace(s)
	for _, g := range games {
		if strings.EqualFold(s, string(g.Type)) || s == g.Name {
			return g.Type, nil
		}
	}
	return "", fmt.Errorf("unknown game: %q", s)
}

// DrawRecord is one historical drawing
type DrawRecord struct {
	Issue            string `json:"issue"`
	Date             string `json:"date"`
	PrimaryNumbers   []int  `json:"primary"`
	SecondaryNumbers []int  `json:"secondary,omitempty"`
}

// Validate checks a record against the game shape.
// The statistics code never calls this; it is meant for loaders.
func (g Game) Validate(r DrawRecord) error {
	if strings.TrimSpace(r.Issue) == "" {
		return fmt.Errorf("%s: draw has no issue", g.Type)
	}
	if err := checkPool("primary", g.Primary, r.PrimaryNumbers); err != nil {
		return fmt.Errorf("%s issue %s: %w", g.Type, r.Issue, err)
	}

	if !g.HasSecondary() {
		if len(r.SecondaryNumbers) > 0 {
			return fmt.Errorf("%s issue %s: game has no secondary pool", g.Type, r.Issue)
		}
		return nil
	}
	if err := checkPool("secondary", *g.Secondary, r.SecondaryNumbers); err != nil {
		return fmt.Errorf("%s issue %s: %w", g.Type, r.Issue, err)
	}
	return nil
}

// checkPool validates count and range, and uniqueness unless the pool
// allows repeats.
func checkPool(name string, p Pool, nums []int) error {
	if len(nums) != p.Count {
		return fmt.Errorf("%s pool has %d numbers, want %d", name, len(nums), p.Count)
	}
	seen := make(map[int]bool, len(nums))
	for _, n := range nums {
		if n < p.Min || n > p.Max {
			return fmt.Errorf("%s number %d out of range %d-%d", name, n, p.Min, p.Max)
		}
		if !p.AllowRepeats && seen[n] {
			return fmt.Errorf("%s number %d drawn twice", name, n)
		}
		seen[n] = true
	}
	return nil
}
