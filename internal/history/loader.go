package history

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/kartoza/lottery-analyst/internal/lottery"
	log "github.com/sirupsen/logrus"
)

//go:embed samples/*.json
var samplesFS embed.FS

// File is the on-disk JSON layout of a game history
type File struct {
	Game  string               `json:"game"`
	Draws []lottery.DrawRecord `json:"draws"`
}

// Loaded is a validated history ready to be stored
type Loaded struct {
	Game    lottery.GameType
	Records []lottery.DrawRecord
	Skipped int
	Source  string
}

// LoadFile reads and validates a JSON history file
func LoadFile(filePath string) (*Loaded, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	return Decode(f, filePath)
}

// Decode reads a JSON history from r. Records that do not match the game
// shape are skipped and logged; the rest keep their file order.
func Decode(r io.Reader, source string) (*Loaded, error) {
	var file File
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse history %s: %w", source, err)
	}

	gameType, err := lottery.ParseGameType(file.Game)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", source, err)
	}
	game, _ := lottery.Lookup(gameType)

	loaded := &Loaded{Game: gameType, Source: source, Records: make([]lottery.DrawRecord, 0, len(file.Draws))}
	seen := make(map[string]bool, len(file.Draws))
	for _, rec := range file.Draws {
		if err := game.Validate(rec); err != nil {
			log.Warnf("Skipping draw in %s: %v", source, err)
			loaded.Skipped++
			continue
		}
		if seen[rec.Issue] {
			log.Warnf("Skipping duplicate issue %s in %s", rec.Issue, source)
			loaded.Skipped++
			continue
		}
		seen[rec.Issue] = true
		loaded.Records = append(loaded.Records, rec)
	}

	return loaded, nil
}

// Samples returns the built-in sample history of every game
func Samples() ([]*Loaded, error) {
	entries, err := samplesFS.ReadDir("samples")
	if err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}

	var out []*Loaded
	for _, entry := range entries {
		name := path.Join("samples", entry.Name())
		f, err := samplesFS.Open(name)
		if err != nil {
			return nil, fmt.Errorf("failed to open sample %s: %w", name, err)
		}
		loaded, err := Decode(f, "builtin:"+entry.Name())
		f.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, loaded)
	}
	return out, nil
}
