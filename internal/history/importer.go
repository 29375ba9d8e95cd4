package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Importer loads history files into a Store
type Importer struct {
	store *Store
}

// NewImporter creates an importer for store
func NewImporter(store *Store) *Importer {
	return &Importer{store: store}
}

// ImportFile loads one JSON history file and replaces that game's history
func (im *Importer) ImportFile(ctx context.Context, filePath string) (*ImportRecord, error) {
	loaded, err := LoadFile(filePath)
	if err != nil {
		return nil, err
	}
	return im.importLoaded(ctx, loaded)
}

// ImportDir imports every *.json file in dir. A file that fails is logged
// and does not stop the others.
func (im *Importer) ImportDir(ctx context.Context, dir string) ([]ImportRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	var imported []ImportRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		rec, err := im.ImportFile(ctx, filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Warnf("Failed to import %s: %v", entry.Name(), err)
			continue
		}
		imported = append(imported, *rec)
	}
	return imported, nil
}

// SeedSamples stores the built-in sample history for every game that has
// no records yet
func (im *Importer) SeedSamples(ctx context.Context) ([]ImportRecord, error) {
	samples, err := Samples()
	if err != nil {
		return nil, err
	}

	var seeded []ImportRecord
	for _, loaded := range samples {
		n, err := im.store.Count(ctx, loaded.Game)
		if err != nil {
			return seeded, err
		}
		if n > 0 {
			continue
		}
		rec, err := im.importLoaded(ctx, loaded)
		if err != nil {
			return seeded, err
		}
		seeded = append(seeded, *rec)
	}
	return seeded, nil
}

func (im *Importer) importLoaded(ctx context.Context, loaded *Loaded) (*ImportRecord, error) {
	if len(loaded.Records) == 0 {
		return nil, fmt.Errorf("history %s has no valid draws", loaded.Source)
	}
	if err := im.store.Replace(ctx, loaded.Game, loaded.Records, loaded.Source, loaded.Skipped); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"game":    loaded.Game,
		"records": len(loaded.Records),
		"skipped": loaded.Skipped,
	}).Infof("Imported history from %s", loaded.Source)

	return &ImportRecord{
		Game:        loaded.Game,
		Source:      loaded.Source,
		RecordCount: len(loaded.Records),
		Skipped:     loaded.Skipped,
		ImportedAt:  time.Now().UTC().Format(time.RFC3339),
	}, nil
}
