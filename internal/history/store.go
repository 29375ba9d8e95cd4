package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/kartoza/lottery-analyst/internal/lottery"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ImportRecord describes one import of a history source into the store
type ImportRecord struct {
	Game        lottery.GameType `json:"game"`
	Source      string           `json:"source"`
	RecordCount int              `json:"recordCount"`
	Skipped     int              `json:"skipped"`
	ImportedAt  string           `json:"importedAt"`
}

// Store persists draw history per game in SQLite
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (or creates) the history database and applies migrations
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("History database ready: %s", dbPath)
	return &Store{db: db, dbPath: dbPath}, nil
}

// migrateUp applies all pending embedded migrations
func migrateUp(db *sql.DB) error {
	migrationsDir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to access migrations directory: %w", err)
	}
	sourceDriver, err := iofs.New(migrationsDir, ".")
	if err != nil {
		return fmt.Errorf("failed to create source driver: %w", err)
	}
	dbDriver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// The migrate instance is not closed: closing it would close db.
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Replace swaps the full history of a game for records, in order.
// Records are supplied wholesale; there is no incremental merge.
func (s *Store) Replace(ctx context.Context, game lottery.GameType, records []lottery.DrawRecord, source string, skipped int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM draws WHERE game = ?", string(game)); err != nil {
		return fmt.Errorf("failed to clear %s history: %w", game, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO draws (game, issue, draw_date, primary_numbers, secondary_numbers, position)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (game, issue) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		primary, err := json.Marshal(rec.PrimaryNumbers)
		if err != nil {
			return fmt.Errorf("failed to encode issue %s: %w", rec.Issue, err)
		}
		var secondary sql.NullString
		if rec.SecondaryNumbers != nil {
			b, err := json.Marshal(rec.SecondaryNumbers)
			if err != nil {
				return fmt.Errorf("failed to encode issue %s: %w", rec.Issue, err)
			}
			secondary = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, string(game), rec.Issue, rec.Date, string(primary), secondary, i); err != nil {
			return fmt.Errorf("failed to insert issue %s: %w", rec.Issue, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO imports (game, source, record_count, skipped, imported_at) VALUES (?, ?, ?, ?, ?)",
		string(game), source, len(records), skipped, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s history: %w", game, err)
	}
	return nil
}

// List returns up to limit records of a game in stored order.
// limit <= 0 returns the full history.
func (s *Store) List(ctx context.Context, game lottery.GameType, limit int) ([]lottery.DrawRecord, error) {
	query := `SELECT issue, draw_date, primary_numbers, secondary_numbers
		FROM draws WHERE game = ? ORDER BY position`
	args := []interface{}{string(game)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s history: %w", game, err)
	}
	defer rows.Close()

	records := []lottery.DrawRecord{}
	for rows.Next() {
		var (
			rec       lottery.DrawRecord
			primary   string
			secondary sql.NullString
		)
		if err := rows.Scan(&rec.Issue, &rec.Date, &primary, &secondary); err != nil {
			return nil, fmt.Errorf("failed to scan draw: %w", err)
		}
		if err := json.Unmarshal([]byte(primary), &rec.PrimaryNumbers); err != nil {
			return nil, fmt.Errorf("failed to decode issue %s: %w", rec.Issue, err)
		}
		if secondary.Valid {
			if err := json.Unmarshal([]byte(secondary.String), &rec.SecondaryNumbers); err != nil {
				return nil, fmt.Errorf("failed to decode issue %s: %w", rec.Issue, err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the number of stored records for a game
func (s *Store) Count(ctx context.Context, game lottery.GameType) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM draws WHERE game = ?", string(game)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s history: %w", game, err)
	}
	return n, nil
}

// Games returns the games that have stored history
func (s *Store) Games(ctx context.Context) ([]lottery.GameType, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT game FROM draws ORDER BY game")
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	games := []lottery.GameType{}
	for rows.Next() {
		var game string
		if err := rows.Scan(&game); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, lottery.GameType(game))
	}
	return games, rows.Err()
}

// Imports returns the most recent imports, newest first
func (s *Store) Imports(ctx context.Context, limit int) ([]ImportRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT game, source, record_count, skipped, imported_at
		 FROM imports ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query imports: %w", err)
	}
	defer rows.Close()

	out := []ImportRecord{}
	for rows.Next() {
		var rec ImportRecord
		var game string
		if err := rows.Scan(&game, &rec.Source, &rec.RecordCount, &rec.Skipped, &rec.ImportedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import: %w", err)
		}
		rec.Game = lottery.GameType(game)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database
func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		log.Printf("Error closing history database %s: %v", s.dbPath, err)
	}
}
