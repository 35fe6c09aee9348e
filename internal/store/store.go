// Package store persists scrapes and their contribution facts in a local
// SQLite file. It is an append-only snapshot store following the "deep
// modules" principle - a small interface hiding the schema and transaction
// handling. Facts for a scrape become visible atomically: a scrape is never
// listed before all of its facts are durable.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robby/orgpulse/internal/domain"

	_ "modernc.org/sqlite"
)

// ErrNotFound indicates the store was queried for a scrape that does not
// exist. Callers recover by falling back to empty-state views.
var ErrNotFound = errors.New("scrape not found")

const schema = `
CREATE TABLE IF NOT EXISTS scrapes (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	start_dt TEXT NOT NULL,
	end_dt   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS facts (
	scrape_id     INTEGER NOT NULL REFERENCES scrapes(id),
	org           TEXT NOT NULL,
	repo          TEXT NOT NULL,
	author        TEXT NOT NULL,
	commits       INTEGER NOT NULL DEFAULT 0,
	lines_changed INTEGER NOT NULL DEFAULT 0,
	reviews       INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (scrape_id, org, repo, author)
);

CREATE INDEX IF NOT EXISTS idx_facts_scrape ON facts(scrape_id);
`

// Store manages the snapshot database. A single process opens it for
// exclusive local use.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the snapshot database at path and applies
// the schema. A failure here is fatal to the process: there is nothing to
// browse without the store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// CreateScrape inserts a new scrape row covering the given time window and
// returns its id. Prefer SaveScrape for publishing a complete snapshot; this
// granular form exists for callers that stream facts in themselves.
func (s *Store) CreateScrape(ctx context.Context, start, end time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scrapes (start_dt, end_dt) VALUES (?, ?)`,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("create scrape: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create scrape: %w", err)
	}
	return id, nil
}

// AppendFacts writes facts for an existing scrape in one transaction.
// Returns ErrNotFound if the scrape does not exist.
func (s *Store) AppendFacts(ctx context.Context, scrapeID int64, facts []domain.ContributionFact) error {
	if err := s.scrapeExists(ctx, scrapeID); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append facts: %w", err)
	}
	defer tx.Rollback()

	if err := insertFacts(ctx, tx, scrapeID, facts); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append facts: %w", err)
	}
	return nil
}

// SaveScrape creates a scrape and writes all of its facts in a single
// transaction, so readers either see the complete snapshot or none of it.
// This is the path the scrape orchestrator uses.
func (s *Store) SaveScrape(ctx context.Context, start, end time.Time, facts []domain.ContributionFact) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save scrape: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO scrapes (start_dt, end_dt) VALUES (?, ?)`,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("save scrape: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save scrape: %w", err)
	}
	if err := insertFacts(ctx, tx, id, facts); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save scrape: %w", err)
	}
	return id, nil
}

func insertFacts(ctx context.Context, tx *sql.Tx, scrapeID int64, facts []domain.ContributionFact) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO facts (scrape_id, org, repo, author, commits, lines_changed, reviews)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("insert facts: %w", err)
	}
	defer stmt.Close()

	for _, f := range facts {
		if _, err := stmt.ExecContext(ctx, scrapeID, f.Org, f.Repo, f.Author,
			f.Commits, f.LinesChanged, f.Reviews); err != nil {
			return fmt.Errorf("insert fact %s/%s %s: %w", f.Org, f.Repo, f.Author, err)
		}
	}
	return nil
}

// ListScrapes returns all scrapes, newest first.
func (s *Store) ListScrapes(ctx context.Context) ([]domain.Scrape, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.start_dt, s.end_dt,
		       (SELECT COUNT(DISTINCT f.org || '/' || f.repo) FROM facts f WHERE f.scrape_id = s.id)
		FROM scrapes s
		ORDER BY s.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list scrapes: %w", err)
	}
	defer rows.Close()

	var scrapes []domain.Scrape
	for rows.Next() {
		sc, err := scanScrape(rows)
		if err != nil {
			return nil, err
		}
		scrapes = append(scrapes, sc)
	}
	return scrapes, rows.Err()
}

// GetLatest returns the most recent scrape, or ErrNotFound when the store
// is empty.
func (s *Store) GetLatest(ctx context.Context) (domain.Scrape, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.start_dt, s.end_dt,
		       (SELECT COUNT(DISTINCT f.org || '/' || f.repo) FROM facts f WHERE f.scrape_id = s.id)
		FROM scrapes s
		ORDER BY s.id DESC
		LIMIT 1`)
	sc, err := scanScrape(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Scrape{}, ErrNotFound
	}
	return sc, err
}

// FactsFor returns every contribution fact belonging to one scrape.
// Returns ErrNotFound if the scrape id does not exist.
func (s *Store) FactsFor(ctx context.Context, scrapeID int64) ([]domain.ContributionFact, error) {
	if err := s.scrapeExists(ctx, scrapeID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT scrape_id, org, repo, author, commits, lines_changed, reviews
		FROM facts
		WHERE scrape_id = ?
		ORDER BY org, repo, author`, scrapeID)
	if err != nil {
		return nil, fmt.Errorf("facts for scrape %d: %w", scrapeID, err)
	}
	defer rows.Close()

	var facts []domain.ContributionFact
	for rows.Next() {
		var f domain.ContributionFact
		if err := rows.Scan(&f.ScrapeID, &f.Org, &f.Repo, &f.Author,
			&f.Commits, &f.LinesChanged, &f.Reviews); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

func (s *Store) scrapeExists(ctx context.Context, scrapeID int64) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM scrapes WHERE id = ?`, scrapeID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: id %d", ErrNotFound, scrapeID)
	}
	if err != nil {
		return fmt.Errorf("lookup scrape %d: %w", scrapeID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScrape(row rowScanner) (domain.Scrape, error) {
	var (
		sc         domain.Scrape
		start, end string
	)
	if err := row.Scan(&sc.ID, &start, &end, &sc.RepoCount); err != nil {
		return domain.Scrape{}, err
	}
	var err error
	if sc.StartTime, err = time.Parse(time.RFC3339, start); err != nil {
		return domain.Scrape{}, fmt.Errorf("parse scrape start %q: %w", start, err)
	}
	if sc.EndTime, err = time.Parse(time.RFC3339, end); err != nil {
		return domain.Scrape{}, fmt.Errorf("parse scrape end %q: %w", end, err)
	}
	return sc, nil
}
