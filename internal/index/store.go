// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index keeps the set of citations already produced by batch runs
// in a SQLite database, together with their data and provenance rows.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"

	"github.com/pdiddy/oci-engine/internal/render"
	"github.com/pdiddy/oci-engine/pkg/types"
)

// DefaultPath is used when the config leaves index.path empty.
const DefaultPath = "index/citations.db"

// Entry is one indexed citation: the data row and the provenance row of the
// CSV outputs, plus the batch run that added it.
type Entry struct {
	OCI       string `json:"oci" yaml:"oci" csv:"oci"`
	Citing    string `json:"citing" yaml:"citing" csv:"citing"`
	Cited     string `json:"cited" yaml:"cited" csv:"cited"`
	Creation  string `json:"creation" yaml:"creation" csv:"creation"`
	Timespan  string `json:"timespan" yaml:"timespan" csv:"timespan"`
	JournalSC string `json:"journal_sc" yaml:"journal_sc" csv:"journal_sc"`
	AuthorSC  string `json:"author_sc" yaml:"author_sc" csv:"author_sc"`
	Agent     string `json:"agent,omitempty" yaml:"agent,omitempty" csv:"agent"`
	Source    string `json:"source,omitempty" yaml:"source,omitempty" csv:"source"`
	Datetime  string `json:"datetime,omitempty" yaml:"datetime,omitempty" csv:"datetime"`
	RunID     string `json:"run_id,omitempty" yaml:"run_id,omitempty" csv:"-"`
}

// NewEntry flattens c for the index.
func NewEntry(c *types.Citation, runID string) Entry {
	r := render.NewRecord(c)
	p := render.NewProvRecord(c)
	e := Entry{
		OCI:       r.OCI,
		Citing:    r.Citing,
		Cited:     r.Cited,
		JournalSC: r.JournalSC,
		AuthorSC:  r.AuthorSC,
		Agent:     p.Agent,
		Source:    p.Source,
		Datetime:  p.Datetime,
		RunID:     runID,
	}
	if r.Creation != nil {
		e.Creation = *r.Creation
	}
	if r.Timespan != nil {
		e.Timespan = *r.Timespan
	}
	return e
}

// bareOCI strips the "oci:" scheme; the index stores bare identifiers.
func bareOCI(oci string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(oci)), "oci:")
}

// Store manages the citation index database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the index at cfg.Path and creates the schema if it
// does not exist.
func Open(cfg types.IndexConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, eris.Wrap(err, "creating index directory")
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, eris.Wrap(err, "opening database")
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "creating schema")
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS citations (
			oci TEXT PRIMARY KEY,
			citing TEXT,
			cited TEXT,
			creation TEXT,
			timespan TEXT,
			journal_sc TEXT,
			author_sc TEXT,
			agent TEXT,
			source TEXT,
			datetime TEXT,
			run_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_citations_citing ON citations(citing)`,
		`CREATE INDEX IF NOT EXISTS idx_citations_cited ON citations(cited)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return eris.Wrap(err, "executing schema statement")
		}
	}
	return nil
}

// Has reports whether oci is already indexed.
func (s *Store) Has(ctx context.Context, oci string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM citations WHERE oci = ?`, bareOCI(oci)).Scan(&n)
	if err != nil {
		return false, eris.Wrapf(err, "looking up %s", oci)
	}
	return n > 0, nil
}

// Add inserts e. It returns false without error when the OCI is already
// present; existing rows are never overwritten.
func (s *Store) Add(ctx context.Context, e Entry) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO citations
		 (oci, citing, cited, creation, timespan, journal_sc, author_sc, agent, source, datetime, run_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bareOCI(e.OCI), e.Citing, e.Cited, e.Creation, e.Timespan, e.JournalSC, e.AuthorSC,
		e.Agent, e.Source, e.Datetime, e.RunID,
	)
	if err != nil {
		return false, eris.Wrapf(err, "inserting %s", e.OCI)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "reading rows affected")
	}
	return n > 0, nil
}

// Count returns the number of indexed citations.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM citations`).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "counting citations")
	}
	return n, nil
}

// SeedSummary holds counts from a SeedFromCSV run.
type SeedSummary struct {
	Files   int
	Added   int
	Skipped int
	Failed  int
}

// SeedFromCSV walks dir for .csv files holding an "oci" column, as written
// by earlier batch runs, and indexes every row not already present.
// Unreadable files are reported to w and counted as failed.
func (s *Store) SeedFromCSV(ctx context.Context, dir string, w io.Writer) (SeedSummary, error) {
	var summary SeedSummary
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".csv") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		summary.Files++
		entries, err := readEntries(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			summary.Failed++
			return nil
		}
		var added int
		for _, e := range entries {
			if e.OCI == "" {
				continue
			}
			ok, err := s.Add(ctx, e)
			if err != nil {
				return err
			}
			if ok {
				added++
			} else {
				summary.Skipped++
			}
		}
		summary.Added += added
		fmt.Fprintf(w, "seeded  %s (%d new)\n", path, added)
		return nil
	})
	if err != nil {
		return summary, eris.Wrapf(err, "seeding from %s", dir)
	}
	return summary, nil
}

func readEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := csvutil.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrap(err, "decoding csv")
	}
	return entries, nil
}
