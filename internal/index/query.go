// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
)

// defaultLimit caps List when QueryOptions.Limit is zero.
const defaultLimit = 20

// QueryOptions filters List.
type QueryOptions struct {
	// Citing and Cited match entity identifiers exactly (e.g. a DOI).
	Citing string
	Cited  string

	// RunID restricts results to one batch run.
	RunID string

	// Limit caps the result count. Zero uses the default; negative means
	// no limit.
	Limit int
}

// List returns indexed entries ordered by OCI.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT oci, citing, cited, creation, timespan, journal_sc, author_sc,
			agent, source, datetime, run_id
		FROM citations WHERE 1=1`)

	if opts.Citing != "" {
		qb.WriteString(` AND citing = ?`)
		args = append(args, opts.Citing)
	}
	if opts.Cited != "" {
		qb.WriteString(` AND cited = ?`)
		args = append(args, opts.Cited)
	}
	if opts.RunID != "" {
		qb.WriteString(` AND run_id = ?`)
		args = append(args, opts.RunID)
	}
	qb.WriteString(` ORDER BY oci`)

	limit := opts.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, eris.Wrap(err, "querying index")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			cols [10]sql.NullString
		)
		if err := rows.Scan(&e.OCI, &cols[0], &cols[1], &cols[2], &cols[3], &cols[4],
			&cols[5], &cols[6], &cols[7], &cols[8], &cols[9]); err != nil {
			return nil, eris.Wrap(err, "scanning row")
		}
		e.Citing, e.Cited = cols[0].String, cols[1].String
		e.Creation, e.Timespan = cols[2].String, cols[3].String
		e.JournalSC, e.AuthorSC = cols[4].String, cols[5].String
		e.Agent, e.Source, e.Datetime = cols[6].String, cols[7].String, cols[8].String
		e.RunID = cols[9].String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
