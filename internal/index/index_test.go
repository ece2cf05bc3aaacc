// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/oci-engine/pkg/types"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(types.IndexConfig{Path: filepath.Join(dir, "index", "citations.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func sampleCitation() *types.Citation {
	return &types.Citation{
		OCI:                 "oci:0501-0502",
		CitingURL:           "http://dx.doi.org/10.1/a",
		CitedURL:            "http://dx.doi.org/10.2/b",
		CitingPubDate:       "2020",
		CitedPubDate:        "2018",
		CreationDate:        "2020",
		Duration:            "P2Y",
		ProvAgentURL:        "https://orcid.org/0000-0001-0000-0000",
		Source:              "https://example.org/dump",
		ProvDate:            "2026-01-02T03:04:05",
		IDShape:             "http://dx.doi.org/([[XXX__decode]])",
		JournalSelfCitation: true,
	}
}

func TestNewEntry(t *testing.T) {
	e := NewEntry(sampleCitation(), "run-1")
	assert.Equal(t, Entry{
		OCI:       "0501-0502",
		Citing:    "10.1/a",
		Cited:     "10.2/b",
		Creation:  "2020",
		Timespan:  "P2Y",
		JournalSC: "yes",
		AuthorSC:  "no",
		Agent:     "https://orcid.org/0000-0001-0000-0000",
		Source:    "https://example.org/dump",
		Datetime:  "2026-01-02T03:04:05",
		RunID:     "run-1",
	}, e)
}

func TestStore_HasAdd(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	has, err := s.Has(ctx, "oci:0501-0502")
	require.NoError(t, err)
	assert.False(t, has)

	added, err := s.Add(ctx, NewEntry(sampleCitation(), "run-1"))
	require.NoError(t, err)
	assert.True(t, added)

	for _, oci := range []string{"0501-0502", "oci:0501-0502", " OCI:0501-0502 "} {
		has, err = s.Has(ctx, oci)
		require.NoError(t, err)
		assert.True(t, has, oci)
	}

	again := NewEntry(sampleCitation(), "run-2")
	added, err = s.Add(ctx, again)
	require.NoError(t, err)
	assert.False(t, added)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries, err := s.List(ctx, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "run-1", entries[0].RunID, "existing rows are kept")
}

func TestStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	cfg := types.IndexConfig{Path: filepath.Join(dir, "citations.db")}

	s, err := Open(cfg)
	require.NoError(t, err)
	_, err = s.Add(context.Background(), NewEntry(sampleCitation(), "run-1"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(cfg)
	require.NoError(t, err)
	defer s.Close()
	has, err := s.Has(context.Background(), "0501-0502")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestStore_List(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	for i, e := range []Entry{
		{OCI: "0503-0501", Citing: "10.3/c", Cited: "10.1/a", RunID: "r2"},
		{OCI: "0501-0502", Citing: "10.1/a", Cited: "10.2/b", RunID: "r1"},
		{OCI: "0501-0503", Citing: "10.1/a", Cited: "10.3/c", RunID: "r1"},
	} {
		_, err := s.Add(ctx, e)
		require.NoError(t, err, i)
	}

	tests := []struct {
		name string
		opts QueryOptions
		want []string
	}{
		{"all ordered", QueryOptions{}, []string{"0501-0502", "0501-0503", "0503-0501"}},
		{"by citing", QueryOptions{Citing: "10.1/a"}, []string{"0501-0502", "0501-0503"}},
		{"by cited", QueryOptions{Cited: "10.1/a"}, []string{"0503-0501"}},
		{"by run", QueryOptions{RunID: "r2"}, []string{"0503-0501"}},
		{"limit", QueryOptions{Limit: 1}, []string{"0501-0502"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := s.List(ctx, tt.opts)
			require.NoError(t, err)
			var got []string
			for _, e := range entries {
				got = append(got, e.OCI)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_SeedFromCSV(t *testing.T) {
	s, dir := testStore(t)
	ctx := context.Background()

	data := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(filepath.Join(data, "csv", "2019", "05"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "csv", "2019", "05", "a.csv"), []byte(
		"oci,citing,cited,creation,timespan,journal_sc,author_sc\n"+
			"0501-0502,10.1/a,10.2/b,2020,P2Y,no,no\n"+
			"0501-0503,10.1/a,10.3/c,2020,,no,yes\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(data, "csv", "b.csv"), []byte(
		"oci,citing,cited\n0501-0502,10.1/a,10.2/b\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(data, "notes.txt"), []byte("ignored"), 0o644))

	var out bytes.Buffer
	sum, err := s.SeedFromCSV(ctx, data, &out)
	require.NoError(t, err)
	assert.Equal(t, SeedSummary{Files: 2, Added: 2, Skipped: 1}, sum)
	assert.Contains(t, out.String(), "seeded  ")

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := s.List(ctx, QueryOptions{Citing: "10.1/a", Cited: "10.3/c"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "yes", entries[0].AuthorSC)
}

func TestStore_SeedFromCSV_MissingDir(t *testing.T) {
	s, dir := testStore(t)
	_, err := s.SeedFromCSV(context.Background(), filepath.Join(dir, "absent"), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestStore_Export(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	_, err := s.Add(ctx, NewEntry(sampleCitation(), "run-1"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Export(ctx, &buf, ExportYAML, QueryOptions{}))
	var entries []Entry
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "P2Y", entries[0].Timespan)

	buf.Reset()
	require.NoError(t, s.Export(ctx, &buf, ExportCSV, QueryOptions{}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "oci,citing,cited,creation,timespan,journal_sc,author_sc,agent,source,datetime", lines[0])

	assert.Error(t, s.Export(ctx, &buf, "xlsx", QueryOptions{}))
}
