// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/oci-engine/internal/codec"
	"github.com/pdiddy/oci-engine/internal/index"
	"github.com/pdiddy/oci-engine/pkg/types"
)

func testTable() *codec.Table {
	var rows []codec.Row
	for i := 0; i < 10; i++ {
		rows = append(rows, codec.Row{Code: strconv.Itoa(10 + i), Char: strconv.Itoa(i)})
	}
	for i, r := range "abcdefghijklmnopqrstuvwxyz" {
		rows = append(rows, codec.Row{Code: strconv.Itoa(20 + i), Char: string(r)})
	}
	rows = append(rows, codec.Row{Code: "46", Char: "."}, codec.Row{Code: "47", Char: "/"})
	return codec.NewTable(rows)
}

type fakeIndex struct {
	mu      sync.Mutex
	entries map[string]index.Entry
}

func (f *fakeIndex) Has(_ context.Context, oci string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[strings.TrimPrefix(oci, "oci:")]
	return ok, nil
}

func (f *fakeIndex) Add(_ context.Context, e index.Entry) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[e.OCI]; ok {
		return false, nil
	}
	f.entries[e.OCI] = e
	return true, nil
}

// fakeDOIs knows which DOIs exist; "10.9/boom" is a transport failure.
type fakeDOIs map[string]bool

func (f fakeDOIs) Exists(_ context.Context, doi string) (bool, error) {
	if doi == "10.9/boom" {
		return false, errors.New("connection reset")
	}
	return f[doi], nil
}

type fakeJournals struct {
	dates  map[string]string
	shared map[string]bool
}

func (f fakeJournals) Date(_ context.Context, doi string) (string, error) {
	return f.dates[doi], nil
}

func (f fakeJournals) ShareISSN(_ context.Context, a, b string) (bool, error) {
	return f.shared[a+" "+b], nil
}

type fakeAuthors struct{}

func (fakeAuthors) ShareORCID(context.Context, string, string) (bool, error) { return false, nil }

type noDates struct{}

func (noDates) Date(context.Context, string) (string, error) { return "", nil }

func writeInput(t *testing.T, dir, name, csv string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".csv"), []byte(csv), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"),
		[]byte(`{"agent": "https://orcid.org/0000-0001", "source": "https://example.org/dump"}`), 0o644))
}

const inputHeader = "citing_id,cited_id,citing_publication_date,cited_publication_date\n"

func TestPipeline_Run(t *testing.T) {
	tmp := t.TempDir()
	dataDir := filepath.Join(tmp, "data")
	writeInput(t, filepath.Join(tmp, "in"), "new", inputHeader+
		"https://doi.org/10.1/A,10.2/b,2020-05-10,\n"+
		"10.1/a,10.2/b,,\n"+
		"not-a-doi,10.2/b,,\n"+
		"10.1/a,10.9/gone,,\n"+
		"10.1/a,10.2/b#,,\n"+
		"10.1/a,10.9/boom,,\n"+
		"10.3/c,10.1/a,,\n")

	idx := &fakeIndex{entries: map[string]index.Entry{"050134722-050114720": {}}}
	deps := Deps{
		Table: testTable(),
		Index: idx,
		DOIs:  fakeDOIs{"10.1/a": true, "10.2/b": true, "10.3/c": true},
		Crossref: fakeJournals{
			dates:  map[string]string{"10.2/b": "2018-03-01"},
			shared: map[string]bool{"10.1/a 10.2/b": true},
		},
		DataCite: noDates{},
		ORCID:    fakeAuthors{},
	}
	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := New(types.BatchConfig{DataDir: dataDir}, deps, WithClock(func() time.Time { return stamp }))

	var out bytes.Buffer
	sum, err := p.Run(context.Background(), []string{filepath.Join(tmp, "in"), filepath.Join(tmp, "missing.csv")}, &out)
	require.NoError(t, err)

	assert.Equal(t, 7, sum.Total)
	assert.Equal(t, 1, sum.Added)
	assert.Equal(t, 2, sum.Present)
	assert.Equal(t, 2, sum.SyntaxErrors)
	assert.Equal(t, 1, sum.ExistenceErrors)
	assert.Equal(t, 1, sum.Exceptions())
	assert.NotEmpty(t, sum.RunID)
	assert.Contains(t, out.String(), "Number of new citations added: 1")
	assert.Contains(t, out.String(), "failed: ")

	e, ok := idx.entries["050114720-050124721"]
	require.True(t, ok)
	assert.Equal(t, sum.RunID, e.RunID)
	assert.Equal(t, "P2Y2M9D", e.Timespan)

	csvData, err := os.ReadFile(filepath.Join(dataDir, "csv", "2026", "01", "2026-01-02T03:04:05.csv"))
	require.NoError(t, err)
	assert.Equal(t, "oci,citing,cited,creation,timespan,journal_sc,author_sc\n"+
		"050114720-050124721,10.1/a,10.2/b,2020-05-10,P2Y2M9D,yes,no\n", string(csvData))

	provData, err := os.ReadFile(filepath.Join(tmp, "prov", "csv", "2026", "01", "2026-01-02T03:04:05.csv"))
	require.NoError(t, err)
	assert.Equal(t, "oci,agent,source,datetime\n"+
		"050114720-050124721,https://orcid.org/0000-0001,https://example.org/dump,2026-01-02T03:04:05\n", string(provData))

	nt, err := os.ReadFile(filepath.Join(dataDir, "rdf", "2026", "01", "2026-01-02T03:04:05.ttl"))
	require.NoError(t, err)
	assert.Contains(t, string(nt), "<https://w3id.org/oc/index/croci/ci/050114720-050124721> "+
		"<http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://purl.org/spar/cito/JournalSelfCitation> .")
	assert.Contains(t, string(nt), "<http://purl.org/spar/cito/hasCitingEntity> <http://dx.doi.org/10.1/a> .")

	provNT, err := os.ReadFile(filepath.Join(tmp, "prov", "rdf", "2026", "01", "2026-01-02T03:04:05.ttl"))
	require.NoError(t, err)
	assert.Contains(t, string(provNT), "<http://www.w3.org/ns/prov#hadPrimarySource> <https://example.org/dump> .")
}

func TestPipeline_CancelledContext(t *testing.T) {
	tmp := t.TempDir()
	writeInput(t, tmp, "new", inputHeader+"10.1/a,10.2/b,,\n")
	p := New(types.BatchConfig{DataDir: filepath.Join(tmp, "data")}, Deps{Table: testTable(), Index: &fakeIndex{entries: map[string]index.Entry{}}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx, []string{filepath.Join(tmp, "new.csv")}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutput_AppendsWithoutRepeatingHeader(t *testing.T) {
	dir := t.TempDir()
	o := Output{DataDir: filepath.Join(dir, "data"), CorpusBase: DefaultCorpusBase}

	for _, oci := range []string{"oci:0501-0502", "oci:0501-0503"} {
		c := &types.Citation{
			OCI:          oci,
			CitingURL:    "http://dx.doi.org/10.1/a",
			CitedURL:     "http://dx.doi.org/10.2/b",
			IDShape:      "http://dx.doi.org/([[XXX__decode]])",
			ProvAgentURL: "https://orcid.org/0000-0001",
			Source:       "https://example.org/dump",
			ProvDate:     "2019-05-03T00:00:00",
		}
		require.NoError(t, o.Store(c, "2019-05-03T00:00:00"))
	}

	data, err := os.ReadFile(filepath.Join(dir, "data", "csv", "2019", "05", "2019-05-03T00:00:00.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "oci,"))
	assert.True(t, strings.HasPrefix(lines[2], "0501-0503,"))
}

func TestReadInputs(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, filepath.Join(dir, "b"), "second", inputHeader+"10.1/a,10.2/b,2019,\n")
	writeInput(t, filepath.Join(dir, "a"), "first", inputHeader+"10.3/c,10.4/d,,2001\n10.5/e,10.6/f,,\n")

	inputs, err := ReadInputs(dir)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, filepath.Join(dir, "a", "first.csv"), inputs[0].Path)
	assert.Len(t, inputs[0].Rows, 2)
	assert.Equal(t, "2001", inputs[0].Rows[0].CitedDate)
	assert.Equal(t, "https://example.org/dump", inputs[1].Meta.Source)

	require.NoError(t, os.Remove(filepath.Join(dir, "a", "first.json")))
	_, err = ReadInputs(dir)
	assert.Error(t, err)

	_, err = ReadInputs(filepath.Join(dir, "b", "second.json"))
	assert.Error(t, err)
}

func TestMonthDir(t *testing.T) {
	assert.Equal(t, filepath.Join("2019", "05"), monthDir("2019-05-03T10:00:00"))
	assert.Equal(t, "2019", monthDir("2019"))
}
