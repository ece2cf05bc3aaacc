// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/pdiddy/oci-engine/internal/render"
	"github.com/pdiddy/oci-engine/pkg/types"
)

// Output appends produced citations to the corpus tree:
//
//	<data>/csv/YYYY/MM/<stamp>.csv      data rows
//	<data>/rdf/YYYY/MM/<stamp>.ttl      data triples (N-Triples)
//	<data>/../prov/csv/YYYY/MM/...      provenance rows and triples
//
// stamp is the provenance timestamp of the run.
type Output struct {
	DataDir    string
	CorpusBase string
}

// Store writes the data and provenance records of c.
func (o Output) Store(c *types.Citation, stamp string) error {
	row, err := render.CSV(c)
	if err != nil {
		return err
	}
	nt := render.RDF(c, o.CorpusBase, render.Parts{}).NTriples()
	if err := o.store(o.DataDir, stamp, row, nt); err != nil {
		return err
	}

	provRow, err := render.CSVProv(c)
	if err != nil {
		return err
	}
	provNT := render.ProvRDF(c, o.CorpusBase).NTriples()
	return o.store(filepath.Join(o.DataDir, "..", "prov"), stamp, provRow, provNT)
}

func (o Output) store(root, stamp, csvRows, nt string) error {
	sub := monthDir(stamp)
	csvDir := filepath.Join(root, "csv", sub)
	rdfDir := filepath.Join(root, "rdf", sub)
	for _, d := range []string{csvDir, rdfDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return eris.Wrapf(err, "creating %s", d)
		}
	}

	csvPath := filepath.Join(csvDir, stamp+".csv")
	if _, err := os.Stat(csvPath); err == nil {
		_, csvRows, _ = strings.Cut(csvRows, "\n")
	}
	if err := appendFile(csvPath, csvRows); err != nil {
		return err
	}
	return appendFile(filepath.Join(rdfDir, stamp+".ttl"), nt)
}

// monthDir turns "2019-05-03T..." into "2019/05".
func monthDir(stamp string) string {
	if len(stamp) < 7 {
		return stamp
	}
	return filepath.FromSlash(strings.Replace(stamp[:7], "-", "/", 1))
}

func appendFile(path, data string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "opening %s", path)
	}
	if _, err := f.WriteString(data); err != nil {
		f.Close()
		return eris.Wrapf(err, "writing %s", path)
	}
	return f.Close()
}
