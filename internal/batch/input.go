// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.yaml.in/yaml/v3"
)

// Row is one line of an input CSV.
type Row struct {
	CitingID   string `csv:"citing_id"`
	CitedID    string `csv:"cited_id"`
	CitingDate string `csv:"citing_publication_date"`
	CitedDate  string `csv:"cited_publication_date"`
}

// Meta is the sidecar <name>.json describing where an input CSV came from.
type Meta struct {
	// Agent is the IRI of whoever supplied the data, usually an ORCID.
	Agent string `json:"agent" yaml:"agent"`

	// Source is the IRI of the original data dump.
	Source string `json:"source" yaml:"source"`
}

// Input is one CSV file with its metadata.
type Input struct {
	Path string
	Rows []Row
	Meta Meta
}

// ReadInputs loads path, which is a CSV file or a directory searched
// recursively for CSV files. Every CSV needs a sidecar file with the same
// name and a .json extension.
func ReadInputs(path string) ([]Input, error) {
	files, err := csvFiles(path)
	if err != nil {
		return nil, err
	}

	inputs := make([]Input, 0, len(files))
	for _, f := range files {
		in, err := readInput(f)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func csvFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrapf(err, "input %s", path)
	}
	if !info.IsDir() {
		if !strings.HasSuffix(path, ".csv") {
			return nil, eris.Errorf("input %s is not a .csv file", path)
		}
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".csv") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "walking %s", path)
	}
	sort.Strings(files)
	return files, nil
}

func readInput(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, eris.Wrapf(err, "reading %s", path)
	}
	var rows []Row
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return Input{}, eris.Wrapf(err, "decoding %s", path)
	}

	metaPath := strings.TrimSuffix(path, ".csv") + ".json"
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return Input{}, eris.Wrapf(err, "reading metadata for %s", path)
	}
	var meta Meta
	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return Input{}, eris.Wrapf(err, "parsing %s", metaPath)
	}
	return Input{Path: path, Rows: rows, Meta: meta}, nil
}
