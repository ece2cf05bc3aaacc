// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"encoding/json"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.yaml.in/yaml/v3"
)

// Export formats.
const (
	ExportYAML = "yaml"
	ExportJSON = "json"
	ExportCSV  = "csv"
)

// Export writes the entries matching opts to w. Limit defaults to no
// limit here.
func (s *Store) Export(ctx context.Context, w io.Writer, format string, opts QueryOptions) error {
	if opts.Limit == 0 {
		opts.Limit = -1
	}
	entries, err := s.List(ctx, opts)
	if err != nil {
		return eris.Wrap(err, "querying for export")
	}
	if entries == nil {
		entries = []Entry{}
	}

	var data []byte
	switch format {
	case ExportYAML:
		data, err = yaml.Marshal(entries)
	case ExportJSON:
		data, err = json.MarshalIndent(entries, "", "  ")
		data = append(data, '\n')
	case ExportCSV:
		data, err = csvutil.Marshal(entries)
	default:
		return eris.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return eris.Wrapf(err, "marshaling %s", format)
	}
	_, err = w.Write(data)
	return err
}
