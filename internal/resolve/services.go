// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"

	"github.com/rotisserie/eris"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/oci-engine/internal/accesspath"
	"github.com/pdiddy/oci-engine/pkg/types"
)

// servicesFile is the document shape of a descriptor file. A bare list of
// descriptors is accepted too.
type servicesFile struct {
	Services []types.ServiceDescriptor `json:"services" yaml:"services"`
}

// LoadServices reads descriptors from a JSON or YAML file. A missing file
// returns ErrNoServices.
func LoadServices(path string) ([]types.ServiceDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, eris.Wrapf(ErrNoServices, "path %s", path)
		}
		return nil, eris.Wrapf(err, "reading services %s", path)
	}
	return ParseServices(data)
}

// ParseServices decodes and checks a descriptor document.
func ParseServices(data []byte) ([]types.ServiceDescriptor, error) {
	var services []types.ServiceDescriptor
	var err error
	if json.Valid(data) {
		services, err = decodeJSON(data)
	} else {
		services, err = decodeYAML(data)
	}
	if err != nil {
		return nil, err
	}

	if services == nil {
		services = []types.ServiceDescriptor{}
	}
	for _, s := range services {
		if err := checkDescriptor(s); err != nil {
			return nil, err
		}
	}
	return services, nil
}

func decodeJSON(data []byte) ([]types.ServiceDescriptor, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var services []types.ServiceDescriptor
		if err := json.Unmarshal(trimmed, &services); err != nil {
			return nil, eris.Wrap(err, "decoding services")
		}
		return services, nil
	}
	var f servicesFile
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, eris.Wrap(err, "decoding services")
	}
	return f.Services, nil
}

func decodeYAML(data []byte) ([]types.ServiceDescriptor, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "parsing services")
	}
	if len(doc.Content) == 0 {
		return nil, eris.Wrap(ErrNoServices, "empty services document")
	}

	var services []types.ServiceDescriptor
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&services); err != nil {
			return nil, eris.Wrap(err, "decoding services")
		}
	default:
		var f servicesFile
		if err := root.Decode(&f); err != nil {
			return nil, eris.Wrap(err, "decoding services")
		}
		services = f.Services
	}
	return services, nil
}

func checkDescriptor(s types.ServiceDescriptor) error {
	if err := s.Check(); err != nil {
		return eris.Wrap(err, "invalid service")
	}
	for _, name := range s.Preprocess {
		if _, err := accesspath.ParseOp(name); err != nil {
			return eris.Wrapf(err, "service %q preprocess", s.Name)
		}
	}
	if p := s.Query.Paths; p != nil {
		for _, list := range [][]string{p.Citing, p.Cited, p.CitingDate, p.CitedDate, p.Creation, p.Timespan} {
			for _, path := range list {
				if err := accesspath.Check(path); err != nil {
					return eris.Wrapf(err, "service %q", s.Name)
				}
			}
		}
	}
	return nil
}
