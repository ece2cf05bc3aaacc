// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files. Each
// file is one secret: the filename is the key name and the trimmed file
// contents are the value.
//
// Supported key files: orcid-api-key.
package secrets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultDir is where the CLI looks for key files.
const DefaultDir = ".secrets/"

// ORCIDKey is the key file holding the ORCID public API bearer token.
const ORCIDKey = "orcid-api-key"

// envNames maps key files to the environment variables that may carry the
// same secret, e.g. from a .env file.
var envNames = map[string]string{
	ORCIDKey: "ORCID_API_KEY",
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, eris.Wrapf(err, "reading secrets directory %s", dir)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			zap.L().Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Lookup returns the secret named key: explicit wins, then the key file,
// then the matching environment variable.
func Lookup(secrets map[string]string, key, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v, ok := secrets[key]; ok {
		return v
	}
	if env, ok := envNames[key]; ok {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}
