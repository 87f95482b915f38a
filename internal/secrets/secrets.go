// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and contact addresses from a directory of
// plain-text files. Each file in the directory represents one secret: the
// filename is the key name and the file contents (trimmed) are the value.
//
// Supported key files: ncbi-api-key, ncbi-email, crossref-mailto.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets"

// Supported secret file names.
const (
	NCBIAPIKey     = "ncbi-api-key"
	NCBIEmail      = "ncbi-email"
	CrossrefMailto = "crossref-mailto"
)

// ConfigKeys maps each supported secret file to the configuration key it
// fills.
var ConfigKeys = map[string]string{
	NCBIAPIKey:     "pubmed.api_key",
	NCBIEmail:      "pubmed.email",
	CrossrefMailto: "resolver.mailto",
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
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
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply passes each loaded secret with a known configuration key to set,
// in key order, and returns the names of secrets it did not recognize.
func Apply(secrets map[string]string, set func(key string, value any)) []string {
	names := make([]string, 0, len(secrets))
	for name := range secrets {
		names = append(names, name)
	}
	sort.Strings(names)

	var unknown []string
	for _, name := range names {
		key, ok := ConfigKeys[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		set(key, secrets[name])
	}
	return unknown
}
