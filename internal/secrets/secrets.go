// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// The filename is the key and the trimmed file contents are the value.
//
// Supported keys: classifier-api-key.
package secrets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/recipe-engine/internal/log"
)

// ClassifierAPIKey is the bearer token sent to a remote classifier.
const ClassifierAPIKey = "classifier-api-key"

// Secrets holds loaded credentials by key.
type Secrets map[string]string

// Load reads every regular, non-hidden file in dir. A missing directory
// yields an empty set. Unreadable files are logged and skipped.
func Load(ctx context.Context, dir string) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := Secrets{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn(ctx, "could not read secret", "key", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// Get returns the value for key, or "" when absent.
func (s Secrets) Get(key string) string {
	return s[key]
}

// Keys returns the loaded key names in sorted order. Values are never
// listed so that the result is safe to log.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
