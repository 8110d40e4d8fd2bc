// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes the authors and publications tables to disk and
// reads them back. YAML and JSON files are lossless and are what later runs
// merge; the ';'-separated CSV files are for spreadsheets.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// File name suffixes of one download run.
const (
	AuthorsSuffix      = "_auth.yaml"
	PublicationsSuffix = "_pubs.yaml"
	NoCitesSuffix      = "_no_cites.csv"
	ExportSuffix       = "_export.csv"
)

// Paths are the files written for one named run.
type Paths struct {
	Authors      string
	Publications string
	NoCites      string
	Export       string
}

// NewPaths returns the file locations for run name under dir.
func NewPaths(dir, name string) Paths {
	base := filepath.Join(dir, name)
	return Paths{
		Authors:      base + AuthorsSuffix,
		Publications: base + PublicationsSuffix,
		NoCites:      base + NoCitesSuffix,
		Export:       base + ExportSuffix,
	}
}

// WriteTable marshals rows to path, as JSON when the extension is .json and
// as YAML otherwise. Parent directories are created.
func WriteTable[T any](path string, rows []T) error {
	if rows == nil {
		rows = []T{}
	}

	var data []byte
	var err error
	if isJSON(path) {
		data, err = json.MarshalIndent(rows, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	} else {
		data, err = yaml.Marshal(rows)
	}
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadTable reads rows written by WriteTable.
func ReadTable[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var rows []T
	if isJSON(path) {
		err = json.Unmarshal(data, &rows)
	} else {
		err = yaml.Unmarshal(data, &rows)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rows, nil
}

// Merge concatenates lists and drops rows whose key was already seen, so the
// first occurrence of every key wins.
func Merge[T any](key func(T) string, lists ...[]T) []T {
	seen := make(map[string]bool)
	var out []T
	for _, list := range lists {
		for _, row := range list {
			k := key(row)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, row)
		}
	}
	return out
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
