// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package snapshot

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	holoerr "github.com/holocron-dev/holocron/pkg/errors"
)

// Format selects the decoder for a snapshot payload.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor infers the payload format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", holoerr.Errorf(holoerr.CodeSnapshotParseInvalidFormat,
			"snapshot %s: unsupported extension %q (want .json, .yaml or .yml)", path, filepath.Ext(path))
	}
}

// Load reads and decodes the snapshot file at path.
func Load(path string) (*Snapshot, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, holoerr.Errorf(holoerr.CodeSnapshotLoadReadFailure, "reading snapshot %s: %w", path, err)
	}

	snap, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, holoerr.With(err, holoerr.Field("path", path))
	}
	return snap, nil
}

// Decode parses a snapshot payload in the given format.
func Decode(r io.Reader, format Format) (*Snapshot, error) {
	var snap Snapshot
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&snap); err != nil {
			return nil, holoerr.Errorf(holoerr.CodeSnapshotParseInvalidFormat, "decoding json snapshot: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&snap); err != nil && err != io.EOF {
			return nil, holoerr.Errorf(holoerr.CodeSnapshotParseInvalidFormat, "decoding yaml snapshot: %w", err)
		}
	default:
		return nil, holoerr.Errorf(holoerr.CodeSnapshotParseInvalidFormat, "unsupported snapshot format %q", format)
	}
	return &snap, nil
}
