// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk layout of a node type catalog. JSON catalogs
// are read through the YAML decoder.
type catalogFile struct {
	NodeTypes map[string]NodeTypeSchema `yaml:"node_types"`
}

// ParseCatalog decodes a YAML or JSON catalog. Unknown keys are rejected so
// typos in schema files surface at startup.
func ParseCatalog(data []byte) (map[string]NodeTypeSchema, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty catalog payload")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var file catalogFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.NodeTypes) == 0 {
		return nil, fmt.Errorf("catalog declares no node_types")
	}
	return file.NodeTypes, nil
}

// LoadCatalog reads a catalog file from disk.
func LoadCatalog(path string) (map[string]NodeTypeSchema, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("catalog path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

// LoadRegistry returns the default registry extended with the node types
// declared in path. An empty path returns the default registry.
func LoadRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	extra, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return Default().Extend(extra)
}
