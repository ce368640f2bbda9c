// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "sync"

// Node type names understood by the agent platform.
const (
	TypeLLM           = "LLMNode"
	TypeHTTPRequest   = "HttpRequestNode"
	TypeFileParser    = "FileParserNode"
	TypeDataTransform = "DataTransformNode"
	TypeInput         = "InputNode"
	TypeOutput        = "OutputNode"
)

func bound(f float64) *float64 { return &f }

// DefaultCatalog returns the built-in node type schemas.
func DefaultCatalog() map[string]NodeTypeSchema {
	return map[string]NodeTypeSchema{
		TypeLLM: {
			Description: "Calls a language model with an optional tool set and conversation memory.",
			Properties: map[string]FieldSchema{
				"model":         {Kind: KindString},
				"system_prompt": {Kind: KindString},
				"tools": {
					Kind: KindArray,
					Items: &FieldSchema{
						Kind:     KindObject,
						Required: []string{"name", "description"},
						Properties: map[string]FieldSchema{
							"name":        {Kind: KindString},
							"description": {Kind: KindString},
							"parameters":  {Kind: KindObject},
						},
					},
				},
				"max_tokens":         {Kind: KindInteger, Minimum: bound(1)},
				"temperature":        {Kind: KindNumber, Minimum: bound(0), Maximum: bound(2)},
				"memory_enabled":     {Kind: KindBoolean},
				"memory_window_size": {Kind: KindInteger, Minimum: bound(1)},
			},
		},
		TypeHTTPRequest: {
			Description: "Performs an outbound HTTP request.",
			Properties: map[string]FieldSchema{
				"method":        {Kind: KindString, Enum: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"}},
				"url":           {Kind: KindString},
				"headers":       {Kind: KindObject},
				"timeout":       {Kind: KindInteger, Minimum: bound(1)},
				"retry_count":   {Kind: KindInteger, Minimum: bound(0)},
				"retry_backoff": {Kind: KindNumber, Minimum: bound(1)},
				"verify_ssl":    {Kind: KindBoolean},
			},
		},
		TypeFileParser: {
			Description: "Extracts structured content from uploaded files.",
			Properties: map[string]FieldSchema{
				"file_type":         {Kind: KindString, Enum: []string{"auto", "json", "csv", "yaml", "xml", "text"}},
				"csv_delimiter":     {Kind: KindString},
				"csv_quotechar":     {Kind: KindString},
				"encoding":          {Kind: KindString},
				"strict_mode":       {Kind: KindBoolean},
				"supported_formats": {Kind: KindArray, Items: &FieldSchema{Kind: KindString}},
				"extraction_mode":   {Kind: KindString},
				"table_extraction":  {Kind: KindBoolean},
				"ocr_enabled":       {Kind: KindBoolean},
				"max_file_size_mb":  {Kind: KindNumber},
			},
		},
		TypeDataTransform: {
			Description: "Reshapes data flowing between nodes.",
			Properties: map[string]FieldSchema{
				"transformations": {
					Kind: KindOneOf,
					OneOf: []FieldSchema{
						{Kind: KindObject},
						{Kind: KindArray, Items: &FieldSchema{Kind: KindObject}},
					},
				},
				"default_values": {Kind: KindObject},
				"output_schema":  {Kind: KindObject},
			},
		},
		TypeInput: {
			Description: "Entry point declaring the fields a caller supplies.",
			Properties: map[string]FieldSchema{
				"input_fields": {Kind: KindArray, Items: &FieldSchema{Kind: KindString}},
			},
		},
		TypeOutput: {
			Description: "Exit point declaring the fields returned to the caller.",
			Properties: map[string]FieldSchema{
				"output_fields": {Kind: KindArray, Items: &FieldSchema{Kind: KindString}},
			},
		},
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared built-in registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = MustNewRegistry(DefaultCatalog())
	})
	return defaultRegistry
}
