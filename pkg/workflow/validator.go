// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jllopis/agentdeck/pkg/workflow/jsonvalue"
	"github.com/jllopis/agentdeck/pkg/workflow/schema"
)

// Stage is a step of the validation pipeline.
type Stage string

const (
	StageStart               Stage = "start"
	StageParsed              Stage = "parsed"
	StageStructurallyChecked Stage = "structure_checked"
	StageNodesChecked        Stage = "nodes_checked"
	StageEdgesChecked        Stage = "edges_checked"
	StageContractChecked     Stage = "contract_checked"
	StageDone                Stage = "done"
	StageFailed              Stage = "failed"
)

// Format is the encoding of a workflow document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a user-supplied name to a Format. Unknown names fall
// back to JSON.
func ParseFormat(name string) Format {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) Format {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Options toggles checks beyond the baseline rule set. All are off by
// default so that documents accepted by the platform API stay valid.
type Options struct {
	// RejectDuplicateIDs reports nodes that reuse an earlier node's id.
	RejectDuplicateIDs bool
	// CheckConfigTypes validates config values against the field schemas.
	CheckConfigTypes bool
	// CheckDocumentTypes validates the optional description and config
	// document fields.
	CheckDocumentTypes bool
}

// StrictOptions enables every optional check.
func StrictOptions() Options {
	return Options{RejectDuplicateIDs: true, CheckConfigTypes: true, CheckDocumentTypes: true}
}

// Option configures a Validator.
type Option func(*Validator)

// WithOptions replaces the optional check set.
func WithOptions(opts Options) Option {
	return func(v *Validator) {
		v.opts = opts
	}
}

// WithStrict enables or disables every optional check.
func WithStrict(strict bool) Option {
	return func(v *Validator) {
		if strict {
			v.opts = StrictOptions()
		} else {
			v.opts = Options{}
		}
	}
}

// Validator checks workflow documents against a schema registry. It holds
// no mutable state and is safe for concurrent use.
type Validator struct {
	registry *schema.Registry
	opts     Options
}

// New creates a validator. A nil registry selects schema.Default().
func New(registry *schema.Registry, opts ...Option) *Validator {
	if registry == nil {
		registry = schema.Default()
	}
	v := &Validator{registry: registry}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Registry returns the registry the validator resolves node types with.
func (v *Validator) Registry() *schema.Registry { return v.registry }

// Options returns the enabled optional checks.
func (v *Validator) Options() Options { return v.opts }

var defaultValidator = New(nil)

// Validate checks a JSON document with the default registry and baseline
// rules.
func Validate(text string) Result {
	return defaultValidator.Validate(text)
}

// Validate checks a JSON document.
func (v *Validator) Validate(text string) Result {
	res, _ := v.run([]byte(text), FormatJSON, nil)
	return res
}

// ValidateBytes checks a document in the given format.
func (v *Validator) ValidateBytes(data []byte, format Format) Result {
	res, _ := v.run(data, format, nil)
	return res
}

// ValidateFile reads and checks a document, choosing the format from the
// file extension. Only read failures are returned as errors.
func (v *Validator) ValidateFile(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	res, _ := v.run(data, FormatFromPath(path), nil)
	return res, nil
}

// ValidateValue checks an already parsed document.
func (v *Validator) ValidateValue(root jsonvalue.Value) Result {
	res, _ := v.check(root, &collector{}, nil)
	return res
}

// stageHook observes pipeline transitions along with the running issue
// count.
type stageHook func(stage Stage, issues int)

// run parses and checks a document. The projected Document is returned
// for callers that annotate telemetry; it is empty when parsing failed.
func (v *Validator) run(data []byte, format Format, hook stageHook) (Result, Document) {
	c := &collector{}
	notify(hook, StageStart, c)

	root, err := parse(data, format)
	if err != nil {
		c.add(ScopeParse, -1, "", err.code, err.message)
		notify(hook, StageFailed, c)
		return c.result(StageFailed), Document{}
	}
	notify(hook, StageParsed, c)
	return v.check(root, c, hook)
}

// check runs every post-parse stage. Stages never short-circuit: each one
// works from whatever the earlier stages could establish.
func (v *Validator) check(root jsonvalue.Value, c *collector, hook stageHook) (Result, Document) {
	doc := Project(root)

	checkStructure(c, doc, v.opts)
	notify(hook, StageStructurallyChecked, c)

	ids := checkNodes(c, doc, v.registry, v.opts)
	notify(hook, StageNodesChecked, c)

	checkEdges(c, doc, ids)
	notify(hook, StageEdgesChecked, c)

	checkContract(c, doc)
	notify(hook, StageContractChecked, c)

	notify(hook, StageDone, c)
	return c.result(StageDone), doc
}

func notify(hook stageHook, stage Stage, c *collector) {
	if hook != nil {
		hook(stage, len(c.issues))
	}
}
