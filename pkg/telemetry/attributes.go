// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides OpenTelemetry and slog integration for workflow
// validation.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys for AgentDeck spans and metrics.
const (
	AttrRunID      = "agentdeck.validation.run_id"
	AttrFormat     = "agentdeck.validation.format"
	AttrSource     = "agentdeck.validation.source"
	AttrStrict     = "agentdeck.validation.strict"
	AttrValid      = "agentdeck.validation.valid"
	AttrStage      = "agentdeck.validation.stage"
	AttrIssueCount = "agentdeck.validation.issue_count"
	AttrIssueScope = "agentdeck.validation.issue_scope"
	AttrOutcome    = "agentdeck.validation.outcome"
	AttrDocument   = "agentdeck.workflow.name"
	AttrNodeCount  = "agentdeck.workflow.node_count"
	AttrEdgeCount  = "agentdeck.workflow.edge_count"

	AttrPlatformOp     = "agentdeck.platform.operation"
	AttrPlatformStatus = "agentdeck.platform.status"
)

// Validation outcomes recorded on the validations counter.
const (
	OutcomeValid      = "valid"
	OutcomeInvalid    = "invalid"
	OutcomeParseError = "parse_error"
)

// ValidationAttributes returns the attributes set on a validation span when
// it starts.
func ValidationAttributes(runID, format, source string, strict bool) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrRunID, runID),
		attribute.String(AttrFormat, format),
		attribute.Bool(AttrStrict, strict),
	}
	if source != "" {
		attrs = append(attrs, attribute.String(AttrSource, source))
	}
	return attrs
}

// ResultAttributes returns the attributes describing a finished validation.
func ResultAttributes(valid bool, stage string, issues int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(AttrValid, valid),
		attribute.String(AttrStage, stage),
		attribute.Int(AttrIssueCount, issues),
	}
}

// DocumentAttributes describes the workflow being validated. Empty names
// are omitted.
func DocumentAttributes(name string, nodes, edges int) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if name != "" {
		attrs = append(attrs, attribute.String(AttrDocument, Truncate(name, 128)))
	}
	if nodes >= 0 {
		attrs = append(attrs, attribute.Int(AttrNodeCount, nodes))
	}
	if edges >= 0 {
		attrs = append(attrs, attribute.Int(AttrEdgeCount, edges))
	}
	return attrs
}

// Truncate shortens s to maxLen bytes, appending "..." when cut.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
