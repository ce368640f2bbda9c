// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

// Package workflow validates agent workflow definitions before they are
// submitted to the agent platform.
//
// A definition is a JSON (or YAML) document with a name, an ordered list of
// nodes and an ordered list of edges connecting node outputs to node inputs.
// Validation runs as a fixed pipeline:
//
//	start -> parsed -> structure_checked -> nodes_checked -> edges_checked -> contract_checked -> done
//	start -> failed (the text could not be parsed)
//
// A parse failure is terminal and yields exactly one issue. Every later
// stage always runs, so a single call reports every problem it can find.
// Findings never surface as Go errors: they are Issues inside a Result, in
// stage order and then input order.
//
// Validators are stateless and safe for concurrent use. Service adds
// tracing, metrics, logging and an audit trail around a Validator.
package workflow
