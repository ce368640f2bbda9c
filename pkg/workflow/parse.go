// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import "github.com/jllopis/agentdeck/pkg/workflow/jsonvalue"

type parseFailure struct {
	code    Code
	message string
}

// parse decodes raw text. Failures are terminal for the pipeline.
func parse(data []byte, format Format) (jsonvalue.Value, *parseFailure) {
	if format == FormatYAML {
		root, err := jsonvalue.ParseYAML(data)
		if err != nil {
			return jsonvalue.Value{}, &parseFailure{code: CodeInvalidYAML, message: "Invalid YAML format: " + err.Error()}
		}
		return root, nil
	}
	root, err := jsonvalue.ParseJSON(data)
	if err != nil {
		return jsonvalue.Value{}, &parseFailure{code: CodeInvalidJSON, message: "Invalid JSON format: " + err.Error()}
	}
	return root, nil
}
