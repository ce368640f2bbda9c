// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jllopis/agentdeck/pkg/workflow/schema"
)

type nodeTypeRow struct {
	Type string `json:"type"`
	schema.NodeTypeSchema
}

func (c *cli) runNodeTypes(args []string) int {
	if len(args) > 1 {
		return c.fail(NewInvalidArgumentError("node-types", "usage: agentdeck node-types [type]"))
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return c.fail(err)
	}
	registry, err := schema.LoadRegistry(cfg.Validation.Catalog)
	if err != nil {
		return c.fail(NewConfigError(err, cfg.Validation.Catalog))
	}

	if len(args) == 1 {
		def, ok := registry.Lookup(args[0])
		if !ok {
			return c.fail(NewNotFoundError("node type", args[0], "node-types"))
		}
		if c.flags.JSON {
			c.printJSON(nodeTypeRow{Type: args[0], NodeTypeSchema: def})
			return exitOK
		}
		c.printNodeType(args[0], def)
		return exitOK
	}

	rows := make([]nodeTypeRow, 0, registry.Len())
	for _, name := range registry.Types() {
		def, _ := registry.Lookup(name)
		rows = append(rows, nodeTypeRow{Type: name, NodeTypeSchema: def})
	}
	if c.flags.JSON {
		c.printJSON(rows)
		return exitOK
	}
	writer := c.newTabWriter()
	writeRow(writer, "TYPE", "REQUIRED", "DESCRIPTION")
	for _, row := range rows {
		writeRow(writer, row.Type, strings.Join(row.Required, ","), row.Description)
	}
	_ = writer.Flush()
	return exitOK
}

func (c *cli) printNodeType(name string, def schema.NodeTypeSchema) {
	fmt.Fprintln(c.stdout, name)
	if def.Description != "" {
		fmt.Fprintf(c.stdout, "  %s\n", def.Description)
	}
	props := make([]string, 0, len(def.Properties))
	for prop := range def.Properties {
		props = append(props, prop)
	}
	sort.Strings(props)

	writer := c.newTabWriter()
	writeRow(writer, "PROPERTY", "TYPE", "REQUIRED", "DESCRIPTION")
	for _, prop := range props {
		field := def.Properties[prop]
		required := "no"
		for _, r := range def.Required {
			if r == prop {
				required = "yes"
			}
		}
		writeRow(writer, prop, string(field.Kind), required, field.Description)
	}
	_ = writer.Flush()
}
