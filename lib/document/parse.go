// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// maxAliasDepth bounds nesting through aliases. yaml.v3 already
// rejects self-referencing anchors.
const maxAliasDepth = 100

// Expanding aliases may convert at most expansionRatio times the
// number of nodes in the source document, plus expansionFloor.
const (
	expansionRatio = 10
	expansionFloor = 10000
)

// ErrExpansionTooLarge reports a document whose aliases expand past
// the conversion budget.
var ErrExpansionTooLarge = errors.New("document expands too far through aliases")

// Parse decodes a single YAML document. An empty document is null.
//
// Scalars resolve with the usual YAML 1.1-compatible rules, except
// that timestamps stay strings. Merge keys ("<<") are honored.
func Parse(data []byte) (Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Value{}, err
	}
	if root.Kind == 0 {
		return Value{}, nil
	}
	conv := &converter{budget: expansionFloor + expansionRatio*countNodes(&root)}
	raw, err := conv.node(&root, 0)
	if err != nil {
		return Value{}, err
	}
	return Value{raw: raw}, nil
}

// countNodes counts the nodes written in the document, without
// following aliases.
func countNodes(node *yaml.Node) int {
	count := 1
	for _, child := range node.Content {
		count += countNodes(child)
	}
	return count
}

// converter turns a yaml.Node tree into plain Go values, charging
// every converted node against budget.
type converter struct {
	budget int
}

func (c *converter) node(node *yaml.Node, depth int) (any, error) {
	if depth > maxAliasDepth {
		return nil, fmt.Errorf("line %d: document nesting too deep", node.Line)
	}
	if c.budget--; c.budget < 0 {
		return nil, fmt.Errorf("line %d: %w", node.Line, ErrExpansionTooLarge)
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return c.node(node.Content[0], depth+1)

	case yaml.AliasNode:
		if node.Alias == nil {
			return nil, fmt.Errorf("line %d: unresolved alias", node.Line)
		}
		return c.node(node.Alias, depth+1)

	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := c.node(child, depth+1)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil

	case yaml.MappingNode:
		return c.mapping(node, depth)

	case yaml.ScalarNode:
		return convertScalar(node)

	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", node.Line, node.Kind)
	}
}

func (c *converter) mapping(node *yaml.Node, depth int) (any, error) {
	fields := make(map[string]any, len(node.Content)/2)
	var merged []map[string]any

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.ShortTag() == "!!merge" {
			sources, err := c.mergeSources(valueNode, depth)
			if err != nil {
				return nil, err
			}
			merged = append(merged, sources...)
			continue
		}

		key, err := c.node(keyNode, depth+1)
		if err != nil {
			return nil, err
		}
		switch key.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
		}
		value, err := c.node(valueNode, depth+1)
		if err != nil {
			return nil, err
		}
		fields[scalarKey(key)] = value
	}

	// Explicit keys win over merged ones; earlier merge sources win
	// over later ones.
	for _, source := range merged {
		for key, value := range source {
			if _, exists := fields[key]; !exists {
				fields[key] = value
			}
		}
	}
	return fields, nil
}

func (c *converter) mergeSources(node *yaml.Node, depth int) ([]map[string]any, error) {
	value, err := c.node(node, depth+1)
	if err != nil {
		return nil, err
	}
	switch value := value.(type) {
	case map[string]any:
		return []map[string]any{value}, nil
	case []any:
		sources := make([]map[string]any, 0, len(value))
		for _, item := range value {
			source, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("line %d: merge sequence must contain only mappings", node.Line)
			}
			sources = append(sources, source)
		}
		return sources, nil
	default:
		return nil, fmt.Errorf("line %d: merge value must be a mapping", node.Line)
	}
}

func scalarKey(key any) string {
	switch key := key.(type) {
	case nil:
		return "null"
	case string:
		return key
	case bool:
		if key {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(key)
	}
}

func convertScalar(node *yaml.Node) (any, error) {
	if node.ShortTag() == "!!timestamp" {
		return node.Value, nil
	}
	var value any
	if err := node.Decode(&value); err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}
	return normalize(value), nil
}
