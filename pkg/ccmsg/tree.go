// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Grid Tools

package ccmsg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/clbanning/mxj/v2"
)

// node is one object of the generic parsed tree: tag name to child value.
// A child is a scalar string, a nested node, or a list when the same tag
// repeats as a sibling. Single-occurrence siblings are never promoted to a
// one-element list, which is exactly why Envy history bypasses the tree
// (see history.go).
type node = map[string]interface{}

// parseTree converts raw markup text into the generic tree
func parseTree(raw []byte) (node, error) {
	m, err := mxj.NewMapXml(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return node(m), nil
}

// childNode returns the named child if it is a nested object
func childNode(n node, key string) (node, bool) {
	child, ok := n[key].(map[string]interface{})
	return child, ok
}

// childScalar returns the named child if it is a scalar string
func childScalar(n node, key string) (string, bool) {
	s, ok := n[key].(string)
	return s, ok
}

// intField coerces the named scalar to an integer; non-numeric or missing
// yields zero
func intField(n node, key string) int {
	s, _ := childScalar(n, key)
	return atoiDefault(s)
}

func atoiDefault(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

func atofDefault(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
