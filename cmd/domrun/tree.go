package main

import (
	"fmt"
	"strings"

	"github.com/wippyai/dombind/binding"
)

type treeRow struct {
	node  *binding.Node
	label string
	depth int
}

// treeRows flattens the subtree under root in document order.
func treeRows(root *binding.Node) []treeRow {
	var rows []treeRow
	var walk func(n *binding.Node, depth int)
	walk = func(n *binding.Node, depth int) {
		rows = append(rows, treeRow{node: n, label: nodeLabel(n), depth: depth})
		for _, c := range n.ChildNodes() {
			walk(c, depth+1)
		}
	}
	walk(root, 0)
	return rows
}

func nodeLabel(n *binding.Node) string {
	switch n.NodeType() {
	case binding.ElementNode:
		return "<" + strings.ToLower(n.NodeName()) + ">"
	case binding.TextNode:
		return fmt.Sprintf("%q", n.TextContent())
	default:
		return n.NodeName()
	}
}

func renderTree(rows []treeRow) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(strings.Repeat("  ", r.depth))
		b.WriteString(r.label)
		b.WriteByte('\n')
	}
	return b.String()
}
