// Package excellon implements the Excellon/XNC drill-and-rout format:
// dialect-aware parsing, a tool table, and a canonical emitter (spec.md
// §4.3-§4.5, §4.8).
package excellon

import (
	"sort"

	"github.com/gerbonara-go/gerbonara/cam"
)

// Plating classifies a tool's hole plating, when known.
type Plating int

const (
	PlatingUnknown Plating = iota
	Plated
	NonPlated
)

// Tool is one entry of the tool table: a drill/rout diameter plus optional
// plating, depth offset, and feed/speed metadata some dialects carry.
type Tool struct {
	Diameter    float64
	Plating     Plating
	DepthOffset float64
	Feed        float64
	Speed       float64
}

// ToolTable is the index->Tool mapping. Per spec.md §3.5, a tool index is
// write-once: redefining an already-defined index only warns, it does not
// error, since several dialects re-emit the header's tool list before the
// drilling section.
type ToolTable struct {
	byIndex map[int]Tool
}

// NewToolTable returns an empty tool table.
func NewToolTable() *ToolTable {
	return &ToolTable{byIndex: make(map[int]Tool)}
}

// Define records index -> tool. If index is already defined with a
// different diameter, sink receives a ResourceWarning and the original
// definition is kept (spec.md §3.5 "write-once with redefinition warning").
func (t *ToolTable) Define(index int, tool Tool, sink cam.Sink) {
	if existing, ok := t.byIndex[index]; ok {
		if existing.Diameter != tool.Diameter {
			sink("tool redefinition ignored (index already defined with a different diameter)", cam.ResourceWarning)
		}
		return
	}
	t.byIndex[index] = tool
}

// Lookup resolves a tool index.
func (t *ToolTable) Lookup(index int) (Tool, bool) {
	tool, ok := t.byIndex[index]
	return tool, ok
}

// Indices returns every defined tool index in ascending order.
func (t *ToolTable) Indices() []int {
	out := make([]int, 0, len(t.byIndex))
	for idx := range t.byIndex {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Count returns the number of defined tools, used to detect approach of the
// traditional 99-tool dialect ceiling (spec.md §3.5 boundary case).
func (t *ToolTable) Count() int {
	return len(t.byIndex)
}
