package dialogue

import (
	"fmt"
	"strings"
)

// Validation issue codes.
const (
	CodeOrphanedNode            = "ORPHANED_NODE"
	CodeEmptyDialogue           = "EMPTY_DIALOGUE"
	CodeMissingJumpTarget       = "MISSING_JUMP_TARGET"
	CodeInvalidJumpTarget       = "INVALID_JUMP_TARGET"
	CodeEmptyCondition          = "EMPTY_CONDITION"
	CodeEmptyInstruction        = "EMPTY_INSTRUCTION"
	CodeCycleDetected           = "CYCLE_DETECTED"
	CodeInvalidConnectionSource = "INVALID_CONNECTION_SOURCE"
	CodeInvalidConnectionTarget = "INVALID_CONNECTION_TARGET"
)

// Validate runs all validation passes over a graph snapshot and returns a
// categorized report. It never mutates the graph. Warnings do not affect
// validity; only errors do.
func Validate(g *Graph) ValidationReport {
	errors := []ValidationIssue{}
	warnings := []ValidationIssue{}

	nodeByID := make(map[string]*Node, len(g.Nodes))
	for i := range g.Nodes {
		nodeByID[g.Nodes[i].ID] = &g.Nodes[i]
	}

	// Orphan check. A single-node graph is trivially unconnected, so the
	// pass only runs with more than one node.
	if len(g.Nodes) > 1 {
		connected := make(map[string]bool, len(g.Nodes))
		for _, c := range g.Connections {
			connected[c.FromNodeID] = true
			connected[c.ToNodeID] = true
		}
		for i := range g.Nodes {
			node := &g.Nodes[i]
			if !connected[node.ID] {
				warnings = append(warnings, ValidationIssue{
					NodeID:   node.ID,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("Node '%s' is not connected to any other nodes", node.TechnicalName),
					Code:     CodeOrphanedNode,
				})
			}
		}
	}

	// Per-node semantic checks, in node order.
	for i := range g.Nodes {
		node := &g.Nodes[i]
		switch node.NodeType {
		case NodeDialogue, NodeDialogueFragment:
			if d := node.Data.Dialogue; d != nil && d.Speaker == "" && d.Text == "" {
				warnings = append(warnings, ValidationIssue{
					NodeID:   node.ID,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("Dialogue node '%s' has no speaker or text", node.TechnicalName),
					Code:     CodeEmptyDialogue,
				})
			}
		case NodeJump:
			j := node.Data.Jump
			if j == nil || j.TargetNodeID == "" {
				warnings = append(warnings, ValidationIssue{
					NodeID:   node.ID,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("Jump node '%s' has no target set", node.TechnicalName),
					Code:     CodeMissingJumpTarget,
				})
			} else if _, ok := nodeByID[j.TargetNodeID]; !ok {
				errors = append(errors, ValidationIssue{
					NodeID:   node.ID,
					Severity: SeverityError,
					Message:  fmt.Sprintf("Jump node '%s' references non-existent target", node.TechnicalName),
					Code:     CodeInvalidJumpTarget,
				})
			}
		case NodeCondition:
			if s := node.Data.Script; s != nil && strings.TrimSpace(s.Expression) == "" {
				warnings = append(warnings, ValidationIssue{
					NodeID:   node.ID,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("Condition node '%s' has empty expression", node.TechnicalName),
					Code:     CodeEmptyCondition,
				})
			}
		case NodeInstruction:
			if s := node.Data.Script; s != nil && strings.TrimSpace(s.Expression) == "" {
				warnings = append(warnings, ValidationIssue{
					NodeID:   node.ID,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("Instruction node '%s' has empty script", node.TechnicalName),
					Code:     CodeEmptyInstruction,
				})
			}
		}
	}

	// Cycle detection. Cycles are legal (hub loops) but flagged so authors
	// notice them. Reported in node order, once per participating node.
	cycleNodes := detectCycles(g)
	for i := range g.Nodes {
		node := &g.Nodes[i]
		if cycleNodes[node.ID] {
			warnings = append(warnings, ValidationIssue{
				NodeID:   node.ID,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Node '%s' is part of a cycle - may cause infinite loops", node.TechnicalName),
				Code:     CodeCycleDetected,
			})
		}
	}

	// Connections must reference existing nodes on both ends.
	for _, c := range g.Connections {
		if _, ok := nodeByID[c.FromNodeID]; !ok {
			errors = append(errors, ValidationIssue{
				ConnectionID: c.ID,
				Severity:     SeverityError,
				Message:      fmt.Sprintf("Connection references non-existent source node '%s'", c.FromNodeID),
				Code:         CodeInvalidConnectionSource,
			})
		}
		if _, ok := nodeByID[c.ToNodeID]; !ok {
			errors = append(errors, ValidationIssue{
				ConnectionID: c.ID,
				Severity:     SeverityError,
				Message:      fmt.Sprintf("Connection references non-existent target node '%s'", c.ToNodeID),
				Code:         CodeInvalidConnectionTarget,
			})
		}
	}

	return ValidationReport{
		IsValid:  len(errors) == 0,
		Errors:   errors,
		Warnings: warnings,
	}
}

// detectCycles returns the set of node ids that sit on at least one cycle,
// found by depth-first search with a recursion stack. When a back edge is
// met, both ends are marked and the signal propagates up the call chain so
// every node on the discovered path is marked.
func detectCycles(g *Graph) map[string]bool {
	adjacency := make(map[string][]string, len(g.Nodes))
	for i := range g.Nodes {
		adjacency[g.Nodes[i].ID] = nil
	}
	for _, c := range g.Connections {
		if _, ok := adjacency[c.FromNodeID]; ok {
			adjacency[c.FromNodeID] = append(adjacency[c.FromNodeID], c.ToNodeID)
		}
	}

	cycleNodes := make(map[string]bool)
	visited := make(map[string]bool, len(g.Nodes))
	onStack := make(map[string]bool)

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true

		for _, neighbor := range adjacency[id] {
			if !visited[neighbor] {
				if dfs(neighbor) {
					cycleNodes[id] = true
					onStack[id] = false
					return true
				}
			} else if onStack[neighbor] {
				cycleNodes[id] = true
				cycleNodes[neighbor] = true
				onStack[id] = false
				return true
			}
		}

		onStack[id] = false
		return false
	}

	for i := range g.Nodes {
		if !visited[g.Nodes[i].ID] {
			dfs(g.Nodes[i].ID)
		}
	}

	return cycleNodes
}
