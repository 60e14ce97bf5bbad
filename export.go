package dialogue

import (
	"encoding/json"
	"fmt"
)

// ExportFormatVersion tags the engine interchange schema emitted by
// BuildExport.
const ExportFormatVersion = "1.0"

// EngineExport is the versioned interchange document consumed by the game
// engine importer.
type EngineExport struct {
	FormatVersion   string                    `json:"formatVersion"`
	Project         ProjectInfo               `json:"project"`
	GlobalVariables []ExportVariableNamespace `json:"globalVariables"`
	Characters      []ExportCharacter         `json:"characters"`
	Packages        []ExportPackage           `json:"packages"`
}

// ProjectInfo carries the graph's identity in the export document.
type ProjectInfo struct {
	Name          string `json:"name"`
	TechnicalName string `json:"technicalName"`
	GUID          string `json:"guid"`
}

type ExportVariableNamespace struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Variables   []ExportVariable `json:"variables"`
}

type ExportVariable struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	DefaultValue any    `json:"defaultValue"`
	Description  string `json:"description,omitempty"`
}

type ExportCharacter struct {
	ID            string `json:"id"`
	TechnicalName string `json:"technicalName"`
	DisplayName   string `json:"displayName"`
	Color         string `json:"color"`
}

// ExportPackage groups exported objects; exactly one package named "Main"
// is emitted and marked default.
type ExportPackage struct {
	Name             string             `json:"name"`
	IsDefaultPackage bool               `json:"isDefaultPackage"`
	Objects          []ExportObject     `json:"objects"`
	Connections      []ExportConnection `json:"connections"`
}

// ExportObject is a node projected into the engine schema. Properties is
// the node payload rendered as an open-ended bag.
type ExportObject struct {
	ID            string          `json:"id"`
	TechnicalName string          `json:"technicalName"`
	Type          string          `json:"type"`
	Position      Position        `json:"position"`
	Properties    json.RawMessage `json:"properties"`
	InputPins     []ExportPin     `json:"inputPins"`
	OutputPins    []ExportPin     `json:"outputPins"`
}

type ExportPin struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	Label string `json:"label,omitempty"`
}

type ExportConnection struct {
	ID        string `json:"id"`
	SourceID  string `json:"sourceId"`
	SourcePin int    `json:"sourcePin"`
	TargetID  string `json:"targetId"`
	TargetPin int    `json:"targetPin"`
}

// engineType maps a node type onto the engine's object type vocabulary.
// Branches have no engine counterpart and export as hubs.
func engineType(t NodeType) string {
	switch t {
	case NodeDialogue:
		return "Dialogue"
	case NodeDialogueFragment:
		return "DialogueFragment"
	case NodeFlowFragment:
		return "FlowFragment"
	case NodeBranch, NodeHub:
		return "Hub"
	case NodeCondition:
		return "Condition"
	case NodeInstruction:
		return "Instruction"
	case NodeJump:
		return "Jump"
	}
	return string(t)
}

// BuildExport projects a graph into the engine interchange document. It
// performs no validation and never mutates the graph; a structurally
// invalid graph still exports. A node payload that cannot be serialized
// degrades to a null property bag.
func BuildExport(g *Graph) *EngineExport {
	export := &EngineExport{
		FormatVersion: ExportFormatVersion,
		Project: ProjectInfo{
			Name:          g.Name,
			TechnicalName: g.TechnicalName,
			GUID:          g.ID,
		},
		GlobalVariables: make([]ExportVariableNamespace, 0, len(g.Variables)),
		Characters:      make([]ExportCharacter, 0, len(g.Characters)),
	}

	for _, ns := range g.Variables {
		out := ExportVariableNamespace{
			Name:        ns.Name,
			Description: ns.Description,
			Variables:   make([]ExportVariable, 0, len(ns.Variables)),
		}
		for _, v := range ns.Variables {
			out.Variables = append(out.Variables, ExportVariable{
				Name:         v.Name,
				Type:         v.VariableType.ExportName(),
				DefaultValue: v.DefaultValue,
				Description:  v.Description,
			})
		}
		export.GlobalVariables = append(export.GlobalVariables, out)
	}

	for _, c := range g.Characters {
		export.Characters = append(export.Characters, ExportCharacter{
			ID:            c.ID,
			TechnicalName: c.TechnicalName,
			DisplayName:   c.DisplayName,
			Color:         c.Color,
		})
	}

	pkg := ExportPackage{
		Name:             "Main",
		IsDefaultPackage: true,
		Objects:          make([]ExportObject, 0, len(g.Nodes)),
		Connections:      make([]ExportConnection, 0, len(g.Connections)),
	}

	for i := range g.Nodes {
		node := &g.Nodes[i]

		properties, err := json.Marshal(node.Data)
		if err != nil {
			properties = json.RawMessage("null")
		}

		obj := ExportObject{
			ID:            node.ID,
			TechnicalName: node.TechnicalName,
			Type:          engineType(node.NodeType),
			Position:      node.Position,
			Properties:    properties,
			InputPins:     make([]ExportPin, 0, len(node.InputPorts)),
			OutputPins:    make([]ExportPin, 0, len(node.OutputPorts)),
		}
		for _, p := range node.InputPorts {
			obj.InputPins = append(obj.InputPins, ExportPin{ID: p.ID, Index: p.Index, Label: p.Label})
		}
		for _, p := range node.OutputPorts {
			obj.OutputPins = append(obj.OutputPins, ExportPin{ID: p.ID, Index: p.Index, Label: p.Label})
		}
		pkg.Objects = append(pkg.Objects, obj)
	}

	for _, c := range g.Connections {
		pkg.Connections = append(pkg.Connections, ExportConnection{
			ID:        c.ID,
			SourceID:  c.FromNodeID,
			SourcePin: c.FromPortIndex,
			TargetID:  c.ToNodeID,
			TargetPin: c.ToPortIndex,
		})
	}

	export.Packages = []ExportPackage{pkg}
	return export
}

// MarshalExport serializes an export document.
func MarshalExport(e *EngineExport, pretty bool) ([]byte, error) {
	var (
		doc []byte
		err error
	)
	if pretty {
		doc, err = json.MarshalIndent(e, "", "  ")
	} else {
		doc, err = json.Marshal(e)
	}
	if err != nil {
		return nil, fmt.Errorf("dialogue: serialize export: %w", err)
	}
	return doc, nil
}
