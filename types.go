package dialogue

import (
	"encoding/json"
	"fmt"
)

// NodeType identifies the variant of a node in the dialogue graph.
type NodeType string

const (
	NodeDialogue         NodeType = "dialogue"
	NodeDialogueFragment NodeType = "dialogueFragment"
	NodeBranch           NodeType = "branch"
	NodeCondition        NodeType = "condition"
	NodeInstruction      NodeType = "instruction"
	NodeHub              NodeType = "hub"
	NodeJump             NodeType = "jump"
	NodeFlowFragment     NodeType = "flowFragment"
)

// DisplayName returns the human-readable name of the node type.
func (t NodeType) DisplayName() string {
	switch t {
	case NodeDialogue:
		return "Dialogue"
	case NodeDialogueFragment:
		return "Dialogue Fragment"
	case NodeBranch:
		return "Branch"
	case NodeCondition:
		return "Condition"
	case NodeInstruction:
		return "Instruction"
	case NodeHub:
		return "Hub"
	case NodeJump:
		return "Jump"
	case NodeFlowFragment:
		return "Flow Fragment"
	}
	return string(t)
}

// DefaultColor returns the editor display color assigned to new nodes of this type.
func (t NodeType) DefaultColor() string {
	switch t {
	case NodeDialogue, NodeDialogueFragment:
		return "#3b82f6"
	case NodeBranch:
		return "#f59e0b"
	case NodeCondition:
		return "#10b981"
	case NodeInstruction, NodeJump:
		return "#8b5cf6"
	case NodeHub:
		return "#06b6d4"
	case NodeFlowFragment:
		return "#6366f1"
	}
	return "#3b82f6"
}

// VariableType is the value type of a global variable.
type VariableType string

const (
	VariableString  VariableType = "string"
	VariableNumber  VariableType = "number"
	VariableBoolean VariableType = "boolean"
)

// ExportName returns the capitalized type name used in export documents.
func (t VariableType) ExportName() string {
	switch t {
	case VariableString:
		return "String"
	case VariableNumber:
		return "Number"
	case VariableBoolean:
		return "Boolean"
	}
	return string(t)
}

// ConnectionType distinguishes flow edges from data edges.
type ConnectionType string

const (
	ConnectionFlow ConnectionType = "flow"
	ConnectionData ConnectionType = "data"
)

// PortType is the direction of a port.
type PortType string

const (
	PortInput  PortType = "input"
	PortOutput PortType = "output"
)

// Position is a 2D canvas position.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size holds node dimensions.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Port is an attachment point on a node. Index is dense within its
// direction and always matches the port's array position.
type Port struct {
	ID     string   `json:"id"`
	NodeID string   `json:"nodeId"`
	Type   PortType `json:"type"`
	Index  int      `json:"index"`
	Label  string   `json:"label,omitempty"`
}

// ScriptFragment is the expression payload of condition and instruction nodes.
// The expression is opaque engine-side script text; it is never evaluated here.
type ScriptFragment struct {
	Expression  string `json:"expression"`
	IsCondition bool   `json:"isCondition"`
}

// DialogueData is the payload of dialogue and dialogue-fragment nodes.
type DialogueData struct {
	Speaker         string       `json:"speaker,omitempty"`
	SpeakerID       *CompositeID `json:"speakerId,omitempty"`
	Text            string       `json:"text"`
	MenuText        string       `json:"menuText,omitempty"`
	StageDirections string       `json:"stageDirections,omitempty"`
	AutoTransition  bool         `json:"autoTransition"`
}

// JumpData is the payload of jump nodes.
type JumpData struct {
	TargetNodeID   string `json:"targetNodeId,omitempty"`
	TargetPinIndex *int   `json:"targetPinIndex,omitempty"`
}

// HubData is the payload of hub nodes.
type HubData struct {
	DisplayName string `json:"displayName,omitempty"`
}

// FlowFragmentData is the payload of flow-fragment nodes.
type FlowFragmentData struct {
	DisplayName string `json:"displayName"`
	Text        string `json:"text,omitempty"`
}

// NodeData is the type-tagged payload of a node. Exactly one variant
// pointer is set, and it always agrees with Type; construct values with
// NewNodeData so the two can never disagree. Branch nodes carry no payload.
type NodeData struct {
	Type         NodeType
	Dialogue     *DialogueData
	Script       *ScriptFragment
	Hub          *HubData
	Jump         *JumpData
	FlowFragment *FlowFragmentData
}

// NewNodeData returns the default payload for a node type.
func NewNodeData(t NodeType) NodeData {
	d := NodeData{Type: t}
	switch t {
	case NodeDialogue, NodeDialogueFragment:
		d.Dialogue = &DialogueData{}
	case NodeCondition:
		d.Script = &ScriptFragment{IsCondition: true}
	case NodeInstruction:
		d.Script = &ScriptFragment{}
	case NodeHub:
		d.Hub = &HubData{}
	case NodeJump:
		d.Jump = &JumpData{}
	case NodeFlowFragment:
		d.FlowFragment = &FlowFragmentData{DisplayName: "Flow Fragment"}
	}
	return d
}

// nodeDataEnvelope is the wire form of NodeData: an explicit type tag
// plus a nested payload. Branch omits the payload entirely.
type nodeDataEnvelope struct {
	Type NodeType        `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// scriptEnvelope wraps the script fragment of condition/instruction payloads.
type scriptEnvelope struct {
	Script *ScriptFragment `json:"script"`
}

// MarshalJSON encodes the active variant as {"type": ..., "data": ...}.
func (d NodeData) MarshalJSON() ([]byte, error) {
	env := nodeDataEnvelope{Type: d.Type}

	var payload any
	switch d.Type {
	case NodeDialogue, NodeDialogueFragment:
		payload = d.Dialogue
	case NodeCondition, NodeInstruction:
		payload = scriptEnvelope{Script: d.Script}
	case NodeHub:
		payload = d.Hub
	case NodeJump:
		payload = d.Jump
	case NodeFlowFragment:
		payload = d.FlowFragment
	case NodeBranch:
		payload = nil
	default:
		return nil, fmt.Errorf("dialogue: unknown node data type %q", d.Type)
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}

	return json.Marshal(env)
}

// UnmarshalJSON decodes the tagged payload, rejecting unknown type tags.
func (d *NodeData) UnmarshalJSON(b []byte) error {
	var env nodeDataEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}

	out := NodeData{Type: env.Type}
	switch env.Type {
	case NodeDialogue, NodeDialogueFragment:
		out.Dialogue = &DialogueData{}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out.Dialogue); err != nil {
				return err
			}
		}
	case NodeCondition, NodeInstruction:
		var se scriptEnvelope
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &se); err != nil {
				return err
			}
		}
		if se.Script == nil {
			se.Script = &ScriptFragment{IsCondition: env.Type == NodeCondition}
		}
		out.Script = se.Script
	case NodeHub:
		out.Hub = &HubData{}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out.Hub); err != nil {
				return err
			}
		}
	case NodeJump:
		out.Jump = &JumpData{}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out.Jump); err != nil {
				return err
			}
		}
	case NodeFlowFragment:
		out.FlowFragment = &FlowFragmentData{}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out.FlowFragment); err != nil {
				return err
			}
		}
	case NodeBranch:
		// no payload
	default:
		return fmt.Errorf("dialogue: unknown node data type %q", env.Type)
	}

	*d = out
	return nil
}

// Clone returns a deep copy of the payload.
func (d NodeData) Clone() NodeData {
	out := NodeData{Type: d.Type}
	if d.Dialogue != nil {
		cp := *d.Dialogue
		if d.Dialogue.SpeakerID != nil {
			sid := *d.Dialogue.SpeakerID
			cp.SpeakerID = &sid
		}
		out.Dialogue = &cp
	}
	if d.Script != nil {
		cp := *d.Script
		out.Script = &cp
	}
	if d.Hub != nil {
		cp := *d.Hub
		out.Hub = &cp
	}
	if d.Jump != nil {
		cp := *d.Jump
		if d.Jump.TargetPinIndex != nil {
			idx := *d.Jump.TargetPinIndex
			cp.TargetPinIndex = &idx
		}
		out.Jump = &cp
	}
	if d.FlowFragment != nil {
		cp := *d.FlowFragment
		out.FlowFragment = &cp
	}
	return out
}

// Node is a typed vertex in the dialogue graph.
type Node struct {
	ID            string          `json:"id"`
	TechnicalName string          `json:"technicalName"`
	NodeType      NodeType        `json:"nodeType"`
	Position      Position        `json:"position"`
	Size          Size            `json:"size"`
	InputPorts    []Port          `json:"inputPorts"`
	OutputPorts   []Port          `json:"outputPorts"`
	Data          NodeData        `json:"data"`
	Color         string          `json:"color,omitempty"`
	ParentID      string          `json:"parentId,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
}

// Connection is a directed edge from an output port to an input port.
type Connection struct {
	ID             string         `json:"id"`
	FromNodeID     string         `json:"fromNodeId"`
	FromPortIndex  int            `json:"fromPortIndex"`
	ToNodeID       string         `json:"toNodeId"`
	ToPortIndex    int            `json:"toPortIndex"`
	ConnectionType ConnectionType `json:"connectionType"`
	Label          string         `json:"label,omitempty"`
}

// Variable is a single global variable definition.
type Variable struct {
	ID           string       `json:"id"`
	Namespace    string       `json:"namespace"`
	Name         string       `json:"name"`
	VariableType VariableType `json:"variableType"`
	DefaultValue any          `json:"defaultValue"`
	Description  string       `json:"description,omitempty"`
}

// VariableNamespace groups variables under a shared name.
type VariableNamespace struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Variables   []Variable `json:"variables"`
}

// Character is an externally-addressable speaker definition.
type Character struct {
	ID            string      `json:"id"`
	CompositeID   CompositeID `json:"compositeId"`
	TechnicalName string      `json:"technicalName"`
	DisplayName   string      `json:"displayName"`
	Color         string      `json:"color"`
	PreviewImage  string      `json:"previewImage,omitempty"`
}

// Graph is the aggregate root: it exclusively owns every node, connection,
// variable namespace, and character it holds.
type Graph struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	TechnicalName string              `json:"technicalName"`
	Nodes         []Node              `json:"nodes"`
	Connections   []Connection        `json:"connections"`
	Variables     []VariableNamespace `json:"variables"`
	Characters    []Character         `json:"characters"`
	CreatedAt     int64               `json:"createdAt"`
	ModifiedAt    int64               `json:"modifiedAt"`
	Metadata      json.RawMessage     `json:"metadata,omitempty"`
}

// ValidationSeverity ranks validation issues.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
	SeverityInfo    ValidationSeverity = "info"
)

// ValidationIssue is a single finding from a validation pass.
type ValidationIssue struct {
	NodeID       string             `json:"nodeId,omitempty"`
	ConnectionID string             `json:"connectionId,omitempty"`
	Severity     ValidationSeverity `json:"severity"`
	Message      string             `json:"message"`
	Code         string             `json:"code"`
}

// ValidationReport is the categorized outcome of validating a graph.
// Warnings never affect IsValid.
type ValidationReport struct {
	IsValid  bool              `json:"isValid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

// NodeUpdate is a sparse update for a node: nil fields are left unchanged.
// A Data payload whose type does not match the node's type is ignored.
type NodeUpdate struct {
	Position      *Position `json:"position,omitempty"`
	TechnicalName *string   `json:"technicalName,omitempty"`
	Color         *string   `json:"color,omitempty"`
	Data          *NodeData `json:"data,omitempty"`
}

// CharacterUpdate is a sparse update for a character: nil fields are left
// unchanged. Updating the display name also refreshes the technical name.
type CharacterUpdate struct {
	DisplayName *string `json:"displayName,omitempty"`
	Color       *string `json:"color,omitempty"`
}
