package dialogue

import (
	"strings"
	"time"
)

// New creates an empty dialogue graph with fresh identifiers and timestamps.
func New(name string) *Graph {
	now := time.Now().UnixMilli()
	return &Graph{
		ID:            GenerateID(),
		Name:          name,
		TechnicalName: ToTechnicalName(name),
		Nodes:         []Node{},
		Connections:   []Connection{},
		Variables:     []VariableNamespace{},
		Characters:    []Character{},
		CreatedAt:     now,
		ModifiedAt:    now,
	}
}

// Touch updates the modification timestamp. Every mutation that changes
// observable state calls it.
func (g *Graph) Touch() {
	g.ModifiedAt = time.Now().UnixMilli()
}

// GetNode returns the node with the given id, or nil.
func (g *Graph) GetNode(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// AddNode constructs a node of the given type at the given position,
// appends it, and returns it.
func (g *Graph) AddNode(nodeType NodeType, position Position) *Node {
	node := NewNode(nodeType, position)
	g.Nodes = append(g.Nodes, node)
	g.Touch()
	return &g.Nodes[len(g.Nodes)-1]
}

// RemoveNode removes a node and every connection touching it, in either
// direction. Returns false if the node does not exist.
func (g *Graph) RemoveNode(id string) bool {
	idx := -1
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	kept := g.Connections[:0]
	for _, c := range g.Connections {
		if c.FromNodeID != id && c.ToNodeID != id {
			kept = append(kept, c)
		}
	}
	g.Connections = kept

	g.Nodes = append(g.Nodes[:idx], g.Nodes[idx+1:]...)
	g.Touch()
	return true
}

// UpdateNode applies a sparse update to a node and returns it, or nil if
// the node does not exist. A Data payload whose type does not match the
// node's declared type is ignored, like any unrecognized field.
func (g *Graph) UpdateNode(id string, u NodeUpdate) *Node {
	node := g.GetNode(id)
	if node == nil {
		return nil
	}

	if u.Position != nil {
		node.Position = *u.Position
	}
	if u.TechnicalName != nil {
		node.TechnicalName = *u.TechnicalName
	}
	if u.Color != nil {
		node.Color = *u.Color
	}
	if u.Data != nil && u.Data.Type == node.NodeType {
		node.Data = u.Data.Clone()
	}

	g.Touch()
	return node
}

// CloneNode duplicates a node at an offset position. The copy gets a fresh
// id, fresh port ids, and a "_copy" suffix on its technical name. Returns
// nil if the source node does not exist. Connections are not cloned.
func (g *Graph) CloneNode(id string, offsetX, offsetY float64) *Node {
	original := g.GetNode(id)
	if original == nil {
		return nil
	}

	cloned := original.Clone()
	cloned.ID = GenerateID()
	cloned.TechnicalName = original.TechnicalName + "_copy"
	cloned.Position.X += offsetX
	cloned.Position.Y += offsetY

	for i := range cloned.InputPorts {
		cloned.InputPorts[i].ID = GenerateID()
		cloned.InputPorts[i].NodeID = cloned.ID
	}
	for i := range cloned.OutputPorts {
		cloned.OutputPorts[i].ID = GenerateID()
		cloned.OutputPorts[i].NodeID = cloned.ID
	}

	g.Nodes = append(g.Nodes, cloned)
	g.Touch()
	return &g.Nodes[len(g.Nodes)-1]
}

// CanConnect reports whether a connection from (fromNodeID, fromPortIndex)
// to (toNodeID, toPortIndex) is legal: no self-loop, both nodes exist,
// both port indices are in range, the exact edge does not already exist,
// and the input port is not already occupied. Inputs are single-producer.
func (g *Graph) CanConnect(fromNodeID string, fromPortIndex int, toNodeID string, toPortIndex int) bool {
	if fromNodeID == toNodeID {
		return false
	}

	fromNode := g.GetNode(fromNodeID)
	toNode := g.GetNode(toNodeID)
	if fromNode == nil || toNode == nil {
		return false
	}

	if fromPortIndex < 0 || fromPortIndex >= len(fromNode.OutputPorts) {
		return false
	}
	if toPortIndex < 0 || toPortIndex >= len(toNode.InputPorts) {
		return false
	}

	for _, c := range g.Connections {
		if c.FromNodeID == fromNodeID && c.FromPortIndex == fromPortIndex &&
			c.ToNodeID == toNodeID && c.ToPortIndex == toPortIndex {
			return false
		}
	}

	for _, c := range g.Connections {
		if c.ToNodeID == toNodeID && c.ToPortIndex == toPortIndex {
			return false
		}
	}

	return true
}

// AddConnection appends a flow connection after checking CanConnect.
// Returns nil if the connection is rejected; the graph is never partially
// mutated on rejection.
func (g *Graph) AddConnection(fromNodeID string, fromPortIndex int, toNodeID string, toPortIndex int) *Connection {
	if !g.CanConnect(fromNodeID, fromPortIndex, toNodeID, toPortIndex) {
		return nil
	}

	g.Connections = append(g.Connections, Connection{
		ID:             GenerateID(),
		FromNodeID:     fromNodeID,
		FromPortIndex:  fromPortIndex,
		ToNodeID:       toNodeID,
		ToPortIndex:    toPortIndex,
		ConnectionType: ConnectionFlow,
	})
	g.Touch()
	return &g.Connections[len(g.Connections)-1]
}

// RemoveConnection removes a connection by id. Returns false if absent.
func (g *Graph) RemoveConnection(id string) bool {
	for i := range g.Connections {
		if g.Connections[i].ID == id {
			g.Connections = append(g.Connections[:i], g.Connections[i+1:]...)
			g.Touch()
			return true
		}
	}
	return false
}

// AddCharacter appends a character with fresh internal and composite ids.
func (g *Graph) AddCharacter(displayName, color string) *Character {
	g.Characters = append(g.Characters, Character{
		ID:            GenerateID(),
		CompositeID:   NewCompositeID(),
		TechnicalName: ToTechnicalName(displayName),
		DisplayName:   displayName,
		Color:         color,
	})
	g.Touch()
	return &g.Characters[len(g.Characters)-1]
}

// GetCharacter returns the character with the given id, or nil.
func (g *Graph) GetCharacter(id string) *Character {
	for i := range g.Characters {
		if g.Characters[i].ID == id {
			return &g.Characters[i]
		}
	}
	return nil
}

// UpdateCharacter applies a sparse update to a character and returns it,
// or nil if absent. A new display name refreshes the technical name.
func (g *Graph) UpdateCharacter(id string, u CharacterUpdate) *Character {
	character := g.GetCharacter(id)
	if character == nil {
		return nil
	}

	if u.DisplayName != nil {
		character.DisplayName = *u.DisplayName
		character.TechnicalName = ToTechnicalName(*u.DisplayName)
	}
	if u.Color != nil {
		character.Color = *u.Color
	}

	g.Touch()
	return character
}

// RemoveCharacter removes a character by id. Returns false if absent.
func (g *Graph) RemoveCharacter(id string) bool {
	for i := range g.Characters {
		if g.Characters[i].ID == id {
			g.Characters = append(g.Characters[:i], g.Characters[i+1:]...)
			g.Touch()
			return true
		}
	}
	return false
}

// AddVariableNamespace appends an empty variable namespace.
func (g *Graph) AddVariableNamespace(name string) *VariableNamespace {
	g.Variables = append(g.Variables, VariableNamespace{
		Name:      name,
		Variables: []Variable{},
	})
	g.Touch()
	return &g.Variables[len(g.Variables)-1]
}

// GetVariableNamespace returns the namespace with the given name, or nil.
func (g *Graph) GetVariableNamespace(name string) *VariableNamespace {
	for i := range g.Variables {
		if g.Variables[i].Name == name {
			return &g.Variables[i]
		}
	}
	return nil
}

// AddVariable appends a variable to a namespace and returns it, or nil if
// the namespace does not exist.
func (g *Graph) AddVariable(namespace, name string, varType VariableType, defaultValue any) *Variable {
	ns := g.GetVariableNamespace(namespace)
	if ns == nil {
		return nil
	}

	ns.Variables = append(ns.Variables, Variable{
		ID:           GenerateID(),
		Namespace:    ns.Name,
		Name:         name,
		VariableType: varType,
		DefaultValue: defaultValue,
	})
	g.Touch()
	return &ns.Variables[len(ns.Variables)-1]
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	out := *g

	out.Nodes = make([]Node, len(g.Nodes))
	for i := range g.Nodes {
		out.Nodes[i] = g.Nodes[i].Clone()
	}

	out.Connections = append([]Connection(nil), g.Connections...)
	if out.Connections == nil {
		out.Connections = []Connection{}
	}

	out.Variables = make([]VariableNamespace, len(g.Variables))
	for i, ns := range g.Variables {
		cp := ns
		cp.Variables = append([]Variable(nil), ns.Variables...)
		if cp.Variables == nil {
			cp.Variables = []Variable{}
		}
		out.Variables[i] = cp
	}

	out.Characters = append([]Character(nil), g.Characters...)
	if out.Characters == nil {
		out.Characters = []Character{}
	}

	if g.Metadata != nil {
		out.Metadata = append([]byte(nil), g.Metadata...)
	}

	return &out
}

// defaultSize returns the canvas dimensions for a new node of this type.
func defaultSize(t NodeType) Size {
	switch t {
	case NodeDialogue:
		return Size{Width: 280, Height: 120}
	case NodeDialogueFragment:
		return Size{Width: 260, Height: 100}
	case NodeBranch:
		return Size{Width: 160, Height: 80}
	case NodeCondition:
		return Size{Width: 200, Height: 80}
	case NodeInstruction:
		return Size{Width: 200, Height: 70}
	case NodeHub:
		return Size{Width: 140, Height: 60}
	case NodeJump:
		return Size{Width: 160, Height: 60}
	case NodeFlowFragment:
		return Size{Width: 300, Height: 140}
	}
	return Size{Width: 200, Height: 100}
}

// NewNode constructs a node with the per-type defaults: one input port for
// every type; zero output ports for jumps, two for branches and conditions
// (a condition's outputs are labeled True and False), one otherwise.
func NewNode(nodeType NodeType, position Position) Node {
	id := GenerateID()
	technicalName := strings.ToLower(strings.ReplaceAll(nodeType.DisplayName(), " ", "_")) + "_" + shortID(id, 8)

	outputs := 1
	switch nodeType {
	case NodeJump:
		outputs = 0
	case NodeBranch, NodeCondition:
		outputs = 2
	}

	inputPorts := []Port{{
		ID:     GenerateID(),
		NodeID: id,
		Type:   PortInput,
		Index:  0,
	}}

	outputPorts := make([]Port, 0, outputs)
	for i := 0; i < outputs; i++ {
		label := ""
		if nodeType == NodeCondition {
			if i == 0 {
				label = "True"
			} else {
				label = "False"
			}
		}
		outputPorts = append(outputPorts, Port{
			ID:     GenerateID(),
			NodeID: id,
			Type:   PortOutput,
			Index:  i,
			Label:  label,
		})
	}

	return Node{
		ID:            id,
		TechnicalName: technicalName,
		NodeType:      nodeType,
		Position:      position,
		Size:          defaultSize(nodeType),
		InputPorts:    inputPorts,
		OutputPorts:   outputPorts,
		Data:          NewNodeData(nodeType),
		Color:         nodeType.DefaultColor(),
	}
}

// Clone returns a deep copy of the node. Ids are preserved; CloneNode on
// the graph is responsible for reassigning them.
func (n *Node) Clone() Node {
	out := *n
	out.InputPorts = append(make([]Port, 0, len(n.InputPorts)), n.InputPorts...)
	out.OutputPorts = append(make([]Port, 0, len(n.OutputPorts)), n.OutputPorts...)
	out.Data = n.Data.Clone()
	if n.Metadata != nil {
		out.Metadata = append([]byte(nil), n.Metadata...)
	}
	return out
}

// AddInputPort appends an input port at the next dense index.
func (n *Node) AddInputPort(label string) *Port {
	n.InputPorts = append(n.InputPorts, Port{
		ID:     GenerateID(),
		NodeID: n.ID,
		Type:   PortInput,
		Index:  len(n.InputPorts),
		Label:  label,
	})
	return &n.InputPorts[len(n.InputPorts)-1]
}

// AddOutputPort appends an output port at the next dense index.
func (n *Node) AddOutputPort(label string) *Port {
	n.OutputPorts = append(n.OutputPorts, Port{
		ID:     GenerateID(),
		NodeID: n.ID,
		Type:   PortOutput,
		Index:  len(n.OutputPorts),
		Label:  label,
	})
	return &n.OutputPorts[len(n.OutputPorts)-1]
}
