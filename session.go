package dialogue

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Session is the single shared mutable graph behind one lock. Mutations
// take the write lock; Validate, Export, Save, and Snapshot take the read
// lock. No method suspends while holding the lock, and every returned
// entity is a copy, so callers can never alias the guarded graph.
type Session struct {
	mu    sync.RWMutex
	graph *Graph
}

// NewSession opens a session holding a fresh untitled graph.
func NewSession() *Session {
	return &Session{graph: New("Untitled")}
}

// NewGraph replaces the current graph with an empty one and returns it.
func (s *Session) NewGraph(name string) *Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = New(name)
	return s.graph.Clone()
}

// Load replaces the current graph with one parsed from a JSON document.
// Malformed input leaves the current graph untouched.
func (s *Session) Load(doc []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(doc, &g); err != nil {
		return nil, fmt.Errorf("dialogue: parse graph: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = &g
	return s.graph.Clone(), nil
}

// Replace installs a copy of the given graph as the current one and
// returns another copy of it.
func (s *Session) Replace(g *Graph) *Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g.Clone()
	return s.graph.Clone()
}

// Save serializes the current graph to a JSON document.
func (s *Session) Save(pretty bool) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		doc []byte
		err error
	)
	if pretty {
		doc, err = json.MarshalIndent(s.graph, "", "  ")
	} else {
		doc, err = json.Marshal(s.graph)
	}
	if err != nil {
		return nil, fmt.Errorf("dialogue: serialize graph: %w", err)
	}
	return doc, nil
}

// Snapshot returns a deep copy of the current graph.
func (s *Session) Snapshot() *Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Clone()
}

// AddNode adds a node and returns a copy of it.
func (s *Session) AddNode(nodeType NodeType, position Position) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	node := s.graph.AddNode(nodeType, position).Clone()
	return &node
}

// RemoveNode removes a node and its connections.
func (s *Session) RemoveNode(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.RemoveNode(id)
}

// UpdateNode applies a sparse node update; nil means the node was absent.
func (s *Session) UpdateNode(id string, u NodeUpdate) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	node := s.graph.UpdateNode(id, u)
	if node == nil {
		return nil
	}
	cp := node.Clone()
	return &cp
}

// CloneNode duplicates a node at an offset; nil means the node was absent.
func (s *Session) CloneNode(id string, offsetX, offsetY float64) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	node := s.graph.CloneNode(id, offsetX, offsetY)
	if node == nil {
		return nil
	}
	cp := node.Clone()
	return &cp
}

// AddConnection adds a connection; nil means the connectivity predicate
// rejected it.
func (s *Session) AddConnection(fromNodeID string, fromPortIndex int, toNodeID string, toPortIndex int) *Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn := s.graph.AddConnection(fromNodeID, fromPortIndex, toNodeID, toPortIndex)
	if conn == nil {
		return nil
	}
	cp := *conn
	return &cp
}

// RemoveConnection removes a connection by id.
func (s *Session) RemoveConnection(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.RemoveConnection(id)
}

// AddCharacter adds a character and returns a copy of it.
func (s *Session) AddCharacter(displayName, color string) *Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.graph.AddCharacter(displayName, color)
	return &cp
}

// UpdateCharacter applies a sparse character update; nil means absent.
func (s *Session) UpdateCharacter(id string, u CharacterUpdate) *Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	character := s.graph.UpdateCharacter(id, u)
	if character == nil {
		return nil
	}
	cp := *character
	return &cp
}

// RemoveCharacter removes a character by id.
func (s *Session) RemoveCharacter(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.RemoveCharacter(id)
}

// AddVariableNamespace adds an empty namespace and returns a copy of it.
func (s *Session) AddVariableNamespace(name string) *VariableNamespace {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns := *s.graph.AddVariableNamespace(name)
	ns.Variables = append(make([]Variable, 0, len(ns.Variables)), ns.Variables...)
	return &ns
}

// AddVariable adds a variable to a namespace; nil means the namespace was
// absent.
func (s *Session) AddVariable(namespace, name string, varType VariableType, defaultValue any) *Variable {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.graph.AddVariable(namespace, name, varType, defaultValue)
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// Validate runs the validation engine over the current graph.
func (s *Session) Validate() ValidationReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Validate(s.graph)
}

// ExportEngine serializes the current graph in the engine interchange
// format.
func (s *Session) ExportEngine() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return MarshalExport(BuildExport(s.graph), true)
}

// ExportJSON serializes the current graph as a plain JSON document.
func (s *Session) ExportJSON(pretty bool) ([]byte, error) {
	return s.Save(pretty)
}
