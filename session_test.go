package dialogue

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	s := NewSession()

	t.Run("starts untitled", func(t *testing.T) {
		assert.Equal(t, "Untitled", s.Snapshot().Name)
	})

	t.Run("new graph replaces state", func(t *testing.T) {
		g := s.NewGraph("Chapter One")
		assert.Equal(t, "Chapter One", g.Name)
		assert.Equal(t, "Chapter_One", g.TechnicalName)
		assert.Equal(t, g.ID, s.Snapshot().ID)
	})

	t.Run("save and load round trip", func(t *testing.T) {
		s.NewGraph("Chapter Two")
		node := s.AddNode(NodeDialogue, Position{X: 1, Y: 2})
		require.NotNil(t, node)

		doc, err := s.Save(false)
		require.NoError(t, err)

		other := NewSession()
		loaded, err := other.Load(doc)
		require.NoError(t, err)
		assert.Equal(t, "Chapter Two", loaded.Name)
		require.Len(t, loaded.Nodes, 1)
		assert.Equal(t, node.ID, loaded.Nodes[0].ID)
	})

	t.Run("malformed load keeps current graph", func(t *testing.T) {
		before := s.Snapshot()
		_, err := s.Load([]byte(`{not json`))
		assert.Error(t, err)
		assert.Equal(t, before, s.Snapshot())
	})

	t.Run("pretty save is indented", func(t *testing.T) {
		compact, err := s.Save(false)
		require.NoError(t, err)
		pretty, err := s.Save(true)
		require.NoError(t, err)
		assert.Greater(t, len(pretty), len(compact))
		assert.JSONEq(t, string(compact), string(pretty))
	})
}

func TestSessionReturnsCopies(t *testing.T) {
	s := NewSession()
	s.NewGraph("test")

	node := s.AddNode(NodeDialogue, Position{})
	node.Data.Dialogue.Text = "scribbled on the copy"

	fresh := s.Snapshot()
	require.Len(t, fresh.Nodes, 1)
	assert.Equal(t, "", fresh.Nodes[0].Data.Dialogue.Text)

	snap := s.Snapshot()
	snap.Nodes[0].TechnicalName = "tampered"
	assert.NotEqual(t, "tampered", s.Snapshot().Nodes[0].TechnicalName)
}

func TestSessionMutations(t *testing.T) {
	s := NewSession()
	s.NewGraph("test")

	a := s.AddNode(NodeDialogue, Position{})
	b := s.AddNode(NodeHub, Position{})

	t.Run("connection accept and reject", func(t *testing.T) {
		conn := s.AddConnection(a.ID, 0, b.ID, 0)
		require.NotNil(t, conn)
		assert.Nil(t, s.AddConnection(a.ID, 0, b.ID, 0))
		assert.True(t, s.RemoveConnection(conn.ID))
		assert.False(t, s.RemoveConnection(conn.ID))
	})

	t.Run("node update clone remove", func(t *testing.T) {
		name := "renamed"
		updated := s.UpdateNode(a.ID, NodeUpdate{TechnicalName: &name})
		require.NotNil(t, updated)
		assert.Equal(t, "renamed", updated.TechnicalName)

		cloned := s.CloneNode(a.ID, 10, 10)
		require.NotNil(t, cloned)
		assert.Equal(t, "renamed_copy", cloned.TechnicalName)

		assert.True(t, s.RemoveNode(cloned.ID))
		assert.Nil(t, s.UpdateNode(cloned.ID, NodeUpdate{}))
		assert.Nil(t, s.CloneNode(cloned.ID, 0, 0))
	})

	t.Run("characters and variables", func(t *testing.T) {
		c := s.AddCharacter("Greta", "#fff")
		color := "#000"
		updated := s.UpdateCharacter(c.ID, CharacterUpdate{Color: &color})
		require.NotNil(t, updated)
		assert.Equal(t, "#000", updated.Color)
		assert.True(t, s.RemoveCharacter(c.ID))
		assert.Nil(t, s.UpdateCharacter(c.ID, CharacterUpdate{}))

		ns := s.AddVariableNamespace("flags")
		assert.Equal(t, "flags", ns.Name)
		v := s.AddVariable("flags", "met_greta", VariableBoolean, false)
		require.NotNil(t, v)
		assert.Nil(t, s.AddVariable("nope", "x", VariableString, ""))
	})
}

func TestSessionValidateAndExport(t *testing.T) {
	s := NewSession()
	s.NewGraph("test")
	s.AddNode(NodeBranch, Position{})

	report := s.Validate()
	assert.True(t, report.IsValid)

	engine, err := s.ExportEngine()
	require.NoError(t, err)

	var export EngineExport
	require.NoError(t, json.Unmarshal(engine, &export))
	require.Len(t, export.Packages, 1)
	require.Len(t, export.Packages[0].Objects, 1)
	assert.Equal(t, "Hub", export.Packages[0].Objects[0].Type)

	plain, err := s.ExportJSON(false)
	require.NoError(t, err)
	doc, err := s.Save(false)
	require.NoError(t, err)
	assert.JSONEq(t, string(doc), string(plain))
}

func TestSessionConcurrentAccess(t *testing.T) {
	s := NewSession()
	s.NewGraph("test")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				node := s.AddNode(NodeHub, Position{})
				s.Validate()
				s.Snapshot()
				s.RemoveNode(node.ID)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, s.Snapshot().Nodes)
}
