package dialogue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildExport(t *testing.T) {
	t.Run("project header", func(t *testing.T) {
		g := New("My Story")
		export := BuildExport(g)

		assert.Equal(t, "1.0", export.FormatVersion)
		assert.Equal(t, "My Story", export.Project.Name)
		assert.Equal(t, "My_Story", export.Project.TechnicalName)
		assert.Equal(t, g.ID, export.Project.GUID)
	})

	t.Run("single default package named Main", func(t *testing.T) {
		g := New("test")
		g.AddNode(NodeDialogue, Position{})

		export := BuildExport(g)
		require.Len(t, export.Packages, 1)
		assert.Equal(t, "Main", export.Packages[0].Name)
		assert.True(t, export.Packages[0].IsDefaultPackage)
		assert.Len(t, export.Packages[0].Objects, 1)
	})

	t.Run("node type mapping", func(t *testing.T) {
		cases := map[NodeType]string{
			NodeDialogue:         "Dialogue",
			NodeDialogueFragment: "DialogueFragment",
			NodeFlowFragment:     "FlowFragment",
			NodeBranch:           "Hub",
			NodeCondition:        "Condition",
			NodeInstruction:      "Instruction",
			NodeHub:              "Hub",
			NodeJump:             "Jump",
		}

		g := New("test")
		for nodeType := range cases {
			g.AddNode(nodeType, Position{})
		}

		export := BuildExport(g)
		require.Len(t, export.Packages[0].Objects, len(cases))
		for i, obj := range export.Packages[0].Objects {
			assert.Equal(t, cases[g.Nodes[i].NodeType], obj.Type)
		}
	})

	t.Run("ports become pins with labels", func(t *testing.T) {
		g := New("test")
		g.AddNode(NodeCondition, Position{X: 5, Y: 6})

		export := BuildExport(g)
		obj := export.Packages[0].Objects[0]

		assert.Equal(t, Position{X: 5, Y: 6}, obj.Position)
		require.Len(t, obj.InputPins, 1)
		require.Len(t, obj.OutputPins, 2)
		assert.Equal(t, "True", obj.OutputPins[0].Label)
		assert.Equal(t, "False", obj.OutputPins[1].Label)
		assert.Equal(t, 1, obj.OutputPins[1].Index)
	})

	t.Run("properties carry the tagged payload", func(t *testing.T) {
		g := New("test")
		node := g.AddNode(NodeDialogue, Position{})
		node.Data.Dialogue.Text = "Hello"

		export := BuildExport(g)
		var properties struct {
			Type string `json:"type"`
			Data struct {
				Text string `json:"text"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(export.Packages[0].Objects[0].Properties, &properties))
		assert.Equal(t, "dialogue", properties.Type)
		assert.Equal(t, "Hello", properties.Data.Text)
	})

	t.Run("connections are renamed", func(t *testing.T) {
		g := New("test")
		a := g.AddNode(NodeCondition, Position{})
		b := g.AddNode(NodeHub, Position{})
		conn := g.AddConnection(a.ID, 1, b.ID, 0)
		require.NotNil(t, conn)

		export := BuildExport(g)
		require.Len(t, export.Packages[0].Connections, 1)
		out := export.Packages[0].Connections[0]
		assert.Equal(t, conn.ID, out.ID)
		assert.Equal(t, a.ID, out.SourceID)
		assert.Equal(t, 1, out.SourcePin)
		assert.Equal(t, b.ID, out.TargetID)
		assert.Equal(t, 0, out.TargetPin)
	})

	t.Run("variables render textual type names", func(t *testing.T) {
		g := New("test")
		g.AddVariableNamespace("tavern")
		g.AddVariable("tavern", "visited", VariableBoolean, false)
		g.AddVariable("tavern", "gold", VariableNumber, 20)
		g.AddVariable("tavern", "owner", VariableString, "Greta")

		export := BuildExport(g)
		require.Len(t, export.GlobalVariables, 1)
		vars := export.GlobalVariables[0].Variables
		require.Len(t, vars, 3)
		assert.Equal(t, "Boolean", vars[0].Type)
		assert.Equal(t, "Number", vars[1].Type)
		assert.Equal(t, "String", vars[2].Type)
		assert.Equal(t, false, vars[0].DefaultValue)
	})

	t.Run("characters are projected", func(t *testing.T) {
		g := New("test")
		c := g.AddCharacter("Old Innkeeper", "#c2703d")

		export := BuildExport(g)
		require.Len(t, export.Characters, 1)
		assert.Equal(t, ExportCharacter{
			ID:            c.ID,
			TechnicalName: "Old_Innkeeper",
			DisplayName:   "Old Innkeeper",
			Color:         "#c2703d",
		}, export.Characters[0])
	})

	t.Run("never mutates the graph", func(t *testing.T) {
		g := New("test")
		a := g.AddNode(NodeBranch, Position{})
		b := g.AddNode(NodeHub, Position{})
		g.AddConnection(a.ID, 0, b.ID, 0)
		before := g.Clone()

		BuildExport(g)
		assert.Equal(t, before, g)
	})

	t.Run("exports a structurally invalid graph without failing", func(t *testing.T) {
		g := New("test")
		g.Connections = append(g.Connections, Connection{ID: "dangling", FromNodeID: "x", ToNodeID: "y"})

		export := BuildExport(g)
		doc, err := MarshalExport(export, false)
		require.NoError(t, err)
		assert.Contains(t, string(doc), `"dangling"`)
	})
}

func TestMarshalExport(t *testing.T) {
	g := New("test")
	g.AddNode(NodeBranch, Position{})

	compact, err := MarshalExport(BuildExport(g), false)
	require.NoError(t, err)
	pretty, err := MarshalExport(BuildExport(g), true)
	require.NoError(t, err)

	assert.Contains(t, string(compact), `"formatVersion":"1.0"`)
	assert.Contains(t, string(compact), `"type":"Hub"`)
	assert.Greater(t, len(pretty), len(compact))
}
