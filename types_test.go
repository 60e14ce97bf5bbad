package dialogue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeDataJSON(t *testing.T) {
	t.Run("dialogue payload keeps tag and data", func(t *testing.T) {
		data := NewNodeData(NodeDialogue)
		data.Dialogue.Speaker = "Greta"
		data.Dialogue.Text = "Welcome"

		raw, err := json.Marshal(data)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"type": "dialogue",
			"data": {"speaker": "Greta", "text": "Welcome", "autoTransition": false}
		}`, string(raw))

		var back NodeData
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.Equal(t, data, back)
	})

	t.Run("branch has no payload", func(t *testing.T) {
		raw, err := json.Marshal(NewNodeData(NodeBranch))
		require.NoError(t, err)
		assert.JSONEq(t, `{"type": "branch"}`, string(raw))

		var back NodeData
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.Equal(t, NodeBranch, back.Type)
		assert.Nil(t, back.Dialogue)
	})

	t.Run("condition nests its script", func(t *testing.T) {
		data := NewNodeData(NodeCondition)
		data.Script.Expression = "x > 1"

		raw, err := json.Marshal(data)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"type": "condition",
			"data": {"script": {"expression": "x > 1", "isCondition": true}}
		}`, string(raw))

		var back NodeData
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.Equal(t, data, back)
	})

	t.Run("every variant round trips", func(t *testing.T) {
		for _, nodeType := range []NodeType{
			NodeDialogue, NodeDialogueFragment, NodeBranch, NodeCondition,
			NodeInstruction, NodeHub, NodeJump, NodeFlowFragment,
		} {
			data := NewNodeData(nodeType)
			raw, err := json.Marshal(data)
			require.NoError(t, err, "%s", nodeType)

			var back NodeData
			require.NoError(t, json.Unmarshal(raw, &back), "%s", nodeType)
			assert.Equal(t, data, back, "%s", nodeType)
		}
	})

	t.Run("unknown tag rejected", func(t *testing.T) {
		var data NodeData
		err := json.Unmarshal([]byte(`{"type": "teleport"}`), &data)
		assert.Error(t, err)
	})

	t.Run("jump with target pin", func(t *testing.T) {
		pin := 2
		data := NewNodeData(NodeJump)
		data.Jump.TargetNodeID = "abc"
		data.Jump.TargetPinIndex = &pin

		raw, err := json.Marshal(data)
		require.NoError(t, err)

		var back NodeData
		require.NoError(t, json.Unmarshal(raw, &back))
		require.NotNil(t, back.Jump.TargetPinIndex)
		assert.Equal(t, 2, *back.Jump.TargetPinIndex)
	})
}

func TestGraphJSONRoundTrip(t *testing.T) {
	g := New("Tavern Intro")
	speaker := g.AddCharacter("Old Innkeeper", "#c2703d")

	node := g.AddNode(NodeDialogue, Position{X: 100, Y: 100})
	node.Data.Dialogue.Speaker = speaker.DisplayName
	sid := speaker.CompositeID
	node.Data.Dialogue.SpeakerID = &sid
	node.Data.Dialogue.Text = "Back again?"

	check := g.AddNode(NodeCondition, Position{X: 400, Y: 100})
	check.Data.Script.Expression = "tavern.visited"
	g.AddNode(NodeJump, Position{X: 700, Y: 100})

	g.AddConnection(node.ID, 0, check.ID, 0)
	g.AddVariableNamespace("tavern")
	g.AddVariable("tavern", "visited", VariableBoolean, false)

	doc, err := json.Marshal(g)
	require.NoError(t, err)

	var back Graph
	require.NoError(t, json.Unmarshal(doc, &back))

	redoc, err := json.Marshal(&back)
	require.NoError(t, err)
	assert.JSONEq(t, string(doc), string(redoc))

	assert.Equal(t, g.ID, back.ID)
	assert.Equal(t, g.TechnicalName, back.TechnicalName)
	require.Len(t, back.Nodes, 3)
	assert.Equal(t, "Back again?", back.Nodes[0].Data.Dialogue.Text)
	assert.Equal(t, speaker.CompositeID, *back.Nodes[0].Data.Dialogue.SpeakerID)
	require.Len(t, back.Connections, 1)
	assert.Equal(t, ConnectionFlow, back.Connections[0].ConnectionType)
}

func TestEnumWireTags(t *testing.T) {
	raw, err := json.Marshal(struct {
		N NodeType           `json:"n"`
		P PortType           `json:"p"`
		C ConnectionType     `json:"c"`
		V VariableType       `json:"v"`
		S ValidationSeverity `json:"s"`
	}{NodeDialogueFragment, PortOutput, ConnectionFlow, VariableBoolean, SeverityWarning})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"n": "dialogueFragment",
		"p": "output",
		"c": "flow",
		"v": "boolean",
		"s": "warning"
	}`, string(raw))
}
