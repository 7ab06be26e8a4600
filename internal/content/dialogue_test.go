package content_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/campaign/internal/content"
	"github.com/cory-johannsen/campaign/internal/game/action"
	"github.com/cory-johannsen/campaign/internal/game/condition"
	"github.com/cory-johannsen/campaign/internal/game/dialogue"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
}

const rowanYAML = `
dialogue:
  id: 1
  root_node: 1
  speaker_name: Elder Rowan
  speaker_npc: elder_rowan
  repeatable: true
  associated_quest: 1
  nodes:
    - id: 1
      text: Wolves again.
      choices:
        - text: I'll handle it.
          target_node: 2
          conditions:
            - type: min_level
              level: 2
          actions:
            - type: start_quest
              quest: 1
        - text: Not my problem.
          ends_dialogue: true
    - id: 2
      text: The pack dens east of here.
      is_terminal: true
`

func TestLoadTreeFromBytes(t *testing.T) {
	tree, err := content.LoadTreeFromBytes([]byte(rowanYAML))
	require.NoError(t, err)

	assert.Equal(t, 1, tree.ID)
	assert.Equal(t, 1, tree.RootNode)
	assert.Equal(t, "Elder Rowan", tree.SpeakerName)
	assert.Equal(t, "elder_rowan", tree.SpeakerNpc)
	assert.True(t, tree.Repeatable)
	assert.Equal(t, 1, tree.AssociatedQuest)
	require.Len(t, tree.Nodes, 2)

	root := tree.Nodes[1]
	require.Len(t, root.Choices, 2)
	c := root.Choices[0]
	require.NotNil(t, c.TargetNode)
	assert.Equal(t, 2, *c.TargetNode)
	require.Len(t, c.Conditions, 1)
	assert.Equal(t, condition.TypeMinLevel, c.Conditions[0].Type)
	require.Len(t, c.Actions, 1)
	assert.Equal(t, action.TypeStartQuest, c.Actions[0].Type)
	assert.True(t, root.Choices[1].EndsDialogue)
	assert.True(t, tree.Nodes[2].IsTerminal)
}

func TestLoadTreeFromBytes_UnknownFieldRejected(t *testing.T) {
	_, err := content.LoadTreeFromBytes([]byte(`
dialogue:
  id: 1
  root_node: 1
  speeker_name: typo
  nodes:
    - id: 1
      text: hi
`))
	require.Error(t, err)
}

func TestLoadTreeFromBytes_StructuralValidation(t *testing.T) {
	// Missing root node fails Load but not Parse.
	bad := `
dialogue:
  id: 1
  root_node: 9
  nodes:
    - id: 1
      text: hi
`
	_, err := content.LoadTreeFromBytes([]byte(bad))
	require.Error(t, err)

	tree, err := content.ParseTreeFromBytes([]byte(bad))
	require.NoError(t, err)
	assert.Equal(t, 9, tree.RootNode)
}

func TestLoadTreeFromBytes_DuplicateNodeID(t *testing.T) {
	_, err := content.ParseTreeFromBytes([]byte(`
dialogue:
  id: 1
  root_node: 1
  nodes:
    - id: 1
      text: hi
    - id: 1
      text: again
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate node id 1")
}

func TestLoadTreesFromDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "rowan.yaml"), rowanYAML)
	writeFile(t, filepath.Join(dir, "notes.txt"), "not yaml")

	trees, err := content.LoadTreesFromDir(dir)
	require.NoError(t, err)
	require.Len(t, trees, 1)
	assert.Equal(t, 1, trees[0].ID)
}

func TestEncodeTree_RoundTrip(t *testing.T) {
	tree, err := content.LoadTreeFromBytes([]byte(rowanYAML))
	require.NoError(t, err)

	out, err := content.EncodeTree(tree)
	require.NoError(t, err)

	back, err := content.LoadTreeFromBytes(out)
	require.NoError(t, err)
	assert.Equal(t, tree, back)
}

// genTree draws a random structurally valid dialogue tree.
func genTree(t *rapid.T) *dialogue.Tree {
	nodeCount := rapid.IntRange(1, 6).Draw(t, "nodes")
	tree := &dialogue.Tree{
		ID:          rapid.IntRange(1, 1000).Draw(t, "id"),
		RootNode:    1,
		SpeakerName: rapid.StringMatching(`[A-Za-z ]{1,12}`).Draw(t, "speaker"),
		Repeatable:  rapid.Bool().Draw(t, "repeatable"),
		Nodes:       make(map[int]*dialogue.Node, nodeCount),
	}
	for id := 1; id <= nodeCount; id++ {
		n := &dialogue.Node{
			ID:         id,
			Text:       rapid.StringMatching(`[a-z]{1,20}`).Draw(t, "text"),
			IsTerminal: rapid.Bool().Draw(t, "terminal"),
		}
		choices := rapid.IntRange(0, 3).Draw(t, "choices")
		for c := 0; c < choices; c++ {
			ch := dialogue.Choice{Text: rapid.StringMatching(`[a-z ]{1,10}`).Draw(t, "ctext")}
			if rapid.Bool().Draw(t, "ends") {
				ch.EndsDialogue = true
			} else {
				target := rapid.IntRange(1, nodeCount).Draw(t, "target")
				ch.TargetNode = &target
			}
			if rapid.Bool().Draw(t, "gated") {
				ch.Conditions = []condition.Condition{{
					Type:  condition.TypeMinLevel,
					Level: rapid.IntRange(1, 20).Draw(t, "lvl"),
				}}
			}
			if rapid.Bool().Draw(t, "acts") {
				ch.Actions = []action.Action{{
					Type: action.TypeSetFlag,
					Flag: rapid.StringMatching(`[a-z_]{1,10}`).Draw(t, "flag"),
				}}
			}
			n.Choices = append(n.Choices, ch)
		}
		tree.Nodes[id] = n
	}
	return tree
}

func TestPropertyEncodeTree_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree := genTree(t)

		out, err := content.EncodeTree(tree)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		back, err := content.LoadTreeFromBytes(out)
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
		if len(back.Nodes) != len(tree.Nodes) {
			t.Fatalf("node count changed: %d != %d", len(back.Nodes), len(tree.Nodes))
		}
		for id, n := range tree.Nodes {
			got := back.Nodes[id]
			if got == nil {
				t.Fatalf("node %d lost", id)
			}
			if got.Text != n.Text || got.IsTerminal != n.IsTerminal || len(got.Choices) != len(n.Choices) {
				t.Fatalf("node %d changed shape", id)
			}
		}
	})
}
