package dialogue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/campaign/internal/game/dialogue"
)

func intp(n int) *int { return &n }

func lineTree(id int) *dialogue.Tree {
	return &dialogue.Tree{
		ID:       id,
		RootNode: 1,
		Nodes: map[int]*dialogue.Node{
			1: {ID: 1, Text: "Hello.", Choices: []dialogue.Choice{
				{Text: "Goodbye.", EndsDialogue: true},
			}},
		},
	}
}

func TestNewStore(t *testing.T) {
	s, err := dialogue.NewStore([]*dialogue.Tree{lineTree(1), lineTree(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	tr, ok := s.Tree(1)
	require.True(t, ok)
	assert.Equal(t, 1, tr.ID)

	n, ok := s.Node(2, 1)
	require.True(t, ok)
	assert.Equal(t, "Hello.", n.Text)

	_, ok = s.Tree(3)
	assert.False(t, ok)
	_, ok = s.Node(1, 99)
	assert.False(t, ok)
}

func TestNewStore_PreservesLoadOrder(t *testing.T) {
	s, err := dialogue.NewStore([]*dialogue.Tree{lineTree(7), lineTree(2), lineTree(5)})
	require.NoError(t, err)

	var ids []int
	for _, tr := range s.Trees() {
		ids = append(ids, tr.ID)
	}
	assert.Equal(t, []int{7, 2, 5}, ids)
}

func TestNewStore_Rejections(t *testing.T) {
	_, err := dialogue.NewStore([]*dialogue.Tree{lineTree(1), nil})
	require.Error(t, err)

	_, err = dialogue.NewStore([]*dialogue.Tree{lineTree(1), lineTree(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	bad := lineTree(2)
	bad.RootNode = 42
	_, err = dialogue.NewStore([]*dialogue.Tree{bad})
	require.Error(t, err)
}

func TestTreeValidate(t *testing.T) {
	require.NoError(t, lineTree(1).Validate())

	empty := &dialogue.Tree{ID: 1, RootNode: 1}
	require.Error(t, empty.Validate())

	zeroID := lineTree(0)
	require.Error(t, zeroID.Validate())

	mismatched := lineTree(1)
	mismatched.Nodes[2] = &dialogue.Node{ID: 3, Text: "x"}
	require.Error(t, mismatched.Validate())
}

func TestTreeSpeaker(t *testing.T) {
	tr := lineTree(1)
	tr.SpeakerName = "Elder Rowan"
	n := tr.Nodes[1]

	assert.Equal(t, "Elder Rowan", tr.Speaker(n))
	n.SpeakerOverride = "Rowan (whispering)"
	assert.Equal(t, "Rowan (whispering)", tr.Speaker(n))
}
