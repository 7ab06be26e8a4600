// Package dialogue provides the branching dialogue model: trees of nodes
// with gated, action-bearing choices, the immutable tree store, and the
// per-interaction session state machine.
package dialogue

import (
	"fmt"

	"github.com/cory-johannsen/campaign/internal/game/action"
	"github.com/cory-johannsen/campaign/internal/game/condition"
)

// Choice is one player-selectable option on a node. Declaration order is
// presentation and selection order.
type Choice struct {
	// Text is the display string for the option.
	Text string
	// TargetNode is the destination node ID. nil together with
	// EndsDialogue=true is a valid terminal choice; nil with
	// EndsDialogue=false is a content error caught by the validator.
	TargetNode *int
	// Conditions gate visibility: the choice is hidden unless all hold.
	Conditions []condition.Condition
	// Actions are applied when the choice is selected, before the
	// transition to TargetNode.
	Actions []action.Action
	// EndsDialogue ends the session after the choice's actions run.
	EndsDialogue bool
}

// Node is one dialogue beat: text, entry conditions and actions, and
// outgoing choices.
type Node struct {
	// ID must equal the node's key in the owning tree's node arena.
	ID int
	// Text is the displayed line. Must be non-empty.
	Text string
	// SpeakerOverride replaces the tree's speaker name for this node.
	SpeakerOverride string
	// Choices are the outgoing options in presentation order.
	Choices []Choice
	// Conditions gate whether the node is reachable; they are evaluated
	// when a transition targets the node, never earlier.
	Conditions []condition.Condition
	// Actions are applied immediately upon entering the node, before its
	// choices are evaluated.
	Actions []action.Action
	// IsTerminal ends the session upon entry regardless of Choices.
	IsTerminal bool
}

// Tree is one branching conversation: an arena of nodes referenced by ID, so
// conversations may loop freely.
type Tree struct {
	ID int
	// RootNode is the entry node ID; it must exist in Nodes.
	RootNode int
	// Nodes is the node arena keyed by node ID.
	Nodes map[int]*Node
	// SpeakerName is the default display name for the tree's speaker.
	SpeakerName string
	// Repeatable reports whether a completed tree can be re-entered.
	Repeatable bool
	// AssociatedQuest optionally binds the tree to a quest ID for the
	// authoring tool; 0 = none. Resolution is a validator concern.
	AssociatedQuest int
	// SpeakerNpc optionally names the NPC template this conversation
	// belongs to; sessions raise a talk event for it on start.
	SpeakerNpc string
}

// Validate checks the structural invariants the store refuses to load
// without: a positive ID, a non-empty node arena, a resolvable root, and
// node IDs that match their arena keys. Deeper content checks (dangling
// choice targets, empty text, orphans) belong to the validator so authors
// receive findings instead of a load abort.
//
// Postcondition: Returns nil if valid, or an error describing the first
// violation.
func (t *Tree) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("dialogue tree: id must be > 0, got %d", t.ID)
	}
	if len(t.Nodes) == 0 {
		return fmt.Errorf("dialogue tree %d: must contain at least one node", t.ID)
	}
	if _, ok := t.Nodes[t.RootNode]; !ok {
		return fmt.Errorf("dialogue tree %d: root_node %d not found in nodes", t.ID, t.RootNode)
	}
	for id, n := range t.Nodes {
		if n == nil {
			return fmt.Errorf("dialogue tree %d: node %d is nil", t.ID, id)
		}
		if n.ID != id {
			return fmt.Errorf("dialogue tree %d: node key %d does not match node ID %d", t.ID, id, n.ID)
		}
	}
	return nil
}

// Speaker returns the display name for a node: the node's override when set,
// otherwise the tree's speaker name.
func (t *Tree) Speaker(n *Node) string {
	if n != nil && n.SpeakerOverride != "" {
		return n.SpeakerOverride
	}
	return t.SpeakerName
}
