package dialogue

import "fmt"

// Store is the immutable, validated set of all dialogue trees. It is built
// once at campaign-load time and shared by all sessions without
// synchronization; it exposes no mutation API.
type Store struct {
	trees map[int]*Tree
	order []int
}

// NewStore validates the given trees and builds a Store.
//
// Postcondition: Returns a Store with O(1) tree and node lookup, or an error
// naming the first invalid or duplicate tree.
func NewStore(trees []*Tree) (*Store, error) {
	s := &Store{trees: make(map[int]*Tree, len(trees))}
	for i, t := range trees {
		if t == nil {
			return nil, fmt.Errorf("dialogue store: tree at position %d is nil", i)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("dialogue store: %w", err)
		}
		if _, dup := s.trees[t.ID]; dup {
			return nil, fmt.Errorf("dialogue store: duplicate tree id %d", t.ID)
		}
		s.trees[t.ID] = t
		s.order = append(s.order, t.ID)
	}
	return s, nil
}

// Tree returns the tree with the given ID.
//
// Postcondition: Returns (tree, true) if found, or (nil, false) otherwise.
func (s *Store) Tree(id int) (*Tree, bool) {
	t, ok := s.trees[id]
	return t, ok
}

// Node returns the identified node within the identified tree.
//
// Postcondition: Returns (node, true) if both resolve, or (nil, false).
func (s *Store) Node(treeID, nodeID int) (*Node, bool) {
	t, ok := s.trees[treeID]
	if !ok {
		return nil, false
	}
	n, ok := t.Nodes[nodeID]
	return n, ok
}

// Trees returns all trees in original load order.
func (s *Store) Trees() []*Tree {
	out := make([]*Tree, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.trees[id])
	}
	return out
}

// Len returns the number of trees in the store.
func (s *Store) Len() int { return len(s.trees) }
