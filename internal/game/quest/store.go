package quest

import "fmt"

// Store is the immutable, validated set of all quest definitions. It is
// built once at campaign-load time and may be shared across goroutines
// without synchronization; it exposes no mutation API.
type Store struct {
	quests map[int]*Quest
	order  []int
}

// NewStore validates the given quests and builds a Store.
//
// Precondition: each quest must be fully populated; nil entries are rejected.
// Postcondition: Returns a Store with O(1) lookup, or an error naming the
// first invalid or duplicate quest.
func NewStore(quests []*Quest) (*Store, error) {
	s := &Store{quests: make(map[int]*Quest, len(quests))}
	for i, q := range quests {
		if q == nil {
			return nil, fmt.Errorf("quest store: quest at position %d is nil", i)
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("quest store: %w", err)
		}
		if _, dup := s.quests[q.ID]; dup {
			return nil, fmt.Errorf("quest store: duplicate quest id %d", q.ID)
		}
		s.quests[q.ID] = q
		s.order = append(s.order, q.ID)
	}
	return s, nil
}

// Quest returns the quest with the given ID.
//
// Postcondition: Returns (quest, true) if found, or (nil, false) otherwise.
func (s *Store) Quest(id int) (*Quest, bool) {
	q, ok := s.quests[id]
	return q, ok
}

// Quests returns all quests in original load order.
func (s *Store) Quests() []*Quest {
	out := make([]*Quest, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.quests[id])
	}
	return out
}

// Len returns the number of quests in the store.
func (s *Store) Len() int { return len(s.quests) }
