package state

import "fmt"

// Memory is an in-memory Handle implementation. It backs unit tests, the
// playtest CLI, and is the unit of persistence for the progress repository.
// It is not safe for concurrent use; callers serialize access, matching the
// single-interacting-actor usage pattern.
type Memory struct {
	flags    map[string]bool
	items    map[string]int
	level    int
	currency int
	quests   map[int]*QuestProgress

	// KnownShops, when non-nil, restricts OpenShop to the listed shop IDs.
	// nil means every shop ID is accepted.
	KnownShops map[string]bool
	// OpenedShops records every successful OpenShop call in order.
	OpenedShops []string
}

// NewMemory creates an empty Memory state for a character at the given level.
func NewMemory(level int) *Memory {
	return &Memory{
		flags:  make(map[string]bool),
		items:  make(map[string]int),
		level:  level,
		quests: make(map[int]*QuestProgress),
	}
}

// Flag returns the boolean flag value, false when unset.
func (m *Memory) Flag(name string) bool { return m.flags[name] }

// SetFlag sets or clears a boolean flag.
func (m *Memory) SetFlag(name string, value bool) {
	if value {
		m.flags[name] = true
		return
	}
	delete(m.flags, name)
}

// Flags returns a snapshot of all set flags.
func (m *Memory) Flags() map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// ItemCount returns how many of the item the character carries.
func (m *Memory) ItemCount(itemID string) int { return m.items[itemID] }

// AddItem adjusts the item count by delta, clamping at zero.
func (m *Memory) AddItem(itemID string, delta int) {
	n := m.items[itemID] + delta
	if n <= 0 {
		delete(m.items, itemID)
		return
	}
	m.items[itemID] = n
}

// Level returns the character's current level.
func (m *Memory) Level() int { return m.level }

// SetLevel sets the character's level.
func (m *Memory) SetLevel(level int) { m.level = level }

// Currency returns the character's spendable currency total.
func (m *Memory) Currency() int { return m.currency }

// AddCurrency adjusts the currency total by delta, clamping at zero.
func (m *Memory) AddCurrency(delta int) {
	m.currency += delta
	if m.currency < 0 {
		m.currency = 0
	}
}

// Quest returns the progress for questID, or (nil, false) if never started.
func (m *Memory) Quest(questID int) (*QuestProgress, bool) {
	p, ok := m.quests[questID]
	return p, ok
}

// PutQuest stores or replaces the progress record for its quest.
//
// Precondition: p must not be nil.
func (m *Memory) PutQuest(p *QuestProgress) { m.quests[p.QuestID] = p }

// Quests returns a snapshot slice of all quest progress records.
func (m *Memory) Quests() []*QuestProgress {
	out := make([]*QuestProgress, 0, len(m.quests))
	for _, p := range m.quests {
		out = append(out, p)
	}
	return out
}

// OpenShop records the shop request, or rejects it when KnownShops is set and
// does not contain shopID.
func (m *Memory) OpenShop(shopID string) error {
	if m.KnownShops != nil && !m.KnownShops[shopID] {
		return fmt.Errorf("unknown shop %q", shopID)
	}
	m.OpenedShops = append(m.OpenedShops, shopID)
	return nil
}
