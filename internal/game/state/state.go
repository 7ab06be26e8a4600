// Package state defines the capability interfaces through which the dialogue
// and quest core reads and mutates the surrounding game's persistent state,
// plus an in-memory implementation for tests and tooling.
package state

// QuestProgress tracks a single character's progress through one quest.
// Stage is 1-based and matches the quest definition's stage numbering.
type QuestProgress struct {
	// QuestID is the quest this progress belongs to.
	QuestID int
	// Stage is the currently active stage number (1-based). Meaningless once
	// Completed is true.
	Stage int
	// ObjectiveCounts holds per-objective completion counters for the active
	// stage, indexed by the objective's position in the stage definition.
	// Counts reset when the tracker advances to the next stage.
	ObjectiveCounts []int
	// Completed reports whether the quest has been finished.
	Completed bool
	// Completions counts how many times a repeatable quest has been finished.
	Completions int
}

// View is the read-only capability handed to condition evaluation. It must
// never expose mutation; sessions share a View with the rest of the game
// without synchronization concerns of their own.
type View interface {
	// Flag returns the boolean flag value, false when unset.
	Flag(name string) bool
	// ItemCount returns how many of the item the character carries.
	ItemCount(itemID string) int
	// Level returns the character's current level.
	Level() int
	// Currency returns the character's spendable currency total.
	Currency() int
	// Quest returns the progress for questID, or (nil, false) if the quest
	// was never started.
	Quest(questID int) (*QuestProgress, bool)
	// Quests returns a snapshot of all quest progress records, started or
	// completed, in no particular order.
	Quests() []*QuestProgress
}

// Handle is the mutable capability threaded through the action dispatcher and
// the quest tracker. The core treats all access as synchronous and
// non-reentrant; the owner (game loop) is responsible for serialization.
type Handle interface {
	View

	// SetFlag sets or clears a boolean flag.
	SetFlag(name string, value bool)
	// AddItem adjusts the item count by delta; the count never drops below
	// zero.
	AddItem(itemID string, delta int)
	// AddCurrency adjusts the currency total by delta; the total never drops
	// below zero.
	AddCurrency(delta int)
	// PutQuest stores or replaces the progress record for its quest.
	PutQuest(p *QuestProgress)
	// OpenShop asks the surrounding game to open the identified shop UI.
	// The core only forwards the request; failures are reported by the
	// dispatcher as action diagnostics.
	OpenShop(shopID string) error
}
