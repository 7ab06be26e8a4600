package quest

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/campaign/internal/game/state"
)

// ErrNoSuchQuest is returned when a tracker operation references a quest ID
// absent from the store.
var ErrNoSuchQuest = errors.New("no such quest")

// EventKind identifies the gameplay occurrence an Event describes.
type EventKind string

// Gameplay event kinds consumed by the tracker.
const (
	EventKill    EventKind = "kill"
	EventTalk    EventKind = "talk"
	EventCollect EventKind = "collect"
	EventReach   EventKind = "reach"
	EventDeliver EventKind = "deliver"
	EventEscort  EventKind = "escort"
	EventFlag    EventKind = "flag"
)

// Event is one gameplay occurrence raised by the surrounding engine (or by
// the action dispatcher for actions that double as objective triggers).
type Event struct {
	Kind EventKind
	// Npc identifies the NPC for talk, deliver, and escort events.
	Npc string
	// Monster identifies the NPC template for kill events.
	Monster string
	// Item identifies the item for collect and deliver events.
	Item string
	// Map and X, Y locate reach events.
	Map string
	X   int
	Y   int
	// Flag names the flag for flag events; the event fires on set-to-true.
	Flag string
	// Count is the tally delta for kill and collect events. 0 means 1.
	Count int
}

// Tracker advances quest progress as events arrive. Progress lives in the
// game-state handle, never in the tracker, so the tracker itself is stateless
// and shareable. Stage advancement is monotonic: a stage never un-completes.
type Tracker struct {
	store  *Store
	logger *zap.Logger
}

// NewTracker creates a Tracker over the given store.
//
// Precondition: store and logger must not be nil.
func NewTracker(store *Store, logger *zap.Logger) *Tracker {
	return &Tracker{store: store, logger: logger}
}

// Start activates the quest for the character behind the handle.
//
// Starting an already-active quest is a no-op, as is restarting a completed
// non-repeatable quest; both leave existing progress untouched so the call is
// idempotent. A completed repeatable quest restarts at stage 1. Unmet entry
// requirements (level bounds, required quests) also produce a no-op rather
// than an error: dialogue flow is never blocked, and the skip is logged for
// the author.
//
// Postcondition: Returns ErrNoSuchQuest only when the quest ID is unknown.
func (t *Tracker) Start(h state.Handle, questID int) error {
	q, ok := t.store.Quest(questID)
	if !ok {
		return fmt.Errorf("starting quest %d: %w", questID, ErrNoSuchQuest)
	}

	if p, started := h.Quest(questID); started {
		if !p.Completed {
			return nil
		}
		if !q.Repeatable {
			return nil
		}
		p.Stage = 1
		p.Completed = false
		p.ObjectiveCounts = makeCounts(q, 1)
		h.PutQuest(p)
		t.logger.Info("quest restarted",
			zap.Int("quest", questID),
			zap.Int("completions", p.Completions),
		)
		return nil
	}

	if reason := t.entryBlocked(h, q); reason != "" {
		t.logger.Info("quest start skipped",
			zap.Int("quest", questID),
			zap.String("reason", reason),
		)
		return nil
	}

	h.PutQuest(&state.QuestProgress{
		QuestID:         questID,
		Stage:           1,
		ObjectiveCounts: makeCounts(q, 1),
	})
	t.logger.Info("quest started", zap.Int("quest", questID))
	return nil
}

// entryBlocked returns a human-readable reason when the character does not
// meet the quest's entry requirements, or "" when entry is allowed.
func (t *Tracker) entryBlocked(h state.Handle, q *Quest) string {
	if q.MinLevel > 0 && h.Level() < q.MinLevel {
		return fmt.Sprintf("level %d below min_level %d", h.Level(), q.MinLevel)
	}
	if q.MaxLevel > 0 && h.Level() > q.MaxLevel {
		return fmt.Sprintf("level %d above max_level %d", h.Level(), q.MaxLevel)
	}
	for _, reqID := range q.RequiredQuests {
		p, ok := h.Quest(reqID)
		if !ok || !p.Completed {
			return fmt.Sprintf("required quest %d not complete", reqID)
		}
	}
	return ""
}

// Record applies one gameplay event to every active quest, tallying matching
// objectives on each quest's active stage and advancing stages that complete.
//
// Postcondition: Completed quests and quests whose active stage has no
// matching objective are untouched.
func (t *Tracker) Record(h state.Handle, ev Event) {
	for _, p := range activeProgress(h) {
		q, ok := t.store.Quest(p.QuestID)
		if !ok {
			// Progress for a quest no longer in the campaign; leave it so a
			// content fix can revive it.
			t.logger.Warn("progress references unknown quest", zap.Int("quest", p.QuestID))
			continue
		}
		if t.applyEvent(p, q, ev) {
			t.advance(h, p, q)
		}
	}
}

// applyEvent tallies ev against p's active stage. Returns true when any
// counter changed.
func (t *Tracker) applyEvent(p *state.QuestProgress, q *Quest, ev Event) bool {
	st, ok := q.StageByNumber(p.Stage)
	if !ok {
		return false
	}
	if len(p.ObjectiveCounts) != len(st.Objectives) {
		// Definition changed under saved progress; re-size, preserving what fits.
		counts := make([]int, len(st.Objectives))
		copy(counts, p.ObjectiveCounts)
		p.ObjectiveCounts = counts
	}

	changed := false
	for i, o := range st.Objectives {
		if p.ObjectiveCounts[i] >= o.RequiredCount() {
			continue
		}
		if !objectiveMatches(o, ev) {
			continue
		}
		delta := ev.Count
		if delta <= 0 {
			delta = 1
		}
		p.ObjectiveCounts[i] += delta
		if p.ObjectiveCounts[i] > o.RequiredCount() {
			p.ObjectiveCounts[i] = o.RequiredCount()
		}
		changed = true
	}
	return changed
}

// objectiveMatches reports whether ev is the occurrence objective o counts.
func objectiveMatches(o Objective, ev Event) bool {
	switch o.Type {
	case ObjectiveTalkToNpc:
		return ev.Kind == EventTalk && ev.Npc == o.Npc
	case ObjectiveKillMonsters:
		return ev.Kind == EventKill && ev.Monster == o.Monster
	case ObjectiveCollectItems:
		return ev.Kind == EventCollect && ev.Item == o.Item
	case ObjectiveReachLocation:
		return ev.Kind == EventReach && ev.Map == o.Map && ev.X == o.X && ev.Y == o.Y
	case ObjectiveDeliverItem:
		return ev.Kind == EventDeliver && ev.Item == o.Item && ev.Npc == o.Npc
	case ObjectiveEscortNpc:
		return ev.Kind == EventEscort && ev.Npc == o.Npc && (o.Map == "" || ev.Map == o.Map)
	case ObjectiveCustomFlag:
		return ev.Kind == EventFlag && ev.Flag == o.Flag
	default:
		return false
	}
}

// advance moves p forward while its active stage is complete, finishing the
// quest past the last stage.
func (t *Tracker) advance(h state.Handle, p *state.QuestProgress, q *Quest) {
	for !p.Completed {
		st, ok := q.StageByNumber(p.Stage)
		if !ok || !stageComplete(st, p.ObjectiveCounts) {
			break
		}
		if p.Stage >= len(q.Stages) {
			p.Completed = true
			p.Completions++
			t.logger.Info("quest completed",
				zap.Int("quest", p.QuestID),
				zap.Int("completions", p.Completions),
			)
			break
		}
		p.Stage++
		p.ObjectiveCounts = makeCounts(q, p.Stage)
		t.logger.Info("quest stage advanced",
			zap.Int("quest", p.QuestID),
			zap.Int("stage", p.Stage),
		)
	}
	h.PutQuest(p)
}

// stageComplete applies the stage's AND/OR semantics to the counters.
// An OR stage with zero objectives never completes.
func stageComplete(st Stage, counts []int) bool {
	if st.RequireAll {
		for i, o := range st.Objectives {
			if i >= len(counts) || counts[i] < o.RequiredCount() {
				return false
			}
		}
		return true
	}
	for i, o := range st.Objectives {
		if i < len(counts) && counts[i] >= o.RequiredCount() {
			return true
		}
	}
	return false
}

// makeCounts allocates zeroed counters for the given stage number.
func makeCounts(q *Quest, stageNumber int) []int {
	st, ok := q.StageByNumber(stageNumber)
	if !ok {
		return nil
	}
	return make([]int, len(st.Objectives))
}

// activeProgress returns all in-flight (started, not completed) progress
// records from the handle.
func activeProgress(h state.Handle) []*state.QuestProgress {
	var out []*state.QuestProgress
	for _, p := range h.Quests() {
		if !p.Completed {
			out = append(out, p)
		}
	}
	return out
}
