package dialogue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/campaign/internal/game/action"
	"github.com/cory-johannsen/campaign/internal/game/condition"
	"github.com/cory-johannsen/campaign/internal/game/dialogue"
	"github.com/cory-johannsen/campaign/internal/game/quest"
	"github.com/cory-johannsen/campaign/internal/game/state"
)

// rowanTree is the fixture conversation: a gated quest-start choice, a
// hand-in choice visible only at stage 2, and a terminal reward node.
func rowanTree() *dialogue.Tree {
	return &dialogue.Tree{
		ID:          1,
		RootNode:    1,
		SpeakerName: "Elder Rowan",
		SpeakerNpc:  "elder_rowan",
		Repeatable:  true,
		Nodes: map[int]*dialogue.Node{
			1: {ID: 1, Text: "Wolves again.", Choices: []dialogue.Choice{
				{
					Text:       "I'll deal with the wolves.",
					TargetNode: intp(2),
					Conditions: []condition.Condition{{Type: condition.TypeMinLevel, Level: 2}},
					Actions:    []action.Action{{Type: action.TypeStartQuest, Quest: 1}},
				},
				{
					Text:       "I've culled the pack.",
					TargetNode: intp(3),
					Conditions: []condition.Condition{{Type: condition.TypeQuestAtStage, Quest: 1, Stage: 2}},
				},
				{Text: "Not my problem.", EndsDialogue: true},
			}},
			2: {ID: 2, Text: "The pack dens east of here.", IsTerminal: true},
			3: {ID: 3, Text: "The village owes you.", IsTerminal: true, Actions: []action.Action{
				{Type: action.TypeGiveCurrency, Amount: 50},
				{Type: action.TypeSetFlag, Flag: "rowan_trusts_you"},
			}},
		},
	}
}

func wolfQuest() *quest.Quest {
	return &quest.Quest{
		ID:   1,
		Name: "Wolf Cull",
		Stages: []quest.Stage{
			{StageNumber: 1, RequireAll: true, Objectives: []quest.Objective{
				{Type: quest.ObjectiveKillMonsters, Monster: "gray_wolf", Count: 5},
			}},
			{StageNumber: 2, RequireAll: true, Objectives: []quest.Objective{
				{Type: quest.ObjectiveTalkToNpc, Npc: "elder_rowan"},
			}},
		},
	}
}

type fixture struct {
	store   *dialogue.Store
	tracker *quest.Tracker
	eval    *condition.Evaluator
	disp    *action.Dispatcher
}

func newFixture(t *testing.T, trees ...*dialogue.Tree) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)

	if len(trees) == 0 {
		trees = []*dialogue.Tree{rowanTree()}
	}
	store, err := dialogue.NewStore(trees)
	require.NoError(t, err)

	qs, err := quest.NewStore([]*quest.Quest{wolfQuest()})
	require.NoError(t, err)
	tracker := quest.NewTracker(qs, logger)

	return &fixture{
		store:   store,
		tracker: tracker,
		eval:    condition.NewEvaluator(logger, nil),
		disp:    action.NewDispatcher(tracker, nil, logger),
	}
}

func (f *fixture) session(t *testing.T, m *state.Memory) *dialogue.Session {
	t.Helper()
	return dialogue.NewSession(f.store, f.eval, f.disp, m, zaptest.NewLogger(t)).WithTracker(f.tracker)
}

func TestSessionStart(t *testing.T) {
	f := newFixture(t)
	m := state.NewMemory(3)
	s := f.session(t, m)

	require.NoError(t, s.Start(1))
	assert.Equal(t, dialogue.StatusActive, s.Status())
	require.NotNil(t, s.CurrentNode())
	assert.Equal(t, 1, s.CurrentNode().ID)
}

func TestSessionStart_Errors(t *testing.T) {
	f := newFixture(t)
	m := state.NewMemory(3)

	s := f.session(t, m)
	require.ErrorIs(t, s.Start(42), dialogue.ErrNoSuchTree)

	require.NoError(t, s.Start(1))
	require.ErrorIs(t, s.Start(1), dialogue.ErrAlreadyStarted)
}

func TestSessionStart_RootEntryConditions(t *testing.T) {
	tr := rowanTree()
	tr.Nodes[1].Conditions = []condition.Condition{{Type: condition.TypeFlagSet, Flag: "village_gate_open"}}
	f := newFixture(t, tr)
	m := state.NewMemory(3)

	s := f.session(t, m)
	require.ErrorIs(t, s.Start(1), dialogue.ErrNodeUnavailable)
	// Rejected start leaves the session unbound.
	assert.Nil(t, s.Tree())

	m.SetFlag("village_gate_open", true)
	require.NoError(t, f.session(t, m).Start(1))
}

func TestSessionStart_RaisesTalkEvent(t *testing.T) {
	f := newFixture(t)
	m := state.NewMemory(3)
	m.PutQuest(&state.QuestProgress{QuestID: 1, Stage: 2, ObjectiveCounts: []int{0}})

	s := f.session(t, m)
	require.NoError(t, s.Start(1))

	// Starting the conversation is the talk that completes stage 2.
	p, _ := m.Quest(1)
	assert.True(t, p.Completed)
}

func TestSessionVisibleChoices(t *testing.T) {
	f := newFixture(t)

	// Below level 2, neither gated choice is visible.
	low := state.NewMemory(1)
	s := f.session(t, low)
	require.NoError(t, s.Start(1))
	assert.Equal(t, []int{2}, s.VisibleChoices())

	// At level 3 the quest-start choice appears; indices keep declaration order.
	m := state.NewMemory(3)
	s = f.session(t, m)
	require.NoError(t, s.Start(1))
	assert.Equal(t, []int{0, 2}, s.VisibleChoices())

	// At stage 2 the hand-in choice joins in.
	m.PutQuest(&state.QuestProgress{QuestID: 1, Stage: 2, ObjectiveCounts: []int{0}})
	assert.Equal(t, []int{0, 1, 2}, s.VisibleChoices())
}

func TestSessionSelect_AppliesActionsAndTransitions(t *testing.T) {
	f := newFixture(t)
	m := state.NewMemory(3)
	s := f.session(t, m)
	require.NoError(t, s.Start(1))

	require.NoError(t, s.Select(0))

	// The choice's start_quest action ran and the terminal target ended the
	// session.
	p, started := m.Quest(1)
	require.True(t, started)
	assert.Equal(t, 1, p.Stage)
	assert.Equal(t, dialogue.StatusEnded, s.Status())
	assert.Nil(t, s.CurrentNode())
}

func TestSessionSelect_Rejections(t *testing.T) {
	f := newFixture(t)
	m := state.NewMemory(1)
	s := f.session(t, m)
	require.NoError(t, s.Start(1))

	require.ErrorIs(t, s.Select(-1), dialogue.ErrInvalidChoiceIndex)
	require.ErrorIs(t, s.Select(3), dialogue.ErrInvalidChoiceIndex)

	// Choice 0 exists but is hidden at level 1.
	require.ErrorIs(t, s.Select(0), dialogue.ErrChoiceNotVisible)

	// Rejection leaves the cursor and game state untouched.
	assert.Equal(t, 1, s.CurrentNode().ID)
	_, started := m.Quest(1)
	assert.False(t, started)
	assert.Equal(t, dialogue.StatusActive, s.Status())
}

func TestSessionSelect_TargetEntryConditionsGateTransition(t *testing.T) {
	tr := rowanTree()
	tr.Nodes[2].Conditions = []condition.Condition{{Type: condition.TypeFlagSet, Flag: "rowan_finished_tea"}}
	f := newFixture(t, tr)
	m := state.NewMemory(3)
	s := f.session(t, m)
	require.NoError(t, s.Start(1))

	err := s.Select(0)
	require.ErrorIs(t, err, dialogue.ErrNodeUnavailable)

	// The choice's actions must not have run on a rejected transition.
	_, started := m.Quest(1)
	assert.False(t, started)
	assert.Equal(t, 1, s.CurrentNode().ID)

	m.SetFlag("rowan_finished_tea", true)
	require.NoError(t, s.Select(0))
	_, started = m.Quest(1)
	assert.True(t, started)
}

func TestSessionSelect_AfterEnd(t *testing.T) {
	f := newFixture(t)
	m := state.NewMemory(3)
	s := f.session(t, m)
	require.NoError(t, s.Start(1))
	require.NoError(t, s.Select(2))

	require.ErrorIs(t, s.Select(0), dialogue.ErrSessionEnded)
}

func TestSessionTerminalNodeActionsRun(t *testing.T) {
	f := newFixture(t)
	m := state.NewMemory(3)
	m.PutQuest(&state.QuestProgress{QuestID: 1, Stage: 2, ObjectiveCounts: []int{1}, Completed: true})

	s := f.session(t, m)
	require.NoError(t, s.Start(1))
	require.NoError(t, s.Select(1))

	assert.Equal(t, 50, m.Currency())
	assert.True(t, m.Flag("rowan_trusts_you"))
	assert.Equal(t, dialogue.StatusEnded, s.Status())
}

func TestSessionNonRepeatable(t *testing.T) {
	tr := rowanTree()
	tr.Repeatable = false
	f := newFixture(t, tr)
	m := state.NewMemory(3)

	s := f.session(t, m)
	require.NoError(t, s.Start(1))
	require.NoError(t, s.Select(2))
	assert.Equal(t, dialogue.StatusEnded, s.Status())

	// Completion is recorded on the character, so a fresh session is refused.
	s2 := f.session(t, m)
	require.ErrorIs(t, s2.Start(1), dialogue.ErrNotRepeatable)

	// A different character is unaffected.
	other := state.NewMemory(3)
	require.NoError(t, f.session(t, other).Start(1))
}

func TestSessionCancel_DoesNotMarkCompleted(t *testing.T) {
	tr := rowanTree()
	tr.Repeatable = false
	f := newFixture(t, tr)
	m := state.NewMemory(3)

	s := f.session(t, m)
	require.NoError(t, s.Start(1))
	s.Cancel()
	assert.Equal(t, dialogue.StatusEnded, s.Status())

	// An abandoned dialogue can be re-entered.
	require.NoError(t, f.session(t, m).Start(1))
}

func TestSessionStuck(t *testing.T) {
	tr := &dialogue.Tree{
		ID:       2,
		RootNode: 1,
		Nodes: map[int]*dialogue.Node{
			1: {ID: 1, Text: "...", Choices: []dialogue.Choice{
				{
					Text:         "Secret option.",
					EndsDialogue: true,
					Conditions:   []condition.Condition{{Type: condition.TypeFlagSet, Flag: "secret"}},
				},
			}},
		},
	}
	f := newFixture(t, tr)
	m := state.NewMemory(3)
	s := f.session(t, m)
	require.NoError(t, s.Start(2))

	// Every declared choice is hidden: stuck, not ended.
	assert.Equal(t, dialogue.StatusStuck, s.Status())
	assert.Empty(t, s.VisibleChoices())

	// Stuckness is computed live: flipping the flag unsticks the session.
	m.SetFlag("secret", true)
	assert.Equal(t, dialogue.StatusActive, s.Status())
	require.NoError(t, s.Select(0))
	assert.Equal(t, dialogue.StatusEnded, s.Status())
}

func TestSessionsAreIndependent(t *testing.T) {
	f := newFixture(t)

	m1 := state.NewMemory(3)
	m2 := state.NewMemory(3)
	s1 := f.session(t, m1)
	s2 := f.session(t, m2)
	require.NotEqual(t, s1.ID(), s2.ID())

	require.NoError(t, s1.Start(1))
	require.NoError(t, s2.Start(1))
	require.NoError(t, s1.Select(0))

	// Ending one session leaves the other's cursor and state alone.
	assert.Equal(t, dialogue.StatusEnded, s1.Status())
	assert.Equal(t, dialogue.StatusActive, s2.Status())
	_, started := m2.Quest(1)
	assert.False(t, started)
}

func TestSessionSelect_BrokenActionDoesNotBlockFlow(t *testing.T) {
	tr := rowanTree()
	tr.Nodes[1].Choices[0].Actions = []action.Action{
		{Type: action.TypeStartQuest, Quest: 99},
		{Type: action.TypeSetFlag, Flag: "still_ran"},
	}
	f := newFixture(t, tr)
	m := state.NewMemory(3)
	s := f.session(t, m)
	require.NoError(t, s.Start(1))

	// The dangling quest reference is logged, not fatal; the dialogue moves on.
	require.NoError(t, s.Select(0))
	assert.True(t, m.Flag("still_ran"))
	assert.Equal(t, dialogue.StatusEnded, s.Status())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "active", dialogue.StatusActive.String())
	assert.Equal(t, "stuck", dialogue.StatusStuck.String())
	assert.Equal(t, "ended", dialogue.StatusEnded.String())
}
