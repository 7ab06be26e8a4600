package dialogue

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/campaign/internal/game/action"
	"github.com/cory-johannsen/campaign/internal/game/condition"
	"github.com/cory-johannsen/campaign/internal/game/quest"
	"github.com/cory-johannsen/campaign/internal/game/state"
)

// Session errors. All are caller-recoverable: on rejection the session state
// is unchanged and the caller re-queries VisibleChoices.
var (
	// ErrNoSuchTree is returned by Start when the store has no such tree.
	ErrNoSuchTree = errors.New("no such dialogue tree")
	// ErrAlreadyStarted is returned by Start on a session that is already
	// bound to a tree; one session serves one interaction.
	ErrAlreadyStarted = errors.New("session already started")
	// ErrNotRepeatable is returned by Start when the tree was already
	// completed by this character and is not repeatable.
	ErrNotRepeatable = errors.New("dialogue already completed and not repeatable")
	// ErrSessionEnded is returned by Select after the session ended.
	ErrSessionEnded = errors.New("session has ended")
	// ErrInvalidChoiceIndex is returned by Select when the index is out of
	// range for the current node's declared choices.
	ErrInvalidChoiceIndex = errors.New("choice index out of range")
	// ErrChoiceNotVisible is returned by Select when the indexed choice is
	// currently hidden by its conditions. Selecting a hidden choice is an
	// error, not silently accepted, so a stale UI cannot desync the state.
	ErrChoiceNotVisible = errors.New("choice is not visible")
	// ErrNodeUnavailable is returned when a transition targets a node whose
	// own entry conditions do not hold.
	ErrNodeUnavailable = errors.New("target node conditions not met")
	// ErrNoSuchNode is returned when a choice targets a node absent from
	// the tree. Validated content never trips this; it is a runtime guard.
	ErrNoSuchNode = errors.New("no such dialogue node")
)

// Status is the session lifecycle state.
type Status int

// Session states. StatusStuck is distinct from an Active node with zero
// declared choices: stuck means every declared choice is currently hidden,
// which the caller may want to diagnose or fall back from.
const (
	StatusActive Status = iota
	StatusStuck
	StatusEnded
)

// String returns the lowercase state name.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusStuck:
		return "stuck"
	case StatusEnded:
		return "ended"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Session is the per-interaction dialogue state machine. It owns a cursor
// into one tree and a reference to the mutable game-state handle; it is
// created per interaction and discarded when the dialogue ends. Sessions are
// not safe for concurrent use; one interacting actor drives one session.
type Session struct {
	id     string
	store  *Store
	eval   *condition.Evaluator
	disp   *action.Dispatcher
	handle state.Handle
	logger *zap.Logger

	// tracker, when non-nil, receives a talk event for the tree's speaker
	// NPC on Start, driving talk-to-NPC objectives.
	tracker *quest.Tracker

	tree    *Tree
	current *Node
	ended   bool
}

// NewSession creates an unstarted session.
//
// Precondition: store, eval, disp, handle, and logger must not be nil.
func NewSession(store *Store, eval *condition.Evaluator, disp *action.Dispatcher, handle state.Handle, logger *zap.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		id:     id,
		store:  store,
		eval:   eval,
		disp:   disp,
		handle: handle,
		logger: logger.With(zap.String("session", id)),
	}
}

// WithTracker wires the quest tracker that receives talk events on Start.
// Returns the session for chaining during construction.
func (s *Session) WithTracker(t *quest.Tracker) *Session {
	s.tracker = t
	return s
}

// ID returns the session's correlation identifier.
func (s *Session) ID() string { return s.id }

// Start binds the session to a tree and enters its root node, applying the
// root's entry actions.
//
// Postcondition: On success the session is Active (or Ended, if the root is
// terminal). Fails with ErrNoSuchTree for an unknown tree ID, with
// ErrNotRepeatable for a completed non-repeatable tree, and with
// ErrNodeUnavailable when the root node's conditions do not hold; the
// session is unchanged on failure.
func (s *Session) Start(treeID int) error {
	if s.tree != nil {
		return ErrAlreadyStarted
	}
	tree, ok := s.store.Tree(treeID)
	if !ok {
		return fmt.Errorf("starting dialogue %d: %w", treeID, ErrNoSuchTree)
	}
	if !tree.Repeatable && s.handle.Flag(completionFlag(treeID)) {
		return fmt.Errorf("starting dialogue %d: %w", treeID, ErrNotRepeatable)
	}
	root := tree.Nodes[tree.RootNode]
	if !s.eval.EvalAll(root.Conditions, s.handle) {
		return fmt.Errorf("starting dialogue %d: %w", treeID, ErrNodeUnavailable)
	}

	s.tree = tree
	s.logger.Info("dialogue started",
		zap.Int("tree", treeID),
		zap.String("speaker", tree.SpeakerName),
	)
	if s.tracker != nil && tree.SpeakerNpc != "" {
		s.tracker.Record(s.handle, quest.Event{Kind: quest.EventTalk, Npc: tree.SpeakerNpc})
	}
	s.enter(root)
	return nil
}

// Status returns the current lifecycle state. Stuckness is computed against
// the live game state: a node whose every declared choice is hidden reports
// StatusStuck until a condition flips or the caller ends the session.
func (s *Session) Status() Status {
	if s.ended {
		return StatusEnded
	}
	if s.current == nil {
		return StatusActive
	}
	if len(s.current.Choices) > 0 && len(s.VisibleChoices()) == 0 {
		return StatusStuck
	}
	return StatusActive
}

// CurrentNode returns the node the cursor rests on, or nil before Start and
// after the session ends.
func (s *Session) CurrentNode() *Node {
	if s.ended {
		return nil
	}
	return s.current
}

// Tree returns the tree the session is bound to, or nil before Start.
func (s *Session) Tree() *Tree { return s.tree }

// VisibleChoices returns the indices of the current node's choices whose
// conditions hold, in declaration order. Hidden choices are omitted, never
// reordered, so an index identifies the same choice across calls.
func (s *Session) VisibleChoices() []int {
	if s.ended || s.current == nil {
		return nil
	}
	var visible []int
	for i, c := range s.current.Choices {
		if s.eval.EvalAll(c.Conditions, s.handle) {
			visible = append(visible, i)
		}
	}
	return visible
}

// Select picks the choice at the given declaration index, applies its
// actions, and transitions to the target node (applying that node's entry
// actions) or ends the session.
//
// Postcondition: On rejection (ErrSessionEnded, ErrInvalidChoiceIndex,
// ErrChoiceNotVisible, ErrNodeUnavailable, ErrNoSuchNode) no actions have
// been applied and the cursor is unchanged. Action failures within an
// accepted choice do not reject the transition; they are logged and the
// dialogue proceeds.
func (s *Session) Select(index int) error {
	if s.ended {
		return ErrSessionEnded
	}
	if s.current == nil {
		return ErrSessionEnded
	}
	if index < 0 || index >= len(s.current.Choices) {
		return fmt.Errorf("selecting choice %d of %d: %w", index, len(s.current.Choices), ErrInvalidChoiceIndex)
	}
	choice := s.current.Choices[index]
	if !s.eval.EvalAll(choice.Conditions, s.handle) {
		return fmt.Errorf("selecting choice %d: %w", index, ErrChoiceNotVisible)
	}

	// Resolve and gate the target before any action runs so a rejected
	// select leaves the game state untouched.
	var target *Node
	if choice.TargetNode != nil && !choice.EndsDialogue {
		var ok bool
		target, ok = s.tree.Nodes[*choice.TargetNode]
		if !ok {
			return fmt.Errorf("choice %d targets node %d: %w", index, *choice.TargetNode, ErrNoSuchNode)
		}
		if !s.eval.EvalAll(target.Conditions, s.handle) {
			return fmt.Errorf("choice %d targets node %d: %w", index, *choice.TargetNode, ErrNodeUnavailable)
		}
	}

	s.applyActions("choice", choice.Actions)

	if target == nil {
		s.end()
		return nil
	}
	s.enter(target)
	return nil
}

// Cancel ends the session from any state. Always legal; no partial-choice
// actions are applied, and the tree is not marked completed, so a
// non-repeatable dialogue abandoned mid-way can be re-entered.
func (s *Session) Cancel() {
	if s.ended {
		return
	}
	s.ended = true
	s.logger.Info("dialogue cancelled")
}

// enter moves the cursor onto n, applies its entry actions, and ends the
// session when n is terminal.
func (s *Session) enter(n *Node) {
	s.current = n
	s.logger.Debug("entered node", zap.Int("node", n.ID))
	s.applyActions("node", n.Actions)
	if n.IsTerminal {
		s.end()
	}
}

// end marks normal completion and records it for repeatability enforcement.
func (s *Session) end() {
	s.ended = true
	if s.tree != nil {
		s.handle.SetFlag(completionFlag(s.tree.ID), true)
		s.logger.Info("dialogue ended", zap.Int("tree", s.tree.ID))
	}
}

// applyActions runs an action list best-effort and logs the aggregate.
func (s *Session) applyActions(origin string, actions []action.Action) {
	if len(actions) == 0 {
		return
	}
	res := s.disp.ApplyAll(actions, s.handle)
	if res.Failed() {
		s.logger.Warn("some actions failed",
			zap.String("origin", origin),
			zap.Int("applied", res.Applied),
			zap.Int("failed", len(res.Failures)),
		)
	}
}

// completionFlag is the game-state flag recording that a tree was completed
// at least once, backing the repeatable gate on Start.
func completionFlag(treeID int) string {
	return fmt.Sprintf("dialogue_%d_complete", treeID)
}
