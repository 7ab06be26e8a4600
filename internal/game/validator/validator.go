// Package validator provides static analysis over dialogue and quest
// definitions: dangling references, orphaned nodes, malformed stage graphs.
// It is a build-time gate for the authoring pipeline, never a runtime guard,
// and it mutates nothing.
package validator

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/campaign/internal/game/action"
	"github.com/cory-johannsen/campaign/internal/game/condition"
	"github.com/cory-johannsen/campaign/internal/game/dialogue"
	"github.com/cory-johannsen/campaign/internal/game/item"
	"github.com/cory-johannsen/campaign/internal/game/npc"
	"github.com/cory-johannsen/campaign/internal/game/quest"
)

// Severity classifies a finding. Errors block packaging; warnings do not.
type Severity int

// Finding severities.
const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns the uppercase severity name.
func (s Severity) String() string {
	if s == SeverityError {
		return "ERROR"
	}
	return "WARNING"
}

// Finding is one validation result. TreeID, NodeID, QuestID, and Stage are
// zero when not applicable.
type Finding struct {
	Severity Severity
	TreeID   int
	NodeID   int
	QuestID  int
	Stage    int
	Message  string
}

// String renders the finding for CLI output.
func (f Finding) String() string {
	loc := ""
	switch {
	case f.TreeID != 0 && f.NodeID != 0:
		loc = fmt.Sprintf("dialogue %d node %d: ", f.TreeID, f.NodeID)
	case f.TreeID != 0:
		loc = fmt.Sprintf("dialogue %d: ", f.TreeID)
	case f.QuestID != 0 && f.Stage != 0:
		loc = fmt.Sprintf("quest %d stage %d: ", f.QuestID, f.Stage)
	case f.QuestID != 0:
		loc = fmt.Sprintf("quest %d: ", f.QuestID)
	}
	return fmt.Sprintf("%s: %s%s", f.Severity, loc, f.Message)
}

// ReferenceSets are the external ID universes objective and action targets
// are checked against. A nil set skips that family of checks, so partial
// campaigns can still be validated.
type ReferenceSets struct {
	// Npcs are all NPC template IDs (talk, deliver, escort targets).
	Npcs map[string]bool
	// Monsters are the hostile template IDs (kill targets).
	Monsters map[string]bool
	// Items are all item definition IDs.
	Items map[string]bool
	// Shops are all shop IDs run by NPCs.
	Shops map[string]bool
}

// RefsFromRegistries derives reference sets from loaded registries. Either
// registry may be nil.
func RefsFromRegistries(npcs *npc.Registry, items *item.Registry) ReferenceSets {
	var refs ReferenceSets
	if npcs != nil {
		refs.Npcs = npcs.IDs()
		refs.Shops = npcs.ShopIDs()
		refs.Monsters = make(map[string]bool)
		for _, t := range npcs.All() {
			if t.Hostile {
				refs.Monsters[t.ID] = true
			}
		}
	}
	if items != nil {
		refs.Items = items.IDs()
	}
	return refs
}

// HasErrors reports whether any finding in the list is an Error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate analyses raw dialogue and quest definitions against each other
// and the given reference sets. It accepts definitions that the stores would
// refuse to load, so the authoring CLI reports every finding in one pass.
//
// Postcondition: Returns all findings in a stable order; the inputs are
// unmodified.
func Validate(trees []*dialogue.Tree, quests []*quest.Quest, refs ReferenceSets) []Finding {
	v := &run{refs: refs, questIDs: make(map[int]bool)}

	for _, q := range quests {
		if q != nil && q.ID > 0 {
			v.questIDs[q.ID] = true
		}
	}

	seen := make(map[int]bool)
	for _, t := range trees {
		if t == nil {
			continue
		}
		if seen[t.ID] {
			v.errf(t.ID, 0, 0, 0, "duplicate dialogue tree id")
			continue
		}
		seen[t.ID] = true
		v.checkTree(t)
	}

	seenQ := make(map[int]bool)
	for _, q := range quests {
		if q == nil {
			continue
		}
		if seenQ[q.ID] {
			v.errf(0, 0, q.ID, 0, "duplicate quest id")
			continue
		}
		seenQ[q.ID] = true
		v.checkQuest(q)
	}

	return v.findings
}

// run carries the state of one Validate pass.
type run struct {
	refs     ReferenceSets
	questIDs map[int]bool
	findings []Finding
}

func (v *run) errf(treeID, nodeID, questID, stage int, format string, args ...any) {
	v.findings = append(v.findings, Finding{
		Severity: SeverityError,
		TreeID:   treeID, NodeID: nodeID, QuestID: questID, Stage: stage,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *run) warnf(treeID, nodeID, questID, stage int, format string, args ...any) {
	v.findings = append(v.findings, Finding{
		Severity: SeverityWarning,
		TreeID:   treeID, NodeID: nodeID, QuestID: questID, Stage: stage,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *run) checkTree(t *dialogue.Tree) {
	if t.ID <= 0 {
		v.errf(t.ID, 0, 0, 0, "tree id must be > 0")
	}
	if len(t.Nodes) == 0 {
		v.errf(t.ID, 0, 0, 0, "tree has no nodes")
		return
	}
	if _, ok := t.Nodes[t.RootNode]; !ok {
		v.errf(t.ID, 0, 0, 0, "root_node %d not found in nodes", t.RootNode)
	}
	if t.AssociatedQuest != 0 && !v.questIDs[t.AssociatedQuest] {
		v.errf(t.ID, 0, 0, 0, "associated_quest %d does not exist", t.AssociatedQuest)
	}
	if t.SpeakerNpc != "" && v.refs.Npcs != nil && !v.refs.Npcs[t.SpeakerNpc] {
		v.errf(t.ID, 0, 0, 0, "speaker_npc %q does not exist", t.SpeakerNpc)
	}

	ids := make([]int, 0, len(t.Nodes))
	for id := range t.Nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		n := t.Nodes[id]
		if n == nil {
			v.errf(t.ID, id, 0, 0, "node is nil")
			continue
		}
		if n.ID != id {
			v.errf(t.ID, id, 0, 0, "node key %d does not match node id %d", id, n.ID)
		}
		if n.Text == "" {
			v.errf(t.ID, id, 0, 0, "node text must not be empty")
		}
		v.checkConditions(t.ID, id, n.Conditions)
		v.checkActions(t.ID, id, n.Actions)
		for ci, c := range n.Choices {
			if c.TargetNode == nil && !c.EndsDialogue {
				v.errf(t.ID, id, 0, 0, "choice %d has no target and does not end the dialogue", ci)
			}
			if c.TargetNode != nil {
				if _, ok := t.Nodes[*c.TargetNode]; !ok {
					v.errf(t.ID, id, 0, 0, "choice %d targets unknown node %d", ci, *c.TargetNode)
				}
			}
			v.checkConditions(t.ID, id, c.Conditions)
			v.checkActions(t.ID, id, c.Actions)
		}
	}

	v.checkReachability(t, ids)
}

// checkReachability walks the choice graph twice: once over every edge to
// find structural orphans (Error for non-terminal nodes), and once over only
// ungated edges to find nodes that are reachable solely through conditions
// (Warning; the gate may be legitimately unsatisfiable at campaign start).
func (v *run) checkReachability(t *dialogue.Tree, ids []int) {
	if _, ok := t.Nodes[t.RootNode]; !ok {
		return
	}

	structural := walk(t, false)
	ungated := walk(t, true)

	for _, id := range ids {
		n := t.Nodes[id]
		if n == nil {
			continue
		}
		if !structural[id] {
			if n.IsTerminal {
				v.warnf(t.ID, id, 0, 0, "terminal node is unreachable from root %d", t.RootNode)
			} else {
				v.errf(t.ID, id, 0, 0, "node is unreachable from root %d", t.RootNode)
			}
			continue
		}
		if !ungated[id] {
			v.warnf(t.ID, id, 0, 0, "node is reachable only through gated choices")
		}
	}
}

// walk returns the set of node IDs reachable from the root. When
// ungatedOnly is true, edges through choices with conditions, or into nodes
// with entry conditions, are skipped.
func walk(t *dialogue.Tree, ungatedOnly bool) map[int]bool {
	visited := map[int]bool{t.RootNode: true}
	queue := []int{t.RootNode}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := t.Nodes[id]
		if n == nil {
			continue
		}
		for _, c := range n.Choices {
			if c.TargetNode == nil {
				continue
			}
			if ungatedOnly && len(c.Conditions) > 0 {
				continue
			}
			next, ok := t.Nodes[*c.TargetNode]
			if !ok {
				continue
			}
			if ungatedOnly && len(next.Conditions) > 0 {
				continue
			}
			if !visited[next.ID] {
				visited[next.ID] = true
				queue = append(queue, next.ID)
			}
		}
	}
	return visited
}

func (v *run) checkConditions(treeID, nodeID int, conds []condition.Condition) {
	for _, c := range conds {
		if err := c.Validate(); err != nil {
			v.errf(treeID, nodeID, 0, 0, "%v", err)
			continue
		}
		switch c.Type {
		case condition.TypeQuestComplete, condition.TypeQuestAtStage:
			if !v.questIDs[c.Quest] {
				v.errf(treeID, nodeID, 0, 0, "condition %s references unknown quest %d", c.Type, c.Quest)
			}
		case condition.TypeHasItem:
			if v.refs.Items != nil && !v.refs.Items[c.Item] {
				v.errf(treeID, nodeID, 0, 0, "condition %s references unknown item %q", c.Type, c.Item)
			}
		}
	}
}

func (v *run) checkActions(treeID, nodeID int, actions []action.Action) {
	for _, a := range actions {
		if err := a.Validate(); err != nil {
			v.errf(treeID, nodeID, 0, 0, "%v", err)
			continue
		}
		switch a.Type {
		case action.TypeStartQuest:
			if !v.questIDs[a.Quest] {
				v.errf(treeID, nodeID, 0, 0, "action %s references unknown quest %d", a.Type, a.Quest)
			}
		case action.TypeGiveItem, action.TypeTakeItem:
			if v.refs.Items != nil && !v.refs.Items[a.Item] {
				v.errf(treeID, nodeID, 0, 0, "action %s references unknown item %q", a.Type, a.Item)
			}
		case action.TypeOpenShop:
			if v.refs.Shops != nil && !v.refs.Shops[a.Shop] {
				v.errf(treeID, nodeID, 0, 0, "action %s references unknown shop %q", a.Type, a.Shop)
			}
		}
	}
}

func (v *run) checkQuest(q *quest.Quest) {
	if q.ID <= 0 {
		v.errf(0, 0, q.ID, 0, "quest id must be > 0")
	}
	if q.Name == "" {
		v.errf(0, 0, q.ID, 0, "quest name must not be empty")
	}
	if len(q.Stages) == 0 {
		v.errf(0, 0, q.ID, 0, "quest has no stages")
	}
	if q.MinLevel > 0 && q.MaxLevel > 0 && q.MinLevel > q.MaxLevel {
		v.errf(0, 0, q.ID, 0, "min_level %d exceeds max_level %d", q.MinLevel, q.MaxLevel)
	}
	for _, reqID := range q.RequiredQuests {
		if !v.questIDs[reqID] {
			v.errf(0, 0, q.ID, 0, "required quest %d does not exist", reqID)
		}
		if reqID == q.ID {
			v.errf(0, 0, q.ID, 0, "quest requires itself")
		}
	}
	if q.GiverNpc != "" && v.refs.Npcs != nil && !v.refs.Npcs[q.GiverNpc] {
		v.warnf(0, 0, q.ID, 0, "quest_giver_npc %q does not exist", q.GiverNpc)
	}

	for i, st := range q.Stages {
		want := i + 1
		if st.StageNumber != want {
			v.errf(0, 0, q.ID, st.StageNumber, "stage at position %d has stage_number %d, want %d", i, st.StageNumber, want)
		}
		if st.RequireAll && len(st.Objectives) == 0 {
			v.errf(0, 0, q.ID, st.StageNumber, "stage requires all of zero objectives")
		}
		for j, o := range st.Objectives {
			if err := o.Validate(); err != nil {
				v.errf(0, 0, q.ID, st.StageNumber, "objective %d: %v", j, err)
				continue
			}
			v.checkObjectiveRefs(q.ID, st.StageNumber, j, o)
		}
	}
}

func (v *run) checkObjectiveRefs(questID, stage, idx int, o quest.Objective) {
	switch o.Type {
	case quest.ObjectiveTalkToNpc, quest.ObjectiveEscortNpc:
		if v.refs.Npcs != nil && !v.refs.Npcs[o.Npc] {
			v.errf(0, 0, questID, stage, "objective %d references unknown npc %q", idx, o.Npc)
		}
	case quest.ObjectiveKillMonsters:
		if v.refs.Monsters != nil && !v.refs.Monsters[o.Monster] {
			v.errf(0, 0, questID, stage, "objective %d references unknown monster %q", idx, o.Monster)
		}
	case quest.ObjectiveCollectItems:
		if v.refs.Items != nil && !v.refs.Items[o.Item] {
			v.errf(0, 0, questID, stage, "objective %d references unknown item %q", idx, o.Item)
		}
	case quest.ObjectiveDeliverItem:
		if v.refs.Items != nil && !v.refs.Items[o.Item] {
			v.errf(0, 0, questID, stage, "objective %d references unknown item %q", idx, o.Item)
		}
		if v.refs.Npcs != nil && !v.refs.Npcs[o.Npc] {
			v.errf(0, 0, questID, stage, "objective %d references unknown npc %q", idx, o.Npc)
		}
	}
}
