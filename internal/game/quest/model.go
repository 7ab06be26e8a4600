// Package quest provides quest definitions, the immutable quest store, and
// the progress tracker that advances stages as gameplay events arrive.
package quest

import "fmt"

// Known objective type tags. New variants are added here and in the
// tracker's event matching; the validator enumerates this set statically.
const (
	ObjectiveTalkToNpc     = "talk_to_npc"
	ObjectiveKillMonsters  = "kill_monsters"
	ObjectiveCollectItems  = "collect_items"
	ObjectiveReachLocation = "reach_location"
	ObjectiveDeliverItem   = "deliver_item"
	ObjectiveEscortNpc     = "escort_npc"
	ObjectiveCustomFlag    = "custom_flag"
)

var knownObjectiveTypes = map[string]bool{
	ObjectiveTalkToNpc:     true,
	ObjectiveKillMonsters:  true,
	ObjectiveCollectItems:  true,
	ObjectiveReachLocation: true,
	ObjectiveDeliverItem:   true,
	ObjectiveEscortNpc:     true,
	ObjectiveCustomFlag:    true,
}

// Objective is one measurable requirement within a quest stage. Type selects
// the variant; the remaining fields carry that variant's parameters.
type Objective struct {
	Type string `yaml:"type"`
	// Description is the author-facing summary shown in quest logs.
	Description string `yaml:"description,omitempty"`
	// Npc is the target NPC template ID for talk_to_npc, deliver_item, and
	// escort_npc.
	Npc string `yaml:"npc,omitempty"`
	// Monster is the target NPC template ID for kill_monsters.
	Monster string `yaml:"monster,omitempty"`
	// Item is the item definition ID for collect_items and deliver_item.
	Item string `yaml:"item,omitempty"`
	// Count is the required tally for kill_monsters and collect_items.
	// 0 means 1.
	Count int `yaml:"count,omitempty"`
	// Map is the map ID for reach_location and escort_npc.
	Map string `yaml:"map,omitempty"`
	// X, Y locate reach_location on its map.
	X int `yaml:"x,omitempty"`
	Y int `yaml:"y,omitempty"`
	// Flag is the flag name for custom_flag.
	Flag string `yaml:"flag,omitempty"`
}

// Validate checks that the objective names a known variant and carries the
// parameters that variant requires.
func (o Objective) Validate() error {
	if !knownObjectiveTypes[o.Type] {
		return fmt.Errorf("objective: unknown type %q", o.Type)
	}
	switch o.Type {
	case ObjectiveTalkToNpc:
		if o.Npc == "" {
			return fmt.Errorf("objective %q: npc must not be empty", o.Type)
		}
	case ObjectiveKillMonsters:
		if o.Monster == "" {
			return fmt.Errorf("objective %q: monster must not be empty", o.Type)
		}
		if o.Count < 0 {
			return fmt.Errorf("objective %q: count must be >= 0, got %d", o.Type, o.Count)
		}
	case ObjectiveCollectItems:
		if o.Item == "" {
			return fmt.Errorf("objective %q: item must not be empty", o.Type)
		}
		if o.Count < 0 {
			return fmt.Errorf("objective %q: count must be >= 0, got %d", o.Type, o.Count)
		}
	case ObjectiveReachLocation:
		if o.Map == "" {
			return fmt.Errorf("objective %q: map must not be empty", o.Type)
		}
	case ObjectiveDeliverItem:
		if o.Item == "" || o.Npc == "" {
			return fmt.Errorf("objective %q: item and npc must not be empty", o.Type)
		}
	case ObjectiveEscortNpc:
		if o.Npc == "" {
			return fmt.Errorf("objective %q: npc must not be empty", o.Type)
		}
	case ObjectiveCustomFlag:
		if o.Flag == "" {
			return fmt.Errorf("objective %q: flag must not be empty", o.Type)
		}
	}
	return nil
}

// RequiredCount returns how many tallies complete the objective.
func (o Objective) RequiredCount() int {
	switch o.Type {
	case ObjectiveKillMonsters, ObjectiveCollectItems:
		if o.Count > 0 {
			return o.Count
		}
	}
	return 1
}

// Stage is one step in a quest's progression. Stages complete in declaration
// order; stage N+1 cannot become active before stage N completes.
type Stage struct {
	// StageNumber is 1-based and must match the stage's position in the
	// quest's stage sequence.
	StageNumber int `yaml:"stage_number"`
	// Description is the author-facing stage summary.
	Description string `yaml:"description,omitempty"`
	// Objectives lists the stage's requirements in declaration order.
	Objectives []Objective `yaml:"objectives"`
	// RequireAll selects AND semantics across the stage's objectives; false
	// means any single completed objective completes the stage.
	RequireAll bool `yaml:"require_all_objectives"`
}

// Position is a tile coordinate on a map.
type Position struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Quest is a complete quest definition: an ordered stage progression plus
// entry requirements and the optional quest-giver binding used by the UI.
type Quest struct {
	ID     int     `yaml:"id"`
	Name   string  `yaml:"name"`
	Stages []Stage `yaml:"stages"`
	// MinLevel / MaxLevel are optional inclusive level bounds; 0 = unbound.
	MinLevel int `yaml:"min_level,omitempty"`
	MaxLevel int `yaml:"max_level,omitempty"`
	// RequiredQuests lists quest IDs that must be complete before this quest
	// can start.
	RequiredQuests []int `yaml:"required_quests,omitempty"`
	Repeatable     bool  `yaml:"repeatable,omitempty"`
	// Quest-giver location binding, consumed by the UI layer only.
	GiverNpc      string    `yaml:"quest_giver_npc,omitempty"`
	GiverMap      string    `yaml:"quest_giver_map,omitempty"`
	GiverPosition *Position `yaml:"quest_giver_position,omitempty"`
}

// Validate checks quest invariants: stage numbers must run 1..N with no gaps
// matching position, a require-all stage must declare at least one objective,
// and every objective must be well formed.
//
// Postcondition: Returns nil if valid, or an error describing the first
// violation.
func (q *Quest) Validate() error {
	if q.ID <= 0 {
		return fmt.Errorf("quest: id must be > 0, got %d", q.ID)
	}
	if q.Name == "" {
		return fmt.Errorf("quest %d: name must not be empty", q.ID)
	}
	if len(q.Stages) == 0 {
		return fmt.Errorf("quest %d: must declare at least one stage", q.ID)
	}
	if q.MinLevel < 0 || q.MaxLevel < 0 {
		return fmt.Errorf("quest %d: level bounds must not be negative", q.ID)
	}
	if q.MinLevel > 0 && q.MaxLevel > 0 && q.MinLevel > q.MaxLevel {
		return fmt.Errorf("quest %d: min_level %d exceeds max_level %d", q.ID, q.MinLevel, q.MaxLevel)
	}
	for i, st := range q.Stages {
		want := i + 1
		if st.StageNumber != want {
			return fmt.Errorf("quest %d: stage at position %d has stage_number %d, want %d",
				q.ID, i, st.StageNumber, want)
		}
		if st.RequireAll && len(st.Objectives) == 0 {
			return fmt.Errorf("quest %d: stage %d requires all of zero objectives", q.ID, st.StageNumber)
		}
		for j, obj := range st.Objectives {
			if err := obj.Validate(); err != nil {
				return fmt.Errorf("quest %d: stage %d objective %d: %w", q.ID, st.StageNumber, j, err)
			}
		}
	}
	return nil
}

// StageByNumber returns the stage with the given 1-based number.
//
// Postcondition: Returns (stage, true) if n is within 1..len(Stages).
func (q *Quest) StageByNumber(n int) (Stage, bool) {
	if n < 1 || n > len(q.Stages) {
		return Stage{}, false
	}
	return q.Stages[n-1], true
}
