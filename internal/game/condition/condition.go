// Package condition defines the tagged-variant condition type that gates
// dialogue nodes and choices, and the evaluator that resolves conditions
// against a read-only game-state view.
package condition

import "fmt"

// Known condition type tags. New variants are added here and in
// Evaluator.Eval; the validator enumerates this set statically.
const (
	TypeFlagSet       = "flag_set"
	TypeFlagNot       = "flag_not"
	TypeHasItem       = "has_item"
	TypeQuestComplete = "quest_complete"
	TypeQuestAtStage  = "quest_at_stage"
	TypeMinLevel      = "min_level"
	TypeMaxLevel      = "max_level"
	TypeScript        = "script"
)

// knownTypes maps every recognised condition tag to true.
var knownTypes = map[string]bool{
	TypeFlagSet:       true,
	TypeFlagNot:       true,
	TypeHasItem:       true,
	TypeQuestComplete: true,
	TypeQuestAtStage:  true,
	TypeMinLevel:      true,
	TypeMaxLevel:      true,
	TypeScript:        true,
}

// Condition is one gating predicate on a dialogue node or choice. Type
// selects the variant; the remaining fields carry the variant's parameters
// and are zero for variants that do not use them.
type Condition struct {
	Type string `yaml:"type"`
	// Flag is the flag name for flag_set / flag_not.
	Flag string `yaml:"flag,omitempty"`
	// Item is the item definition ID for has_item.
	Item string `yaml:"item,omitempty"`
	// Count is the minimum item count for has_item. 0 means 1.
	Count int `yaml:"count,omitempty"`
	// Quest is the quest ID for quest_complete / quest_at_stage.
	Quest int `yaml:"quest,omitempty"`
	// Stage is the 1-based stage number for quest_at_stage.
	Stage int `yaml:"stage,omitempty"`
	// Level is the inclusive bound for min_level / max_level.
	Level int `yaml:"level,omitempty"`
	// Hook is the Lua function name for script conditions.
	Hook string `yaml:"hook,omitempty"`
}

// Validate checks that the condition names a known variant and carries the
// parameters that variant requires.
//
// Postcondition: Returns nil iff Eval can resolve the condition without
// falling closed on a malformed variant.
func (c Condition) Validate() error {
	if !knownTypes[c.Type] {
		return fmt.Errorf("condition: unknown type %q", c.Type)
	}
	switch c.Type {
	case TypeFlagSet, TypeFlagNot:
		if c.Flag == "" {
			return fmt.Errorf("condition %q: flag must not be empty", c.Type)
		}
	case TypeHasItem:
		if c.Item == "" {
			return fmt.Errorf("condition %q: item must not be empty", c.Type)
		}
		if c.Count < 0 {
			return fmt.Errorf("condition %q: count must be >= 0, got %d", c.Type, c.Count)
		}
	case TypeQuestComplete:
		if c.Quest <= 0 {
			return fmt.Errorf("condition %q: quest must be > 0, got %d", c.Type, c.Quest)
		}
	case TypeQuestAtStage:
		if c.Quest <= 0 {
			return fmt.Errorf("condition %q: quest must be > 0, got %d", c.Type, c.Quest)
		}
		if c.Stage < 1 {
			return fmt.Errorf("condition %q: stage must be >= 1, got %d", c.Type, c.Stage)
		}
	case TypeMinLevel, TypeMaxLevel:
		if c.Level < 1 {
			return fmt.Errorf("condition %q: level must be >= 1, got %d", c.Type, c.Level)
		}
	case TypeScript:
		if c.Hook == "" {
			return fmt.Errorf("condition %q: hook must not be empty", c.Type)
		}
	}
	return nil
}

// String renders the condition for diagnostics.
func (c Condition) String() string {
	switch c.Type {
	case TypeFlagSet, TypeFlagNot:
		return fmt.Sprintf("%s(%s)", c.Type, c.Flag)
	case TypeHasItem:
		return fmt.Sprintf("%s(%s x%d)", c.Type, c.Item, c.effectiveCount())
	case TypeQuestComplete:
		return fmt.Sprintf("%s(%d)", c.Type, c.Quest)
	case TypeQuestAtStage:
		return fmt.Sprintf("%s(%d@%d)", c.Type, c.Quest, c.Stage)
	case TypeMinLevel, TypeMaxLevel:
		return fmt.Sprintf("%s(%d)", c.Type, c.Level)
	case TypeScript:
		return fmt.Sprintf("%s(%s)", c.Type, c.Hook)
	default:
		return fmt.Sprintf("unknown(%s)", c.Type)
	}
}

func (c Condition) effectiveCount() int {
	if c.Count <= 0 {
		return 1
	}
	return c.Count
}
