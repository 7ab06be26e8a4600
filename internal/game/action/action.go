// Package action defines the tagged-variant side-effect type attached to
// dialogue nodes and choices, and the dispatcher that applies actions to the
// mutable game-state handle.
package action

import "fmt"

// Known action type tags. New variants are added here and in
// Dispatcher.Apply; the validator enumerates this set statically.
const (
	TypeStartQuest   = "start_quest"
	TypeSetFlag      = "set_flag"
	TypeClearFlag    = "clear_flag"
	TypeGiveItem     = "give_item"
	TypeTakeItem     = "take_item"
	TypeOpenShop     = "open_shop"
	TypeGiveCurrency = "give_currency"
)

var knownTypes = map[string]bool{
	TypeStartQuest:   true,
	TypeSetFlag:      true,
	TypeClearFlag:    true,
	TypeGiveItem:     true,
	TypeTakeItem:     true,
	TypeOpenShop:     true,
	TypeGiveCurrency: true,
}

// Action is one side effect applied on node entry or choice selection. Type
// selects the variant; the remaining fields carry its parameters.
type Action struct {
	Type string `yaml:"type"`
	// Quest is the quest ID for start_quest.
	Quest int `yaml:"quest,omitempty"`
	// Flag is the flag name for set_flag / clear_flag.
	Flag string `yaml:"flag,omitempty"`
	// Item is the item definition ID for give_item / take_item.
	Item string `yaml:"item,omitempty"`
	// Count is the item quantity for give_item / take_item. 0 means 1.
	Count int `yaml:"count,omitempty"`
	// Shop is the shop ID for open_shop.
	Shop string `yaml:"shop,omitempty"`
	// Amount is the currency delta for give_currency.
	Amount int `yaml:"amount,omitempty"`
}

// Validate checks that the action names a known variant and carries the
// parameters that variant requires.
func (a Action) Validate() error {
	if !knownTypes[a.Type] {
		return fmt.Errorf("action: unknown type %q", a.Type)
	}
	switch a.Type {
	case TypeStartQuest:
		if a.Quest <= 0 {
			return fmt.Errorf("action %q: quest must be > 0, got %d", a.Type, a.Quest)
		}
	case TypeSetFlag, TypeClearFlag:
		if a.Flag == "" {
			return fmt.Errorf("action %q: flag must not be empty", a.Type)
		}
	case TypeGiveItem, TypeTakeItem:
		if a.Item == "" {
			return fmt.Errorf("action %q: item must not be empty", a.Type)
		}
		if a.Count < 0 {
			return fmt.Errorf("action %q: count must be >= 0, got %d", a.Type, a.Count)
		}
	case TypeOpenShop:
		if a.Shop == "" {
			return fmt.Errorf("action %q: shop must not be empty", a.Type)
		}
	case TypeGiveCurrency:
		if a.Amount == 0 {
			return fmt.Errorf("action %q: amount must not be zero", a.Type)
		}
	}
	return nil
}

// String renders the action for diagnostics.
func (a Action) String() string {
	switch a.Type {
	case TypeStartQuest:
		return fmt.Sprintf("%s(%d)", a.Type, a.Quest)
	case TypeSetFlag, TypeClearFlag:
		return fmt.Sprintf("%s(%s)", a.Type, a.Flag)
	case TypeGiveItem, TypeTakeItem:
		return fmt.Sprintf("%s(%s x%d)", a.Type, a.Item, a.effectiveCount())
	case TypeOpenShop:
		return fmt.Sprintf("%s(%s)", a.Type, a.Shop)
	case TypeGiveCurrency:
		return fmt.Sprintf("%s(%d)", a.Type, a.Amount)
	default:
		return fmt.Sprintf("unknown(%s)", a.Type)
	}
}

func (a Action) effectiveCount() int {
	if a.Count <= 0 {
		return 1
	}
	return a.Count
}
