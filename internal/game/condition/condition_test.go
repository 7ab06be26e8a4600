package condition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/campaign/internal/game/condition"
)

func TestConditionValidate(t *testing.T) {
	tests := []struct {
		name    string
		cond    condition.Condition
		wantErr bool
	}{
		{"flag_set ok", condition.Condition{Type: condition.TypeFlagSet, Flag: "met_rowan"}, false},
		{"flag_set missing flag", condition.Condition{Type: condition.TypeFlagSet}, true},
		{"flag_not ok", condition.Condition{Type: condition.TypeFlagNot, Flag: "met_rowan"}, false},
		{"has_item ok", condition.Condition{Type: condition.TypeHasItem, Item: "marsh_herb", Count: 3}, false},
		{"has_item zero count ok", condition.Condition{Type: condition.TypeHasItem, Item: "marsh_herb"}, false},
		{"has_item negative count", condition.Condition{Type: condition.TypeHasItem, Item: "marsh_herb", Count: -1}, true},
		{"has_item missing item", condition.Condition{Type: condition.TypeHasItem}, true},
		{"quest_complete ok", condition.Condition{Type: condition.TypeQuestComplete, Quest: 1}, false},
		{"quest_complete zero quest", condition.Condition{Type: condition.TypeQuestComplete}, true},
		{"quest_at_stage ok", condition.Condition{Type: condition.TypeQuestAtStage, Quest: 1, Stage: 2}, false},
		{"quest_at_stage zero stage", condition.Condition{Type: condition.TypeQuestAtStage, Quest: 1}, true},
		{"min_level ok", condition.Condition{Type: condition.TypeMinLevel, Level: 5}, false},
		{"min_level zero level", condition.Condition{Type: condition.TypeMinLevel}, true},
		{"max_level ok", condition.Condition{Type: condition.TypeMaxLevel, Level: 5}, false},
		{"script ok", condition.Condition{Type: condition.TypeScript, Hook: "senna_back_room"}, false},
		{"script missing hook", condition.Condition{Type: condition.TypeScript}, true},
		{"unknown type", condition.Condition{Type: "check_moon_phase"}, true},
		{"empty type", condition.Condition{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cond.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConditionString(t *testing.T) {
	c := condition.Condition{Type: condition.TypeHasItem, Item: "marsh_herb"}
	assert.Equal(t, "has_item(marsh_herb x1)", c.String())

	c = condition.Condition{Type: condition.TypeQuestAtStage, Quest: 2, Stage: 1}
	assert.Equal(t, "quest_at_stage(2@1)", c.String())
}
