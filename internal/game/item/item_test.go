package item_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/campaign/internal/game/item"
)

func herb() *item.Def {
	return &item.Def{ID: "marsh_herb", Name: "Marsh Herb", Kind: item.KindQuest, Stackable: true, MaxStack: 20}
}

func TestDefValidate(t *testing.T) {
	require.NoError(t, herb().Validate())

	tests := []struct {
		name string
		def  item.Def
	}{
		{"missing id", item.Def{Name: "x", Kind: item.KindJunk}},
		{"missing name", item.Def{ID: "x", Kind: item.KindJunk}},
		{"bad kind", item.Def{ID: "x", Name: "x", Kind: "artifact"}},
		{"stackable without max", item.Def{ID: "x", Name: "x", Kind: item.KindJunk, Stackable: true}},
		{"negative value", item.Def{ID: "x", Name: "x", Kind: item.KindJunk, Value: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.def.Validate())
		})
	}
}

func TestDefValidate_AggregatesViolations(t *testing.T) {
	err := (&item.Def{Kind: "artifact", Value: -1}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id must not be empty")
	assert.Contains(t, err.Error(), "name must not be empty")
	assert.Contains(t, err.Error(), "value must not be negative")
}

func TestRegistry(t *testing.T) {
	r := item.NewRegistry()
	require.NoError(t, r.Register(herb()))
	require.Error(t, r.Register(herb()))

	got, ok := r.Item("marsh_herb")
	require.True(t, ok)
	assert.Equal(t, "Marsh Herb", got.Name)
	assert.True(t, r.Has("marsh_herb"))
	assert.False(t, r.Has("vorpal_sword"))
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.IDs()["marsh_herb"])
}

func TestLoadDefs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "salve.yaml"), []byte(`
id: healing_salve
name: Healing Salve
kind: consumable
stackable: true
max_stack: 10
value: 25
`), 0644))

	defs, err := item.LoadDefs(dir)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "healing_salve", defs[0].ID)
	assert.Equal(t, item.KindConsumable, defs[0].Kind)
	assert.Equal(t, 25, defs[0].Value)
}

func TestLoadDefs_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(`id: x`), 0644))

	_, err := item.LoadDefs(dir)
	require.Error(t, err)
}
