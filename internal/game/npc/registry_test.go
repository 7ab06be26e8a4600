package npc_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/campaign/internal/game/npc"
)

func rowan() *npc.Template {
	return &npc.Template{ID: "elder_rowan", Name: "Elder Rowan", Level: 10, Dialogue: 1}
}

func senna() *npc.Template {
	return &npc.Template{ID: "apothecary_senna", Name: "Senna", Level: 6, Shop: "senna_remedies"}
}

func wolf() *npc.Template {
	return &npc.Template{ID: "gray_wolf", Name: "Gray Wolf", Level: 3, Hostile: true}
}

func TestTemplateValidate(t *testing.T) {
	require.NoError(t, rowan().Validate())

	tests := []struct {
		name string
		tmpl npc.Template
	}{
		{"missing id", npc.Template{Name: "x", Level: 1}},
		{"missing name", npc.Template{ID: "x", Level: 1}},
		{"zero level", npc.Template{ID: "x", Name: "x"}},
		{"negative dialogue", npc.Template{ID: "x", Name: "x", Level: 1, Dialogue: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.tmpl.Validate())
		})
	}
}

func TestRegistry(t *testing.T) {
	r := npc.NewRegistry()
	require.NoError(t, r.Register(rowan()))
	require.NoError(t, r.Register(senna()))
	require.NoError(t, r.Register(wolf()))

	require.Error(t, r.Register(rowan()))
	assert.Equal(t, 3, r.Len())

	got, ok := r.Get("elder_rowan")
	require.True(t, ok)
	assert.Equal(t, "Elder Rowan", got.Name)
	assert.True(t, r.Has("gray_wolf"))
	assert.False(t, r.Has("nobody"))

	ids := r.IDs()
	assert.Len(t, ids, 3)
	assert.True(t, ids["apothecary_senna"])

	shops := r.ShopIDs()
	assert.Equal(t, map[string]bool{"senna_remedies": true}, shops)
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rowan.yaml"), []byte(`
id: elder_rowan
name: Elder Rowan
level: 10
map: village
x: 12
y: 7
dialogue: 1
`), 0644))

	templates, err := npc.LoadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	tmpl := templates[0]
	assert.Equal(t, "elder_rowan", tmpl.ID)
	assert.Equal(t, "village", tmpl.Map)
	assert.Equal(t, 12, tmpl.X)
	assert.Equal(t, 1, tmpl.Dialogue)
	assert.False(t, tmpl.Hostile)
}

func TestLoadTemplates_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(`name: no id`), 0644))

	_, err := npc.LoadTemplates(dir)
	require.Error(t, err)
}
