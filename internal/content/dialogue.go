// Package content provides the YAML codecs for campaign content: dialogue
// trees, quests, and their directory loaders. The dialogue and quest cores
// consume only the parsed in-memory records; this package owns the on-disk
// shape and guarantees a lossless round-trip for the authoring tool.
package content

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/campaign/internal/game/action"
	"github.com/cory-johannsen/campaign/internal/game/condition"
	"github.com/cory-johannsen/campaign/internal/game/dialogue"
)

// yamlTreeFile is the top-level YAML structure for dialogue files.
type yamlTreeFile struct {
	Dialogue yamlTree `yaml:"dialogue"`
}

// yamlTree is the YAML representation of a dialogue tree. Nodes are a
// sequence in the file and an ID-keyed arena in memory.
type yamlTree struct {
	ID              int        `yaml:"id"`
	RootNode        int        `yaml:"root_node"`
	SpeakerName     string     `yaml:"speaker_name,omitempty"`
	SpeakerNpc      string     `yaml:"speaker_npc,omitempty"`
	Repeatable      bool       `yaml:"repeatable,omitempty"`
	AssociatedQuest int        `yaml:"associated_quest,omitempty"`
	Nodes           []yamlNode `yaml:"nodes"`
}

// yamlNode is the YAML representation of a dialogue node.
type yamlNode struct {
	ID              int                   `yaml:"id"`
	Text            string                `yaml:"text"`
	SpeakerOverride string                `yaml:"speaker_override,omitempty"`
	IsTerminal      bool                  `yaml:"is_terminal,omitempty"`
	Conditions      []condition.Condition `yaml:"conditions,omitempty"`
	Actions         []action.Action       `yaml:"actions,omitempty"`
	Choices         []yamlChoice          `yaml:"choices,omitempty"`
}

// yamlChoice is the YAML representation of a dialogue choice.
type yamlChoice struct {
	Text         string                `yaml:"text"`
	TargetNode   *int                  `yaml:"target_node,omitempty"`
	EndsDialogue bool                  `yaml:"ends_dialogue,omitempty"`
	Conditions   []condition.Condition `yaml:"conditions,omitempty"`
	Actions      []action.Action       `yaml:"actions,omitempty"`
}

// LoadTreeFromBytes parses and structurally validates a dialogue tree from
// YAML bytes. Unknown fields are rejected so typos surface at load time.
//
// Postcondition: Returns a tree that passes dialogue.Tree.Validate, or a
// non-nil error.
func LoadTreeFromBytes(data []byte) (*dialogue.Tree, error) {
	var file yamlTreeFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing dialogue YAML: %w", err)
	}

	tree, err := convertYAMLTree(file.Dialogue)
	if err != nil {
		return nil, err
	}
	if err := tree.Validate(); err != nil {
		return nil, fmt.Errorf("validating dialogue: %w", err)
	}
	return tree, nil
}

// ParseTreeFromBytes parses a dialogue tree without structural validation.
// The validator CLI uses it so malformed content produces findings instead
// of a load abort; runtime code paths use LoadTreeFromBytes.
func ParseTreeFromBytes(data []byte) (*dialogue.Tree, error) {
	var file yamlTreeFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing dialogue YAML: %w", err)
	}
	return convertYAMLTree(file.Dialogue)
}

// ParseTreesFromDir parses all YAML files in a directory as dialogue trees,
// skipping structural validation.
func ParseTreesFromDir(dir string) ([]*dialogue.Tree, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading dialogue directory %s: %w", dir, err)
	}

	var trees []*dialogue.Tree
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		tree, err := ParseTreeFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("parsing dialogue from %s: %w", entry.Name(), err)
		}
		trees = append(trees, tree)
	}
	return trees, nil
}

// LoadTreeFromFile reads and validates a single dialogue YAML file.
func LoadTreeFromFile(path string) (*dialogue.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dialogue file %s: %w", path, err)
	}
	return LoadTreeFromBytes(data)
}

// LoadTreesFromDir loads all YAML files in a directory as dialogue trees.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns all parsed trees or the first error encountered.
func LoadTreesFromDir(dir string) ([]*dialogue.Tree, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading dialogue directory %s: %w", dir, err)
	}

	var trees []*dialogue.Tree
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		tree, err := LoadTreeFromFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("loading dialogue from %s: %w", entry.Name(), err)
		}
		trees = append(trees, tree)
	}
	return trees, nil
}

// EncodeTree serializes a tree back to its YAML form. Nodes are emitted in
// ascending ID order; reloading the output yields an identical node and
// choice structure (no lossy normalization).
func EncodeTree(t *dialogue.Tree) ([]byte, error) {
	yt := yamlTree{
		ID:              t.ID,
		RootNode:        t.RootNode,
		SpeakerName:     t.SpeakerName,
		SpeakerNpc:      t.SpeakerNpc,
		Repeatable:      t.Repeatable,
		AssociatedQuest: t.AssociatedQuest,
	}

	ids := make([]int, 0, len(t.Nodes))
	for id := range t.Nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		n := t.Nodes[id]
		yn := yamlNode{
			ID:              n.ID,
			Text:            n.Text,
			SpeakerOverride: n.SpeakerOverride,
			IsTerminal:      n.IsTerminal,
			Conditions:      n.Conditions,
			Actions:         n.Actions,
		}
		for _, c := range n.Choices {
			yn.Choices = append(yn.Choices, yamlChoice{
				Text:         c.Text,
				TargetNode:   c.TargetNode,
				EndsDialogue: c.EndsDialogue,
				Conditions:   c.Conditions,
				Actions:      c.Actions,
			})
		}
		yt.Nodes = append(yt.Nodes, yn)
	}

	out, err := yaml.Marshal(yamlTreeFile{Dialogue: yt})
	if err != nil {
		return nil, fmt.Errorf("encoding dialogue %d: %w", t.ID, err)
	}
	return out, nil
}

// convertYAMLTree converts the parsed YAML structures into domain types.
func convertYAMLTree(yt yamlTree) (*dialogue.Tree, error) {
	tree := &dialogue.Tree{
		ID:              yt.ID,
		RootNode:        yt.RootNode,
		SpeakerName:     yt.SpeakerName,
		SpeakerNpc:      yt.SpeakerNpc,
		Repeatable:      yt.Repeatable,
		AssociatedQuest: yt.AssociatedQuest,
		Nodes:           make(map[int]*dialogue.Node, len(yt.Nodes)),
	}

	for _, yn := range yt.Nodes {
		if _, dup := tree.Nodes[yn.ID]; dup {
			return nil, fmt.Errorf("dialogue %d: duplicate node id %d", yt.ID, yn.ID)
		}
		node := &dialogue.Node{
			ID:              yn.ID,
			Text:            strings.TrimSpace(yn.Text),
			SpeakerOverride: yn.SpeakerOverride,
			IsTerminal:      yn.IsTerminal,
			Conditions:      yn.Conditions,
			Actions:         yn.Actions,
		}
		for _, yc := range yn.Choices {
			node.Choices = append(node.Choices, dialogue.Choice{
				Text:         yc.Text,
				TargetNode:   yc.TargetNode,
				EndsDialogue: yc.EndsDialogue,
				Conditions:   yc.Conditions,
				Actions:      yc.Actions,
			})
		}
		tree.Nodes[node.ID] = node
	}

	return tree, nil
}

// isYAML reports whether name has a YAML file extension.
func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
