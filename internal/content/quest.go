package content

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/campaign/internal/game/quest"
)

// yamlQuestFile is the top-level YAML structure for quest files. The quest
// domain types carry their own yaml tags, so no conversion layer is needed.
type yamlQuestFile struct {
	Quest quest.Quest `yaml:"quest"`
}

// LoadQuestFromBytes parses and validates a quest from YAML bytes. Unknown
// fields are rejected so typos surface at load time.
//
// Postcondition: Returns a quest that passes quest.Quest.Validate, or a
// non-nil error.
func LoadQuestFromBytes(data []byte) (*quest.Quest, error) {
	var file yamlQuestFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing quest YAML: %w", err)
	}

	q := file.Quest
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("validating quest: %w", err)
	}
	return &q, nil
}

// ParseQuestFromBytes parses a quest without validation. The validator CLI
// uses it so malformed content produces findings instead of a load abort;
// runtime code paths use LoadQuestFromBytes.
func ParseQuestFromBytes(data []byte) (*quest.Quest, error) {
	var file yamlQuestFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing quest YAML: %w", err)
	}
	q := file.Quest
	return &q, nil
}

// ParseQuestsFromDir parses all YAML files in a directory as quests,
// skipping validation.
func ParseQuestsFromDir(dir string) ([]*quest.Quest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading quest directory %s: %w", dir, err)
	}

	var quests []*quest.Quest
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		q, err := ParseQuestFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("parsing quest from %s: %w", entry.Name(), err)
		}
		quests = append(quests, q)
	}
	return quests, nil
}

// LoadQuestFromFile reads and validates a single quest YAML file.
func LoadQuestFromFile(path string) (*quest.Quest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading quest file %s: %w", path, err)
	}
	return LoadQuestFromBytes(data)
}

// LoadQuestsFromDir loads all YAML files in a directory as quests.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns all parsed quests or the first error encountered.
func LoadQuestsFromDir(dir string) ([]*quest.Quest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading quest directory %s: %w", dir, err)
	}

	var quests []*quest.Quest
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		q, err := LoadQuestFromFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("loading quest from %s: %w", entry.Name(), err)
		}
		quests = append(quests, q)
	}
	return quests, nil
}

// EncodeQuest serializes a quest back to its YAML form. Reloading the output
// yields an identical stage and objective structure.
func EncodeQuest(q *quest.Quest) ([]byte, error) {
	out, err := yaml.Marshal(yamlQuestFile{Quest: *q})
	if err != nil {
		return nil, fmt.Errorf("encoding quest %d: %w", q.ID, err)
	}
	return out, nil
}
