package cards

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed cards.schema.json
var schemaSource string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func definitionSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("cards.schema.json", schemaSource)
	})
	return schema, schemaErr
}

type document struct {
	Cards []Definition `yaml:"cards"`
}

// LoadFile reads a YAML card file into a repository.
func LoadFile(path string) (*MemoryRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read card file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates a YAML card document against the card schema and builds a repository.
func Parse(data []byte) (*MemoryRepository, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode card document: %w", err)
	}

	list := make([]*Card, 0, len(doc.Cards))
	for _, def := range doc.Cards {
		c, err := New(def)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return NewMemoryRepository(list...), nil
}

// Validate checks a YAML card document against the embedded JSON schema.
func Validate(data []byte) error {
	s, err := definitionSchema()
	if err != nil {
		return fmt.Errorf("failed to compile card schema: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode card document: %w", err)
	}
	// Round-trip through JSON so the validator sees JSON value types.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to normalize card document: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(encoded, &normalized); err != nil {
		return fmt.Errorf("failed to normalize card document: %w", err)
	}

	if err := s.Validate(normalized); err != nil {
		return fmt.Errorf("invalid card document: %w", err)
	}
	return nil
}

// Marshal renders cards as a YAML document accepted by Parse.
func Marshal(list []*Card) ([]byte, error) {
	doc := document{Cards: make([]Definition, 0, len(list))}
	for _, c := range list {
		doc.Cards = append(doc.Cards, c.Definition())
	}
	return yaml.Marshal(&doc)
}
