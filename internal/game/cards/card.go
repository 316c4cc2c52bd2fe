package cards

import (
	"fmt"
	"sort"

	"github.com/okusnadi/SabberStone/internal/game/enums"
)

// Card is the immutable static definition every entity is created from.
type Card struct {
	ID         string
	Name       string
	Type       enums.CardType
	Cost       int
	Attack     int
	Health     int
	Durability int
	Text       string

	tags map[enums.GameTag]int
}

// Definition is the serialized form of a card as found in YAML files and the database.
type Definition struct {
	ID         string         `yaml:"id" json:"id"`
	Name       string         `yaml:"name" json:"name"`
	Type       string         `yaml:"type" json:"type"`
	Cost       int            `yaml:"cost" json:"cost"`
	Attack     int            `yaml:"attack,omitempty" json:"attack,omitempty"`
	Health     int            `yaml:"health,omitempty" json:"health,omitempty"`
	Durability int            `yaml:"durability,omitempty" json:"durability,omitempty"`
	Text       string         `yaml:"text,omitempty" json:"text,omitempty"`
	Tags       map[string]int `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// New builds a card from its definition, resolving tag names.
func New(def Definition) (*Card, error) {
	if def.ID == "" {
		return nil, fmt.Errorf("card definition without id")
	}
	cardType, err := enums.ParseCardType(def.Type)
	if err != nil {
		return nil, fmt.Errorf("card %s: %w", def.ID, err)
	}

	c := &Card{
		ID:         def.ID,
		Name:       def.Name,
		Type:       cardType,
		Cost:       def.Cost,
		Attack:     def.Attack,
		Health:     def.Health,
		Durability: def.Durability,
		Text:       def.Text,
		tags:       make(map[enums.GameTag]int, len(def.Tags)+5),
	}

	for name, value := range def.Tags {
		tag, ok := enums.ParseGameTag(name)
		if !ok {
			return nil, fmt.Errorf("card %s: unknown tag %q", def.ID, name)
		}
		c.tags[tag] = value
	}

	c.tags[enums.GameTagCardType] = cardType.Ordinal()
	c.tags[enums.GameTagCost] = def.Cost
	if def.Attack != 0 {
		c.tags[enums.GameTagAtk] = def.Attack
	}
	if def.Health != 0 {
		c.tags[enums.GameTagHealth] = def.Health
	}
	if def.Durability != 0 {
		c.tags[enums.GameTagDurability] = def.Durability
	}
	return c, nil
}

// MustNew is New for statically known definitions.
func MustNew(def Definition) *Card {
	c, err := New(def)
	if err != nil {
		panic(err)
	}
	return c
}

// Tag returns the printed value of a tag, zero when absent.
func (c *Card) Tag(t enums.GameTag) int {
	return c.tags[t]
}

// Tags returns a copy of the printed tags.
func (c *Card) Tags() map[enums.GameTag]int {
	out := make(map[enums.GameTag]int, len(c.tags))
	for k, v := range c.tags {
		out[k] = v
	}
	return out
}

// Definition converts the card back into its serialized form.
func (c *Card) Definition() Definition {
	def := Definition{
		ID:         c.ID,
		Name:       c.Name,
		Type:       string(c.Type),
		Cost:       c.Cost,
		Attack:     c.Attack,
		Health:     c.Health,
		Durability: c.Durability,
		Text:       c.Text,
	}
	derived := map[enums.GameTag]bool{
		enums.GameTagCardType:   true,
		enums.GameTagCost:       true,
		enums.GameTagAtk:        true,
		enums.GameTagHealth:     true,
		enums.GameTagDurability: true,
	}
	for tag, value := range c.tags {
		if derived[tag] {
			continue
		}
		if def.Tags == nil {
			def.Tags = make(map[string]int)
		}
		def.Tags[tag.String()] = value
	}
	return def
}

func (c *Card) String() string {
	return fmt.Sprintf("%s[%s]", c.Name, c.ID)
}

// Repository resolves card definitions by id.
type Repository interface {
	Card(id string) (*Card, bool)
	All() []*Card
}

// MemoryRepository is an in-memory Repository.
type MemoryRepository struct {
	cards map[string]*Card
}

// NewMemoryRepository indexes the given cards; later duplicates win.
func NewMemoryRepository(cards ...*Card) *MemoryRepository {
	r := &MemoryRepository{cards: make(map[string]*Card, len(cards))}
	for _, c := range cards {
		r.cards[c.ID] = c
	}
	return r
}

// Card looks up a card by id.
func (r *MemoryRepository) Card(id string) (*Card, bool) {
	c, ok := r.cards[id]
	return c, ok
}

// All returns every card ordered by id.
func (r *MemoryRepository) All() []*Card {
	out := make([]*Card, 0, len(r.cards))
	for _, c := range r.cards {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
