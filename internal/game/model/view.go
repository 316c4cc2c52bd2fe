package model

import (
	"github.com/okusnadi/SabberStone/internal/game/enums"
)

// GameView is a JSON-friendly snapshot of a game.
type GameView struct {
	ID          string           `json:"id"`
	Turn        int              `json:"turn"`
	Digest      string           `json:"digest"`
	Controllers []ControllerView `json:"controllers"`
}

// ControllerView is a snapshot of one controller.
type ControllerView struct {
	ID     int         `json:"id"`
	Name   string      `json:"name"`
	Hero   *EntityView `json:"hero,omitempty"`
	Weapon *EntityView `json:"weapon,omitempty"`
	Zones  []ZoneView  `json:"zones"`
}

// ZoneView is a snapshot of one zone.
type ZoneView struct {
	Kind       string       `json:"kind"`
	Controller int          `json:"controller"`
	Count      int          `json:"count"`
	MaxSize    int          `json:"max_size"`
	Entities   []EntityView `json:"entities"`
	Enchants   int          `json:"enchants"`
	Triggers   int          `json:"triggers"`
}

// EntityView is a snapshot of one entity.
type EntityView struct {
	ID       int            `json:"id"`
	CardID   string         `json:"card_id"`
	Name     string         `json:"name"`
	Kind     string         `json:"kind"`
	Position int            `json:"position"`
	Cost     int            `json:"cost"`
	Attack   int            `json:"attack,omitempty"`
	Health   int            `json:"health,omitempty"`
	Tags     map[string]int `json:"tags,omitempty"`
	Enchants int            `json:"enchants"`
	Triggers int            `json:"triggers"`
}

// View snapshots the whole game.
func (g *Game) View() GameView {
	v := GameView{
		ID:     g.id,
		Turn:   g.turn,
		Digest: g.Digest(),
	}
	for _, c := range g.controllers {
		v.Controllers = append(v.Controllers, c.View())
	}
	return v
}

// View snapshots the controller.
func (c *Controller) View() ControllerView {
	v := ControllerView{ID: c.id, Name: c.name}
	if c.hero != nil {
		hv := ViewOf(c.hero)
		v.Hero = &hv
	}
	if c.weapon != nil {
		wv := ViewOf(c.weapon)
		v.Weapon = &wv
	}
	for _, z := range c.Zones() {
		v.Zones = append(v.Zones, z.View())
	}
	return v
}

// View snapshots the zone.
func (z *Zone) View() ZoneView {
	v := ZoneView{
		Kind:       z.kind.String(),
		Controller: z.controller.id,
		Count:      len(z.entities),
		MaxSize:    z.MaxSize(),
		Entities:   make([]EntityView, 0, len(z.entities)),
		Enchants:   z.enchants.Len(),
		Triggers:   z.triggers.Len(),
	}
	for _, p := range z.entities {
		v.Entities = append(v.Entities, ViewOf(p))
	}
	return v
}

// ViewOf snapshots a single entity.
func ViewOf(p Playable) EntityView {
	e := p.entity()
	v := EntityView{
		ID:       e.id,
		CardID:   e.card.ID,
		Name:     e.card.Name,
		Kind:     string(e.card.Type),
		Position: p.ZonePosition(),
		Cost:     p.Cost(),
		Enchants: e.enchants.Len(),
		Triggers: e.triggers.Len(),
	}
	switch k := p.(type) {
	case *Minion:
		v.Attack, v.Health = k.AttackDamage(), k.Health()
	case *Weapon:
		v.Attack, v.Health = k.AttackDamage(), k.Durability()
	case *Hero:
		v.Attack, v.Health = k.AttackDamage(), k.Health()
	}
	for t, value := range e.tags {
		switch t {
		case enums.GameTagEntityID, enums.GameTagController, enums.GameTagZone, enums.GameTagZonePosition:
			continue
		}
		if v.Tags == nil {
			v.Tags = make(map[string]int)
		}
		v.Tags[t.String()] = value
	}
	return v
}
