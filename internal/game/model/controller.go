package model

import (
	"fmt"
	"strings"

	"github.com/okusnadi/SabberStone/internal/game/enums"
)

// controllerZones is the set and order of zones every controller owns.
var controllerZones = []enums.ZoneType{
	enums.ZonePlay,
	enums.ZoneHand,
	enums.ZoneDeck,
	enums.ZoneGraveyard,
	enums.ZoneSetAside,
	enums.ZoneSecret,
}

// Controller is one player seat: its zones, hero slot and weapon slot.
type Controller struct {
	id          int
	name        string
	game        *Game
	maxHandSize int

	zones  map[enums.ZoneType]*Zone
	hero   *Hero
	weapon *Weapon
}

func newController(g *Game, id int, name string) *Controller {
	c := &Controller{
		id:          id,
		name:        name,
		game:        g,
		maxHandSize: g.cfg.MaxHandSize,
		zones:       make(map[enums.ZoneType]*Zone, len(controllerZones)),
	}
	for _, kind := range controllerZones {
		c.zones[kind] = newZone(g, c, kind)
	}
	return c
}

func (c *Controller) ID() int          { return c.id }
func (c *Controller) Name() string     { return c.name }
func (c *Controller) Game() *Game      { return c.game }
func (c *Controller) Board() *Zone     { return c.zones[enums.ZonePlay] }
func (c *Controller) Hand() *Zone      { return c.zones[enums.ZoneHand] }
func (c *Controller) Deck() *Zone      { return c.zones[enums.ZoneDeck] }
func (c *Controller) Graveyard() *Zone { return c.zones[enums.ZoneGraveyard] }
func (c *Controller) SetAside() *Zone  { return c.zones[enums.ZoneSetAside] }
func (c *Controller) Secrets() *Zone   { return c.zones[enums.ZoneSecret] }

// Zone returns the controller's zone of the given kind, or nil.
func (c *Controller) Zone(kind enums.ZoneType) *Zone {
	return c.zones[kind]
}

// Zones returns the controller's zones in layout order.
func (c *Controller) Zones() []*Zone {
	out := make([]*Zone, 0, len(controllerZones))
	for _, kind := range controllerZones {
		out = append(out, c.zones[kind])
	}
	return out
}

// MaxHandSize is the capacity of the controller's hand.
func (c *Controller) MaxHandSize() int { return c.maxHandSize }

// SetMaxHandSize changes the hand capacity.
func (c *Controller) SetMaxHandSize(n int) { c.maxHandSize = n }

// Opponent returns the other controller of the game.
func (c *Controller) Opponent() *Controller { return c.game.Opponent(c) }

// Hero returns the controller's hero, if any.
func (c *Controller) Hero() *Hero { return c.hero }

// SetHero installs h as the controller's hero.
func (c *Controller) SetHero(h *Hero) {
	c.hero = h
	if h != nil {
		h.SetTag(enums.GameTagZone, int(enums.ZonePlay))
	}
}

// Weapon returns the equipped weapon, if any.
func (c *Controller) Weapon() *Weapon { return c.weapon }

// SetWeapon equips w, or unequips when w is nil.
func (c *Controller) SetWeapon(w *Weapon) {
	c.weapon = w
	if w != nil {
		w.SetTag(enums.GameTagZone, int(enums.ZonePlay))
	}
}

// Hash fingerprints the controller's slots and zones.
func (c *Controller) Hash(ignore ...enums.GameTag) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[C:%d:%d]", c.id, c.maxHandSize)
	if c.hero != nil {
		b.WriteString("[H:")
		b.WriteString(c.hero.Hash(ignore...))
		b.WriteString("]")
	}
	if c.weapon != nil {
		b.WriteString("[W:")
		b.WriteString(c.weapon.Hash(ignore...))
		b.WriteString("]")
	}
	for _, z := range c.Zones() {
		b.WriteString(z.Hash(ignore...))
	}
	return b.String()
}

func (c *Controller) String() string {
	return c.name
}
