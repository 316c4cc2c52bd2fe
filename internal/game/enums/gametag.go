package enums

import (
	"sort"
	"strconv"
)

// GameTag identifies one integer property of an entity.
// Values follow the numbering used by the card data exports.
type GameTag int

const (
	GameTagInvalid        GameTag = 0
	GameTagEntityID       GameTag = 53
	GameTagController     GameTag = 50
	GameTagCardType       GameTag = 202
	GameTagCost           GameTag = 48
	GameTagAtk            GameTag = 47
	GameTagHealth         GameTag = 45
	GameTagDamage         GameTag = 44
	GameTagDurability     GameTag = 187
	GameTagArmor          GameTag = 292
	GameTagZone           GameTag = 49
	GameTagZonePosition   GameTag = 263
	GameTagExhausted      GameTag = 43
	GameTagTaunt          GameTag = 190
	GameTagCharge         GameTag = 197
	GameTagDivineShield   GameTag = 194
	GameTagStealth        GameTag = 191
	GameTagWindfury       GameTag = 189
	GameTagFrozen         GameTag = 260
	GameTagSilenced       GameTag = 188
	GameTagSpellPower     GameTag = 192
	GameTagNumTurnsInPlay GameTag = 271
)

var gameTagNames = map[GameTag]string{
	GameTagInvalid:        "INVALID",
	GameTagEntityID:       "ENTITY_ID",
	GameTagController:     "CONTROLLER",
	GameTagCardType:       "CARDTYPE",
	GameTagCost:           "COST",
	GameTagAtk:            "ATK",
	GameTagHealth:         "HEALTH",
	GameTagDamage:         "DAMAGE",
	GameTagDurability:     "DURABILITY",
	GameTagArmor:          "ARMOR",
	GameTagZone:           "ZONE",
	GameTagZonePosition:   "ZONE_POSITION",
	GameTagExhausted:      "EXHAUSTED",
	GameTagTaunt:          "TAUNT",
	GameTagCharge:         "CHARGE",
	GameTagDivineShield:   "DIVINE_SHIELD",
	GameTagStealth:        "STEALTH",
	GameTagWindfury:       "WINDFURY",
	GameTagFrozen:         "FROZEN",
	GameTagSilenced:       "SILENCED",
	GameTagSpellPower:     "SPELLPOWER",
	GameTagNumTurnsInPlay: "NUM_TURNS_IN_PLAY",
}

var gameTagsByName = func() map[string]GameTag {
	m := make(map[string]GameTag, len(gameTagNames))
	for tag, name := range gameTagNames {
		m[name] = tag
	}
	return m
}()

// String returns the tag name, or its number when the tag is unnamed.
func (t GameTag) String() string {
	if name, ok := gameTagNames[t]; ok {
		return name
	}
	return strconv.Itoa(int(t))
}

// ParseGameTag resolves a tag by name.
func ParseGameTag(name string) (GameTag, bool) {
	tag, ok := gameTagsByName[name]
	return tag, ok
}

// GameTagNames lists every named tag except INVALID, sorted by name.
func GameTagNames() []string {
	names := make([]string, 0, len(gameTagNames))
	for tag, name := range gameTagNames {
		if tag != GameTagInvalid {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
