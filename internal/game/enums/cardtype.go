package enums

import (
	"fmt"
	"strings"
)

// CardType is the static type printed on a card definition.
type CardType string

const (
	CardTypeInvalid     CardType = "INVALID"
	CardTypeHero        CardType = "HERO"
	CardTypeMinion      CardType = "MINION"
	CardTypeSpell       CardType = "SPELL"
	CardTypeEnchantment CardType = "ENCHANTMENT"
	CardTypeWeapon      CardType = "WEAPON"
	CardTypeHeroPower   CardType = "HERO_POWER"
)

// ParseCardType accepts the upper or lower case name of a card type.
func ParseCardType(s string) (CardType, error) {
	switch ct := CardType(strings.ToUpper(strings.TrimSpace(s))); ct {
	case CardTypeHero, CardTypeMinion, CardTypeSpell, CardTypeEnchantment, CardTypeWeapon, CardTypeHeroPower:
		return ct, nil
	default:
		return CardTypeInvalid, fmt.Errorf("unknown card type %q", s)
	}
}

// Ordinal is the numeric value stored in the CARDTYPE tag.
func (ct CardType) Ordinal() int {
	switch ct {
	case CardTypeHero:
		return 3
	case CardTypeMinion:
		return 4
	case CardTypeSpell:
		return 5
	case CardTypeEnchantment:
		return 6
	case CardTypeWeapon:
		return 7
	case CardTypeHeroPower:
		return 10
	default:
		return 0
	}
}
