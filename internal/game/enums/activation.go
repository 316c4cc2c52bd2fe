package enums

// EnchantmentActivation is the moment an enchantment reacts to.
// The *_ZONE categories are probed every time an entity enters a zone.
type EnchantmentActivation string

const (
	ActivationNone         EnchantmentActivation = "NONE"
	ActivationSpell        EnchantmentActivation = "SPELL"
	ActivationBattlecry    EnchantmentActivation = "BATTLECRY"
	ActivationDeathrattle  EnchantmentActivation = "DEATHRATTLE"
	ActivationWeapon       EnchantmentActivation = "WEAPON"
	ActivationSecret       EnchantmentActivation = "SECRET"
	ActivationSetAsideZone EnchantmentActivation = "SETASIDE_ZONE"
	ActivationBoardZone    EnchantmentActivation = "BOARD_ZONE"
	ActivationHandZone     EnchantmentActivation = "HAND_ZONE"
	ActivationDeckZone     EnchantmentActivation = "DECK_ZONE"
)

// ZoneProbe pairs a zone activation category with the zone kind it belongs to.
type ZoneProbe struct {
	Activation EnchantmentActivation
	Zone       ZoneType
}

// ZoneProbes is the fixed sequence of probes issued when an entity is added to a zone.
var ZoneProbes = []ZoneProbe{
	{Activation: ActivationSetAsideZone, Zone: ZoneSetAside},
	{Activation: ActivationBoardZone, Zone: ZonePlay},
	{Activation: ActivationHandZone, Zone: ZoneHand},
	{Activation: ActivationDeckZone, Zone: ZoneDeck},
}
