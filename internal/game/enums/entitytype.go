package enums

// EntityType selects a set of entities relative to the acting controller and source.
type EntityType string

const (
	EntityTypeInvalid            EntityType = "INVALID"
	EntityTypeSource             EntityType = "SOURCE"
	EntityTypeTarget             EntityType = "TARGET"
	EntityTypeHero               EntityType = "HERO"
	EntityTypeOpHero             EntityType = "OP_HERO"
	EntityTypeMinions            EntityType = "MINIONS"
	EntityTypeOpMinions          EntityType = "OP_MINIONS"
	EntityTypeAllMinions         EntityType = "ALL_MINIONS"
	EntityTypeMinionsNoSource    EntityType = "MINIONS_NOSOURCE"
	EntityTypeAllMinionsNoSource EntityType = "ALL_MINIONS_NOSOURCE"
	EntityTypeFriends            EntityType = "FRIENDS"
	EntityTypeEnemies            EntityType = "ENEMIES"
	EntityTypeAll                EntityType = "ALL"
	EntityTypeHand               EntityType = "HAND"
	EntityTypeOpHand             EntityType = "OP_HAND"
	EntityTypeDeck               EntityType = "DECK"
	EntityTypeOpDeck             EntityType = "OP_DECK"
	EntityTypeGraveyard          EntityType = "GRAVEYARD"
	EntityTypeOpGraveyard        EntityType = "OP_GRAVEYARD"
	EntityTypeWeapon             EntityType = "WEAPON"
	EntityTypeOpWeapon           EntityType = "OP_WEAPON"
	EntityTypeStack              EntityType = "STACK"
)
