package enums

// ZoneType is the kind of container an entity currently occupies.
type ZoneType int

const (
	ZoneInvalid ZoneType = iota
	ZonePlay
	ZoneDeck
	ZoneHand
	ZoneGraveyard
	ZoneRemovedFromGame
	ZoneSetAside
	ZoneSecret
)

// ZoneTypes lists every real zone kind in controller layout order.
var ZoneTypes = []ZoneType{
	ZonePlay,
	ZoneDeck,
	ZoneHand,
	ZoneGraveyard,
	ZoneRemovedFromGame,
	ZoneSetAside,
	ZoneSecret,
}

func (z ZoneType) String() string {
	switch z {
	case ZonePlay:
		return "PLAY"
	case ZoneDeck:
		return "DECK"
	case ZoneHand:
		return "HAND"
	case ZoneGraveyard:
		return "GRAVEYARD"
	case ZoneRemovedFromGame:
		return "REMOVEDFROMGAME"
	case ZoneSetAside:
		return "SETASIDE"
	case ZoneSecret:
		return "SECRET"
	default:
		return "INVALID"
	}
}
