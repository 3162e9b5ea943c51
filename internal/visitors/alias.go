package visitors

import "hash/fnv"

var visitorAdjectives = []string{
	"Amber", "Breezy", "Cobalt", "Crimson", "Dusty", "Emerald", "Foggy", "Golden",
	"Hazel", "Indigo", "Ivory", "Jade", "Lunar", "Maroon", "Misty", "Olive",
	"Pearly", "Rustic", "Scarlet", "Silver", "Snowy", "Stormy", "Velvet", "Violet",
}

var visitorAnimals = []string{
	"Badger", "Bison", "Chamois", "Cormorant", "Dormouse", "Gazelle", "Ibex", "Jackdaw",
	"Lemur", "Lynx", "Magpie", "Marmot", "Marten", "Moose", "Narwhal", "Ocelot",
	"Osprey", "Puffin", "Stoat", "Tapir", "Vole", "Wombat", "Wren", "Yak",
}

// VisitorAlias returns an anonymized display name for the given visitor
// fingerprint, used in live activity feeds instead of the raw hash.
func VisitorAlias(fingerprint string) string {
	h := fnv.New32a()
	h.Write([]byte(fingerprint))
	index := int(h.Sum32())

	adjIndex := index % len(visitorAdjectives)
	animalIndex := (index / len(visitorAdjectives)) % len(visitorAnimals)

	return visitorAdjectives[adjIndex] + " " + visitorAnimals[animalIndex]
}
