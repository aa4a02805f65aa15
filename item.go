package main

import "math/rand"

// Rarity tiers for mobs and items
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
	RarityMythic
)

var rarityNames = [...]string{"common", "uncommon", "rare", "epic", "legendary", "mythic"}

// Stat multipliers per tier, applied to mob health/damage and item damage
var rarityMult = [...]float64{1.0, 1.5, 2.2, 3.5, 5.5, 9.0}

func (r Rarity) String() string {
	if r < RarityCommon || r > RarityMythic {
		return "common"
	}
	return rarityNames[r]
}

// Mult returns the stat multiplier for the tier
func (r Rarity) Mult() float64 {
	if r < RarityCommon || r > RarityMythic {
		return 1.0
	}
	return rarityMult[r]
}

// ParseRarity maps a rarity name back to its tier
func ParseRarity(s string) (Rarity, bool) {
	for i, n := range rarityNames {
		if n == s {
			return Rarity(i), true
		}
	}
	return RarityCommon, false
}

// ItemDef is the static definition of an item type.
// Damage is the base value before the rarity multiplier.
type ItemDef struct {
	Name        string
	Radius      float64
	Damage      int
	ReloadTicks uint64
	Color       string
}

// ItemCatalog is the full list of item types that can drop
var ItemCatalog = []ItemDef{
	{Name: "Petal", Radius: 8, Damage: 10, ReloadTicks: 10, Color: "cyan"},
	{Name: "Leaf", Radius: 7, Damage: 6, ReloadTicks: 6, Color: "green"},
	{Name: "Rose", Radius: 8, Damage: 14, ReloadTicks: 18, Color: "pink"},
	{Name: "Rock", Radius: 10, Damage: 20, ReloadTicks: 28, Color: "gray"},
	{Name: "Stinger", Radius: 6, Damage: 35, ReloadTicks: 45, Color: "black"},
}

// ItemCatalogMap provides O(1) lookup by item name
var ItemCatalogMap map[string]ItemDef

func init() {
	ItemCatalogMap = make(map[string]ItemDef, len(ItemCatalog))
	for _, def := range ItemCatalog {
		ItemCatalogMap[def.Name] = def
	}
}

// ItemRef identifies an item type at a rarity; stacks merge on equal refs
type ItemRef struct {
	Name   string
	Rarity Rarity
}

// Def returns the static definition for the ref
func (r ItemRef) Def() ItemDef {
	return ItemCatalogMap[r.Name]
}

// Damage returns the rarity-scaled damage of the item
func (r ItemRef) Damage() int {
	return int(float64(r.Def().Damage) * r.Rarity.Mult())
}

// Claim states of a world item during pickup resolution
type ClaimState int

const (
	ClaimUnclaimed ClaimState = iota
	ClaimPending
	ClaimRemoved
)

// WorldItem is an item lying on the map, waiting to be picked up
type WorldItem struct {
	ID     string
	Item   ItemRef
	X, Y   float64
	Radius float64

	// Claim tracks same-tick pickup resolution so an item is granted once
	Claim     ClaimState
	ClaimedBy string
}

// NewWorldItem drops an item of the given type at a position
func NewWorldItem(ref ItemRef, x, y float64) *WorldItem {
	return &WorldItem{
		ID:     GenerateID(4),
		Item:   ref,
		X:      x,
		Y:      y,
		Radius: ref.Def().Radius,
	}
}

// NewLootDrop creates the loot for a dead mob at its last position.
// The dropped item inherits the mob's rarity tier.
func NewLootDrop(rarity Rarity, x, y float64) *WorldItem {
	def := ItemCatalog[rand.Intn(len(ItemCatalog))]
	return NewWorldItem(ItemRef{Name: def.Name, Rarity: rarity}, x, y)
}

// ToState converts to protocol state
func (wi *WorldItem) ToState() ItemState {
	return ItemState{
		ID:     wi.ID,
		Name:   wi.Item.Name,
		X:      round1(wi.X),
		Y:      round1(wi.Y),
		Radius: wi.Radius,
		Rarity: wi.Item.Rarity.String(),
	}
}
