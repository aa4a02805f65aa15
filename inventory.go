package main

import "errors"

// Inventory operation errors. These reject the request and leave the
// player's state untouched; they never abort the tick.
var (
	ErrInvalidIndex  = errors.New("index out of range")
	ErrEmptySource   = errors.New("inventory slot empty")
	ErrEmptySlot     = errors.New("hotbar slot empty")
	ErrInventoryFull = errors.New("inventory full")
)

// InventoryStack is a count-bearing grouping of identical items
type InventoryStack struct {
	Item  ItemRef
	Count int
}

// EquippedItem is a single unit in a hotbar slot. ReadyAt is the tick at
// which the item's reload ends; cooldowns are tick based, never wall clock.
type EquippedItem struct {
	Item    ItemRef
	ReadyAt uint64
}

// AddToInventory merges an item into an existing stack of the same
// name+rarity or appends a new stack. Returns ErrInventoryFull when the
// inventory has no matching stack and no free slot.
func AddToInventory(p *Player, ref ItemRef, maxStacks int) error {
	for i := range p.Inventory {
		if p.Inventory[i].Item == ref {
			p.Inventory[i].Count++
			return nil
		}
	}
	if len(p.Inventory) >= maxStacks {
		return ErrInventoryFull
	}
	p.Inventory = append(p.Inventory, InventoryStack{Item: ref, Count: 1})
	return nil
}

// removeOneFromStack takes a single unit out of the stack at invIdx,
// dropping the stack entirely when it empties
func removeOneFromStack(p *Player, invIdx int) ItemRef {
	ref := p.Inventory[invIdx].Item
	p.Inventory[invIdx].Count--
	if p.Inventory[invIdx].Count <= 0 {
		p.Inventory = append(p.Inventory[:invIdx], p.Inventory[invIdx+1:]...)
	}
	return ref
}

// Equip moves one unit from the inventory stack at invIdx into the hotbar
// slot at hotIdx. A displaced occupant returns to the inventory first, so
// the operation is atomic: either everything moves or nothing does.
// The equipped item starts reloading from the current tick, so cycling an
// item through the inventory never shortcuts a pending cooldown.
func Equip(p *Player, invIdx, hotIdx, maxStacks int, tick uint64) error {
	if hotIdx < 0 || hotIdx >= len(p.Hotbar) || invIdx < 0 || invIdx >= maxStacks {
		return ErrInvalidIndex
	}
	if invIdx >= len(p.Inventory) {
		return ErrEmptySource
	}

	displaced := p.Hotbar[hotIdx]
	ref := removeOneFromStack(p, invIdx)

	if displaced != nil {
		if err := AddToInventory(p, displaced.Item, maxStacks); err != nil {
			// Roll the source unit back; no intermediate state survives
			if err2 := AddToInventory(p, ref, maxStacks); err2 != nil {
				// A unit was just removed, so a slot or stack must exist
				panic("equip rollback failed: " + err2.Error())
			}
			return err
		}
	}

	p.Hotbar[hotIdx] = &EquippedItem{Item: ref, ReadyAt: tick + ref.Def().ReloadTicks}
	return nil
}

// Unequip clears the hotbar slot at hotIdx, merging the item back into
// the inventory
func Unequip(p *Player, hotIdx, maxStacks int) error {
	if hotIdx < 0 || hotIdx >= len(p.Hotbar) {
		return ErrInvalidIndex
	}
	slot := p.Hotbar[hotIdx]
	if slot == nil {
		return ErrEmptySlot
	}
	if err := AddToInventory(p, slot.Item, maxStacks); err != nil {
		return err
	}
	p.Hotbar[hotIdx] = nil
	return nil
}

// InventoryState converts the inventory to protocol state
func InventoryState(p *Player) []StackState {
	out := make([]StackState, 0, len(p.Inventory))
	for _, s := range p.Inventory {
		out = append(out, StackState{
			Name:   s.Item.Name,
			Rarity: s.Item.Rarity.String(),
			Count:  s.Count,
		})
	}
	return out
}
