package main

// maxMobRadius bounds the broad-phase query margin for combat checks
const maxMobRadius = MobBaseRadius * 2

// resolveCombat tests every player's equipped, non-reloading hotbar items
// against mobs at their orbit positions. A hit applies the item's damage
// and starts its reload; a mob driven to zero health is removed in the
// same tick and drops loot at its last position.
func (g *Game) resolveCombat() {
	g.world.ForEachPlayer(func(p *Player) bool {
		if !p.Alive {
			return true
		}
		equipped := p.EquippedCount()
		if equipped == 0 {
			return true
		}
		orbitIdx := 0
		for _, slot := range p.Hotbar {
			if slot == nil {
				continue
			}
			x, y := p.OrbitSlotPos(orbitIdx, equipped)
			orbitIdx++

			if g.tick < slot.ReadyAt {
				continue // reloading
			}

			def := slot.Item.Def()
			g.queryBuf = g.grid.QueryBuf(x, y, def.Radius+maxMobRadius, g.queryBuf[:0])
			for _, ref := range g.queryBuf {
				if ref.Kind != KindMob {
					continue
				}
				m, err := g.world.GetMob(ref.ID)
				if err != nil {
					continue // died earlier this tick
				}
				if !CheckCollision(x, y, def.Radius, m.X, m.Y, m.Radius) {
					continue
				}

				slot.ReadyAt = g.tick + def.ReloadTicks
				if m.TakeDamage(slot.Item.Damage()) {
					g.onMobDeath(m, p)
				}
				break // one hit per item per tick
			}
		}
		return true
	})
}

// onMobDeath removes the mob and spawns its loot drop
func (g *Game) onMobDeath(m *Mob, killer *Player) {
	g.world.RemoveMob(m.ID)
	g.broadcastMobDead(m.ID)
	g.world.UpsertItem(NewLootDrop(m.Rarity, m.X, m.Y))
	g.itemsDirty = true
	if g.analytics != nil {
		g.analytics.Track(EvtMobKill, killer.Username, m.Rarity.String())
	}
}
