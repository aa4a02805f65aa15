package main

import (
	"encoding/json"
	"log"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/vmihailenco/msgpack/v5"
)

const commandQueueSize = 1024

// Broadcaster is the game's view of a connection. Sends never block the
// tick: a saturated client drops frames instead of stalling the server.
type Broadcaster interface {
	SendJSON(msg interface{})
	SendRaw(data []byte)
	SendBinary(data []byte)
	WantsBinary() bool
}

// Game owns the canonical world and runs the fixed-tick simulation loop.
// The loop goroutine is the only writer of world state; connections feed
// it through the bounded command queue.
type Game struct {
	cfg   Config
	world *World
	grid  *SpatialGrid

	// playerID -> connection, owned by the game goroutine
	clients map[string]Broadcaster

	commands chan Command
	tick     uint64

	itemsDirty bool

	stopOnce sync.Once
	stop     chan struct{}

	analytics *Analytics

	// readable from other goroutines
	playerCount atomic.Int64

	queryBuf []EntityRef
}

// NewGame creates a game for the given tuning
func NewGame(cfg Config, analytics *Analytics) *Game {
	w, h := cfg.Bounds()
	return &Game{
		cfg:       cfg,
		world:     NewWorld(),
		grid:      NewSpatialGrid(w, h),
		clients:   make(map[string]Broadcaster),
		commands:  make(chan Command, commandQueueSize),
		stop:      make(chan struct{}),
		analytics: analytics,
	}
}

// Run starts the tick loop
func (g *Game) Run() {
	interval := time.Second / time.Duration(g.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.step()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the tick loop
func (g *Game) Stop() {
	g.stopOnce.Do(func() { close(g.stop) })
}

// PlayerCount returns the live player count; safe from any goroutine
func (g *Game) PlayerCount() int {
	return int(g.playerCount.Load())
}

// step advances the world by one tick. Per-entity failures skip that
// entity only; the tick always completes for everything else.
func (g *Game) step() {
	g.tick++

	g.drainCommands()
	g.rebuildGrid()

	g.world.ForEachPlayer(func(p *Player) bool {
		p.Step(g.cfg)
		return true
	})

	g.stepMobs()
	g.resolveCombat()
	g.resolvePickups()
	g.spawnMobs()

	g.broadcastTick()
	g.itemsDirty = false
}

// rebuildGrid refills the broad-phase grid from the entity store
func (g *Game) rebuildGrid() {
	g.grid.Clear()
	g.world.ForEachPlayer(func(p *Player) bool {
		g.grid.Insert(p.X, p.Y, EntityRef{Kind: KindPlayer, ID: p.ID})
		return true
	})
	g.world.ForEachMob(func(m *Mob) bool {
		g.grid.Insert(m.X, m.Y, EntityRef{Kind: KindMob, ID: m.ID})
		return true
	})
	g.world.ForEachItem(func(it *WorldItem) bool {
		g.grid.Insert(it.X, it.Y, EntityRef{Kind: KindItem, ID: it.ID})
		return true
	})
}

// stepMobs runs AI for every mob and applies any melee damage
func (g *Game) stepMobs() {
	g.world.ForEachMob(func(m *Mob) bool {
		target := g.nearestPlayer(m.X, m.Y, MobAggroRadius)
		dmg := m.Step(g.tick, target, g.cfg)
		if dmg > 0 && target != nil {
			if target.TakeDamage(dmg) {
				g.onPlayerDeath(target)
			}
		}
		return true
	})
}

// nearestPlayer returns the closest living player within radius, or nil
func (g *Game) nearestPlayer(x, y, radius float64) *Player {
	g.queryBuf = g.grid.QueryBuf(x, y, radius, g.queryBuf[:0])
	var best *Player
	bestD2 := radius * radius
	for _, ref := range g.queryBuf {
		if ref.Kind != KindPlayer {
			continue
		}
		p, err := g.world.GetPlayer(ref.ID)
		if err != nil || !p.Alive {
			continue
		}
		d2 := DistanceSq(x, y, p.X, p.Y)
		if d2 <= bestD2 {
			bestD2 = d2
			best = p
		}
	}
	return best
}

// onPlayerDeath notifies the dying player. The body stays until a
// respawn_request; everyone else observes alive=false in player_update.
func (g *Game) onPlayerDeath(p *Player) {
	if c, ok := g.clients[p.ID]; ok {
		c.SendJSON(Envelope{T: MsgPlayerDead, Data: PlayerDeadMsg{ID: p.ID}})
	}
	if g.analytics != nil {
		g.analytics.Track(EvtPlayerDeath, p.Username, "")
	}
}

// resolvePickups grants unclaimed world items to players in contact.
// Players are processed in ascending id order so a same-tick race over one
// item has a deterministic single winner.
func (g *Game) resolvePickups() {
	ids := make([]string, 0, g.world.PlayerCount())
	g.world.ForEachPlayer(func(p *Player) bool {
		ids = append(ids, p.ID)
		return true
	})
	sort.Strings(ids)

	for _, id := range ids {
		p, err := g.world.GetPlayer(id)
		if err != nil || !p.Alive {
			continue
		}
		g.queryBuf = g.grid.QueryBuf(p.X, p.Y, p.Radius+SpatialCellSize, g.queryBuf[:0])
		for _, ref := range g.queryBuf {
			if ref.Kind != KindItem {
				continue
			}
			it, err := g.world.GetItem(ref.ID)
			if err != nil || it.Claim != ClaimUnclaimed {
				continue
			}
			if !CheckCollision(p.X, p.Y, p.Radius, it.X, it.Y, it.Radius) {
				continue
			}
			it.Claim = ClaimPending
			it.ClaimedBy = p.ID
			if err := AddToInventory(p, it.Item, g.cfg.InventorySize); err != nil {
				// Inventory full: the pickup fails silently and the
				// item stays on the map for someone else
				it.Claim = ClaimUnclaimed
				it.ClaimedBy = ""
				continue
			}
			it.Claim = ClaimRemoved
			g.world.RemoveItem(it.ID)
			g.itemsDirty = true
			g.sendInventory(p)
		}
	}
}

// spawnMobs tops the population up toward the per-rarity targets,
// at most one spawn per rarity per tick
func (g *Game) spawnMobs() {
	counts := make(map[Rarity]int)
	g.world.ForEachMob(func(m *Mob) bool {
		counts[m.Rarity]++
		return true
	})
	for name, target := range g.cfg.MobPopulation {
		rarity, ok := ParseRarity(name)
		if !ok {
			continue
		}
		if counts[rarity] < target {
			g.world.UpsertMob(NewMob(rarity, g.cfg))
		}
	}
}

// handleJoin creates the player entity, subscribes the connection and
// pushes the full snapshot
func (g *Game) handleJoin(cmd Command) {
	p := NewPlayer(cmd.PlayerID, cmd.Username, g.cfg)
	p.IsAdmin = cmd.IsAdmin
	g.world.UpsertPlayer(p)
	g.clients[p.ID] = cmd.Client
	g.playerCount.Store(int64(g.world.PlayerCount()))

	cmd.Client.SendJSON(Envelope{T: MsgWorldSnapshot, Data: g.buildSnapshot(p)})
	g.broadcastExcept(p.ID, Envelope{T: MsgPlayerJoin, Data: p.ToState(g.tick)})

	if g.analytics != nil {
		g.analytics.Track(EvtPlayerJoin, p.Username, "")
	}
	log.Printf("player %s joined as %q", p.ID, p.Username)
}

// handleLeave removes the player and tells everyone else. Already-gone
// ids are fine: a disconnect can race its own queued commands.
func (g *Game) handleLeave(playerID string) {
	if err := g.world.RemovePlayer(playerID); err != nil {
		return
	}
	delete(g.clients, playerID)
	g.playerCount.Store(int64(g.world.PlayerCount()))
	g.broadcast(Envelope{T: MsgPlayerLeave, Data: PlayerLeaveMsg{ID: playerID}})
	log.Printf("player %s left", playerID)
}

func (g *Game) handleEquip(p *Player, invIdx, hotIdx int) {
	if err := Equip(p, invIdx, hotIdx, g.cfg.InventorySize, g.tick); err != nil {
		// Validation and capacity errors reject the request with no
		// state change and no broadcast
		return
	}
	g.sendInventory(p)
	g.sendHotbar(p)
}

func (g *Game) handleUnequip(p *Player, hotIdx int) {
	if err := Unequip(p, hotIdx, g.cfg.InventorySize); err != nil {
		return
	}
	g.sendInventory(p)
	g.sendHotbar(p)
}

func (g *Game) handleRespawn(p *Player) {
	if p.Alive {
		return
	}
	p.Respawn(g.cfg)
	if c, ok := g.clients[p.ID]; ok {
		c.SendJSON(Envelope{T: MsgRespawnSuccess, Data: RespawnSuccessMsg{
			X:      p.X,
			Y:      p.Y,
			Health: p.HP,
		}})
	}
}

// handleChat relays a chat line to everyone, with flood control.
// Admin players may use /spawn <rarity>.
func (g *Game) handleChat(p *Player, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if len(text) > g.cfg.ChatMaxLen {
		cut := g.cfg.ChatMaxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	window := uint64(g.cfg.TickRateHz) * 60
	if g.tick >= p.chatResetAt {
		p.chatCount = 0
		p.chatResetAt = g.tick + window
	}
	p.chatCount++
	if p.chatCount > g.cfg.ChatPerMinute {
		return
	}

	if p.IsAdmin && strings.HasPrefix(text, "/spawn ") {
		if rarity, ok := ParseRarity(strings.TrimPrefix(text, "/spawn ")); ok {
			g.world.UpsertMob(NewMob(rarity, g.cfg))
		}
		return
	}

	g.broadcast(Envelope{T: MsgChatMessage, Data: ChatMsg{Username: p.Username, Text: text}})
	if g.analytics != nil {
		g.analytics.Track(EvtChat, p.Username, "")
	}
}

// sendInventory pushes the player's inventory to their own connection
func (g *Game) sendInventory(p *Player) {
	if c, ok := g.clients[p.ID]; ok {
		c.SendJSON(Envelope{T: MsgInventoryUpdate, Data: InventoryUpdateMsg{Inventory: InventoryState(p)}})
	}
}

// sendHotbar pushes the player's hotbar to their own connection
func (g *Game) sendHotbar(p *Player) {
	if c, ok := g.clients[p.ID]; ok {
		c.SendJSON(Envelope{T: MsgHotbarUpdate, Data: HotbarUpdateMsg{Hotbar: p.ToState(g.tick).Hotbar}})
	}
}

// buildSnapshot assembles the full world_snapshot for a joining player
func (g *Game) buildSnapshot(self *Player) WorldSnapshotMsg {
	snap := WorldSnapshotMsg{
		Shape:     g.cfg.WorldShape,
		TickRate:  g.cfg.TickRateHz,
		Tick:      g.tick,
		Self:      self.ToState(g.tick),
		Players:   make([]PlayerState, 0, g.world.PlayerCount()-1),
		Items:     make([]ItemState, 0, g.world.ItemCount()),
		Mobs:      make([]MobState, 0, g.world.MobCount()),
		Inventory: InventoryState(self),
		Hotbar:    self.ToState(g.tick).Hotbar,
	}
	if g.cfg.WorldShape == ShapeCircle {
		snap.MapRadius = g.cfg.MapRadius
	} else {
		snap.Width = g.cfg.WorldWidth
		snap.Height = g.cfg.WorldHeight
	}
	g.world.ForEachPlayer(func(p *Player) bool {
		if p.ID != self.ID {
			snap.Players = append(snap.Players, p.ToState(g.tick))
		}
		return true
	})
	g.world.ForEachItem(func(it *WorldItem) bool {
		snap.Items = append(snap.Items, it.ToState())
		return true
	})
	g.world.ForEachMob(func(m *Mob) bool {
		snap.Mobs = append(snap.Mobs, m.ToState())
		return true
	})
	return snap
}

// broadcastTick sends the steady-state incremental messages for this
// tick. All recipients see the same end-of-tick state: the payloads are
// built once, after every mutation phase has run.
func (g *Game) broadcastTick() {
	if len(g.clients) == 0 {
		return
	}

	players := make([]PlayerState, 0, g.world.PlayerCount())
	g.world.ForEachPlayer(func(p *Player) bool {
		players = append(players, p.ToState(g.tick))
		return true
	})
	mobs := make([]MobState, 0, g.world.MobCount())
	g.world.ForEachMob(func(m *Mob) bool {
		mobs = append(mobs, m.ToState())
		return true
	})
	var items []ItemState
	if g.itemsDirty {
		items = make([]ItemState, 0, g.world.ItemCount())
		g.world.ForEachItem(func(it *WorldItem) bool {
			items = append(items, it.ToState())
			return true
		})
	}

	playersRaw := marshalEnvelope(MsgPlayerUpdate, players)
	mobsRaw := marshalEnvelope(MsgMobsUpdate, mobs)
	var itemsRaw []byte
	if g.itemsDirty {
		itemsRaw = marshalEnvelope(MsgItemsUpdate, ItemsUpdateMsg{Items: items})
	}

	var packed []byte
	for _, c := range g.clients {
		if c.WantsBinary() {
			if packed == nil {
				var err error
				packed, err = msgpack.Marshal(TickUpdate{
					Tick:    g.tick,
					Players: players,
					Mobs:    mobs,
					Items:   items,
				})
				if err != nil {
					log.Printf("msgpack marshal: %v", err)
					continue
				}
			}
			c.SendBinary(packed)
			continue
		}
		c.SendRaw(playersRaw)
		c.SendRaw(mobsRaw)
		if itemsRaw != nil {
			c.SendRaw(itemsRaw)
		}
	}
}

// broadcast marshals once and fans out to every connection
func (g *Game) broadcast(env Envelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	for _, c := range g.clients {
		c.SendRaw(raw)
	}
}

// broadcastExcept fans out to everyone but one player
func (g *Game) broadcastExcept(playerID string, env Envelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	for id, c := range g.clients {
		if id != playerID {
			c.SendRaw(raw)
		}
	}
}

// BroadcastMobDead announces a removed mob so clients stop predicting it
func (g *Game) broadcastMobDead(id string) {
	g.broadcast(Envelope{T: MsgMobDead, Data: MobDeadMsg{ID: id}})
}

func marshalEnvelope(t string, data interface{}) []byte {
	raw, err := json.Marshal(Envelope{T: t, Data: data})
	if err != nil {
		log.Printf("marshal error: %v", err)
		return nil
	}
	return raw
}
