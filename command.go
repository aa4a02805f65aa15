package main

// CommandKind discriminates queued client intents
type CommandKind int

const (
	cmdJoin CommandKind = iota
	cmdLeave
	cmdMove
	cmdOrbit
	cmdPickup
	cmdEquip
	cmdUnequip
	cmdChat
	cmdRespawn
	cmdSpawnMob
)

// Command is one validated client intent, queued for the next tick.
// Every field the simulation needs is copied in up front: by the time a
// command is executed its connection may already be gone.
type Command struct {
	Kind     CommandKind
	PlayerID string

	// cmdJoin
	Client   Broadcaster
	Username string
	IsAdmin  bool

	// cmdMove
	DX, DY float64

	// cmdOrbit
	Orbit OrbitState

	// cmdPickup
	ItemID string

	// cmdEquip / cmdUnequip
	InvIdx, HotIdx int

	// cmdChat
	Text string

	// cmdSpawnMob
	Rarity Rarity
}

// Enqueue queues a command for the next tick. The queue is bounded; a
// flooding client loses its newest commands rather than stalling the
// server or growing without bound.
func (g *Game) Enqueue(cmd Command) {
	select {
	case g.commands <- cmd:
	default:
		// Queue saturated, drop
	}
}

// drainCommands consumes everything queued since the last tick, oldest
// first. Movement and orbit intents coalesce: only the newest per player
// survives, so a client sending 200 moves per tick gets exactly one.
func (g *Game) drainCommands() {
	type pendingIntent struct {
		move  *Command
		orbit *Command
	}
	pending := make(map[string]*pendingIntent)

	for {
		select {
		case cmd := <-g.commands:
			switch cmd.Kind {
			case cmdMove:
				p := pending[cmd.PlayerID]
				if p == nil {
					p = &pendingIntent{}
					pending[cmd.PlayerID] = p
				}
				c := cmd
				p.move = &c
			case cmdOrbit:
				p := pending[cmd.PlayerID]
				if p == nil {
					p = &pendingIntent{}
					pending[cmd.PlayerID] = p
				}
				c := cmd
				p.orbit = &c
			default:
				g.execute(cmd)
			}
		default:
			for _, p := range pending {
				if p.move != nil {
					g.execute(*p.move)
				}
				if p.orbit != nil {
					g.execute(*p.orbit)
				}
			}
			return
		}
	}
}

// execute applies a single command to the world. A stale player id is a
// consistency race, not an error: the command no-ops.
func (g *Game) execute(cmd Command) {
	switch cmd.Kind {
	case cmdJoin:
		g.handleJoin(cmd)
		return
	case cmdLeave:
		g.handleLeave(cmd.PlayerID)
		return
	case cmdSpawnMob:
		g.world.UpsertMob(NewMob(cmd.Rarity, g.cfg))
		return
	}

	p, err := g.world.GetPlayer(cmd.PlayerID)
	if err != nil {
		return
	}

	switch cmd.Kind {
	case cmdMove:
		p.SetMove(cmd.DX, cmd.DY)
	case cmdOrbit:
		p.OrbitState = cmd.Orbit
	case cmdPickup:
		// Advisory only: the actual grant is distance-validated during
		// pickup resolution. An unknown id is silently ignored.
		_, _ = g.world.GetItem(cmd.ItemID)
	case cmdEquip:
		g.handleEquip(p, cmd.InvIdx, cmd.HotIdx)
	case cmdUnequip:
		g.handleUnequip(p, cmd.HotIdx)
	case cmdChat:
		g.handleChat(p, cmd.Text)
	case cmdRespawn:
		g.handleRespawn(p)
	}
}
