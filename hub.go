package main

import (
	"log"
	"sync"
)

// Hub manages all connected clients and routes authenticated ones into
// the single world
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int

	cfg       Config
	db        *DB
	auth      *Auth
	analytics *Analytics
	game      *Game

	// Single active session per username: username -> client
	onlineMu sync.Mutex
	online   map[string]*Client
}

// NewHub creates a Hub with its world, auth handler and analytics writer
func NewHub(cfg Config, db *DB) *Hub {
	var analytics *Analytics
	if db != nil {
		analytics = NewAnalytics(db)
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		ipConns:    make(map[string]int),
		cfg:        cfg,
		db:         db,
		auth:       NewAuth(db),
		analytics:  analytics,
		game:       NewGame(cfg, analytics),
		online:     make(map[string]*Client),
	}
}

// Run starts the game loop and processes register/unregister events
func (h *Hub) Run() {
	go h.game.Run()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("session %s connected from %s", client.sessionID, client.remoteAddr)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("session %s disconnected", client.sessionID)
			}
			h.mu.Unlock()

			// In-flight commands from this connection still drain; they
			// will just fail to find a live player and no-op
			if client.playerID != "" {
				h.game.Enqueue(Command{Kind: cmdLeave, PlayerID: client.playerID})
			}
			h.releaseUsername(client)
		}
	}
}

// Shutdown stops the simulation and background writers
func (h *Hub) Shutdown() {
	h.game.Stop()
	if h.analytics != nil {
		h.analytics.Stop()
	}
}

// ClaimUsername enforces one active session per username. Policy:
// evict-prior. A second login closes the earlier connection rather than
// locking the account out.
func (h *Hub) ClaimUsername(username string, c *Client) {
	h.onlineMu.Lock()
	prior := h.online[username]
	h.online[username] = c
	h.onlineMu.Unlock()

	if prior != nil && prior != c {
		log.Printf("evicting prior session %s for %q", prior.sessionID, username)
		if prior.playerID != "" {
			h.game.Enqueue(Command{Kind: cmdLeave, PlayerID: prior.playerID})
		}
		prior.conn.Close()
	}
}

// releaseUsername drops the online entry if it still points at c
func (h *Hub) releaseUsername(c *Client) {
	if c.username == "" {
		return
	}
	h.onlineMu.Lock()
	if h.online[c.username] == c {
		delete(h.online, c.username)
	}
	h.onlineMu.Unlock()
}

// TryAccept reserves a connection slot for ip, applying the per-IP and
// total caps under a single lock so concurrent upgrades cannot both
// squeeze past the limit. A false return reserves nothing; a true return
// must be paired with TrackDisconnect.
func (h *Hub) TryAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= h.cfg.MaxTotalConns {
		return false
	}
	if h.ipConns[ip] >= h.cfg.MaxConnsPerIP {
		return false
	}
	h.ipConns[ip]++
	h.totalConns++
	return true
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PlayerCount returns the number of players in the world
func (h *Hub) PlayerCount() int {
	return h.game.PlayerCount()
}
