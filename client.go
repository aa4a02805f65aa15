package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 60
)

// Connection lifecycle states. disconnected is terminal.
type connState int

const (
	stateUnauthenticated connState = iota
	stateAuthenticating
	stateActive
	stateDisconnected
)

// Client represents one WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	sessionID  string
	remoteAddr string

	state    connState
	username string // bound by auth, claimed by set_username
	playerID string // set when the world entity is created
	binary   bool   // client opted into msgpack tick frames

	msgCount   int
	msgResetAt time.Time
}

// NewClient creates a Client for an upgraded connection
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		sessionID:  uuid.NewString(),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.state = stateDisconnected
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for session %s (%s), disconnecting", c.sessionID, c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF prefix marks a binary frame queued by SendBinary
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message. Never blocks: a
// slow client drops the message instead of stalling the sender.
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message.
// Prefixes with a 0xFF marker byte so WritePump can tell it from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

// WantsBinary reports whether the client negotiated msgpack tick frames
func (c *Client) WantsBinary() bool {
	return c.binary
}

// handleMessage routes incoming messages. Malformed or unrecognized
// messages are dropped with no reply.
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return
	}

	switch env.T {
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgSetUsername:
		c.handleSetUsername(env.D)
	case MsgMove:
		c.handleMove(env.D)
	case MsgOrbitControl:
		c.handleOrbitControl(env.D)
	case MsgPickupRequest:
		c.handlePickupRequest(env.D)
	case MsgEquipRequest:
		c.handleEquipRequest(env.D)
	case MsgUnequipRequest:
		c.handleUnequipRequest(env.D)
	case MsgChatMessage:
		c.handleChatMessage(env.D)
	case MsgRespawnRequest:
		c.handleRespawnRequest()
	}
}

// handleAuth validates the session token against the auth collaborator.
// Failure leaves the connection open but unauthenticated.
func (c *Client) handleAuth(data json.RawMessage) {
	if c.state != stateUnauthenticated {
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.SendJSON(Envelope{T: MsgAuthFailed, Data: AuthFailedMsg{Reason: "invalid token"}})
		return
	}
	if msg.Username != "" && msg.Username != username {
		c.SendJSON(Envelope{T: MsgAuthFailed, Data: AuthFailedMsg{Reason: "token does not match username"}})
		return
	}

	c.username = username
	c.binary = msg.Bin
	c.state = stateAuthenticating
	c.SendJSON(Envelope{T: MsgAuthSuccess, Data: AuthSuccessMsg{Username: username}})
}

// handleSetUsername claims the username and enters the world. Only valid
// in the authenticating state, and only for the token's own username.
func (c *Client) handleSetUsername(data json.RawMessage) {
	if c.state != stateAuthenticating {
		return
	}
	var msg SetUsernameMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if msg.Username != c.username {
		c.SendJSON(Envelope{T: MsgAuthFailed, Data: AuthFailedMsg{Reason: "username mismatch"}})
		return
	}

	isAdmin := false
	if c.hub.db != nil {
		if acct, err := c.hub.db.GetAccount(c.username); err == nil && acct != nil {
			isAdmin = acct.IsAdmin
		}
	}

	c.playerID = GenerateID(4)
	c.state = stateActive
	c.hub.ClaimUsername(c.username, c)
	c.hub.game.Enqueue(Command{
		Kind:     cmdJoin,
		PlayerID: c.playerID,
		Client:   c,
		Username: c.username,
		IsAdmin:  isAdmin,
	})
}

func (c *Client) handleMove(data json.RawMessage) {
	if c.state != stateActive {
		return
	}
	var msg MoveMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.hub.game.Enqueue(Command{Kind: cmdMove, PlayerID: c.playerID, DX: msg.DX, DY: msg.DY})
}

func (c *Client) handleOrbitControl(data json.RawMessage) {
	if c.state != stateActive {
		return
	}
	var msg OrbitControlMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.hub.game.Enqueue(Command{Kind: cmdOrbit, PlayerID: c.playerID, Orbit: ParseOrbitState(msg.State)})
}

func (c *Client) handlePickupRequest(data json.RawMessage) {
	if c.state != stateActive {
		return
	}
	var msg PickupRequestMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.hub.game.Enqueue(Command{Kind: cmdPickup, PlayerID: c.playerID, ItemID: msg.ItemID})
}

func (c *Client) handleEquipRequest(data json.RawMessage) {
	if c.state != stateActive {
		return
	}
	var msg EquipRequestMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.hub.game.Enqueue(Command{Kind: cmdEquip, PlayerID: c.playerID, InvIdx: msg.Inv, HotIdx: msg.Slot})
}

func (c *Client) handleUnequipRequest(data json.RawMessage) {
	if c.state != stateActive {
		return
	}
	var msg UnequipRequestMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.hub.game.Enqueue(Command{Kind: cmdUnequip, PlayerID: c.playerID, HotIdx: msg.Slot})
}

func (c *Client) handleChatMessage(data json.RawMessage) {
	if c.state != stateActive {
		return
	}
	var msg ChatMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.hub.game.Enqueue(Command{Kind: cmdChat, PlayerID: c.playerID, Text: msg.Text})
}

func (c *Client) handleRespawnRequest() {
	if c.state != stateActive {
		return
	}
	c.hub.game.Enqueue(Command{Kind: cmdRespawn, PlayerID: c.playerID})
}
