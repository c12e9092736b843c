/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Messages coming from player clients
type PlayerMessage struct {
	Type   string `json:"type"`             // "set_name" or "answer"
	Name   string `json:"name,omitempty"`   // set_name
	Answer string `json:"answer,omitempty"` // answer
}

// client is one live connection, player or spectator, keyed by an
// opaque id generated at accept time.
type client struct {
	id   string
	name string // display name; empty for spectators
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, name string) *client {
	return &client{
		id:   uuid.NewString(),
		name: name,
		conn: conn,
		send: make(chan []byte, 8),
	}
}

// trySend queues a frame without blocking. Returns false when the
// connection is closed or its buffer is full, so the caller can evict.
func (c *client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close marks the client dead and releases its writePump. Idempotent.
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// servePlayerWS upgrades a player connection. The first frame names
// the player ("set_name"), which resolves or creates their ledger row;
// every later "answer" frame is a submission for the live question.
func servePlayerWS(cfg *Config, g *Game) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "WS: Upgrade error: %v", err)
			return
		}

		var hello PlayerMessage
		if err := conn.ReadJSON(&hello); err != nil || hello.Type != "set_name" || hello.Name == "" {
			_ = conn.Close()
			return
		}

		ctx := context.Background()
		player, err := g.store.GetOrCreatePlayer(ctx, hello.Name)
		if err != nil {
			logf(cfg, "WS: Player setup failed for %q: %v", hello.Name, err)
			_ = conn.Close()
			return
		}

		c := newClient(conn, player.Name)
		logf(cfg, "WS: Player %q connected (%s)", player.Name, c.id)

		g.RegisterPlayer(c)
		go c.writePump()

		defer func() {
			g.Unregister(c.id)
			_ = conn.Close()
			logf(cfg, "WS: Player %q disconnected (%s)", player.Name, c.id)
		}()

		for {
			var msg PlayerMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}

			if msg.Type != "answer" {
				continue
			}

			if err := g.SubmitAnswer(ctx, c.id, player.ID, msg.Answer); err != nil {
				logf(cfg, "WS: Answer from %q not recorded: %v", player.Name, err)
			}
		}
	}
}

// serveObserverWS upgrades a spectator connection. Spectators only
// receive projections; inbound frames are drained and ignored.
func serveObserverWS(cfg *Config, g *Game) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "WS: Upgrade error: %v", err)
			return
		}

		c := newClient(conn, "")
		logf(cfg, "WS: Spectator connected (%s)", c.id)

		g.RegisterObserver(c)
		go c.writePump()

		defer func() {
			g.Unregister(c.id)
			_ = conn.Close()
			logf(cfg, "WS: Spectator disconnected (%s)", c.id)
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
