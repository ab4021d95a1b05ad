package hub

import (
	"encoding/json"
	"log"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/soar/padremap/internal/gamepad"
)

// SetSelector switches the active set of a controller. A zero device means
// every controller.
type SetSelector interface {
	SelectSet(device gamepad.DeviceID, set int)
}

// Client represents a connected WebSocket client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// controller this client is listening to, zero for all of them
	device atomic.Uint32
}

// NewClient creates a new Client attached to the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// Follow restricts the client to messages about one controller.
func (c *Client) Follow(device gamepad.DeviceID) {
	c.device.Store(uint32(device))
}

func (c *Client) follows(device gamepad.DeviceID) bool {
	d := gamepad.DeviceID(c.device.Load())
	return d == 0 || device == 0 || d == device
}

// WritePump sends messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	defer func() {
		c.conn.Close()
	}()

	for msg := range c.send {
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			break
		}
	}
}

// ReadPumpWithHandler reads messages from the WebSocket and handles client commands.
func (c *Client) ReadPumpWithHandler(sel SetSelector) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.handle(message, sel)
	}
}

func (c *Client) handle(message []byte, sel SetSelector) {
	var clientMsg ClientMessage
	if err := json.Unmarshal(message, &clientMsg); err != nil {
		log.Printf("[WARN] Error parsing client message: %v", err)
		return
	}

	switch clientMsg.Type {
	case "select_device":
		c.Follow(clientMsg.Device)

	case "select_set":
		// sets are numbered from 1 on the wire
		if clientMsg.Set < 1 {
			log.Printf("[WARN] Invalid set %d requested", clientMsg.Set)
			return
		}
		sel.SelectSet(clientMsg.Device, clientMsg.Set-1)
		data, _ := json.Marshal(NewSetSelectedMessage(clientMsg.Device, clientMsg.Set))
		select {
		case c.send <- data:
		default:
		}

	default:
		log.Printf("[WARN] Unknown client message %q", clientMsg.Type)
	}
}
