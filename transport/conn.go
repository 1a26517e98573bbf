// Package transport maintains the single duplex websocket connection to the
// orchestrator, multiplexing binary PCM frames and JSON text envelopes.
package transport

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/room4-2/converselink/messages"
)

const (
	writeBufferSize  = 256
	writeTimeout     = 10 * time.Second
	handshakeTimeout = 10 * time.Second
	readLimit        = 512 * 1024 // 512KB max message
)

type outbound struct {
	messageType int
	data        []byte
}

// Conn is the long-lived connection to the orchestrator. It is opened once
// per session and never transparently reconnected; after a socket error the
// connection stays closed and the caller decides what to do.
type Conn struct {
	ws *websocket.Conn

	// Callbacks for inbound traffic. Set before calling Start; they fire on
	// the read-loop goroutine.
	OnEnvelope func(env *messages.Envelope)
	OnAudio    func(frame []byte)
	OnClose    func(err error)

	writeChan chan outbound

	mu        sync.RWMutex
	closed    bool
	closeChan chan struct{}
	closeOnce sync.Once
}

// Dial opens the websocket connection. The returned Conn does not process
// traffic until Start is called.
func Dial(ctx context.Context, rawURL string) (*Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout:  handshakeTimeout,
		ReadBufferSize:    64 * 1024, // 64KB for audio chunks
		WriteBufferSize:   64 * 1024,
		EnableCompression: true,
	}

	ws, resp, err := dialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to connect to orchestrator (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to connect to orchestrator: %w", err)
	}

	ws.SetReadLimit(readLimit)

	return &Conn{
		ws:        ws,
		writeChan: make(chan outbound, writeBufferSize),
		closeChan: make(chan struct{}),
	}, nil
}

// Start launches the read loop and write pump.
func (c *Conn) Start() {
	go c.writePump()
	go c.readLoop()
}

// SendAudio queues a raw PCM frame as a binary message.
func (c *Conn) SendAudio(frame []byte) error {
	return c.queue(websocket.BinaryMessage, frame)
}

// SendEnvelope serializes v and queues it as a text message.
func (c *Conn) SendEnvelope(v any) error {
	data, err := messages.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}
	return c.queue(websocket.TextMessage, data)
}

// queue adds a message to the write queue (non-blocking)
func (c *Conn) queue(messageType int, data []byte) error {
	if c.Closed() {
		return ErrClosed
	}
	select {
	case c.writeChan <- outbound{messageType: messageType, data: data}:
		return nil
	default:
		// Queue full, drop message (shouldn't happen with proper sizing)
		log.Printf("⚠️ Transport write queue full, dropping message (%d bytes)", len(data))
		return nil
	}
}

// Closed reports whether the connection is no longer usable.
func (c *Conn) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Close terminates the connection. Safe to call multiple times.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.closeChan)
		c.ws.Close()
	})
	return nil
}

// writePump handles all outgoing messages in a single goroutine
func (c *Conn) writePump() {
	defer func() {
		c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
		c.ws.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
	}()

	for {
		select {
		case <-c.closeChan:
			return
		case msg := <-c.writeChan:
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(msg.messageType, msg.data); err != nil {
				c.Close()
				return
			}

			// Drain any burst behind the first message before selecting again.
			n := len(c.writeChan)
			for i := 0; i < n; i++ {
				select {
				case msg := <-c.writeChan:
					if err := c.ws.WriteMessage(msg.messageType, msg.data); err != nil {
						c.Close()
						return
					}
				default:
				}
			}
		}
	}
}

// readLoop classifies inbound frames and dispatches them. Binary frames are
// raw agent PCM; text frames are JSON envelopes. A malformed envelope is
// logged and skipped, never fatal.
func (c *Conn) readLoop() {
	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			wasClosed := c.Closed()
			c.Close()
			if !wasClosed {
				log.Printf("🔌 Orchestrator connection lost: %v", err)
				if c.OnClose != nil {
					c.OnClose(err)
				}
			}
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			if c.OnAudio != nil {
				c.OnAudio(data)
			}
		case websocket.TextMessage:
			env, err := messages.Decode(data)
			if err != nil {
				log.Printf("⚠️ Invalid envelope from orchestrator, skipping: %v", err)
				continue
			}
			if c.OnEnvelope != nil {
				c.OnEnvelope(env)
			}
		}
	}
}
