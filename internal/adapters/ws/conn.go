// Package ws is the websocket transport for Component E: it upgrades
// incoming HTTP connections, frames inbound/outbound messages, and wires
// each connection's session into the mediator and the Broadcaster.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 32 * 1024

	pingInterval = 20 * time.Second
	pongWait     = pingInterval * 3
)

// ErrPongTimeout indicates the peer stopped answering pings.
var ErrPongTimeout = errors.New("ws: pong deadline exceeded")

// conn serializes reads and writes to one underlying websocket.Conn, which
// gorilla only allows one concurrent reader and one concurrent writer for.
type conn struct {
	ws       *websocket.Conn
	readSem  chan struct{}
	writeSem chan struct{}
}

func newConn(ws *websocket.Conn) *conn {
	ws.SetReadLimit(maxMessageSize)
	return &conn{
		ws:       ws,
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
	}
}

func (c *conn) readMessage() (messageType int, payload []byte, err error) {
	c.readSem <- struct{}{}
	defer func() { <-c.readSem }()
	return c.ws.ReadMessage()
}

func (c *conn) writeJSON(v any) error {
	c.writeSem <- struct{}{}
	defer func() { <-c.writeSem }()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("ws: set write deadline: %w", err)
	}
	return c.ws.WriteJSON(v)
}

func (c *conn) ping() error {
	c.writeSem <- struct{}{}
	defer func() { <-c.writeSem }()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *conn) close() {
	_ = c.ws.Close()
}

// pump runs the three goroutines a live connection needs: reading inbound
// frames, writing outbound frames from the session's buffer, and a
// liveness ping/pong. Any one returning an error tears the whole connection
// down: the websocket is closed, which also unblocks the reader. Outbound
// frames are written in the tagged {type, payload} shape of encodeResponse.
func pump(ctx context.Context, c *conn, outbound <-chan any, onMessage func([]byte) error) error {
	group, groupCtx := errgroup.WithContext(ctx)
	go func() {
		<-groupCtx.Done()
		c.close()
	}()

	pong := make(chan struct{}, 1)
	c.ws.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	group.Go(func() error {
		for {
			_, payload, err := c.readMessage()
			if err != nil {
				return err
			}
			if err := onMessage(payload); err != nil {
				return err
			}
		}
	})

	group.Go(func() error {
		lastPong := time.Now()
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				if time.Since(lastPong) > pongWait {
					return ErrPongTimeout
				}
				if err := c.ping(); err != nil {
					return err
				}
			case <-pong:
				lastPong = time.Now()
			}
		}
	})

	group.Go(func() error {
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case frame, ok := <-outbound:
				if !ok {
					return nil
				}
				raw, err := encodeResponse(frame)
				if err != nil {
					return err
				}
				if err := c.writeJSON(json.RawMessage(raw)); err != nil {
					return err
				}
			}
		}
	})

	return group.Wait()
}
