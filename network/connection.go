// network/connection.go
package network

import (
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrSendQueueFull = errors.New("send queue full")
	ErrConnClosed    = errors.New("connection closed")
)

// Connection is the transport seam between rooms and sockets. Send must never
// block the caller: a room tick enqueues frames and moves on.
type Connection interface {
	Send(v interface{}) error
	Close() error
	RemoteAddr() net.Addr
	ReadFrame() ([]byte, error)
}

const (
	sendQueueSize = 64
	writeDeadline = 5 * time.Second
	readDeadline  = 60 * time.Second
	maxFrameBytes = 1 << 16
)

// WSConnection wraps a websocket and owns a buffered outbound queue drained
// by a dedicated write goroutine. When the queue is full the frame is dropped
// and the caller gets ErrSendQueueFull; stalling a tick on one slow client is
// never an option.
type WSConnection struct {
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
	closed    chan struct{}
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	c := &WSConnection{
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		closed: make(chan struct{}),
	}
	conn.SetReadLimit(maxFrameBytes)
	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})
	go c.writePump()
	return c
}

func (c *WSConnection) Send(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- b:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (c *WSConnection) writePump() {
	defer c.conn.Close()
	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}

// ReadFrame returns the next raw inbound frame. It blocks and is intended to
// be called from the connection's read loop only.
func (c *WSConnection) ReadFrame() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	return data, nil
}

func (c *WSConnection) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
