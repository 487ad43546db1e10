package feed

import (
	"context"
	"time"

	"github.com/coder/websocket"
)

const (
	queueSize    = 16
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// Subscriber is one websocket connection on the feed
type Subscriber struct {
	hub   *Hub
	conn  *websocket.Conn
	queue chan []byte
}

func newSubscriber(hub *Hub, conn *websocket.Conn) *Subscriber {
	return &Subscriber{
		hub:   hub,
		conn:  conn,
		queue: make(chan []byte, queueSize),
	}
}

// serve blocks until the connection closes or ctx is done
func (s *Subscriber) serve(ctx context.Context) {
	s.hub.add(s)
	defer s.hub.remove(s)

	// The feed is one-way. CloseRead discards client frames and cancels
	// ctx once the peer goes away.
	ctx = s.conn.CloseRead(ctx)
	s.writeLoop(ctx)
}

func (s *Subscriber) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-s.queue:
			if !ok {
				return
			}
			if err := s.write(ctx, msg); err != nil {
				return
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := s.conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Subscriber) write(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return s.conn.Write(ctx, websocket.MessageText, msg)
}
