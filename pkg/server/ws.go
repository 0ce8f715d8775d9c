package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"tableflip.dev/notes/pkg/store"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 64
)

// client is one websocket connection and its active subscriptions.
type client struct {
	conn  *websocket.Conn
	store store.Remote
	log   zerolog.Logger
	send  chan store.Frame

	mu   sync.Mutex
	subs map[string]context.CancelFunc
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	c := &client{
		conn:  conn,
		store: s.Store,
		log:   s.Log.With().Str("remote", r.RemoteAddr).Logger(),
		send:  make(chan store.Frame, sendBuffer),
		subs:  make(map[string]context.CancelFunc),
	}
	c.log.Debug().Msg("client connected")

	ctx, cancel := context.WithCancel(r.Context())
	go c.writeLoop(ctx)
	c.readLoop(ctx)
	cancel()
	c.log.Debug().Msg("client disconnected")
}

func (c *client) readLoop(ctx context.Context) {
	defer c.unsubscribeAll()
	c.conn.SetReadLimit(1 << 20)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var f store.Frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug().Err(err).Msg("read frame")
			}
			return
		}
		c.handle(ctx, f)
	}
}

func (c *client) handle(ctx context.Context, f store.Frame) {
	var err error
	switch f.Op {
	case store.OpSubscribe:
		err = c.subscribe(ctx, f.Path)
	case store.OpUnsubscribe:
		c.unsubscribe(f.Path)
	case store.OpWrite:
		err = c.store.Write(ctx, f.Path, f.Value)
	case store.OpRemove:
		err = c.store.Remove(ctx, f.Path)
	default:
		c.log.Debug().Str("op", f.Op).Msg("unknown op")
		return
	}
	if err != nil {
		c.log.Warn().Err(err).Str("op", f.Op).Str("path", f.Path).Msg("operation failed")
		c.enqueue(ctx, store.Frame{Type: store.FrameError, Path: f.Path, Error: err.Error()})
	}
}

// subscribe (re)starts a backend subscription. Resubscribing restarts the
// stream so the caller receives the current mapping again.
func (c *client) subscribe(ctx context.Context, path string) error {
	subCtx, cancel := context.WithCancel(ctx)
	ch, err := c.store.Subscribe(subCtx, path)
	if err != nil {
		cancel()
		return err
	}

	c.mu.Lock()
	if prev, ok := c.subs[path]; ok {
		prev()
	}
	c.subs[path] = cancel
	c.mu.Unlock()

	go func() {
		for snap := range ch {
			if !c.enqueue(subCtx, store.Frame{Type: store.FrameSnapshot, Path: snap.Path, Value: snap.Value}) {
				return
			}
		}
	}()
	return nil
}

func (c *client) unsubscribe(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cancel, ok := c.subs[path]; ok {
		cancel()
		delete(c.subs, path)
	}
}

func (c *client) unsubscribeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path, cancel := range c.subs {
		cancel()
		delete(c.subs, path)
	}
}

func (c *client) enqueue(ctx context.Context, f store.Frame) bool {
	select {
	case c.send <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *client) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		case f := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(f); err != nil {
				c.log.Debug().Err(err).Msg("write frame")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
