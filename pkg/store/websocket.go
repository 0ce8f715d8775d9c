package store

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const writeWait = 10 * time.Second

// Hub is a Remote that talks to a `notes serve` process over one websocket.
type Hub struct {
	conn *websocket.Conn
	log  zerolog.Logger
	subs *fanout

	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

// DialHub connects to the hub websocket at url, for example
// ws://127.0.0.1:7070/v1/ws.
func DialHub(ctx context.Context, url, token string, log zerolog.Logger) (*Hub, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("store: dial hub %s: %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("store: dial hub %s: %w", url, err)
	}
	h := &Hub{
		conn: conn,
		log:  log.With().Str("backend", BackendRemote).Str("url", url).Logger(),
		subs: newFanout(),
		done: make(chan struct{}),
	}
	go h.readLoop()
	return h, nil
}

func (h *Hub) readLoop() {
	defer h.shutdown()
	for {
		var f Frame
		if err := h.conn.ReadJSON(&f); err != nil {
			select {
			case <-h.done:
			default:
				h.log.Warn().Err(err).Msg("hub connection lost")
			}
			return
		}
		switch f.Type {
		case FrameSnapshot:
			h.subs.publish(Snapshot{Path: f.Path, Value: f.Value})
		case FrameError:
			h.log.Warn().Str("path", f.Path).Str("error", f.Error).Msg("hub rejected operation")
		default:
			h.log.Debug().Str("type", f.Type).Msg("ignoring frame")
		}
	}
}

func (h *Hub) send(f Frame) error {
	select {
	case <-h.done:
		return ErrClosed
	default:
	}
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	_ = h.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := h.conn.WriteJSON(f); err != nil {
		return fmt.Errorf("store: send %s %s: %w", f.Op, f.Path, err)
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context, path string) (<-chan Snapshot, error) {
	if err := ValidateParent(path); err != nil {
		return nil, err
	}
	s, _ := h.subs.add(path)
	// Every subscribe is answered with the current mapping, which also gives
	// this subscriber its first delivery.
	if err := h.send(Frame{Op: OpSubscribe, Path: path}); err != nil {
		h.subs.remove(path, s)
		return nil, err
	}
	go func() {
		select {
		case <-ctx.Done():
		case <-h.done:
			return
		}
		if last := h.subs.remove(path, s); last {
			if err := h.send(Frame{Op: OpUnsubscribe, Path: path}); err != nil {
				h.log.Debug().Err(err).Str("path", path).Msg("unsubscribe")
			}
		}
	}()
	return s.ch, nil
}

func (h *Hub) Write(_ context.Context, path string, value any) error {
	if _, _, err := SplitChild(path); err != nil {
		return err
	}
	return h.send(Frame{Op: OpWrite, Path: path, Value: value})
}

func (h *Hub) Remove(_ context.Context, path string) error {
	if _, _, err := SplitChild(path); err != nil {
		return err
	}
	return h.send(Frame{Op: OpRemove, Path: path})
}

func (h *Hub) GenerateID(string) string {
	return newID()
}

func (h *Hub) Close() error {
	h.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = h.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	h.writeMu.Unlock()
	h.shutdown()
	return nil
}

func (h *Hub) shutdown() {
	h.once.Do(func() {
		close(h.done)
		_ = h.conn.Close()
		h.subs.closeAll()
	})
}
