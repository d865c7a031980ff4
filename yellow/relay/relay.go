// Package relay streams frames to websocket clients and accepts remote key
// input from them.
//
// Frames are sent as binary messages of raw RGB bytes, 160x144 pixels, rows
// top to bottom. Clients send keys as JSON text messages:
//
//	{"key": "a", "shift": false, "up": false}
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/valerio/go-yellow/yellow/keypad"
)

// Path is where the websocket endpoint is mounted.
const Path = "/ws"

// KeyMessage is a remote key event.
type KeyMessage struct {
	Key   string `json:"key"`
	Shift bool   `json:"shift"`
	Up    bool   `json:"up"`
}

func (m KeyMessage) Event() (keypad.Event, error) {
	k, err := keypad.ParseKey(m.Key)
	if err != nil {
		return keypad.Event{}, err
	}
	return keypad.Event{Key: k, Shift: m.Shift, Released: m.Up}, nil
}

// Server fans frames out to every connected client and forwards their keys.
type Server struct {
	keys   chan<- keypad.Event
	logger *slog.Logger
	mux    *http.ServeMux

	socketsRw sync.RWMutex
	sockets   []*socket
}

type socket struct {
	srv  *Server
	conn net.Conn
	// newest frame waiting to be written
	q chan []byte
}

// NewServer creates a relay that sends remote keys to keys. A nil keys
// channel makes the relay view-only.
func NewServer(keys chan<- keypad.Event, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		keys:   keys,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc(Path, s.upgrade)
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.closeAll()
	}()

	s.logger.Info("Relay listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("relay: %w", err)
	}
	return nil
}

// Clients returns the number of connected sockets.
func (s *Server) Clients() int {
	s.socketsRw.RLock()
	defer s.socketsRw.RUnlock()
	return len(s.sockets)
}

// Broadcast queues frame for every client. A client that has not consumed
// its previous frame gets this one instead. The caller must not modify frame.
func (s *Server) Broadcast(frame []byte) {
	s.socketsRw.RLock()
	defer s.socketsRw.RUnlock()
	for _, k := range s.sockets {
		k.offer(frame)
	}
}

// Pump broadcasts every frame received on frames until it is closed or ctx is done.
func (s *Server) Pump(ctx context.Context, frames <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			s.Broadcast(f)
		}
	}
}

func (s *Server) upgrade(rw http.ResponseWriter, req *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(req, rw)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", req.RemoteAddr, "err", err)
		return
	}

	k := &socket{srv: s, conn: conn, q: make(chan []byte, 1)}
	s.socketsRw.Lock()
	s.sockets = append(s.sockets, k)
	s.socketsRw.Unlock()
	s.logger.Info("Relay client connected", "remote", req.RemoteAddr)

	go k.readHandler()
	go k.writeHandler()
}

func (s *Server) removeSocket(k *socket) {
	s.socketsRw.Lock()
	defer s.socketsRw.Unlock()
	for i, sk := range s.sockets {
		if sk == k {
			s.sockets = append(s.sockets[:i], s.sockets[i+1:]...)
			close(k.q)
			return
		}
	}
}

func (s *Server) closeAll() {
	s.socketsRw.RLock()
	defer s.socketsRw.RUnlock()
	for _, k := range s.sockets {
		_ = k.conn.Close()
	}
}

func (k *socket) offer(frame []byte) {
	select {
	case k.q <- frame:
		return
	default:
	}
	select {
	case <-k.q:
	default:
	}
	select {
	case k.q <- frame:
	default:
	}
}

// readHandler owns the lifetime of the socket.
func (k *socket) readHandler() {
	defer func() {
		_ = k.conn.Close()
		k.srv.removeSocket(k)
	}()

	control := wsutil.ControlFrameHandler(k.conn, ws.StateServerSide)
	r := &wsutil.Reader{
		Source:         k.conn,
		State:          ws.StateServerSide,
		CheckUTF8:      true,
		OnIntermediate: control,
	}

	for {
		hdr, err := r.NextFrame()
		if err != nil {
			k.srv.logger.Debug("relay read ended", "err", err)
			return
		}
		if hdr.OpCode.IsControl() {
			if err := control(hdr, r); err != nil {
				return
			}
			continue
		}
		if hdr.OpCode != ws.OpText {
			if err := r.Discard(); err != nil {
				return
			}
			continue
		}

		data, err := io.ReadAll(r)
		if err != nil {
			return
		}
		var msg KeyMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			k.srv.logger.Warn("bad key message", "err", err)
			continue
		}
		e, err := msg.Event()
		if err != nil {
			k.srv.logger.Warn("bad key message", "err", err)
			continue
		}
		if k.srv.keys != nil {
			k.srv.keys <- e
		}
	}
}

func (k *socket) writeHandler() {
	for frame := range k.q {
		if err := wsutil.WriteServerMessage(k.conn, ws.OpBinary, frame); err != nil {
			k.srv.logger.Warn("relay write failed", "err", err)
			_ = k.conn.Close()
			return
		}
	}
}
