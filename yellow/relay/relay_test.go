package relay

import (
	"context"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-yellow/yellow/keypad"
)

func dial(t *testing.T, srv *httptest.Server) net.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + Path
	conn, _, _, err := ws.Dial(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestKeyMessage(t *testing.T) {
	tests := []struct {
		msg  KeyMessage
		want keypad.Event
	}{
		{KeyMessage{Key: "a"}, keypad.Press(keypad.A)},
		{KeyMessage{Key: "Start", Up: true}, keypad.Release(keypad.Start)},
		{KeyMessage{Key: "down", Shift: true}, keypad.Event{Key: keypad.Down, Shift: true}},
	}
	for _, tt := range tests {
		t.Run(tt.msg.Key, func(t *testing.T) {
			got, err := tt.msg.Event()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := KeyMessage{Key: "turbo"}.Event()
	assert.Error(t, err)
}

func TestRemoteKeys(t *testing.T) {
	keys := make(chan keypad.Event, 4)
	s := NewServer(keys, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, wsutil.WriteClientText(conn, []byte(`{"key":"up"}`)))
	require.NoError(t, wsutil.WriteClientText(conn, []byte(`not json`)))
	require.NoError(t, wsutil.WriteClientText(conn, []byte(`{"key":"nope"}`)))
	require.NoError(t, wsutil.WriteClientText(conn, []byte(`{"key":"b","up":true}`)))

	for _, want := range []keypad.Event{keypad.Press(keypad.Up), keypad.Release(keypad.B)} {
		select {
		case got := <-keys:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %v", want)
		}
	}
}

func TestBroadcast(t *testing.T) {
	s := NewServer(nil, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return s.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	frames := make(chan []byte, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Pump(ctx, frames)
	frames <- []byte{1, 2, 3}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	data, op, err := wsutil.ReadServerData(conn)
	require.NoError(t, err)
	assert.Equal(t, ws.OpBinary, op)
	assert.Equal(t, []byte{1, 2, 3}, data)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return s.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestOfferKeepsNewest(t *testing.T) {
	k := &socket{q: make(chan []byte, 1)}
	k.offer([]byte{1})
	k.offer([]byte{2})

	assert.Equal(t, []byte{2}, <-k.q)
	assert.Empty(t, k.q)
}
