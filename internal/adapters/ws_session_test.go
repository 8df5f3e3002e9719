package adapters_test

import (
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/hotel/internal/adapters"
	"github.com/dkeye/hotel/internal/hotel"
)

type fakeWSConn struct {
	mu       sync.Mutex
	writes   [][]byte
	controls [][]byte
	closed   int
	wrote    chan struct{}
}

func newFakeWSConn() *fakeWSConn {
	return &fakeWSConn{wrote: make(chan struct{}, 16)}
}

func (f *fakeWSConn) WriteMessage(mt int, data []byte) error {
	f.mu.Lock()
	f.writes = append(f.writes, data)
	f.mu.Unlock()
	select {
	case f.wrote <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeWSConn) WriteControl(mt int, data []byte, deadline time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if mt == websocket.CloseMessage {
		f.controls = append(f.controls, data)
	}
	return nil
}

func (f *fakeWSConn) SetWriteDeadline(t time.Time) error { return nil }

func (f *fakeWSConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeWSConn) closeFrames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.controls))
	copy(out, f.controls)
	return out
}

func TestWSSessionWriteLoopDelivers(t *testing.T) {
	conn := newFakeWSConn()
	sess := adapters.NewWSSession(conn, time.Minute, time.Second)
	sess.StartWriteLoop()

	require.NoError(t, sess.Send([]byte("hello")))

	select {
	case <-conn.wrote:
	case <-time.After(2 * time.Second):
		t.Fatal("frame was never written")
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()
	require.Len(t, conn.writes, 1)
	assert.Equal(t, "hello", string(conn.writes[0]))
}

func TestWSSessionSendBackpressure(t *testing.T) {
	conn := newFakeWSConn()
	// No write loop: the buffer fills up and further sends are refused.
	sess := adapters.NewWSSession(conn, time.Minute, time.Second)

	var err error
	for i := 0; i < 10000; i++ {
		if err = sess.Send([]byte("x")); err != nil {
			break
		}
	}
	assert.ErrorIs(t, err, adapters.ErrBackpressure)
}

func TestWSSessionCloseSendsCodeOnce(t *testing.T) {
	conn := newFakeWSConn()
	sess := adapters.NewWSSession(conn, time.Minute, time.Second)
	sess.StartWriteLoop()

	require.NoError(t, sess.Close(hotel.CodeRoomDeleted))
	require.NoError(t, sess.Close(hotel.CodeNameInUse), "second close is a no-op")

	frames := conn.closeFrames()
	require.Len(t, frames, 1)
	require.GreaterOrEqual(t, len(frames[0]), 2)
	assert.Equal(t, uint16(2004), binary.BigEndian.Uint16(frames[0][:2]))
	assert.Equal(t, "Room deleted", string(frames[0][2:]))

	assert.ErrorIs(t, sess.Send([]byte("late")), adapters.ErrSessionClosed)
}
