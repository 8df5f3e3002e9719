package adapters

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dkeye/hotel/internal/hotel"
)

var (
	ErrBackpressure  = errors.New("backpressure")
	ErrSessionClosed = errors.New("session closed")
)

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	WriteMessage(mt int, data []byte) error
	WriteControl(mt int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// WSSession adapts one websocket connection to the hotel.Session
// capability. Writes go through a buffered channel drained by a single
// write loop, so a slow peer cannot stall the room lock.
type WSSession struct {
	conn WSConn
	send chan []byte
	done chan struct{}
	once sync.Once

	pingPeriod   time.Duration
	writeTimeout time.Duration
}

func NewWSSession(conn WSConn, pingPeriod, writeTimeout time.Duration) *WSSession {
	return &WSSession{
		conn:         conn,
		send:         make(chan []byte, 256),
		done:         make(chan struct{}),
		pingPeriod:   pingPeriod,
		writeTimeout: writeTimeout,
	}
}

// Send enqueues a frame without blocking. A full buffer means the peer
// is not keeping up; the frame is dropped and the caller told.
func (s *WSSession) Send(data []byte) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.send <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

// Close sends a close frame carrying the code, then tears the
// connection down. Safe to call more than once.
func (s *WSSession) Close(code hotel.ClosureCode) error {
	var err error
	s.once.Do(func() {
		msg := websocket.FormatCloseMessage(code.Code, code.Reason)
		err = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.writeTimeout))
		close(s.done)
		_ = s.conn.Close()
	})
	return err
}

// StartWriteLoop pumps queued frames to the peer and keeps the
// connection alive with pings.
func (s *WSSession) StartWriteLoop() {
	go func() {
		ticker := time.NewTicker(s.pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case data := <-s.send:
				_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
				if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
					return
				}
			case <-ticker.C:
				if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeTimeout)); err != nil {
					return
				}
			}
		}
	}()
}
