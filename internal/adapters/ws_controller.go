package adapters

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/hotel/internal/config"
	"github.com/dkeye/hotel/internal/hotel"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

var closeNormal = hotel.ClosureCode{Code: websocket.CloseNormalClosure, Reason: ""}

// Controller terminates websocket connections and routes them into the
// lobby.
type Controller struct {
	lobby  *hotel.Lobby
	logic  hotel.RoomLogic
	decode hotel.MessageDecoder
	cfg    *config.Config
}

func NewController(lobby *hotel.Lobby, logic hotel.RoomLogic, decode hotel.MessageDecoder, cfg *config.Config) *Controller {
	return &Controller{lobby: lobby, logic: logic, decode: decode, cfg: cfg}
}

// CreateRoom handles POST /createRoom.
func (ct *Controller) CreateRoom(c *gin.Context) {
	roomID := ct.lobby.CreateRoom()
	c.JSON(http.StatusOK, gin.H{"roomId": roomID})
}

// ListRooms handles POST /listRooms.
func (ct *Controller) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, ct.lobby.ListRooms())
}

// HandleRoom upgrades GET /room/:name/:roomId and runs the
// connection's receive loop. Every exit path removes the user from the
// room.
func (ct *Controller) HandleRoom(c *gin.Context) {
	name := c.Param("name")
	roomID := c.Param("roomId")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("upgrade failed")
		return
	}
	conn.SetReadLimit(ct.cfg.ReadLimit)

	sess := NewWSSession(conn, ct.cfg.PingPeriod, ct.cfg.WriteTimeout)
	sess.StartWriteLoop()

	connectionID := uuid.NewString()
	logger := log.With().
		Str("module", "adapters.ws").
		Str("conn", connectionID).
		Str("name", name).
		Str("room", roomID).
		Logger()
	logger.Info().Msg("incoming connection")

	if name == "" {
		_ = sess.Close(hotel.CodeInvalidName)
		return
	}

	user := hotel.User{ConnectionID: connectionID, Name: name, Session: sess}
	room, err := ct.lobby.AddUserToRoom(user, roomID)
	if err != nil {
		var disc *hotel.DisconnectError
		if errors.As(err, &disc) {
			_ = sess.Close(disc.Closure)
		} else {
			_ = sess.Close(hotel.ClosureCode{Code: websocket.ClosePolicyViolation, Reason: "unexpected close"})
		}
		logger.Info().Err(err).Msg("join rejected")
		return
	}
	logger.Info().Msg("user joined")

	defer func() {
		ct.lobby.RemoveUserFromRoom(connectionID, roomID)
		_ = sess.Close(closeNormal)
		logger.Info().Msg("user left")
	}()

	readWait := ct.cfg.PingPeriod + ct.cfg.WriteTimeout
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		msg, err := ct.decode(data)
		if err != nil {
			logger.Warn().Err(err).Msg("could not parse message")
			ct.sendError(sess, "Could not parse message")
			continue
		}
		if err := room.HandleMessage(ct.logic, name, msg); err != nil {
			logger.Info().Err(err).Msg("message rejected")
			ct.sendError(sess, "Error: "+err.Error())
			continue
		}
		logger.Debug().Msg("message processed")
	}
}

func (ct *Controller) sendError(sess *WSSession, message string) {
	data, err := json.Marshal(hotel.ErrorMessage{Message: message})
	if err != nil {
		return
	}
	_ = sess.Send(data)
}
