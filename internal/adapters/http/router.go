package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/hotel/internal/adapters"
	"github.com/dkeye/hotel/internal/config"
)

// SetupRouter wires the control endpoints and the room websocket.
func SetupRouter(cfg *config.Config, ctrl *adapters.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	g := r.Group(cfg.PathPrefix)
	g.POST("/createRoom", ctrl.CreateRoom)
	g.POST("/listRooms", ctrl.ListRooms)
	g.GET("/room/:name/:roomId", ctrl.HandleRoom)

	log.Info().Str("module", "adapters.http").Str("prefix", cfg.PathPrefix).Msg("router setup")
	return r
}
