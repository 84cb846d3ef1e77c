package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lounge/internal/adapters/signal"
	"github.com/dkeye/Lounge/internal/app/orch"
	"github.com/dkeye/Lounge/internal/config"
	"github.com/dkeye/Lounge/internal/metrics"
	"github.com/dkeye/Lounge/internal/profile"
)

const (
	sessionName = "LoungeSessions"
	keyName     = "name"
	keyRoom     = "room"
)

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// CodeShape rejects strings that cannot be room codes.
type CodeShape interface {
	Valid(s string) bool
}

// Deps groups what the router hands to its handlers.
type Deps struct {
	Orch     *orch.Orchestrator
	Profiles *profile.Directory
	Codes    CodeShape
	Metrics  *metrics.Metrics
	Limiter  *signal.RoomRateLimiter
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	h := &handlers{
		orch:     deps.Orch,
		profiles: deps.Profiles,
		codes:    deps.Codes,
		signal: signal.NewSignalWSController(deps.Orch, deps.Limiter, signal.Options{
			SendBuffer: cfg.WS.SendBuffer,
			ReadLimit:  cfg.ReadLimit,
			PingPeriod: cfg.PingPeriod,
		}),
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": len(deps.Orch.Rooms())})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	api := r.Group("/api")
	api.POST("/login", h.login)
	api.POST("/logout", h.logout)

	authed := api.Group("", requireUser())
	authed.GET("/profile", h.getProfile)
	authed.PUT("/profile/avatar", h.setAvatar)
	authed.POST("/rooms", h.createRoom)
	authed.POST("/rooms/join", h.joinRoom)
	authed.GET("/rooms/:code", h.roomInfo)
	// Live codes are the only secret guarding a room; listing them is
	// for local debugging.
	if cfg.Mode == "debug" {
		authed.GET("/rooms", h.listRooms)
	}

	api.GET("/ws", requireUser(), func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws endpoint hit")
		h.websocket(ctx, c)
	})

	return r
}
