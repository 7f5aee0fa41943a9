package server

import (
	"net/http"
	"time"

	"boardsync/internal/auth"
	"boardsync/internal/config"
	"boardsync/internal/metrics"
	"boardsync/internal/mw"
	"boardsync/internal/presence"
	"boardsync/internal/service"
	"boardsync/internal/store"
	"boardsync/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// SetupRouter wires middleware, the REST backstop and the websocket endpoint.
func SetupRouter(cfg config.Config, gdb *gorm.DB, hub *ws.Hub, router *ws.Router, registry *presence.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())
	r.Use(mw.CORS(cfg.Env))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	boards := store.NewBoardStore(gdb)
	messages := store.NewMessageStore(gdb)
	userSvc := service.NewUserService(gdb, cfg)
	boardSvc := service.NewBoardService(boards, registry)
	msgSvc := service.NewMessageService(messages, boardSvc)
	h := NewHandler(userSvc, boardSvc, msgSvc)

	api := r.Group("/api/v1")
	api.Use(mw.RateLimit(rate.Every(time.Second/20), 40))

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/refresh", h.RefreshToken)

	authed := api.Group("")
	authed.Use(auth.Middleware(cfg, gdb))
	authed.POST("/boards", h.CreateBoard)
	authed.GET("/boards", h.ListBoards)
	authed.GET("/boards/:id", h.GetBoard)
	authed.GET("/boards/:id/elements", h.ListElements)
	authed.GET("/boards/:id/messages", h.ListMessages)
	authed.POST("/boards/:id/collaborators", h.AddCollaborator)

	// The websocket endpoint authenticates in the handshake itself and sits
	// outside the per-request rate limiter.
	verifier := auth.NewVerifier(gdb, cfg.JWTSecret)
	r.GET("/ws", ws.Serve(hub, router, verifier))

	return r
}
