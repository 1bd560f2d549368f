// Package httpapi exposes the service over HTTP for the presentation layer.
package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hailam/chessclub/internal/service"
)

// NewRouter builds the HTTP router.
func NewRouter(svc *service.Service, logger *zap.Logger, allowedOrigins []string) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	h := &Handler{svc: svc, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", h.Health)

	router.POST("/login", h.Login)
	router.GET("/lobby", h.Lobby)

	users := router.Group("/users/:name")
	users.GET("", h.Profile)
	users.POST("/friends", h.AddFriend)
	users.GET("/history", h.History)
	users.GET("/history/:id/pgn", h.ExportPGN)

	games := router.Group("/games")
	games.POST("", h.StartGame)
	games.GET("/:id", h.Snapshot)
	games.DELETE("/:id", h.CloseGame)
	games.POST("/:id/select", h.Select)
	games.POST("/:id/move", h.Move)
	games.POST("/:id/resign", h.Resign)
	games.POST("/:id/draw", h.OfferDraw)
	games.POST("/:id/chat", h.SendChat)
	games.GET("/:id/chat", h.Chat)
	games.GET("/:id/analysis", h.Analysis)

	return router
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= 500 {
			logger.Error("request failed", fields...)
			return
		}
		logger.Debug("request", fields...)
	}
}
