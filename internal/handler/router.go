package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/versedb/versed/internal/middleware"
)

type RouterDeps struct {
	Chat           *ChatHandler
	Songs          *SongHandler
	Index          *IndexHandler
	ChatRateWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/songs", deps.Songs.List)
	api.GET("/songs/:id", deps.Songs.Get)
	api.GET("/stats", deps.Songs.Stats)

	api.GET("/chat/suggestions", deps.Chat.Suggestions)
	api.POST("/chat", middleware.RateLimit(deps.ChatRateWindow), deps.Chat.Chat)

	api.POST("/admin/reindex", deps.Index.Reindex)
}
