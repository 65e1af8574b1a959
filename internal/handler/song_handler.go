package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/versedb/versed/internal/pkg/errcode"
	"github.com/versedb/versed/internal/pkg/response"
	"github.com/versedb/versed/internal/repo"
	"github.com/versedb/versed/internal/service"
)

type SongHandler struct {
	catalog *service.CatalogService
}

func NewSongHandler(catalog *service.CatalogService) *SongHandler {
	return &SongHandler{catalog: catalog}
}

func (h *SongHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	opts := repo.ListOptions{
		Search: c.Query("search"),
		SortBy: c.DefaultQuery("sort", "views"),
		Desc:   c.DefaultQuery("order", "desc") == "desc",
		Limit:  limit,
		Offset: offset,
	}
	songs, err := h.catalog.List(c.Request.Context(), opts)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": songs})
}

func (h *SongHandler) Get(c *gin.Context) {
	songID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid song id")
		return
	}
	song, err := h.catalog.Get(c.Request.Context(), songID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, song)
}

func (h *SongHandler) Stats(c *gin.Context) {
	stats, err := h.catalog.Stats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, stats)
}
