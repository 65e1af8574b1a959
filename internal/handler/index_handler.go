package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/versedb/versed/internal/pkg/response"
	"github.com/versedb/versed/internal/service"
)

type IndexHandler struct {
	index *service.IndexService
}

func NewIndexHandler(index *service.IndexService) *IndexHandler {
	return &IndexHandler{index: index}
}

// Reindex synchronously runs the vectorization pass. The scheduler covers
// routine refreshes; this endpoint exists for operator-triggered runs after a
// bulk lyrics import.
func (h *IndexHandler) Reindex(c *gin.Context) {
	report, err := h.index.Reindex(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, report)
}
