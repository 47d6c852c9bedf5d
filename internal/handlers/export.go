package handlers

import (
	"errors"
	"net/http"

	"github.com/Weskio/ai-task-whisperer/internal/export"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	exp *export.Exporter
}

func NewExportHandler(exp *export.Exporter) *ExportHandler {
	return &ExportHandler{exp: exp}
}

// Export godoc
// @Summary      Export the board
// @Tags         board
// @Produce      json
// @Produce      text/csv
// @Produce      application/pdf
// @Security     CookieAuth
// @Param        format  query  string  false  "json (default), csv or pdf"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	data, err := h.exp.Export(format)
	if err != nil {
		if errors.Is(err, export.ErrUnknownFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="board.`+format+`"`)
	c.Data(http.StatusOK, export.ContentType(format), data)
}
