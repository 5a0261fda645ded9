package handlers

import (
	"net/http"

	"dma-backtest/internal/api/models"
	"dma-backtest/internal/config"

	"github.com/gin-gonic/gin"
)

// InstrumentHandler serves the configured instrument registry.
type InstrumentHandler struct {
	instruments []config.Instrument
}

func NewInstrumentHandler(instruments []config.Instrument) *InstrumentHandler {
	if len(instruments) == 0 {
		instruments = config.DefaultInstruments()
	}
	return &InstrumentHandler{instruments: instruments}
}

// ListInstruments handles GET /api/v1/instruments
func (h *InstrumentHandler) ListInstruments(c *gin.Context) {
	c.JSON(http.StatusOK, models.InstrumentsResponse{Instruments: h.instruments})
}
