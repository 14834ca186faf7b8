package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	ServiceName    = "toothless-dashboard"
	ServiceVersion = "3.0.0"
)

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
		"version": ServiceVersion,
	})
}

func (h *Handler) BotInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.bot.Info())
}

func (h *Handler) BotCommands(c *gin.Context) {
	catalog := h.bot.Catalog()
	c.JSON(http.StatusOK, gin.H{
		"total":      catalog.Total(),
		"categories": catalog,
	})
}

func (h *Handler) BotInvite(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"url": h.bot.InviteURL()})
}

// BotInviteQR serves the invite URL as a PNG QR code. ?size= is clamped to
// 128..1024 pixels.
func (h *Handler) BotInviteQR(c *gin.Context) {
	size, err := strconv.Atoi(c.DefaultQuery("size", "256"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid size"})
		return
	}
	size = min(max(size, 128), 1024)

	png, err := h.bot.InviteQR(size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
