package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"toothless_dashboard/internal/entities"
	"toothless_dashboard/internal/repository"
)

func (h *Handler) GetGuild(c *gin.Context) {
	overview, err := h.dashboard.GuildOverview(c.Request.Context(), c.Param("id"))
	if err != nil {
		log.WithError(err).WithField("guild_id", c.Param("id")).Error("Failed to load guild overview")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load guild"})
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *Handler) GetSettings(c *gin.Context) {
	category, ok := ParseCategory(c.Param("category"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown settings category"})
		return
	}
	doc, err := h.dashboard.GetSettings(category, c.Param("id"))
	if err != nil {
		respondSettingsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doc})
}

func (h *Handler) UpdateSettings(category entities.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.GetRawData()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		doc, err := h.dashboard.UpdateSettings(c.Request.Context(), category, c.Param("id"), raw)
		if err != nil {
			respondSettingsError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": doc})
	}
}

func respondSettingsError(c *gin.Context, err error) {
	var ve *repository.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, repository.ErrUnknownCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown settings category"})
	default:
		log.WithError(err).WithField("guild_id", c.Param("id")).Error("Settings operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
	}
}

func (h *Handler) EconomyLeaderboard(c *gin.Context) {
	entries, err := h.leaderboards.Economy(c.Request.Context(), c.Param("id"))
	if err != nil {
		log.WithError(err).WithField("guild_id", c.Param("id")).Error("Failed to build economy leaderboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

func (h *Handler) LevelsLeaderboard(c *gin.Context) {
	entries, err := h.leaderboards.Levels(c.Request.Context(), c.Param("id"))
	if err != nil {
		log.WithError(err).WithField("guild_id", c.Param("id")).Error("Failed to build levels leaderboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
