package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"toothless_dashboard/internal/usecases"
)

type callbackRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
	State       string `json:"state"`
}

func (h *Handler) AuthorizeURL(c *gin.Context) {
	url, state, err := h.auth.AuthorizeURL(h.redirectURI)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	resp := gin.H{"url": url}
	if state != "" {
		resp["state"] = state
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) AuthCallback(c *gin.Context) {
	var req callbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := h.auth.VerifyState(req.State); err != nil {
		respondAuthError(c, err)
		return
	}

	redirectURI := h.redirectURI
	if req.RedirectURI != "" {
		redirectURI = req.RedirectURI
	}
	result, err := h.auth.Exchange(c.Request.Context(), req.Code, redirectURI)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func respondAuthError(c *gin.Context, err error) {
	var upstream *usecases.UpstreamError
	switch {
	case errors.Is(err, usecases.ErrMissingCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
	case errors.Is(err, usecases.ErrCodeAlreadyUsed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization code already used"})
	case errors.Is(err, usecases.ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state"})
	case errors.Is(err, usecases.ErrCredentialsNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Discord credentials not configured"})
	case errors.As(err, &upstream) && upstream.Rejected():
		c.JSON(http.StatusBadRequest, gin.H{"error": upstream.Description})
	case errors.As(err, &upstream):
		msg := "Discord request failed"
		if upstream.Stage == usecases.StageToken && upstream.Description != "" {
			msg = upstream.Description
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": msg, "stage": upstream.Stage})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
	}
}
