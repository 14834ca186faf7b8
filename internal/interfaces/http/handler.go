package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"toothless_dashboard/internal/entities"
)

// MaxRequestBytes bounds every request body.
const MaxRequestBytes = 1 << 20

type Authenticator interface {
	AuthorizeURL(redirectURI string) (string, string, error)
	VerifyState(state string) error
	Exchange(ctx context.Context, code, redirectURI string) (*entities.ExchangeResult, error)
}

type Dashboard interface {
	GetSettings(category entities.Category, guildID string) (any, error)
	UpdateSettings(ctx context.Context, category entities.Category, guildID string, raw []byte) (any, error)
	GuildOverview(ctx context.Context, guildID string) (*entities.GuildOverview, error)
}

type Leaderboards interface {
	Economy(ctx context.Context, guildID string) ([]entities.EconomyEntry, error)
	Levels(ctx context.Context, guildID string) ([]entities.LevelEntry, error)
}

type BotMetadata interface {
	Info() entities.BotInfo
	Catalog() entities.CommandCatalog
	InviteURL() string
	InviteQR(size int) ([]byte, error)
}

type Handler struct {
	auth         Authenticator
	dashboard    Dashboard
	leaderboards Leaderboards
	bot          BotMetadata
	redirectURI  string
}

func NewHandler(auth Authenticator, dashboard Dashboard, leaderboards Leaderboards, bot BotMetadata, redirectURI string) *Handler {
	return &Handler{
		auth:         auth,
		dashboard:    dashboard,
		leaderboards: leaderboards,
		bot:          bot,
		redirectURI:  redirectURI,
	}
}

type RateLimit struct {
	RPS   float64
	Burst int
}

// SetupRoutes registers the API on r. metrics may be nil.
func SetupRoutes(r *gin.Engine, h *Handler, middleware *Middleware, limit RateLimit, metrics http.Handler) {
	r.Use(RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(MaxRequestBytes))
	r.Use(middleware.CORSMiddleware())

	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	api := r.Group("/api")
	if limit.RPS > 0 {
		api.Use(middleware.RateLimitPerIP(rate.Limit(limit.RPS), limit.Burst))
	}
	{
		api.GET("/health", h.Health)

		api.GET("/auth/discord", h.AuthorizeURL)
		api.POST("/auth/callback", h.AuthCallback)

		api.GET("/bot/info", h.BotInfo)
		api.GET("/bot/commands", h.BotCommands)
		api.GET("/bot/invite", h.BotInvite)
		api.GET("/bot/invite/qr", h.BotInviteQR)

		guild := api.Group("/guild/:id")
		guild.Use(requireGuildID())
		{
			guild.GET("", h.GetGuild)
			guild.GET("/settings/:category", h.GetSettings)
			guild.POST("/welcomer", h.UpdateSettings(entities.CategoryWelcome))
			guild.POST("/log", h.UpdateSettings(entities.CategoryLog))
			guild.POST("/tickets", h.UpdateSettings(entities.CategoryTickets))
			guild.POST("/levels", h.UpdateSettings(entities.CategoryLevels))
			guild.GET("/economy/leaderboard", h.EconomyLeaderboard)
			guild.GET("/levels/leaderboard", h.LevelsLeaderboard)
		}
	}
}

func requireGuildID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ValidGuildID(c.Param("id")) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid guild id"})
			return
		}
		c.Next()
	}
}
