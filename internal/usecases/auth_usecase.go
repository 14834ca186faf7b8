package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"toothless_dashboard/internal/entities"
	"toothless_dashboard/internal/interfaces"
)

// AdministratorBit is the Discord permission bit that makes a guild
// manageable from the dashboard.
const AdministratorBit = uint64(discordgo.PermissionAdministrator)

const (
	DefaultDiscordAPI   = "https://discord.com/api"
	DefaultOAuthTimeout = 10 * time.Second

	stateTTL        = 10 * time.Minute
	stateIssuer     = "toothless-dashboard"
	maxResponseSize = 1 << 20
)

var (
	ErrMissingCode              = errors.New("authorization code is required")
	ErrCredentialsNotConfigured = errors.New("discord client credentials are not configured")
	ErrCodeAlreadyUsed          = errors.New("authorization code was already submitted")
	ErrInvalidState             = errors.New("invalid oauth state")
	ErrUpstream                 = errors.New("discord request failed")
)

// UpstreamError is any failure talking to Discord during the exchange.
// Status is zero when no HTTP response was received.
type UpstreamError struct {
	Stage       string
	Status      int
	Description string
	Err         error
}

func (e *UpstreamError) Error() string {
	msg := "discord " + e.Stage
	if e.Status != 0 {
		msg += fmt.Sprintf(" returned %d", e.Status)
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// Rejected reports whether Discord refused the authorization code itself, as
// opposed to being unreachable or misbehaving.
func (e *UpstreamError) Rejected() bool {
	return e.Stage == StageToken && e.Status >= 400 && e.Status < 500
}

const (
	StageToken   = "token exchange"
	StageProfile = "profile fetch"
	StageGuilds  = "guild fetch"
)

type AuthConfig struct {
	ClientID     string
	ClientSecret string
	APIBaseURL   string
	Timeout      time.Duration
	StateSecret  string
	HTTPClient   *http.Client
}

// CodeGuard remembers submitted authorization codes.
type CodeGuard interface {
	Claim(code string) bool
}

type ExchangeObserver interface {
	ObserveExchange(outcome string)
}

type AuthUsecase struct {
	cfg       AuthConfig
	client    *http.Client
	directory interfaces.GuildDirectory
	guard     CodeGuard
	observer  ExchangeObserver
}

// NewAuthUsecase builds the exchange service. directory, guard and observer
// may be nil.
func NewAuthUsecase(cfg AuthConfig, directory interfaces.GuildDirectory, guard CodeGuard, observer ExchangeObserver) *AuthUsecase {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultDiscordAPI
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultOAuthTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &AuthUsecase{
		cfg:       cfg,
		client:    client,
		directory: directory,
		guard:     guard,
		observer:  observer,
	}
}

func (uc *AuthUsecase) oauthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     uc.cfg.ClientID,
		ClientSecret: uc.cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{"identify", "guilds"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   uc.cfg.APIBaseURL + "/oauth2/authorize",
			TokenURL:  uc.cfg.APIBaseURL + "/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthorizeURL returns the Discord consent URL and the state embedded in it.
// The state is empty when no state secret is configured.
func (uc *AuthUsecase) AuthorizeURL(redirectURI string) (string, string, error) {
	if uc.cfg.ClientID == "" {
		return "", "", ErrCredentialsNotConfigured
	}
	state := ""
	if uc.cfg.StateSecret != "" {
		now := time.Now()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    stateIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		})
		signed, err := token.SignedString([]byte(uc.cfg.StateSecret))
		if err != nil {
			return "", "", fmt.Errorf("failed to sign state: %w", err)
		}
		state = signed
	}
	return uc.oauthConfig(redirectURI).AuthCodeURL(state), state, nil
}

// VerifyState checks a state returned by the browser. With a secret
// configured the state is mandatory; without one nothing is checked.
func (uc *AuthUsecase) VerifyState(state string) error {
	if uc.cfg.StateSecret == "" {
		return nil
	}
	if state == "" {
		return fmt.Errorf("%w: state is required", ErrInvalidState)
	}
	_, err := jwt.ParseWithClaims(state, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(uc.cfg.StateSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(stateIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return nil
}

// Exchange trades an authorization code for the caller's identity and the
// guilds they administer.
func (uc *AuthUsecase) Exchange(ctx context.Context, code, redirectURI string) (*entities.ExchangeResult, error) {
	result, err := uc.exchange(ctx, code, redirectURI)
	uc.observe(err)
	return result, err
}

func (uc *AuthUsecase) exchange(ctx context.Context, code, redirectURI string) (*entities.ExchangeResult, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	if uc.cfg.ClientID == "" || uc.cfg.ClientSecret == "" {
		return nil, ErrCredentialsNotConfigured
	}
	if uc.guard != nil && !uc.guard.Claim(code) {
		return nil, ErrCodeAlreadyUsed
	}

	ctx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()

	token, err := uc.oauthConfig(redirectURI).Exchange(context.WithValue(ctx, oauth2.HTTPClient, uc.client), code)
	if err != nil {
		return nil, tokenError(err)
	}

	var (
		user   entities.CallerProfile
		guilds []entities.PartialGuild
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return uc.getJSON(gctx, StageProfile, "/users/@me", token.AccessToken, &user)
	})
	g.Go(func() error {
		return uc.getJSON(gctx, StageGuilds, "/users/@me/guilds", token.AccessToken, &guilds)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	admin := FilterAdminGuilds(guilds)
	uc.markBotMembership(ctx, admin)

	log.WithFields(log.Fields{
		"user_id":      user.ID,
		"guilds":       len(guilds),
		"admin_guilds": len(admin),
	}).Info("OAuth exchange completed")

	return &entities.ExchangeResult{
		User:        user,
		Guilds:      admin,
		AccessToken: token.AccessToken,
	}, nil
}

func tokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		desc := retrieveErr.ErrorDescription
		if desc == "" {
			desc = "Token exchange failed"
		}
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return &UpstreamError{Stage: StageToken, Status: status, Description: desc}
	}
	return &UpstreamError{Stage: StageToken, Err: err}
}

func (uc *AuthUsecase) getJSON(ctx context.Context, stage, path, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uc.cfg.APIBaseURL+path, nil)
	if err != nil {
		return &UpstreamError{Stage: stage, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := uc.client.Do(req)
	if err != nil {
		return &UpstreamError{Stage: stage, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &UpstreamError{Stage: stage, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Stage: stage, Status: resp.StatusCode, Description: gjson.GetBytes(body, "message").String()}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{Stage: stage, Status: resp.StatusCode, Description: "malformed response", Err: err}
	}
	return nil
}

// FilterAdminGuilds keeps the guilds whose permissions include the
// administrator bit. hasBot starts out false.
func FilterAdminGuilds(guilds []entities.PartialGuild) []entities.AdminGuild {
	admin := []entities.AdminGuild{}
	for _, g := range guilds {
		if uint64(g.Permissions)&AdministratorBit != AdministratorBit {
			continue
		}
		admin = append(admin, entities.AdminGuild{ID: g.ID, Name: g.Name, Icon: g.Icon})
	}
	return admin
}

func (uc *AuthUsecase) markBotMembership(ctx context.Context, guilds []entities.AdminGuild) {
	if uc.directory == nil {
		for i := range guilds {
			guilds[i].HasBot = true
		}
		return
	}
	ids := make([]string, len(guilds))
	for i, g := range guilds {
		ids[i] = g.ID
	}
	member, err := uc.directory.HasBot(ctx, ids)
	if err != nil {
		log.WithError(err).Warn("Could not resolve bot membership, assuming present")
		for i := range guilds {
			guilds[i].HasBot = true
		}
		return
	}
	for i := range guilds {
		guilds[i].HasBot = member[guilds[i].ID]
	}
}

func (uc *AuthUsecase) observe(err error) {
	if uc.observer == nil {
		return
	}
	var upstream *UpstreamError
	switch {
	case err == nil:
		uc.observer.ObserveExchange("success")
	case errors.As(err, &upstream) && upstream.Rejected():
		uc.observer.ObserveExchange("rejected")
	case errors.Is(err, ErrUpstream):
		uc.observer.ObserveExchange("upstream_error")
	default:
		uc.observer.ObserveExchange("invalid_request")
	}
}
