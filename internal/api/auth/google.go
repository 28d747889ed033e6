package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"

	"auction-house/internal/api/respond"
	"auction-house/internal/domain/clients"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const stateCookie = "oauth_state"

type GoogleConfig struct {
	ClientID         string
	ClientSecret     string
	RedirectURL      string
	FrontendRedirect string
	SecureCookie     bool
}

// Enabled reports whether Google sign-in has been configured.
func (g *GoogleConfig) Enabled() bool {
	return g != nil && g.ClientID != "" && g.ClientSecret != ""
}

func (g *GoogleConfig) oauth() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		RedirectURL:  g.RedirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GET /api/auth/google
func (h *Handler) GoogleStart(c *gin.Context) {
	if !h.google.Enabled() {
		respond.Fail(c, http.StatusNotFound, "Google sign-in is not enabled")
		return
	}
	state, err := randomState()
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 300, "/", "", h.google.SecureCookie, true)
	c.Redirect(http.StatusFound, h.google.oauth().AuthCodeURL(state, oauth2.AccessTypeOnline))
}

// GET /api/auth/google/callback
func (h *Handler) GoogleCallback(c *gin.Context) {
	if !h.google.Enabled() {
		respond.Fail(c, http.StatusNotFound, "Google sign-in is not enabled")
		return
	}
	state := c.Query("state")
	code := c.Query("code")
	if code == "" || state == "" {
		respond.Fail(c, http.StatusBadRequest, "missing code/state")
		return
	}
	if cookieState, err := c.Cookie(stateCookie); err != nil || cookieState != state {
		respond.Fail(c, http.StatusBadRequest, "invalid oauth state")
		return
	}

	ctx := c.Request.Context()
	tok, err := h.google.oauth().Exchange(ctx, code)
	if err != nil {
		respond.Fail(c, http.StatusUnauthorized, "failed to exchange code")
		return
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		respond.Fail(c, http.StatusUnauthorized, "missing id_token")
		return
	}

	identity, err := h.verifyIDToken(c, rawIDToken)
	if err != nil {
		respond.Fail(c, http.StatusUnauthorized, err.Error())
		return
	}

	client, err := h.clients.FindOrCreateGoogle(ctx, *identity)
	if err != nil {
		respond.Error(c, err)
		return
	}

	if h.google.FrontendRedirect == "" {
		h.issue(c, client)
		return
	}
	token, err := h.tokens.Issue(client)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.Redirect(http.StatusFound, h.google.FrontendRedirect+"?token="+url.QueryEscape(token))
}

type googleIDClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

func (h *Handler) verifyIDToken(c *gin.Context, raw string) (*clients.GoogleIdentity, error) {
	ctx := c.Request.Context()
	provider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		return nil, errors.New("failed to init google oidc provider")
	}
	idToken, err := provider.Verifier(&oidc.Config{ClientID: h.google.ClientID}).Verify(ctx, raw)
	if err != nil {
		return nil, errors.New("invalid id_token")
	}

	var claims googleIDClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.New("failed to decode token claims")
	}
	if claims.Email == "" || claims.Sub == "" {
		return nil, errors.New("token missing required claims")
	}
	if !claims.EmailVerified {
		return nil, errors.New("google account email is not verified")
	}
	return &clients.GoogleIdentity{Sub: claims.Sub, Email: claims.Email, Name: claims.Name}, nil
}
