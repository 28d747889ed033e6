package auth

import (
	"net/http"

	"auction-house/internal/api/respond"
	"auction-house/internal/domain/clients"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	clients *clients.Service
	tokens  *clients.Tokens
	google  *GoogleConfig
}

func NewHandler(svc *clients.Service, tokens *clients.Tokens, google *GoogleConfig) *Handler {
	return &Handler{clients: svc, tokens: tokens, google: google}
}

type registerRequest struct {
	Name       string             `json:"name" binding:"required"`
	Email      string             `json:"email" binding:"required"`
	Password   string             `json:"password" binding:"required"`
	ClientType clients.ClientType `json:"client_type"`
	Phone      string             `json:"phone"`
	Address    string             `json:"address"`
}

// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, "name, email and password are required")
		return
	}

	client, err := h.clients.Register(c.Request.Context(), clients.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		ClientType: req.ClientType,
		Phone:      req.Phone,
		Address:    req.Address,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// POST /api/auth/token (form: username, password)
func (h *Handler) Token(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		respond.Fail(c, http.StatusBadRequest, "username and password are required")
		return
	}

	client, err := h.clients.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		respond.Error(c, err)
		return
	}
	h.issue(c, client)
}

// GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	who, ok := clients.PrincipalFrom(c.Request.Context())
	if !ok {
		respond.Fail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	client, err := h.clients.Get(c.Request.Context(), who.ClientID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) issue(c *gin.Context, client *clients.Client) {
	token, err := h.tokens.Issue(client)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}
