package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"auction-house/internal/domain/clients"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func TestSanitizeCleansNestedJSON(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	var got map[string]interface{}
	r.POST("/", func(c *gin.Context) {
		require.NoError(t, c.ShouldBindJSON(&got))
		c.Status(http.StatusNoContent)
	})

	body := `{"title":"<script>alert(1)</script>Tea & Cakes","estimate_low":1500.5,"tags":["<b>oil</b>"],"seller":{"name":"<i>Ann</i>"}}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "Tea & Cakes", got["title"])
	assert.Equal(t, 1500.5, got["estimate_low"])
	assert.Equal(t, []interface{}{"oil"}, got["tags"])
	assert.Equal(t, map[string]interface{}{"name": "Ann"}, got["seller"])
}

func TestSanitizeKeepsEncodedMarkupEncoded(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	var got map[string]interface{}
	r.POST("/", func(c *gin.Context) {
		require.NoError(t, c.ShouldBindJSON(&got))
		c.Status(http.StatusNoContent)
	})

	body := `{"title":"&lt;script&gt;alert(1)&lt;/script&gt;","artist":"O'Keeffe \"Jr\"","note":"&amp;lt;b&amp;gt;"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt;", got["title"])
	assert.Equal(t, `O'Keeffe "Jr"`, got["artist"])
	for _, v := range got {
		assert.NotContains(t, v, "<")
	}
}

func TestSanitizeRejectsUnencodableBody(t *testing.T) {
	orig := marshalJSON
	marshalJSON = func(interface{}) ([]byte, error) { return nil, errors.New("boom") }
	t.Cleanup(func() { marshalJSON = orig })

	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	reached := false
	r.POST("/", func(c *gin.Context) { reached = true })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, reached)
}

func TestSanitizeSkipsForms(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	var raw string
	r.POST("/", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		raw = string(b)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("username=a%40b.com&password=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "username=a%40b.com&password=x", raw)
}

func TestSanitizeRejectsMalformedJSON(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.POST("/", func(c *gin.Context) {})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{nope"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthAndStaffGuard(t *testing.T) {
	tokens := clients.NewTokens("secret", time.Hour)
	r := gin.New()
	r.GET("/staff", AuthMiddleware(tokens), RequireStaff(), func(c *gin.Context) {
		p, _ := clients.PrincipalFrom(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"client_id": p.ClientID})
	})
	r.GET("/clients/:id/lots", AuthMiddleware(tokens), RequireSelfOrStaff("id"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	staff, err := tokens.Issue(&clients.Client{ID: 1, Email: "staff@example.com", IsStaff: true})
	require.NoError(t, err)
	buyer, err := tokens.Issue(&clients.Client{ID: 2, Email: "buyer@example.com"})
	require.NoError(t, err)

	call := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, call("/staff", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call("/staff", "garbage").Code)
	assert.Equal(t, http.StatusForbidden, call("/staff", buyer).Code)

	w := call("/staff", staff)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]uint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, uint(1), body["client_id"])

	assert.Equal(t, http.StatusOK, call("/clients/2/lots", buyer).Code)
	assert.Equal(t, http.StatusForbidden, call("/clients/3/lots", buyer).Code)
	assert.Equal(t, http.StatusOK, call("/clients/3/lots", staff).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "5b0d2d4e-51c6-4a3e-9a0b-0b4b3f1c2d11")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "5b0d2d4e-51c6-4a3e-9a0b-0b4b3f1c2d11", w.Header().Get(RequestIDHeader))
}
