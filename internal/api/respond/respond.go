// Package respond writes JSON error bodies for handlers.
package respond

import (
	"log/slog"
	"net/http"
	"strconv"

	"auction-house/internal/domain/apperr"

	"github.com/gin-gonic/gin"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation: http.StatusBadRequest,
	apperr.KindConflict:   http.StatusConflict,
	apperr.KindNotFound:   http.StatusNotFound,
	apperr.KindAuth:       http.StatusUnauthorized,
	apperr.KindForbidden:  http.StatusForbidden,
}

// Fail aborts the request with status and a message the UI can show as is.
// The UI reads "detail"; "error" is kept for older clients.
func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg, "error": msg})
}

// Error maps a business error to its status. Anything else is logged and
// reported as a generic 500.
func Error(c *gin.Context, err error) {
	if status, ok := statusByKind[apperr.KindOf(err)]; ok {
		Fail(c, status, err.Error())
		return
	}
	slog.Error("request failed",
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.String("request_id", c.GetString("request_id")),
		slog.Any("error", err))
	Fail(c, http.StatusInternalServerError, "Internal server error")
}

// ID reads a positive integer path parameter, answering 400 when it is not.
func ID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		Fail(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(v), true
}

// OptionalUint reads an optional positive integer query parameter.
func OptionalUint(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		Fail(c, http.StatusBadRequest, "Invalid "+name)
		return nil, false
	}
	id := uint(v)
	return &id, true
}

// Bool reads a boolean query parameter, treating a missing value as false.
func Bool(c *gin.Context, name string) (bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		Fail(c, http.StatusBadRequest, "Invalid "+name)
		return false, false
	}
	return v, true
}
