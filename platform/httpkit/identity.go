package httpkit

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const callerKey = "httpkit.caller"

// Caller is the authenticated user behind a request.
type Caller struct {
	UserID uuid.UUID
	Roles  []string
}

func setCaller(c *gin.Context, caller Caller) {
	c.Set(callerKey, caller)
}

// CallerFrom returns the caller stored by AuthRequired.
func CallerFrom(c *gin.Context) (Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return Caller{}, false
	}
	caller, ok := v.(Caller)
	return caller, ok && caller.UserID != uuid.Nil
}

// MustCaller is CallerFrom that answers 401 when nobody is signed in.
func MustCaller(c *gin.Context) (Caller, bool) {
	caller, ok := CallerFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	return caller, ok
}

type bearerKey struct{}

// WithBearerToken stores the caller's raw access token so outbound calls to the
// marketplace API can forward it.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

// BearerToken returns the access token stored by WithBearerToken.
func BearerToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(bearerKey{}).(string)
	return token, ok && token != ""
}
