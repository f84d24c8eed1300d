package httpkit

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"booking_portal_backend/platform/config"
	"booking_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	errMissingToken = "missing token"
	errInvalidToken = "invalid token"
)

// accessClaims are the claims of a marketplace access token.
type accessClaims struct {
	jwt.RegisteredClaims
	Type  string   `json:"type,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// AuthRequired validates HS256 access tokens issued by the marketplace auth
// service. The raw token is kept on the request context so outbound API calls
// run as the same user.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	secret := []byte(cfg.GetJWTAccessSecret())
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(c *gin.Context) {
		raw, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, errMissingToken)
			return
		}

		caller, err := verify(parser, secret, raw)
		if err != nil {
			abortUnauthorized(c, errInvalidToken)
			return
		}
		setCaller(c, caller)

		ctx := WithBearerToken(c.Request.Context(), raw)
		ctx = context.WithValue(ctx, logger.UserIDKey, caller.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func verify(parser *jwt.Parser, secret []byte, raw string) (Caller, error) {
	var claims accessClaims
	if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}); err != nil {
		return Caller{}, err
	}
	if claims.Type != "" && claims.Type != "access" {
		return Caller{}, errors.New("not an access token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Caller{}, err
	}
	return Caller{UserID: userID, Roles: claims.Roles}, nil
}

func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: message})
}
