package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jwalitptl/hospital-ops/internal/session"
	apperrors "github.com/jwalitptl/hospital-ops/pkg/errors"
	"github.com/jwalitptl/hospital-ops/pkg/httputil"
)

// ClaimMapping names the token claims that carry the session fields. It
// follows whatever the identity provider emits.
type ClaimMapping struct {
	UserID  string
	OrgID   string
	OrgRole string
	Email   string
}

func DefaultClaimMapping() ClaimMapping {
	return ClaimMapping{UserID: "sub", OrgID: "org_id", OrgRole: "org_role", Email: "email"}
}

type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience string
	DemoMode bool
	Claims   ClaimMapping
}

// AuthMiddleware verifies bearer tokens issued by the external identity
// provider. It never issues tokens itself.
type AuthMiddleware struct {
	config AuthConfig
	parser *jwt.Parser
}

func NewAuthMiddleware(config AuthConfig) *AuthMiddleware {
	def := DefaultClaimMapping()
	if config.Claims.UserID == "" {
		config.Claims.UserID = def.UserID
	}
	if config.Claims.OrgID == "" {
		config.Claims.OrgID = def.OrgID
	}
	if config.Claims.OrgRole == "" {
		config.Claims.OrgRole = def.OrgRole
	}
	if config.Claims.Email == "" {
		config.Claims.Email = def.Email
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}

	return &AuthMiddleware{config: config, parser: jwt.NewParser(opts...)}
}

// Authenticate installs the session for the request or aborts with 401.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.config.DemoMode {
			c.Request = c.Request.WithContext(session.WithContext(c.Request.Context(), session.Demo()))
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("missing authorization header")))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("invalid authorization format")))
			return
		}

		s, err := m.Verify(parts[1])
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			return
		}

		c.Request = c.Request.WithContext(session.WithContext(c.Request.Context(), s))
		c.Next()
	}
}

// Verify checks the token signature and registered claims and maps the
// remaining claims onto a session.
func (m *AuthMiddleware) Verify(tokenStr string) (session.Context, error) {
	claims := jwt.MapClaims{}
	if _, err := m.parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(m.config.Secret), nil
	}); err != nil {
		return session.Context{}, fmt.Errorf("invalid token: %w", err)
	}

	s := session.Context{
		UserID:  stringClaim(claims, m.config.Claims.UserID),
		OrgID:   stringClaim(claims, m.config.Claims.OrgID),
		OrgRole: stringClaim(claims, m.config.Claims.OrgRole),
		Email:   stringClaim(claims, m.config.Claims.Email),
	}
	if s.UserID == "" {
		return session.Context{}, fmt.Errorf("token has no %s claim", m.config.Claims.UserID)
	}
	return s, nil
}

func stringClaim(claims jwt.MapClaims, name string) string {
	v, _ := claims[name].(string)
	return v
}
