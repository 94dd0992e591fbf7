package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// sessionKey is the gin context key holding the domain.Session
const sessionKey = "session"

// ErrInvalidToken indicates a missing, malformed, expired or rejected bearer token
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenVerifier turns a bearer token into a session
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Session, error)
}

// IdentityClaims are the claims of an identity-provider access token
type IdentityClaims struct {
	Email       string `json:"email,omitempty"`
	AppMetadata struct {
		Role string `json:"role,omitempty"`
	} `json:"app_metadata"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies HS256 tokens signed with the identity provider's secret
type JWTVerifier struct {
	secret      []byte
	adminEmails []string
}

// NewJWTVerifier creates a verifier. Sessions whose email is in adminEmails get the admin role.
func NewJWTVerifier(secret string, adminEmails []string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), adminEmails: adminEmails}
}

func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (*domain.Session, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return newSession(claims.Subject, claims.Email, claims.AppMetadata.Role, v.adminEmails), nil
}

// IdentityUser is the user document returned by the identity provider
type IdentityUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	AppMetadata struct {
		Role string `json:"role"`
	} `json:"app_metadata"`
}

// IntrospectionClient verifies tokens by asking the identity provider who they belong to
type IntrospectionClient struct {
	baseURL     string
	apiKey      string
	adminEmails []string
	httpClient  *http.Client
}

// NewIntrospectionClient creates a new introspection client
func NewIntrospectionClient(baseURL, apiKey string, adminEmails []string) *IntrospectionClient {
	return &IntrospectionClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		adminEmails: adminEmails,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Verify retrieves the token's user from the identity provider
func (c *IntrospectionClient) Verify(ctx context.Context, token string) (*domain.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("identity provider error: %d - %s", resp.StatusCode, string(body))
	}

	var user IdentityUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: identity provider returned no user id", ErrInvalidToken)
	}

	return newSession(user.ID, user.Email, user.AppMetadata.Role, c.adminEmails), nil
}

func newSession(userID, email, role string, adminEmails []string) *domain.Session {
	if role != domain.RoleAdmin {
		role = domain.RoleUser
	}
	if email != "" && slices.ContainsFunc(adminEmails, func(a string) bool { return strings.EqualFold(a, email) }) {
		role = domain.RoleAdmin
	}
	return &domain.Session{UserID: userID, Email: email, Role: role}
}

// AuthMiddleware validates the bearer token and stores the session in the gin context.
// When devUserID is non-empty (local only), missing or invalid tokens fall back to that user.
// Otherwise it returns 401 for missing or invalid tokens.
func AuthMiddleware(verifier TokenVerifier, logger *zap.Logger, devUserID string) gin.HandlerFunc {
	fallback := func(c *gin.Context) bool {
		if devUserID == "" {
			return false
		}
		setSession(c, &domain.Session{UserID: devUserID, Role: domain.RoleUser})
		c.Next()
		return true
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if fallback(c) {
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		const bearerPrefix = "Bearer "
		if len(authHeader) <= len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			if fallback(c) {
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}
		token := authHeader[len(bearerPrefix):]

		session, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if logger != nil {
				logger.Debug("Auth validation failed", zap.Error(err))
			}
			if fallback(c) {
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		setSession(c, session)
		c.Next()
	}
}

// RequireAdmin rejects sessions without the admin role. It must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := GetSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !session.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

func setSession(c *gin.Context, session *domain.Session) {
	c.Set(sessionKey, *session)
	c.Set("user_id", session.UserID)
}

// GetSession returns the session stored by AuthMiddleware
func GetSession(c *gin.Context) (domain.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return domain.Session{}, false
	}
	session, ok := v.(domain.Session)
	if !ok || session.UserID == "" {
		return domain.Session{}, false
	}
	return session, true
}
