package v1handler

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"

	"leadintake/internal/config"
	"leadintake/pkg/domain"
	"leadintake/pkg/logger"
	"leadintake/pkg/serrors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CtxKey is a string-based type used for storing values in request contexts.
type CtxKey string

// IdentityKey is the context key under which the authenticated domain.Identity is stored.
const IdentityKey CtxKey = "Identity"

// Claims are the JWT claims accepted on admin endpoints.
type Claims struct {
	jwt.RegisteredClaims

	Role string `json:"role"`
}

type SecHandlerOptions struct {
	// PublicKey is the PEM encoded RSA key tokens are verified with. Without it
	// every token is rejected.
	PublicKey string
}

func NewSecHandlerOptions(cfg *config.Config) *SecHandlerOptions {
	return &SecHandlerOptions{
		PublicKey: cfg.JWT.PublicKey,
	}
}

type SecHandler struct {
	publicKey *rsa.PublicKey
}

func NewSecHandler(opts *SecHandlerOptions) (*SecHandler, error) {
	if opts == nil || opts.PublicKey == "" {
		return &SecHandler{}, nil
	}

	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(opts.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA public key: %w", err)
	}

	return &SecHandler{publicKey: key}, nil
}

// IdentityFromContext returns the identity stored by HandleBearerAuth.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(domain.Identity)

	return identity, ok
}

// HandleBearerAuth verifies token and returns a context carrying the caller
// identity.
func (s SecHandler) HandleBearerAuth(ctx context.Context, token string) (context.Context, error) {
	if s.publicKey == nil {
		return ctx, serrors.With(serrors.ErrUnauthorized, "bearer authentication is not configured")
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.publicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return ctx, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token")
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return ctx, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token subject")
	}
	if claims.Role == "" {
		return ctx, serrors.With(serrors.ErrUnauthorized, "token carries no role")
	}

	identity := domain.Identity{Subject: claims.Subject, Role: claims.Role}
	ctx = context.WithValue(ctx, IdentityKey, identity)
	ctx = logger.WithFields(ctx, zap.String("sub", identity.Subject), zap.String("role", identity.Role))

	return ctx, nil
}

// Middleware rejects requests without a valid "Authorization: Bearer" token.
func (s SecHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "bearer "

		header := r.Header.Get("Authorization")
		if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
			writeError(w, r, serrors.With(serrors.ErrUnauthorized, "missing bearer token"))

			return
		}

		ctx, err := s.HandleBearerAuth(r.Context(), strings.TrimSpace(header[len(prefix):]))
		if err != nil {
			writeError(w, r, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
