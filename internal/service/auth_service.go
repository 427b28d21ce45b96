package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/1Bnja/PonderacionesPersonales/internal/models"
	appErrors "github.com/1Bnja/PonderacionesPersonales/pkg/errors"
)

// AuthConfig describes tokens minted by the external authentication provider.
type AuthConfig struct {
	Secret string
	Issuer string
	Leeway time.Duration
}

// AuthService validates access tokens. Sign-in, sign-up and refresh happen
// at the provider; this service only verifies what the client presents.
type AuthService struct {
	logger *zap.Logger
	config AuthConfig
	parser *jwt.Parser
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(config.Leeway),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	return &AuthService{logger: logger, config: config, parser: jwt.NewParser(opts...)}
}

// ValidateToken verifies signature, expiry and issuer and returns the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := s.parser.ParseWithClaims(tokenString, &models.JWTClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.UserID() == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token has no subject")
	}
	return claims, nil
}

// CurrentUser maps validated claims to the account description.
func (s *AuthService) CurrentUser(claims *models.JWTClaims) (*models.CurrentUser, error) {
	if claims == nil || claims.UserID() == "" {
		return nil, appErrors.ErrUnauthorized
	}
	metadata := claims.UserMetadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return &models.CurrentUser{ID: claims.UserID(), Email: claims.Email, Metadata: metadata}, nil
}
