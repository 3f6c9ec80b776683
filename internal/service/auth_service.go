package service

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	appErrors "github.com/mingshu/tutor-api/pkg/errors"
)

// AuthConfig defines the single-admin authentication setup.
type AuthConfig struct {
	AdminToken    string
	SessionSecret string
	SessionTTL    time.Duration
	Issuer        string
}

// LoginRequest carries the pre-shared admin token.
type LoginRequest struct {
	Token string `json:"token" validate:"required"`
}

// LoginResponse returns the issued session token.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
}

// AuthService guards the admin surface. There is exactly one admin,
// identified by a pre-shared token, so sessions are stateless JWTs.
type AuthService struct {
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 168 * time.Hour
	}
	if config.SessionSecret == "" {
		config.SessionSecret = config.AdminToken
	}
	return &AuthService{validator: validate, logger: logger, config: config}
}

// Configured reports whether an admin token was provisioned.
func (s *AuthService) Configured() bool {
	return s.config.AdminToken != ""
}

// Login exchanges the pre-shared token for a session JWT.
func (s *AuthService) Login(req LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	if !s.Configured() {
		return nil, appErrors.Clone(appErrors.ErrStoreNotConfigured, "admin token is not configured")
	}
	if subtle.ConstantTimeCompare([]byte(req.Token), []byte(s.config.AdminToken)) != 1 {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid admin token")
	}

	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.SessionTTL)
	claims := jwt.RegisteredClaims{
		Issuer:    s.config.Issuer,
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SessionSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session token")
	}

	s.logger.Info("admin session issued", zap.Time("expires_at", expiresAt))
	return &LoginResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.config.SessionTTL.Seconds()),
		IssuedAt:    issuedAt,
	}, nil
}

// ValidateSession accepts either a session JWT or the raw pre-shared
// token, which keeps scripted callers working without a login step.
func (s *AuthService) ValidateSession(tokenString string) error {
	if !s.Configured() {
		return appErrors.Clone(appErrors.ErrStoreNotConfigured, "admin token is not configured")
	}
	if tokenString == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing credentials")
	}
	if subtle.ConstantTimeCompare([]byte(tokenString), []byte(s.config.AdminToken)) == 1 {
		return nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SessionSecret), nil
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject != "admin" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}
	return nil
}
