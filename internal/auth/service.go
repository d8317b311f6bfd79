package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/common"
)

const defaultAccessTTL = 8 * time.Hour

const (
	claimUsername   = "username"
	claimSuperadmin = "superadmin"
)

// Store is the persistence surface the auth service needs. *Repo satisfies it.
type Store interface {
	ByUsername(ctx context.Context, username string) (Admin, error)
	Create(ctx context.Context, username, passwordHash string, superadmin bool) (Admin, error)
}

// Service coordinates admin authentication and token issuance.
type Service struct {
	store     Store
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
	signer    jwa.SignatureAlgorithm
	validator TokenValidator
	issuer    string
	audience  string
}

// Config configures the auth service.
type Config struct {
	Store          Store
	Secret         string
	AccessTokenTTL time.Duration
	Issuer         string
	Audience       string
	ClockSkew      time.Duration
}

// AdminInfo is the safe subset of an admin account returned to clients.
type AdminInfo struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Superadmin bool   `json:"superadmin"`
}

// LoginResult bundles token material returned after a successful login.
type LoginResult struct {
	Admin       AdminInfo `json:"admin"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// NewService constructs a Service instance with sane defaults.
func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("auth: store is required")
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "kiosk-api"
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = "kiosk-admin"
	}
	clockSkew := cfg.ClockSkew
	if clockSkew < 0 {
		clockSkew = 0
	}

	return &Service{
		store:     cfg.Store,
		secret:    []byte(secret),
		accessTTL: accessTTL,
		now:       time.Now,
		signer:    jwa.HS256,
		validator: TokenValidator{
			Issuer:    issuer,
			Audience:  audience,
			ClockSkew: clockSkew,
			Algorithm: jwa.HS256,
		},
		issuer:   issuer,
		audience: audience,
	}, nil
}

// WithNow allows tests to override the time provider.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, common.NewAppError("INVALID_CREDENTIALS", "invalid username or password", http.StatusUnauthorized, nil)
	}
	admin, err := s.store.ByUsername(ctx, username)
	if err != nil {
		return LoginResult{}, common.NewAppError("INVALID_CREDENTIALS", "invalid username or password", http.StatusUnauthorized, nil)
	}
	ok, err := argon2id.ComparePasswordAndHash(password, admin.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, common.NewAppError("INVALID_CREDENTIALS", "invalid username or password", http.StatusUnauthorized, nil)
	}

	token, expiry, err := s.signAccessToken(admin)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign access token: %w", err)
	}
	return LoginResult{
		Admin:       AdminInfo{ID: admin.ID, Username: admin.Username, Superadmin: admin.Superadmin},
		AccessToken: token,
		ExpiresAt:   expiry,
	}, nil
}

// CreateAdmin registers a new back-office account. Only superadmins may call it.
func (s *Service) CreateAdmin(ctx context.Context, actor common.Admin, username, password string, superadmin bool) (AdminInfo, error) {
	if !actor.Superadmin {
		return AdminInfo{}, common.NewAppError("FORBIDDEN", "superadmin role required", http.StatusForbidden, nil)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return AdminInfo{}, common.NewAppError("VALIDATION_ERROR", "username is required", http.StatusBadRequest, nil)
	}
	if len(password) < 8 {
		return AdminInfo{}, common.NewAppError("VALIDATION_ERROR", "password must be at least 8 characters", http.StatusBadRequest, nil)
	}
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return AdminInfo{}, fmt.Errorf("hash password: %w", err)
	}
	admin, err := s.store.Create(ctx, username, hash, superadmin)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return AdminInfo{}, common.NewAppError("USERNAME_TAKEN", "username is already registered", http.StatusConflict, err)
		}
		return AdminInfo{}, err
	}
	return AdminInfo{ID: admin.ID, Username: admin.Username, Superadmin: admin.Superadmin}, nil
}

func (s *Service) signAccessToken(admin Admin) (string, time.Time, error) {
	now := s.now()
	expiry := now.Add(s.accessTTL)
	tok, err := jwt.NewBuilder().
		Subject(strconv.FormatInt(admin.ID, 10)).
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		IssuedAt(now).
		Expiration(expiry).
		Claim(claimUsername, admin.Username).
		Claim(claimSuperadmin, admin.Superadmin).
		Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(s.signer, s.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiry, nil
}

// ParseAccessToken validates an access token and returns the admin identity it carries.
func (s *Service) ParseAccessToken(token string) (common.Admin, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return common.Admin{}, common.NewAppError("UNAUTHORIZED", "missing token", http.StatusUnauthorized, nil)
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return common.Admin{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if s.validator.Algorithm != "" && algorithm != s.validator.Algorithm {
		return common.Admin{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, s.secret))
	if err != nil {
		return common.Admin{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if err := s.validator.Validate(parsed, algorithm, s.now()); err != nil {
		return common.Admin{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}

	id, err := strconv.ParseInt(parsed.Subject(), 10, 64)
	if err != nil {
		return common.Admin{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	admin := common.Admin{ID: id}
	if v, ok := parsed.Get(claimUsername); ok {
		if username, ok := v.(string); ok {
			admin.Username = username
		}
	}
	if v, ok := parsed.Get(claimSuperadmin); ok {
		if super, ok := v.(bool); ok {
			admin.Superadmin = super
		}
	}
	return admin, nil
}

func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" {
			return "", errors.New("auth: token missing algorithm")
		}
		if alg == jwa.NoSignature {
			return "", errors.New("auth: token uses none algorithm")
		}
		algorithm = alg
	}
	return algorithm, nil
}
