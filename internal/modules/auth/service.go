package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/studyforge-backend/internal/data/repos"
	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

var ErrUnauthorized = domain.ErrUnauthorized

// Claims are HS256 access tokens: sub is the user id, email is optional.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type Config struct {
	Secret    string
	Audience  string
	AccessTTL time.Duration
}

type Service interface {
	// SetContextFromToken verifies tokenString and attaches the caller to ctx.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	// Profile returns the caller's profile, creating it on first sight.
	Profile(ctx context.Context) (*domain.Profile, error)
	IssueToken(userID uuid.UUID, email string) (string, error)
}

type service struct {
	log      *logger.Logger
	profiles repos.ProfileRepo
	cfg      Config
	now      func() time.Time
}

func NewService(log *logger.Logger, profiles repos.ProfileRepo, cfg Config) (Service, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("auth: JWT secret is required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	return &service{log: log.With("service", "AuthService"), profiles: profiles, cfg: cfg, now: time.Now}, nil
}

func (s *service) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.cfg.Audience))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("%w: invalid or expired token", ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return ctx, fmt.Errorf("%w: invalid user id in token", ErrUnauthorized)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Email:       strings.TrimSpace(claims.Email),
	}), nil
}

func (s *service) Profile(ctx context.Context) (*domain.Profile, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	p, err := s.profiles.GetByID(ctx, nil, rd.UserID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	s.log.WithContext(ctx).Info("Creating profile on first login", "user_id", rd.UserID)
	return s.profiles.Upsert(ctx, nil, &domain.Profile{ID: rd.UserID, Email: rd.Email})
}

func (s *service) IssueToken(userID uuid.UUID, email string) (string, error) {
	now := s.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
	}
	if s.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.cfg.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
}
