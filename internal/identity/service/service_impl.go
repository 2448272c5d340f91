package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/identity/domain"
	"github.com/daybook-app/daybook/pkg/db"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	log      *zap.Logger
	repo     domain.Repository
	genID    *snowflake.Node
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func New(log *zap.Logger, cfg config.Config, repo domain.Repository, genID *snowflake.Node) (domain.Service, error) {
	secret := strings.TrimSpace(cfg.AuthTokenSecret)
	if secret == "" {
		return nil, errors.New("identity: AUTH_TOKEN_SECRET is not configured")
	}
	ttl := cfg.AuthTokenTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{
		log:      log.Named("identity.service"),
		repo:     repo,
		genID:    genID,
		secret:   []byte(secret),
		tokenTTL: ttl,
		now:      time.Now,
	}, nil
}

func (s *Service) ResolveOrCreate(ctx context.Context, profile domain.Profile) (*domain.User, error) {
	email, err := normalizeEmail(profile.Email)
	if err != nil {
		return nil, domain.ErrEmailRequired
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	displayName := strings.TrimSpace(profile.DisplayName)
	if displayName == "" {
		displayName = defaultDisplayName(email)
	}

	user = &domain.User{
		ID:            s.genID.Generate(),
		ExternalID:    newExternalID(profile.Subject),
		Email:         email,
		DisplayName:   displayName,
		EmailVerified: true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// A concurrent callback for the same email may have won the race.
		if db.IsDuplicateKeyErr(err) {
			return s.repo.FindByEmail(ctx, email)
		}
		return nil, err
	}

	s.log.Info("user created", zap.String("uid", user.ID.String()))
	return user, nil
}

type identityClaims struct {
	jwt.RegisteredClaims
	UID string `json:"uid"`
}

func (s *Service) IssueToken(user *domain.User) (string, error) {
	if user == nil {
		return "", domain.ErrUserNotFound
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UID: user.ID.String(),
	})
	return token.SignedString(s.secret)
}

func (s *Service) VerifyToken(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", domain.ErrInvalidToken
	}

	claims := &identityClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.UID == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.UID, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", domain.ErrEmailRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", err
	}
	return email, nil
}

func defaultDisplayName(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func newExternalID(subject string) string {
	if strings.TrimSpace(subject) != "" {
		return subject
	}
	return uuid.NewString()
}
