package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/reseller_portal/internal/models"
	"github.com/GTDGit/reseller_portal/internal/repository"
	"github.com/GTDGit/reseller_portal/internal/utils"
)

// SessionTimeout bounds the session bootstrap.
const SessionTimeout = 12 * time.Second

// Session is what the portal needs after sign-in: who the partner is and
// the rate prices are shown at.
type Session struct {
	Partner      *models.Partner `json:"partner"`
	ExchangeRate ExchangeRate    `json:"exchangeRate"`
}

// AuthService signs partners in and bootstraps their session.
type AuthService struct {
	partnerRepo repository.PartnerRepository
	tokens      *utils.TokenIssuer
	fx          *ExchangeRateService
	timeout     time.Duration
}

// NewAuthService constructs an AuthService.
func NewAuthService(partnerRepo repository.PartnerRepository, tokens *utils.TokenIssuer, fx *ExchangeRateService) *AuthService {
	return &AuthService{partnerRepo: partnerRepo, tokens: tokens, fx: fx, timeout: SessionTimeout}
}

// Login verifies credentials and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.Partner, error) {
	email = strings.TrimSpace(email)
	log.Debug().Str("email", email).Msg("Login attempt")

	partner, err := s.partnerRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, utils.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !partner.IsActive {
		log.Warn().Str("email", email).Msg("Account is inactive")
		return "", nil, utils.ErrPartnerInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(partner.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Password verification failed")
		return "", nil, utils.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(partner.ID, partner.Email)
	if err != nil {
		return "", nil, err
	}
	log.Info().Int("partner_id", partner.ID).Msg("Login successful")
	return token, partner, nil
}

// Session loads the partner profile and exchange rate. It gives up with
// ErrAuthTimeout once the bootstrap timeout elapses.
func (s *AuthService) Session(ctx context.Context, partnerID int) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		session *Session
		err     error
	}
	done := make(chan result, 1)
	go func() {
		sess, err := s.loadSession(ctx, partnerID)
		done <- result{sess, err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, utils.ErrAuthTimeout
		}
		return nil, ctx.Err()
	case r := <-done:
		if errors.Is(r.err, context.DeadlineExceeded) {
			return nil, utils.ErrAuthTimeout
		}
		return r.session, r.err
	}
}

func (s *AuthService) loadSession(ctx context.Context, partnerID int) (*Session, error) {
	partner, err := s.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrInvalidToken
		}
		return nil, err
	}
	if !partner.IsActive {
		return nil, utils.ErrPartnerInactive
	}
	return &Session{Partner: partner, ExchangeRate: s.fx.Rate(ctx)}, nil
}

// CreatePartner registers an active partner with a bcrypt password hash.
func (s *AuthService) CreatePartner(ctx context.Context, email, name, password string) (*models.Partner, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	p := &models.Partner{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hashed),
		Name:         strings.TrimSpace(name),
		IsActive:     true,
	}
	if err := s.partnerRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
