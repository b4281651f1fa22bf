package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/reseller_portal/internal/repository/memory"
	"github.com/GTDGit/reseller_portal/internal/utils"
)

func newTestAuth(t *testing.T) (*AuthService, *utils.TokenIssuer) {
	t.Helper()
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)
	svc := NewAuthService(memory.NewPartnerRepo(), tokens, newTestFX(&fakeRateSource{rate: "12750"}))
	_, err := svc.CreatePartner(context.Background(), "Agent@Travel.uz", "Travel Agent", "s3cret!")
	require.NoError(t, err)
	return svc, tokens
}

func TestAuthService_Login(t *testing.T) {
	svc, tokens := newTestAuth(t)
	ctx := context.Background()

	token, partner, err := svc.Login(ctx, "agent@travel.uz", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "agent@travel.uz", partner.Email)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, partner.ID, claims.PartnerID)

	_, _, err = svc.Login(ctx, "agent@travel.uz", "wrong")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@travel.uz", "s3cret!")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
}

func TestAuthService_Session(t *testing.T) {
	svc, _ := newTestAuth(t)

	sess, err := svc.Session(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Travel Agent", sess.Partner.Name)
	assert.Equal(t, "12750", sess.ExchangeRate.Rate.String())

	_, err = svc.Session(context.Background(), 99)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestAuthService_SessionTimeout(t *testing.T) {
	svc := NewAuthService(blockingPartnerRepo{}, utils.NewTokenIssuer("s", time.Hour), newTestFX(&fakeRateSource{rate: "1"}))
	svc.timeout = 20 * time.Millisecond

	_, err := svc.Session(context.Background(), 1)
	assert.ErrorIs(t, err, utils.ErrAuthTimeout)
}
