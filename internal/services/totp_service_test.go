package services

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-backend/internal/apperrors"
	"crm-backend/internal/models"
)

type totpManagerMock struct {
	totpStoreMock
	deleted []int
}

func (m *totpManagerMock) Upsert(ctx context.Context, userID int, secret string) error {
	m.byUser[userID] = &models.UserTOTP{UserID: userID, Secret: secret, Enabled: false}
	return nil
}

func (m *totpManagerMock) SetEnabled(ctx context.Context, userID int, enabled bool) error {
	m.byUser[userID].Enabled = enabled
	return nil
}

func (m *totpManagerMock) Delete(ctx context.Context, userID int) error {
	delete(m.byUser, userID)
	m.deleted = append(m.deleted, userID)
	return nil
}

func newTOTPServiceForTest() (*TOTPService, *totpManagerMock, *userStoreMock) {
	store := &totpManagerMock{totpStoreMock: totpStoreMock{byUser: map[int]*models.UserTOTP{}}}
	users := newUserStoreMock()
	svc := NewTOTPService(store, users, testJWTManager())
	return svc, store, users
}

func currentCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return code
}

func TestTOTPSetup(t *testing.T) {
	svc, store, users := newTOTPServiceForTest()
	users.Create(context.Background(), &models.User{Email: "ana@example.com", IsActive: true})

	resp, err := svc.Setup(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Secret)
	assert.Contains(t, resp.URI, "otpauth://")

	record := store.byUser[1]
	require.NotNil(t, record)
	assert.False(t, record.Enabled, "secret stays disabled until confirmed")
}

func TestTOTPConfirm(t *testing.T) {
	svc, store, users := newTOTPServiceForTest()
	users.Create(context.Background(), &models.User{Email: "ana@example.com", IsActive: true})

	resp, err := svc.Setup(context.Background(), 1)
	require.NoError(t, err)

	err = svc.Confirm(context.Background(), 1, "000000")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.False(t, store.byUser[1].Enabled)

	err = svc.Confirm(context.Background(), 1, currentCode(t, resp.Secret))
	require.NoError(t, err)
	assert.True(t, store.byUser[1].Enabled)
}

func TestTOTPConfirm_NoSetup(t *testing.T) {
	svc, _, _ := newTOTPServiceForTest()

	err := svc.Confirm(context.Background(), 1, "123456")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTOTPVerifyLogin(t *testing.T) {
	svc, _, users := newTOTPServiceForTest()
	users.Create(context.Background(), &models.User{Email: "ana@example.com", IsActive: true})

	resp, err := svc.Setup(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(context.Background(), 1, currentCode(t, resp.Secret)))

	tempToken, err := testJWTManager().GenerateTempToken(users.byID[1])
	require.NoError(t, err)

	_, err = svc.VerifyLogin(context.Background(), tempToken, "000000")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	session, err := svc.VerifyLogin(context.Background(), tempToken, currentCode(t, resp.Secret))
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	// A full session token is not a valid temp token
	_, err = svc.VerifyLogin(context.Background(), session.Token, currentCode(t, resp.Secret))
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTOTPDisable(t *testing.T) {
	svc, store, users := newTOTPServiceForTest()
	users.Create(context.Background(), &models.User{Email: "ana@example.com", IsActive: true})

	resp, err := svc.Setup(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(context.Background(), 1, currentCode(t, resp.Secret)))

	err = svc.Disable(context.Background(), 1, "000000")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	require.NoError(t, svc.Disable(context.Background(), 1, currentCode(t, resp.Secret)))
	assert.Equal(t, []int{1}, store.deleted)
}
