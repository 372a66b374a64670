package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgauth "github.com/cashya/shoppy-backend/pkg/auth"
	"github.com/cashya/shoppy-backend/pkg/config"
	"github.com/cashya/shoppy-backend/pkg/db/models"
	pkgerrors "github.com/cashya/shoppy-backend/pkg/errors"
	"github.com/cashya/shoppy-backend/pkg/logger"
	"github.com/cashya/shoppy-backend/pkg/redis"
)

type memoryStore struct {
	mu     sync.Mutex
	otps   map[string]string
	counts map[string]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{otps: map[string]string{}, counts: map[string]int64{}}
}

func (m *memoryStore) StoreOTP(ctx context.Context, phone, hashed string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps[phone] = hashed
	return nil
}

func (m *memoryStore) GetOTP(ctx context.Context, phone string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hashed, ok := m.otps[phone]
	if !ok {
		return "", redis.ErrNotFound
	}
	return hashed, nil
}

func (m *memoryStore) DeleteOTP(ctx context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.otps, phone)
	return nil
}

func (m *memoryStore) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[scope]++
	return m.counts[scope] <= limit, m.counts[scope], nil
}

type stubVerifier struct {
	err    error
	tokens []string
}

func (s *stubVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	s.tokens = append(s.tokens, token)
	return s.err
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "secret",
		Issuer:                 "shoppy",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 43200,
	}
}

func testOTPConfig() config.OTPConfig {
	return config.OTPConfig{
		TTL:              5 * time.Minute,
		Digits:           4,
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func testRateConfig() config.AuthRateLimitConfig {
	return config.AuthRateLimitConfig{
		OTPWindow:       time.Minute,
		OTPPhoneLimit:   3,
		OTPIPLimit:      20,
		LoginWindow:     time.Minute,
		LoginPhoneLimit: 5,
		LoginIPLimit:    20,
	}
}

type fixture struct {
	db       *gorm.DB
	svc      Service
	store    *memoryStore
	verifier *stubVerifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))

	store := newMemoryStore()
	verifier := &stubVerifier{}
	logg := logger.New(logger.Options{ServiceName: "auth-test", Level: logger.ParseLevel("error")})

	svc, err := NewService(
		NewRepository(conn),
		store,
		verifier,
		testJWTConfig(),
		testOTPConfig(),
		testRateConfig(),
		true,
		logg,
	)
	require.NoError(t, err)

	return &fixture{db: conn, svc: svc, store: store, verifier: verifier}
}

const testPhone = "+919876543210"

func TestSendOTPThenLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sent, err := f.svc.SendOTP(ctx, SendOTPInput{PhoneNumber: "98765 43210", RemoteIP: "1.2.3.4"})
	require.NoError(t, err)
	require.Equal(t, testPhone, sent.PhoneNumber)
	require.Len(t, sent.DebugCode, 4)
	require.Equal(t, 300, sent.ExpiresIn)

	result, err := f.svc.Login(ctx, LoginInput{
		PhoneNumber:    testPhone,
		OTP:            sent.DebugCode,
		RecaptchaToken: "tok",
		RemoteIP:       "1.2.3.4",
	})
	require.NoError(t, err)
	require.True(t, result.NewUser)
	require.NotEmpty(t, result.AccessToken)
	require.NotEmpty(t, result.RefreshToken)
	require.Equal(t, []string{"tok"}, f.verifier.tokens)

	claims, err := pkgauth.ParseToken(testJWTConfig(), result.AccessToken)
	require.NoError(t, err)
	require.Equal(t, pkgauth.TokenUseAccess, claims.TokenUse)
	require.Equal(t, testPhone, claims.PhoneNumber)
}

func TestLogin_SecondLoginIsNotNewUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		sent, err := f.svc.SendOTP(ctx, SendOTPInput{PhoneNumber: testPhone, RemoteIP: "1.2.3.4"})
		require.NoError(t, err)
		result, err := f.svc.Login(ctx, LoginInput{
			PhoneNumber:    testPhone,
			OTP:            sent.DebugCode,
			RecaptchaToken: "tok",
			RemoteIP:       "1.2.3.4",
		})
		require.NoError(t, err)
		require.Equal(t, i == 0, result.NewUser)
	}

	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestLogin_WrongOTPRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sent, err := f.svc.SendOTP(ctx, SendOTPInput{PhoneNumber: testPhone, RemoteIP: "1.2.3.4"})
	require.NoError(t, err)
	wrong := "0000"
	if sent.DebugCode == wrong {
		wrong = "1111"
	}

	_, err = f.svc.Login(ctx, LoginInput{
		PhoneNumber:    testPhone,
		OTP:            wrong,
		RecaptchaToken: "tok",
		RemoteIP:       "1.2.3.4",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLogin_CodeNotReplayable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sent, err := f.svc.SendOTP(ctx, SendOTPInput{PhoneNumber: testPhone, RemoteIP: "1.2.3.4"})
	require.NoError(t, err)

	login := LoginInput{
		PhoneNumber:    testPhone,
		OTP:            sent.DebugCode,
		RecaptchaToken: "tok",
		RemoteIP:       "1.2.3.4",
	}
	_, err = f.svc.Login(ctx, login)
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, login)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLogin_WithoutRequestedOTPRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), LoginInput{
		PhoneNumber:    testPhone,
		OTP:            "1234",
		RecaptchaToken: "tok",
		RemoteIP:       "1.2.3.4",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLogin_RecaptchaFailurePropagates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.verifier.err = pkgerrors.New(pkgerrors.CodeValidation, "recaptcha verification failed")

	sent, err := f.svc.SendOTP(ctx, SendOTPInput{PhoneNumber: testPhone, RemoteIP: "1.2.3.4"})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginInput{
		PhoneNumber:    testPhone,
		OTP:            sent.DebugCode,
		RecaptchaToken: "bad",
		RemoteIP:       "1.2.3.4",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestSendOTP_PhoneRateLimited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.SendOTP(ctx, SendOTPInput{PhoneNumber: testPhone, RemoteIP: "1.2.3.4"})
		require.NoError(t, err)
	}

	_, err := f.svc.SendOTP(ctx, SendOTPInput{PhoneNumber: testPhone, RemoteIP: "1.2.3.4"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeRateLimit, pkgerrors.As(err).Code())
}

func TestSendOTP_InvalidPhoneRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SendOTP(context.Background(), SendOTPInput{PhoneNumber: "12", RemoteIP: "1.2.3.4"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestRefresh_MintsNewAccessToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sent, err := f.svc.SendOTP(ctx, SendOTPInput{PhoneNumber: testPhone, RemoteIP: "1.2.3.4"})
	require.NoError(t, err)
	result, err := f.svc.Login(ctx, LoginInput{
		PhoneNumber:    testPhone,
		OTP:            sent.DebugCode,
		RecaptchaToken: "tok",
		RemoteIP:       "1.2.3.4",
	})
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(ctx, result.RefreshToken)
	require.NoError(t, err)

	claims, err := pkgauth.ParseToken(testJWTConfig(), refreshed.AccessToken)
	require.NoError(t, err)
	require.Equal(t, pkgauth.TokenUseAccess, claims.TokenUse)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sent, err := f.svc.SendOTP(ctx, SendOTPInput{PhoneNumber: testPhone, RemoteIP: "1.2.3.4"})
	require.NoError(t, err)
	result, err := f.svc.Login(ctx, LoginInput{
		PhoneNumber:    testPhone,
		OTP:            sent.DebugCode,
		RecaptchaToken: "tok",
		RemoteIP:       "1.2.3.4",
	})
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, result.AccessToken)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestRefresh_GarbageRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Refresh(context.Background(), "not-a-token")
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}
