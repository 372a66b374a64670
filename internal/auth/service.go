// Package auth implements the passwordless phone login flow: a hashed
// one-time code parked in redis, recaptcha screening on login, and JWT
// minting for the session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	pkgauth "github.com/cashya/shoppy-backend/pkg/auth"
	"github.com/cashya/shoppy-backend/pkg/config"
	pkgerrors "github.com/cashya/shoppy-backend/pkg/errors"
	"github.com/cashya/shoppy-backend/pkg/logger"
	"github.com/cashya/shoppy-backend/pkg/phone"
	"github.com/cashya/shoppy-backend/pkg/recaptcha"
	"github.com/cashya/shoppy-backend/pkg/redis"
	"github.com/cashya/shoppy-backend/pkg/security"
)

// Service exposes the OTP login surface.
type Service interface {
	SendOTP(ctx context.Context, input SendOTPInput) (*SendOTPResult, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
}

// SendOTPInput carries the send-otp request.
type SendOTPInput struct {
	PhoneNumber string
	RemoteIP    string
}

// SendOTPResult reports where the code went. DebugCode is only populated in
// the dev environment where no SMS gateway runs.
type SendOTPResult struct {
	PhoneNumber string `json:"phone_number"`
	ExpiresIn   int    `json:"expires_in"`
	DebugCode   string `json:"debug_code,omitempty"`
}

// LoginInput carries the login request.
type LoginInput struct {
	PhoneNumber    string
	OTP            string
	RecaptchaToken string
	RemoteIP       string
}

// LoginResult is the minted session pair.
type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	NewUser      bool   `json:"new_user"`
}

// RefreshResult carries the re-minted access token.
type RefreshResult struct {
	AccessToken string `json:"access_token"`
}

type otpStore interface {
	StoreOTP(ctx context.Context, phone, hashed string, ttl time.Duration) error
	GetOTP(ctx context.Context, phone string) (string, error)
	DeleteOTP(ctx context.Context, phone string) error
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type service struct {
	repo     *Repository
	store    otpStore
	captcha  recaptcha.Verifier
	jwtCfg   config.JWTConfig
	otpCfg   config.OTPConfig
	rateCfg  config.AuthRateLimitConfig
	echoCode bool
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs an auth service instance. echoCode controls whether
// generated codes are returned in the send-otp response; only the dev
// environment turns it on.
func NewService(
	repo *Repository,
	store otpStore,
	captcha recaptcha.Verifier,
	jwtCfg config.JWTConfig,
	otpCfg config.OTPConfig,
	rateCfg config.AuthRateLimitConfig,
	echoCode bool,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auth repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("otp store required")
	}
	if captcha == nil {
		return nil, fmt.Errorf("recaptcha verifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		store:    store,
		captcha:  captcha,
		jwtCfg:   jwtCfg,
		otpCfg:   otpCfg,
		rateCfg:  rateCfg,
		echoCode: echoCode,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) SendOTP(ctx context.Context, input SendOTPInput) (*SendOTPResult, error) {
	number, err := phone.Normalize(input.PhoneNumber)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid phone number")
	}

	if err := s.allow(ctx, "otp:phone:"+number, s.rateCfg.OTPPhoneLimit, s.rateCfg.OTPWindow); err != nil {
		return nil, err
	}
	if err := s.allow(ctx, "otp:ip:"+input.RemoteIP, s.rateCfg.OTPIPLimit, s.rateCfg.OTPWindow); err != nil {
		return nil, err
	}

	code, err := security.GenerateOTP(s.otpCfg.Digits)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating otp")
	}
	hashed, err := security.HashOTP(code, s.otpCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing otp")
	}
	if err := s.store.StoreOTP(ctx, number, hashed, s.otpCfg.TTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing otp")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"phone_number": number,
	}), "otp issued")

	result := &SendOTPResult{
		PhoneNumber: number,
		ExpiresIn:   int(s.otpCfg.TTL.Seconds()),
	}
	if s.echoCode {
		result.DebugCode = code
	}
	return result, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	number, err := phone.Normalize(input.PhoneNumber)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid phone number")
	}

	if err := s.allow(ctx, "login:phone:"+number, s.rateCfg.LoginPhoneLimit, s.rateCfg.LoginWindow); err != nil {
		return nil, err
	}
	if err := s.allow(ctx, "login:ip:"+input.RemoteIP, s.rateCfg.LoginIPLimit, s.rateCfg.LoginWindow); err != nil {
		return nil, err
	}

	if err := s.captcha.Verify(ctx, input.RecaptchaToken, input.RemoteIP); err != nil {
		return nil, err
	}

	hashed, err := s.store.GetOTP(ctx, number)
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "otp expired or not requested")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading otp")
	}

	ok, err := security.VerifyOTP(input.OTP, hashed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying otp")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "incorrect otp")
	}

	// One code, one login.
	if err := s.store.DeleteOTP(ctx, number); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing otp")
	}

	user, created, err := s.repo.GetOrCreateByPhone(ctx, number)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}

	payload := pkgauth.TokenPayload{
		UserID:      user.ID,
		PhoneNumber: user.PhoneNumber,
		Admin:       user.Admin,
	}
	now := s.now()
	access, err := pkgauth.MintAccessToken(s.jwtCfg, now, payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}
	refresh, err := pkgauth.MintRefreshToken(s.jwtCfg, now, payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting refresh token")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"user_id":  user.ID.String(),
		"new_user": created,
	}), "login succeeded")

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		NewUser:      created,
	}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	claims, err := pkgauth.ParseToken(s.jwtCfg, refreshToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}
	if claims.TokenUse != pkgauth.TokenUseRefresh {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "refresh token required")
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}

	access, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.TokenPayload{
		UserID:      user.ID,
		PhoneNumber: user.PhoneNumber,
		Admin:       user.Admin,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}
	return &RefreshResult{AccessToken: access}, nil
}

func (s *service) allow(ctx context.Context, scope string, limit int, window time.Duration) error {
	if limit <= 0 || window <= 0 {
		return nil
	}
	ok, _, err := s.store.FixedWindowAllow(ctx, scope, int64(limit), window)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit check")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later")
	}
	return nil
}
