package controllers

import (
	"net/http"

	"github.com/cashya/shoppy-backend/api/middleware"
	"github.com/cashya/shoppy-backend/api/responses"
	"github.com/cashya/shoppy-backend/api/validators"
	"github.com/cashya/shoppy-backend/internal/auth"
	pkgerrors "github.com/cashya/shoppy-backend/pkg/errors"
	"github.com/cashya/shoppy-backend/pkg/logger"
)

type sendOTPPayload struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
}

type loginPayload struct {
	PhoneNumber    string `json:"phone_number" validate:"required"`
	OTP            string `json:"otp" validate:"required"`
	RecaptchaToken string `json:"recaptcha_token"`
}

type refreshPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthSendOTP issues a one-time login code for a phone number.
func AuthSendOTP(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload sendOTPPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.SendOTP(ctx, auth.SendOTPInput{
			PhoneNumber: payload.PhoneNumber,
			RemoteIP:    middleware.ClientIP(r),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AuthLogin exchanges a one-time code for a token pair.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Login(ctx, auth.LoginInput{
			PhoneNumber:    payload.PhoneNumber,
			OTP:            payload.OTP,
			RecaptchaToken: payload.RecaptchaToken,
			RemoteIP:       middleware.ClientIP(r),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AuthRefresh mints a fresh access token from a refresh token.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload refreshPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Refresh(ctx, payload.RefreshToken)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
