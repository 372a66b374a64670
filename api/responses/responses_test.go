package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/cashya/shoppy-backend/pkg/errors"
)

func TestWriteSuccessEnvelope(t *testing.T) {
	resp := httptest.NewRecorder()
	WriteSuccess(resp, map[string]string{"hello": "world"})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type: %s", ct)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["hello"] != "world" {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}

func TestWriteErrorCodedMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "not found surfaces message",
			err:        pkgerrors.New(pkgerrors.CodeNotFound, "order not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantMsg:    "order not found",
		},
		{
			name:       "validation surfaces message",
			err:        pkgerrors.New(pkgerrors.CodeValidation, "cart is empty"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
			wantMsg:    "cart is empty",
		},
		{
			name:       "conflict surfaces message",
			err:        pkgerrors.New(pkgerrors.CodeConflict, "coupon is exhausted"),
			wantStatus: http.StatusConflict,
			wantCode:   "CONFLICT",
			wantMsg:    "coupon is exhausted",
		},
		{
			name:       "rate limit",
			err:        pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "RATE_LIMIT_EXCEEDED",
			wantMsg:    "too many attempts, try again later",
		},
		{
			name:       "internal hides message",
			err:        pkgerrors.New(pkgerrors.CodeInternal, "pg connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
		{
			name:       "uncoded error becomes internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			WriteError(context.Background(), nil, resp, tc.err)

			if resp.Code != tc.wantStatus {
				t.Fatalf("expected %d got %d", tc.wantStatus, resp.Code)
			}

			var envelope struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if envelope.Error.Code != tc.wantCode {
				t.Fatalf("expected code %s got %s", tc.wantCode, envelope.Error.Code)
			}
			if tc.wantMsg != "" && envelope.Error.Message != tc.wantMsg {
				t.Fatalf("expected message %q got %q", tc.wantMsg, envelope.Error.Message)
			}
			if tc.wantMsg == "" && envelope.Error.Message == tc.err.Error() {
				t.Fatalf("internal error leaked its message: %q", envelope.Error.Message)
			}
		})
	}
}

func TestWriteErrorValidationDetails(t *testing.T) {
	resp := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "invalid payload").
		WithDetails(map[string]any{"field": "quantity"})
	WriteError(context.Background(), nil, resp, err)

	var envelope struct {
		Error struct {
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr != nil {
		t.Fatalf("decode response: %v", decodeErr)
	}
	if envelope.Error.Details["field"] != "quantity" {
		t.Fatalf("expected details to carry field, got %+v", envelope.Error.Details)
	}
}
