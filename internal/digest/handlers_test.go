package digest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aicompleteme/completeme-backend/internal/ai"
	"github.com/aicompleteme/completeme-backend/internal/auth"
)

// stubService returns canned results so handler tests exercise only the
// HTTP mapping.
type stubService struct {
	digest      *Digest
	generateErr error
	getErr      error
}

func (s *stubService) GenerateDigest(ctx context.Context, userID string) (*Digest, error) {
	return s.digest, s.generateErr
}

func (s *stubService) GetTodayDigest(ctx context.Context, userID string) (*Digest, error) {
	return s.digest, s.getErr
}

func (s *stubService) GenerateDailyDigests(ctx context.Context) error { return nil }

func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(r.Context(), auth.ContextUserID, testUserID)
	return r.WithContext(ctx)
}

func TestGenerateDigestHandlerStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"missing user", ErrMissingUserID, http.StatusBadRequest},
		{"invalid user", ErrInvalidUserID, http.StatusBadRequest},
		{"premium required", ErrPremiumRequired, http.StatusForbidden},
		{"profile not found", ErrProfileNotFound, http.StatusNotFound},
		{"rate limited", ai.ErrRateLimited, http.StatusTooManyRequests},
		{"payment required", ai.ErrPaymentRequired, http.StatusPaymentRequired},
		{"other failure", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(&stubService{digest: &Digest{UserID: testUserID}, generateErr: tt.err})

			w := httptest.NewRecorder()
			handler.GenerateDigest(w, authedRequest(http.MethodPost, "/api/v1/digest/generate", ""))

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestGenerateDigestHandlerRequiresIdentity(t *testing.T) {
	handler := NewHandler(&stubService{})

	w := httptest.NewRecorder()
	handler.GenerateDigest(w, httptest.NewRequest(http.MethodPost, "/api/v1/digest/generate", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", w.Code)
	}
}

func TestTriggerDigestValidatesPayload(t *testing.T) {
	handler := NewHandler(&stubService{digest: &Digest{}})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"user_id":"` + testUserID + `"}`, http.StatusOK},
		{"malformed json", `{`, http.StatusBadRequest},
		{"missing user id", `{}`, http.StatusBadRequest},
		{"non-uuid user id", `{"user_id":"bob"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.TriggerDigest(w, authedRequest(http.MethodPost, "/api/v1/internal/digest/generate", tt.body))

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestGetTodayDigestHandlerNotFound(t *testing.T) {
	handler := NewHandler(&stubService{getErr: ErrDigestNotFound})

	w := httptest.NewRecorder()
	handler.GetTodayDigest(w, authedRequest(http.MethodGet, "/api/v1/digest/today", ""))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
