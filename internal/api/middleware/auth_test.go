package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/roster-api/internal/api/shared"
	"github.com/phrazzld/roster-api/internal/service/auth"
)

// fakeJWTService returns canned results so the middleware's branching can
// be tested without minting real tokens.
type fakeJWTService struct {
	claims *auth.Claims
	err    error
}

var _ auth.JWTService = (*fakeJWTService)(nil)

func (f *fakeJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func (f *fakeJWTService) GenerateRefreshToken(
	ctx context.Context,
	userID uuid.UUID,
) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeJWTService) ValidateRefreshToken(
	ctx context.Context,
	token string,
) (*auth.Claims, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeJWTService) AccessTokenLifetime() time.Duration {
	return time.Hour
}

// nextRecorder captures whether the wrapped handler ran and what user ID
// it saw in the context.
type nextRecorder struct {
	called bool
	userID uuid.UUID
}

func (n *nextRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.called = true
		n.userID, _ = GetUserID(r)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name       string
		header     string
		svc        *fakeJWTService
		wantStatus int
		wantNext   bool
	}{
		{
			name:       "missing_header",
			header:     "",
			svc:        &fakeJWTService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong_scheme",
			header:     "Basic dXNlcjpwYXNz",
			svc:        &fakeJWTService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bare_token_without_scheme",
			header:     "some-token",
			svc:        &fakeJWTService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired_token",
			header:     "Bearer expired",
			svc:        &fakeJWTService{err: auth.ErrExpiredToken},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid_token",
			header:     "Bearer garbage",
			svc:        &fakeJWTService{err: auth.ErrInvalidToken},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong_token_type",
			header:     "Bearer refresh-token",
			svc:        &fakeJWTService{err: auth.ErrWrongTokenType},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unexpected_validation_error",
			header:     "Bearer token",
			svc:        &fakeJWTService{err: errors.New("key store unavailable")},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "valid_token",
			header:     "Bearer good",
			svc:        &fakeJWTService{claims: &auth.Claims{UserID: userID}},
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			next := &nextRecorder{}
			mw := NewAuthMiddleware(tt.svc)

			r := httptest.NewRequest("GET", "/v1/users", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			mw.Authenticate(next.handler()).ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantNext, next.called)
			if tt.wantNext {
				assert.Equal(t, userID, next.userID,
					"subject identity must be attached to the request context")
			}
		})
	}
}

func TestTrace(t *testing.T) {
	t.Parallel()

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	Trace(next).ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, traceID, 32, "trace ID should be 16 random bytes hex-encoded")
}
