package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/welldanyogia/servicedesk-audit/internal/auth"
)

const testUserID = "3f1c2d7e-8a4b-4c1d-9e2f-0a1b2c3d4e5f"

func newTestTokenService() *auth.TokenService {
	return auth.NewTokenService(auth.TokenServiceConfig{
		AccessSecret:      "test-access-secret-key-32-chars!",
		AccessTokenExpiry: 15 * time.Minute,
		Issuer:            "test-issuer",
	})
}

// testHandler records whether it was called and echoes the user id
func testHandler() (http.Handler, *bool) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		userID, ok := ExtractUserID(r.Context())
		if !ok || userID == "" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(userID))
	})
	return handler, &called
}

func decodeError(t interface {
	Fatalf(string, ...any)
}, rec *httptest.ResponseRecorder) ErrorResponse {
	var response ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return response
}

// Any request without an Authorization header is rejected with AUTH_TOKEN_MISSING
func TestProperty_MissingAuthHeaderReturns401(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		path := "/" + rapid.StringMatching(`[a-z]{3,10}`).Draw(t, "path")
		method := rapid.SampledFrom([]string{"GET", "POST"}).Draw(t, "method")

		mw := NewAuthMiddleware(newTestTokenService())
		handler, called := testHandler()

		req := httptest.NewRequest(method, path, nil)
		rec := httptest.NewRecorder()
		mw.Authenticate(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
		if *called {
			t.Error("handler should not be called when auth header is missing")
		}

		response := decodeError(t, rec)
		if response.Error.Code != "AUTH_TOKEN_MISSING" {
			t.Errorf("expected error code AUTH_TOKEN_MISSING, got %s", response.Error.Code)
		}
		if response.Success {
			t.Error("success should be false")
		}
	})
}

// Malformed, foreign or prefix-less tokens are rejected with AUTH_TOKEN_INVALID
func TestProperty_InvalidTokenReturns401(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		mw := NewAuthMiddleware(newTestTokenService())
		handler, called := testHandler()

		var authHeader string
		switch rapid.IntRange(0, 4).Draw(t, "kind") {
		case 0:
			authHeader = "Bearer " + rapid.StringMatching(`[a-zA-Z0-9]{20,50}`).Draw(t, "randomToken")
		case 1:
			authHeader = rapid.StringMatching(`[a-zA-Z0-9]{20,50}`).Draw(t, "tokenWithoutBearer")
		case 2:
			authHeader = "Bearer "
		case 3:
			authHeader = "Basic " + rapid.StringMatching(`[a-zA-Z0-9]{20,50}`).Draw(t, "basicToken")
		case 4:
			other := auth.NewTokenService(auth.TokenServiceConfig{
				AccessSecret:      "different-secret-key-32-chars!!!",
				AccessTokenExpiry: 15 * time.Minute,
				Issuer:            "test-issuer",
			})
			token, _ := other.GenerateAccessToken(testUserID, "agent@example.com", "ADMIN")
			authHeader = "Bearer " + token
		}

		req := httptest.NewRequest(http.MethodGet, "/reports", nil)
		req.Header.Set("Authorization", authHeader)
		rec := httptest.NewRecorder()
		mw.Authenticate(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
		if *called {
			t.Error("handler should not be called for invalid token")
		}
		if code := decodeError(t, rec).Error.Code; code != "AUTH_TOKEN_INVALID" {
			t.Errorf("expected AUTH_TOKEN_INVALID, got %s", code)
		}
	})
}

func TestAuthenticate_ValidToken(t *testing.T) {
	svc := newTestTokenService()
	mw := NewAuthMiddleware(svc)
	handler, called := testHandler()

	token, err := svc.GenerateAccessToken(testUserID, "auditor@example.com", "AUDITOR")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.Authenticate(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !*called {
		t.Fatal("handler should be called")
	}
	if rec.Body.String() != testUserID {
		t.Errorf("expected user id %s in context, got %s", testUserID, rec.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	svc := newTestTokenService()
	mw := NewAuthMiddleware(svc)

	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"admin allowed", "ADMIN", http.StatusOK},
		{"auditor lower case allowed", "auditor", http.StatusOK},
		{"agent forbidden", "AGENT", http.StatusForbidden},
		{"missing role forbidden", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, called := testHandler()
			chain := mw.Authenticate(mw.RequireRole("ADMIN", "AUDITOR")(handler))

			token, _ := svc.GenerateAccessToken(testUserID, "user@example.com", tt.role)
			req := httptest.NewRequest(http.MethodGet, "/reports", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			chain.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusForbidden {
				if *called {
					t.Error("handler should not be called")
				}
				if code := decodeError(t, rec).Error.Code; code != "FORBIDDEN" {
					t.Errorf("expected FORBIDDEN, got %s", code)
				}
			}
		})
	}
}
