package report

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

func newTestRouter(svc *Service) http.Handler {
	handler := NewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	pass := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		RegisterRoutes(r, handler, pass, pass, pass)
	})
	return r
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestHandler_Types(t *testing.T) {
	h := newTestRouter(newTestService(nil, nil, nil))

	rec := doRequest(t, h, http.MethodGet, "/api/v1/reports/audit/types", "")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var data struct {
		Types []TypeInfo `json:"types"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Types, len(AllTypes))
	assert.Equal(t, LoginActivity, data.Types[0].Type)
	assert.Equal(t, "Laporan Aktivitas Login", data.Types[0].Title)
	assert.NotEmpty(t, data.Types[0].Columns)
}

func TestHandler_GetJSON(t *testing.T) {
	activity := &MockActivityReader{attempts: loginFixture()}
	h := newTestRouter(newTestService(activity, nil, nil))

	rec := doRequest(t, h, http.MethodGet,
		"/api/v1/reports/audit?type=FAILED_LOGINS&start_date=2026-10-01&end_date=2026-10-31&email=budi&ip_address=10.0.0.2", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var result struct {
		Type         ReportType       `json:"type"`
		TotalRecords int              `json:"total_records"`
		Data         []map[string]any `json:"data"`
		Summary      map[string]any   `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, FailedLogins, result.Type)
	assert.Equal(t, 2, result.TotalRecords)
	assert.Len(t, result.Data, 2)
	assert.Equal(t, float64(2), result.Summary["total_failed"])

	f := activity.lastFilter()
	assert.Equal(t, "budi", f.Email)
	assert.Equal(t, "10.0.0.2", f.IPAddress)
}

func TestHandler_GetSplitsActions(t *testing.T) {
	activity := &MockActivityReader{}
	h := newTestRouter(newTestService(activity, nil, nil))

	rec := doRequest(t, h, http.MethodGet,
		"/api/v1/reports/audit?type=SECURITY_EVENTS&start_date=2026-10-01&end_date=2026-10-31&actions=ROLE_CHANGED,%20ACCOUNT_LOCKED", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, []string{"ROLE_CHANGED", "ACCOUNT_LOCKED"}, activity.lastFilter().Actions)
}

func TestHandler_PostExports(t *testing.T) {
	h := newTestRouter(newTestService(&MockActivityReader{attempts: loginFixture()}, nil, nil))

	t.Run("csv", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/reports/audit",
			`{"type":"LOGIN_ACTIVITY","start_date":"2026-10-01","end_date":"2026-10-31","format":"csv"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		assert.Equal(t, ContentTypeCSV, rec.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=login-activity-2026-10-19.csv", rec.Header().Get("Content-Disposition"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "Waktu,Email,Status"))
	})

	t.Run("xlsx", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/reports/audit",
			`{"type":"LOGIN_ACTIVITY","start_date":"2026-10-01","end_date":"2026-10-31","format":"xlsx"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		assert.Equal(t, ContentTypeXLSX, rec.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=login-activity-2026-10-19.xlsx", rec.Header().Get("Content-Disposition"))
		assert.NotEmpty(t, rec.Header().Get("Content-Length"))
		assert.Equal(t, "PK", rec.Body.String()[:2])
	})
}

func TestHandler_PostArchive(t *testing.T) {
	archive := NewMockArchiver()
	h := newTestRouter(newTestService(&MockActivityReader{attempts: loginFixture()}, nil, archive))

	rec := doRequest(t, h, http.MethodPost, "/api/v1/reports/audit",
		`{"type":"LOGIN_ACTIVITY","start_date":"2026-10-01","end_date":"2026-10-31","format":"csv","archive":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decodeEnvelope(t, rec)
	var archived map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &archived))

	assert.Equal(t, "login-activity-2026-10-19.csv", archived["filename"])
	assert.Equal(t, float64(3600), archived["expires_in"])
	assert.Contains(t, archived["url"], "reports/login-activity/2026/10/")
	assert.Len(t, archive.uploads, 1)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		svc    func() *Service
		body   string
		status int
		code   string
		field  string
	}{
		{
			name:   "malformed body",
			body:   `{"type":`,
			status: http.StatusBadRequest,
			code:   CodeValidationError,
		},
		{
			name:   "missing fields",
			body:   `{"type":"LOGIN_ACTIVITY"}`,
			status: http.StatusBadRequest,
			code:   CodeValidationError,
			field:  "start_date",
		},
		{
			name:   "bad user id",
			body:   `{"type":"LOGIN_ACTIVITY","start_date":"2026-10-01","end_date":"2026-10-02","filters":{"user_id":"nope"}}`,
			status: http.StatusBadRequest,
			code:   CodeValidationError,
			field:  "user_id",
		},
		{
			name:   "unknown type",
			body:   `{"type":"TICKET_VOLUME","start_date":"2026-10-01","end_date":"2026-10-02"}`,
			status: http.StatusBadRequest,
			code:   CodeUnknownReportType,
		},
		{
			name:   "inverted range",
			body:   `{"type":"LOGIN_ACTIVITY","start_date":"2026-10-19","end_date":"2026-10-01"}`,
			status: http.StatusBadRequest,
			code:   CodeInvalidDateRange,
		},
		{
			name:   "archive json",
			body:   `{"type":"LOGIN_ACTIVITY","start_date":"2026-10-01","end_date":"2026-10-02","archive":true}`,
			status: http.StatusBadRequest,
			code:   CodeValidationError,
			field:  "format",
		},
		{
			name:   "archive unavailable",
			body:   `{"type":"LOGIN_ACTIVITY","start_date":"2026-10-01","end_date":"2026-10-02","format":"xlsx","archive":true}`,
			status: http.StatusServiceUnavailable,
			code:   CodeArchiveUnavailable,
		},
		{
			name: "database failure",
			svc: func() *Service {
				return newTestService(&MockActivityReader{err: errors.New("connection reset")}, nil, nil)
			},
			body:   `{"type":"LOGIN_ACTIVITY","start_date":"2026-10-01","end_date":"2026-10-02"}`,
			status: http.StatusInternalServerError,
			code:   CodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(nil, nil, nil)
			if tt.svc != nil {
				svc = tt.svc()
			}
			h := newTestRouter(svc)

			rec := doRequest(t, h, http.MethodPost, "/api/v1/reports/audit", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			if tt.field != "" {
				assert.Contains(t, env.Error.Details, tt.field)
			}
		})
	}
}

func TestRegisterRoutes_MiddlewareOrder(t *testing.T) {
	handler := NewHandler(newTestService(nil, nil, nil), nil)

	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := chi.NewRouter()
	RegisterRoutes(r, handler, mark("auth"), mark("role"), mark("rate"))

	rec := doRequest(t, r, http.MethodGet, "/reports/audit/types", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"auth", "role", "rate"}, order)
}
