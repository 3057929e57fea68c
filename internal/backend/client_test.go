package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/dashboard/internal/backend"
	"github.com/jonesrussell/north-cloud/dashboard/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return backend.New(srv.URL, nil, backend.WithHTTPClient(srv.Client()))
}

func TestListJobsParsesPage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/jobs", r.URL.Path)
		assert.Equal(t, "RUNNING", r.URL.Query().Get("status"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("size"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jobs": []map[string]any{
				{
					"job_id":          "job-1",
					"topic":           "climate policy",
					"overall_status":  "RUNNING",
					"total_tasks":     10,
					"completed_tasks": 4,
					"failed_tasks":    1,
				},
			},
			"total":       41,
			"total_pages": 3,
		})
	}))

	filter := models.StatusRunning
	page, err := client.ListJobs(context.Background(), &filter, 2, 20)
	require.NoError(t, err)

	assert.Equal(t, 41, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 20, page.PageSize)
	require.Len(t, page.Jobs, 1)
	assert.Equal(t, "job-1", page.Jobs[0].JobID)
	assert.Equal(t, models.StatusRunning, page.Jobs[0].OverallStatus)
}

func TestListJobsOmitsStatusWhenUnfiltered(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, filtered := r.URL.Query()["status"]
		assert.False(t, filtered, "no status parameter for the ALL view")
		_ = json.NewEncoder(w).Encode(map[string]any{"jobs": []any{}, "total": 0, "total_pages": 0})
	}))

	_, err := client.ListJobs(context.Background(), nil, 0, 20)
	require.NoError(t, err)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind backend.Kind
		wantMsg  string
	}{
		{
			name:     "missing job",
			status:   http.StatusNotFound,
			body:     `{"error":"job not found"}`,
			wantKind: backend.KindNotFound,
			wantMsg:  "job not found",
		},
		{
			name:     "terminal job cannot cancel",
			status:   http.StatusConflict,
			body:     `{"error":"job already completed"}`,
			wantKind: backend.KindConflict,
			wantMsg:  "job already completed",
		},
		{
			name:     "bad request",
			status:   http.StatusBadRequest,
			body:     `{"error":"username too short","field":"username"}`,
			wantKind: backend.KindValidation,
			wantMsg:  "username too short",
		},
		{
			name:     "unprocessable entity",
			status:   http.StatusUnprocessableEntity,
			body:     `{"message":"email format invalid"}`,
			wantKind: backend.KindValidation,
			wantMsg:  "email format invalid",
		},
		{
			name:     "server failure",
			status:   http.StatusInternalServerError,
			body:     `{"error":"database unavailable"}`,
			wantKind: backend.KindUnknown,
			wantMsg:  "database unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			err := client.CancelJob(context.Background(), "job-1")
			require.Error(t, err)

			assert.Equal(t, tt.wantKind, backend.KindOf(err))

			var be *backend.Error
			require.ErrorAs(t, err, &be)
			// Backend messages pass through verbatim; the client never
			// rewrites them.
			assert.Equal(t, tt.wantMsg, be.Message)
			assert.Equal(t, tt.status, be.StatusCode)
		})
	}
}

func TestValidationErrorCarriesField(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"password too weak","field":"password"}`))
	}))

	_, err := client.Register(context.Background(), backend.RegisterRequest{
		Username: "someone",
		Email:    "someone@example.com",
		Password: "short",
	})
	require.Error(t, err)

	var be *backend.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, backend.KindValidation, be.Kind)
	assert.Equal(t, "password", be.Field)
}

func TestNetworkFailureIsKindNetwork(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := backend.New(srv.URL, nil, backend.WithHTTPClient(srv.Client()))
	srv.Close() // connection refused from here on

	_, err := client.ListJobs(context.Background(), nil, 0, 20)
	require.Error(t, err)
	assert.Equal(t, backend.KindNetwork, backend.KindOf(err))
	assert.True(t, backend.IsKind(err, backend.KindNetwork))
}

func TestAvailabilityChecks(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/check-username":
			taken := r.URL.Query().Get("username") == "taken-name"
			_ = json.NewEncoder(w).Encode(map[string]bool{"available": !taken})
		case "/api/v1/auth/check-email":
			_ = json.NewEncoder(w).Encode(map[string]bool{"available": true})
		default:
			http.NotFound(w, r)
		}
	}))

	ok, err := client.CheckUsernameAvailable(context.Background(), "taken-name")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = client.CheckUsernameAvailable(context.Background(), "fresh-name")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.CheckEmailAvailable(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterSendsPayloadAndBearerToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/register":
			var req backend.RegisterRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "newuser", req.Username)
			assert.Equal(t, "new@example.com", req.Email)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
		case "/api/v1/jobs/j1/cancel":
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))

	resp, err := client.Register(context.Background(), backend.RegisterRequest{
		Username: "newuser",
		Email:    "new@example.com",
		Password: "longenough",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-123", resp.AccessToken)

	client.SetToken(resp.AccessToken)
	require.NoError(t, client.CancelJob(context.Background(), "j1"))
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestMalformedBodyIsKindUnknown(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"jobs": [`))
	}))

	_, err := client.ListJobs(context.Background(), nil, 0, 20)
	require.Error(t, err)
	assert.Equal(t, backend.KindUnknown, backend.KindOf(err))
}
