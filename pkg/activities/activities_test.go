package activities_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loadwise/tracy/pkg/activities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupActionBlocks(t *testing.T, handler http.Handler) *activities.Activities {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return activities.New(server.URL, slog.Default())
}

func jsonHandler(t *testing.T, wantMethod, wantPath, response string) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantMethod, r.Method)
		assert.Equal(t, wantPath, r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	})
}

func TestLoadSearch(t *testing.T) {
	t.Parallel()

	a := setupActionBlocks(t, jsonHandler(t, http.MethodGet, "/api/v1/tracy/load-search", `[1, 2, 3, 4]`))

	ids, err := a.LoadSearch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, ids)
}

func TestFieldActivities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		method   string
		path     string
		response string
		call     func(a *activities.Activities) (string, error)
		expected string
	}{
		{
			name:     "send email",
			method:   http.MethodPost,
			path:     "/api/v1/tracy/send-email",
			response: `{"message": "Email sent"}`,
			call:     func(a *activities.Activities) (string, error) { return a.SendEmail(context.Background()) },
			expected: "Email sent",
		},
		{
			name:     "process email",
			method:   http.MethodPost,
			path:     "/api/v1/tracy/process-email",
			response: `{"result": "classified"}`,
			call:     func(a *activities.Activities) (string, error) { return a.ProcessEmail(context.Background()) },
			expected: "classified",
		},
		{
			name:     "extract data",
			method:   http.MethodPost,
			path:     "/api/v1/tracy/extract-data",
			response: `{"data": "extracted data"}`,
			call:     func(a *activities.Activities) (string, error) { return a.ExtractData(context.Background()) },
			expected: "extracted data",
		},
		{
			name:     "escalation milestones",
			method:   http.MethodGet,
			path:     "/api/v1/tracy/escalation-milestones",
			response: `{"status": "milestone check completed"}`,
			call: func(a *activities.Activities) (string, error) {
				return a.GetEscalationMilestones(context.Background())
			},
			expected: "milestone check completed",
		},
		{
			name:     "update load",
			method:   http.MethodPost,
			path:     "/api/v1/tracy/update-load",
			response: `{"message": "load updated"}`,
			call:     func(a *activities.Activities) (string, error) { return a.UpdateLoad(context.Background()) },
			expected: "load updated",
		},
		{
			name:     "send escalation email",
			method:   http.MethodPost,
			path:     "/api/v1/tracy/send-escalation-email",
			response: `{"message": "escalation email to carrier"}`,
			call: func(a *activities.Activities) (string, error) {
				return a.SendEscalationEmail(context.Background())
			},
			expected: "escalation email to carrier",
		},
		{
			name:     "missing field falls back",
			method:   http.MethodPost,
			path:     "/api/v1/tracy/send-email",
			response: `{}`,
			call:     func(a *activities.Activities) (string, error) { return a.SendEmail(context.Background()) },
			expected: "Email sent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := setupActionBlocks(t, jsonHandler(t, tt.method, tt.path, tt.response))

			result, err := tt.call(a)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestActivities_ErrorStatus(t *testing.T) {
	t.Parallel()

	a := setupActionBlocks(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := a.SendEmail(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestSleep(t *testing.T) {
	t.Parallel()

	a := activities.New("http://unused", slog.Default())

	result, err := a.Sleep(context.Background(), "0")
	require.NoError(t, err)
	assert.Equal(t, "slept for 0 seconds", result)

	_, err = a.Sleep(context.Background(), "not-a-number")
	require.Error(t, err)
}
