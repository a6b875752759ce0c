package web_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadwise/tracy/pkg/web"
)

func setupActionApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New()
	web.NewActionHandlers(slog.Default()).RegisterRoutes(app)

	return app
}

func TestActionHandlers_LoadSearch(t *testing.T) {
	t.Parallel()

	app := setupActionApp(t)

	resp, body := get(t, app, "/api/v1/tracy/load-search")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ids []int
	require.NoError(t, json.Unmarshal(body, &ids))
	assert.Equal(t, []int{1, 2, 3, 4}, ids)
}

func TestActionHandlers_FieldResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		path   string
		field  string
		value  string
	}{
		{"send email", http.MethodPost, "/api/v1/tracy/send-email", "message", "Email sent"},
		{"process email", http.MethodPost, "/api/v1/tracy/process-email", "result", "classified"},
		{"extract data", http.MethodPost, "/api/v1/tracy/extract-data", "data", "extracted data"},
		{"escalation milestones", http.MethodGet, "/api/v1/tracy/escalation-milestones", "status", "milestone check completed"},
		{"update load", http.MethodPost, "/api/v1/tracy/update-load", "message", "load updated"},
		{"send escalation email", http.MethodPost, "/api/v1/tracy/send-escalation-email", "message", "escalation email to carrier"},
	}

	app := setupActionApp(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, body := request(t, app, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var payload map[string]any
			require.NoError(t, json.Unmarshal(body, &payload))
			assert.Equal(t, tt.value, payload[tt.field])
		})
	}
}

func TestActionHandlers_MethodMismatch(t *testing.T) {
	t.Parallel()

	app := setupActionApp(t)

	resp, _ := request(t, app, http.MethodGet, "/api/v1/tracy/send-email")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
