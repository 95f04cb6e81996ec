package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momentoamor_backend/internals/configs"
)

func messageApp() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	ctrl := NewMessageController()
	app.Post("/api/messages/generate", ctrl.Generate)
	return app
}

func postGenerate(t *testing.T, app *fiber.App, payload interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/messages/generate", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func withAIGateway(t *testing.T, url, key string) {
	t.Helper()
	prevURL, prevKey := configs.AIGatewayURL, configs.AIGatewayKey
	configs.AIGatewayURL = url
	configs.AIGatewayKey = key
	t.Cleanup(func() {
		configs.AIGatewayURL = prevURL
		configs.AIGatewayKey = prevKey
	})
}

func TestGenerateMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		msgs := body["messages"].([]interface{})
		user := msgs[1].(map[string]interface{})
		assert.Contains(t, user["content"], "Maria")
		assert.Contains(t, user["content"], "poetico")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  Maria, você é meu poema favorito.  "}}]}`))
	}))
	defer srv.Close()
	withAIGateway(t, srv.URL, "sk-test")

	resp := postGenerate(t, messageApp(), map[string]string{
		"nome_parceiro": "Maria",
		"tom":           "poetico",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	var parsed struct {
		Data struct {
			Message string `json:"mensagem"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, "Maria, você é meu poema favorito.", parsed.Data.Message)
}

func TestGenerateMessageDisabledWithoutKey(t *testing.T) {
	withAIGateway(t, "https://unused.example", "")

	resp := postGenerate(t, messageApp(), map[string]string{"nome_parceiro": "Maria"})
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestGenerateMessageValidation(t *testing.T) {
	withAIGateway(t, "https://unused.example", "sk-test")

	resp := postGenerate(t, messageApp(), map[string]string{"tom": "romantico"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
