package compose

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	}
}

func TestComposeEmailWithConfiguredModel(t *testing.T) {
	var gotRequest map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		json.NewEncoder(w).Encode(completionResponse("Dear team, ..."))
	}))
	defer srv.Close()

	client, err := NewClient(srv.Client(), Config{
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		Model:       "llama-3.3-70b-versatile",
		Temperature: 0.4,
	})
	require.NoError(t, err)

	body, err := client.ComposeEmail(context.Background(), "announce the offsite", "friendly")
	require.NoError(t, err)
	assert.Equal(t, "Dear team, ...", body)

	assert.Equal(t, "llama-3.3-70b-versatile", gotRequest["model"])
	assert.Equal(t, 0.4, gotRequest["temperature"])

	messages := gotRequest["messages"].([]interface{})
	require.Len(t, messages, 2)
	user := messages[1].(map[string]interface{})
	assert.Equal(t, "Write a friendly email. announce the offsite", user["content"])
}

func TestComposeEmailPicksModel(t *testing.T) {
	var usedModel string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/models":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []map[string]string{
					{"id": "whisper-large-v3"},
					{"id": "llama-3.1-8b-instant"},
				},
			})
		case "/chat/completions":
			var req struct {
				Model string `json:"model"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			usedModel = req.Model

			json.NewEncoder(w).Encode(completionResponse("ok"))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client, err := NewClient(srv.Client(), Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.ComposeEmail(context.Background(), "x", "")
	require.NoError(t, err)
	assert.Equal(t, "llama-3.1-8b-instant", usedModel)

	// the picked model is cached, no second /models call
	_, err = client.ComposeEmail(context.Background(), "y", "")
	require.NoError(t, err)
	assert.Equal(t, "llama-3.1-8b-instant", usedModel)
}

func TestComposeEmailDefaultTone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "Write a professional email.")

		json.NewEncoder(w).Encode(completionResponse("ok"))
	}))
	defer srv.Close()

	client, err := NewClient(srv.Client(), Config{BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)

	_, err = client.ComposeEmail(context.Background(), "x", "")
	require.NoError(t, err)
}

func TestComposeEmailProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewClient(srv.Client(), Config{BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)

	_, err = client.ComposeEmail(context.Background(), "x", "")
	require.Error(t, err)

	var codeErr CodeError
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusTooManyRequests, codeErr.StatusCode)
}

func TestComposeEmailNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer srv.Close()

	client, err := NewClient(srv.Client(), Config{BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)

	_, err = client.ComposeEmail(context.Background(), "x", "")
	require.Error(t, err)
}
