package openrouter_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/docqa/pkg/llm/openrouter"
)

func TestClient_Ask(t *testing.T) {
	var (
		gotPath    string
		gotHeaders http.Header
		gotBody    map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeaders = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"blue"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := openrouter.New("secret", srv.URL, "some/model", "docqa", "https://example.test", time.Second)
	got, err := c.Ask(context.Background(), "What color is the sky?")
	require.NoError(t, err)
	assert.Equal(t, "blue", got)

	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer secret", gotHeaders.Get("Authorization"))
	assert.Equal(t, "docqa", gotHeaders.Get("X-Title"))
	assert.Equal(t, "https://example.test", gotHeaders.Get("HTTP-Referer"))
	assert.Equal(t, "some/model", gotBody["model"])
	assert.Contains(t, gotBody, "temperature")
	assert.Equal(t, float64(0), gotBody["temperature"])
	msgs := gotBody["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
}

func TestClient_AskErrors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := openrouter.New("", "", "", "", "", 0).Ask(context.Background(), "q")
		assert.ErrorIs(t, err, openrouter.ErrMissingAPIKey)
	})

	t.Run("http status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
		}))
		defer srv.Close()

		_, err := openrouter.New("k", srv.URL, "", "", "", time.Second).Ask(context.Background(), "q")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		_, err := openrouter.New("k", srv.URL, "", "", "", time.Second).Ask(context.Background(), "q")
		assert.ErrorIs(t, err, openrouter.ErrNoChoices)
	})
}

func TestNew_Defaults(t *testing.T) {
	c := openrouter.New("k", "", "", "", "", 0)
	assert.Equal(t, openrouter.DefaultBaseURL, c.BaseURL)
	assert.Equal(t, openrouter.DefaultModel, c.ModelName())
}
