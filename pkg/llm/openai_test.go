package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClient_Chat(t *testing.T) {
	var gotAuth string
	var gotReq openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"the sky is blue"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL, "sk-test", "gpt-4o-mini")
	out, err := client.Chat(context.Background(),
		[]Message{{Role: "user", Content: "what color is the sky?"}},
		&SamplingOptions{Temperature: 0.2, Seed: 7})
	require.NoError(t, err)

	assert.Equal(t, "the sky is blue", out)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	assert.Equal(t, 0.2, gotReq.Temperature)
	assert.Equal(t, int64(7), gotReq.Seed)
}

func TestOpenAIClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL, "", "gpt-4o-mini")
	_, err := client.Chat(context.Background(), nil, nil)
	assert.ErrorContains(t, err, "429")
}

func TestOpenAIClient_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL, "", "gpt-4o-mini")
	_, err := client.Chat(context.Background(), nil, nil)
	assert.ErrorContains(t, err, "empty choices")
}
