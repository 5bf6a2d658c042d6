package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStubClient points the OpenAI client at a local stub server
func newStubClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := openai.DefaultConfig("test-key")
	config.BaseURL = server.URL + "/v1"

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  openai.GPT3Dot5Turbo,
	}
}

func TestNewClient_DefaultsModel(t *testing.T) {
	c := NewClient("key", "")
	assert.Equal(t, openai.GPT3Dot5Turbo, c.model)

	c = NewClient("key", "gpt-4")
	assert.Equal(t, "gpt-4", c.model)
}

func TestAsk_ReturnsTrimmedAnswer(t *testing.T) {
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "  hello there  "}}]
		}`))
	})

	answer, err := c.Ask(context.Background(), "hi")

	require.NoError(t, err)
	assert.Equal(t, "hello there", answer)
}

func TestAsk_NoChoices_Error(t *testing.T) {
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	_, err := c.Ask(context.Background(), "hi")

	assert.Error(t, err)
}

func TestAsk_UpstreamFailure_Error(t *testing.T) {
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	})

	_, err := c.Ask(context.Background(), "hi")

	assert.Error(t, err)
}

func TestPaint_ReturnsImageURL(t *testing.T) {
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [{"url": "https://img.example/rose.png"}]
		}`))
	})

	url, err := c.Paint(context.Background(), "a red rose")

	require.NoError(t, err)
	assert.Equal(t, "https://img.example/rose.png", url)
}

func TestPaint_NoData_Error(t *testing.T) {
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": []}`))
	})

	_, err := c.Paint(context.Background(), "a red rose")

	assert.Error(t, err)
}
