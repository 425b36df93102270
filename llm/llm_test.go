package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatMessageConstructors(t *testing.T) {
	assert.Equal(t, ChatMessage{Role: RoleSystem, Content: "s"}, SystemMessage("s"))
	assert.Equal(t, ChatMessage{Role: RoleUser, Content: "u"}, UserMessage("u"))
	assert.Equal(t, ChatMessage{Role: RoleAssistant, Content: "a"}, AssistantMessage("a"))
}

func TestMockLLMComplete(t *testing.T) {
	m := &MockLLM{Response: "canned"}

	got, err := m.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "canned", got)
	assert.Equal(t, []string{"prompt"}, m.Prompts)
}

func TestMockLLMChatRecordsLastUserMessage(t *testing.T) {
	m := &MockLLM{Response: "ok"}

	_, err := m.Chat(context.Background(), []ChatMessage{
		SystemMessage("system"),
		UserMessage("question"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"question"}, m.Prompts)
}

func TestMockLLMError(t *testing.T) {
	m := &MockLLM{Err: errors.New("down")}

	_, err := m.Complete(context.Background(), "prompt")
	assert.Error(t, err)
	_, err = m.Stream(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestMockLLMStream(t *testing.T) {
	m := &MockLLM{Response: "streamed"}

	tokens, err := m.Stream(context.Background(), "prompt")
	require.NoError(t, err)

	var got string
	for tok := range tokens {
		got += tok
	}
	assert.Equal(t, "streamed", got)
}

func TestOllamaLLMComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream bool   `json:"stream"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)

		json.NewEncoder(w).Encode(map[string]any{"response": "generated", "done": true})
	}))
	defer server.Close()

	model := NewOllamaLLM(WithOllamaBaseURL(server.URL))
	got, err := model.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "generated", got)
}

func TestOllamaLLMChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "chatted"},
			"done":    true,
		})
	}))
	defer server.Close()

	model := NewOllamaLLM(WithOllamaBaseURL(server.URL))
	got, err := model.Chat(context.Background(), []ChatMessage{UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "chatted", got)
}

func TestOllamaLLMStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enc := json.NewEncoder(w)
		enc.Encode(map[string]any{"response": "hel", "done": false})
		enc.Encode(map[string]any{"response": "lo", "done": true})
	}))
	defer server.Close()

	model := NewOllamaLLM(WithOllamaBaseURL(server.URL))
	tokens, err := model.Stream(context.Background(), "prompt")
	require.NoError(t, err)

	var got string
	for tok := range tokens {
		got += tok
	}
	assert.Equal(t, "hello", got)
}

func TestOllamaLLMStreamStopsOnCancel(t *testing.T) {
	const totalChunks = 20
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		enc := json.NewEncoder(w)
		for i := 0; i < totalChunks; i++ {
			enc.Encode(map[string]any{"response": "tok", "done": i == totalChunks-1})
			flusher.Flush()
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := NewOllamaLLM(WithOllamaBaseURL(server.URL))
	tokens, err := model.Stream(ctx, "prompt")
	require.NoError(t, err)

	// Take one token, then cancel. The channel is unbuffered, so the
	// producer can be at most one chunk ahead; it must notice the
	// cancellation and close the channel instead of blocking forever.
	_, open := <-tokens
	require.True(t, open)
	cancel()

	received := 1
	for range tokens {
		received++
	}
	assert.Less(t, received, totalChunks)
}

func TestOllamaLLMServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	model := NewOllamaLLM(WithOllamaBaseURL(server.URL))
	_, err := model.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
