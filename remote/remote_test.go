package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"google.golang.org/genai"
)

var askedAt = time.Date(2025, 6, 1, 15, 4, 5, 0, time.Local)

func TestQuery_Prompt(t *testing.T) {
	q := Query{Question: "What is a goroutine?", AskedAt: askedAt}
	assert.Equal(t, "What is a goroutine?\n(Asked on 6/1/2025, 3:04:05 PM)", q.Prompt())
}

func TestHTTPClient_Ask(t *testing.T) {
	var gotBody []byte
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotKey = r.Header.Get("x-goog-api-key")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"lightweight thread"},{"text":"ignored"}]}}]}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "secret")
	answer, err := client.Ask(context.Background(), Query{Question: "What is a goroutine?", AskedAt: askedAt})
	require.NoError(t, err)
	assert.Equal(t, "lightweight thread", answer)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t,
		"What is a goroutine?\n(Asked on 6/1/2025, 3:04:05 PM)",
		gjson.GetBytes(gotBody, "contents.0.parts.0.text").String())
}

func TestHTTPClient_NoAnswer(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"candidates":[]}`,
		`{"candidates":[{"content":{"parts":[]}}]}`,
		`{"promptFeedback":{"blockReason":"SAFETY"}}`,
	}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			}))
			defer srv.Close()

			answer, err := NewHTTPClient(srv.URL, "").Ask(context.Background(), Query{Question: "q"})
			require.NoError(t, err)
			assert.Empty(t, answer)
		})
	}
}

func TestHTTPClient_Failures(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":{"message":"bad"}}`)
		}))
		defer srv.Close()

		_, err := NewHTTPClient(srv.URL, "").Ask(context.Background(), Query{Question: "q"})
		assert.True(t, errors.Is(err, ErrStatus), "got %v", err)
	})

	t.Run("invalid json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `<html>gateway</html>`)
		}))
		defer srv.Close()

		_, err := NewHTTPClient(srv.URL, "").Ask(context.Background(), Query{Question: "q"})
		assert.Error(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		_, err := NewHTTPClient(url, "").Ask(context.Background(), Query{Question: "q"})
		assert.Error(t, err)
	})
}

func TestHTTPClient_Retries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)
	}))
	defer srv.Close()

	answer, err := NewHTTPClient(srv.URL, "").WithRetries(time.Millisecond).Ask(context.Background(), Query{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, "ok", answer)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPClient_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, "").WithRetries(time.Millisecond, time.Millisecond).Ask(context.Background(), Query{Question: "q"})
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWithRetries_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := withRetries(ctx, []time.Duration{time.Hour}, func() (string, error) {
		return "", errors.New("status 503: unavailable")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFirstText(t *testing.T) {
	tests := []struct {
		name     string
		response *genai.GenerateContentResponse
		want     string
	}{
		{"nil", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, ""},
		{"text", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "answer"}, {Text: "more"}}},
		}}}, "answer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, firstText(tt.response))
		})
	}
}

func TestAskerFunc(t *testing.T) {
	var a Asker = AskerFunc(func(ctx context.Context, q Query) (string, error) {
		return "echo: " + q.Question, nil
	})
	answer, err := a.Ask(context.Background(), Query{Question: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", answer)
}
