package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lucaf1-15/lucai-backend/internal/models"
)

func TestCompleteSuccess(t *testing.T) {
	var gotReq completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if errDecode := json.NewDecoder(r.Body).Decode(&gotReq); errDecode != nil {
			t.Errorf("decode request: %v", errDecode)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "hello"}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 5, "completion_tokens": 2, "total_tokens": 7},
		})
	}))
	defer srv.Close()

	client := NewGroqClient("test-key", srv.URL, "")
	completion, errComplete := client.Complete(context.Background(), "", []models.Message{{Role: "user", Content: "hi"}})
	if errComplete != nil {
		t.Fatalf("complete: %v", errComplete)
	}
	if completion.Message.Content != "hello" {
		t.Fatalf("expected assistant reply, got %+v", completion.Message)
	}
	if completion.Usage.TotalTokens != 7 {
		t.Fatalf("expected usage 7, got %d", completion.Usage.TotalTokens)
	}
	if gotReq.Model != DefaultModel {
		t.Fatalf("expected default model, got %q", gotReq.Model)
	}
	if gotReq.Stream {
		t.Fatalf("expected non-streaming request")
	}
}

func TestCompleteUpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			client := NewGroqClient("test-key", srv.URL, "")
			if _, errComplete := client.Complete(context.Background(), "", []models.Message{{Role: "user", Content: "hi"}}); !errors.Is(errComplete, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, errComplete)
			}
		})
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	client := NewGroqClient("test-key", srv.URL, "")
	if _, errComplete := client.Complete(context.Background(), "", []models.Message{{Role: "user", Content: "hi"}}); errComplete == nil {
		t.Fatalf("expected error for empty choices")
	}
}

func TestRequestedModelOverridesDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req completionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "custom-model" {
			t.Errorf("expected custom-model, got %q", req.Model)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	client := NewGroqClient("test-key", srv.URL, "")
	if _, errComplete := client.Complete(context.Background(), "custom-model", []models.Message{{Role: "user", Content: "hi"}}); errComplete != nil {
		t.Fatalf("complete: %v", errComplete)
	}
}
