package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/yungbote/studyforge-backend/internal/platform/httpx"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

func TestGenerateTextRequestShape(t *testing.T) {
	var captured generateRequest
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost {
			t.Fatalf("method: want=%s got=%s", http.MethodPost, r.Method)
		}
		if r.URL.Path != "/v1beta/models/gemini-2.0-flash:generateContent" {
			t.Fatalf("path: got=%q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Fatalf("key query: got=%q", r.URL.Query().Get("key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return jsonResponse(t, http.StatusOK, map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": "hello"}}}},
			},
		}), nil
	})

	out, err := c.GenerateText(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if out != "hello" {
		t.Fatalf("text: want=%q got=%q", "hello", out)
	}
	if len(captured.Contents) != 1 || len(captured.Contents[0].Parts) != 1 || captured.Contents[0].Parts[0].Text != "say hello" {
		t.Fatalf("body: got=%+v", captured)
	}
}

func TestGenerateTextNoCandidates(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(t, http.StatusOK, map[string]any{"candidates": []any{}}), nil
	})
	out, err := c.GenerateText(context.Background(), "x")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if out != NoResponseText {
		t.Fatalf("text: want=%q got=%q", NoResponseText, out)
	}
}

func TestGenerateTextRateLimited(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(t, http.StatusTooManyRequests, map[string]any{"error": "quota"}), nil
	})
	_, err := c.GenerateText(context.Background(), "x")
	if err == nil {
		t.Fatalf("expected error")
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("error type: got=%T %v", err, err)
	}
	if !httpx.IsRateLimited(err) {
		t.Fatalf("IsRateLimited: want=true")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("message should carry the status code: %q", err.Error())
	}
	if calls != 1 {
		t.Fatalf("calls: want=1 got=%d", calls)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClientWithConfig(logger.Nop(), Config{}, nil); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func newTestClient(t *testing.T, roundTrip func(*http.Request) (*http.Response, error)) Client {
	t.Helper()
	c, err := NewClientWithConfig(logger.Nop(), Config{
		BaseURL: "http://gemini.local",
		APIKey:  "test-key",
		Model:   "gemini-2.0-flash",
	}, &http.Client{Transport: roundTripFunc(roundTrip)})
	if err != nil {
		t.Fatalf("NewClientWithConfig: %v", err)
	}
	return c
}

func jsonResponse(t *testing.T, status int, payload any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewReader(raw)),
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
