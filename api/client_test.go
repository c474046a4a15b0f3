package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Error("expected error for missing base URL")
	}

	client, err := NewClient(Config{BaseURL: "http://localhost:8080/"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.baseURL != "http://localhost:8080" {
		t.Errorf("baseURL = %q, trailing slash should be trimmed", client.baseURL)
	}
}

func TestClient_Do_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/orders" {
			t.Errorf("Path = %s, want /orders", r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("X-Request-ID not attached")
		}
		if r.Header.Get("Idempotency-Key") != "" {
			t.Error("Idempotency-Key must not be attached to GET")
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client, _ := NewClient(Config{BaseURL: server.URL})

	body, err := client.Get(context.Background(), "/orders", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload["status"] != "ok" {
		t.Errorf("payload = %v", payload)
	}
}

func TestClient_Do_AttachesTokenAndIdempotencyKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want Bearer tok-1", got)
		}
		if r.Header.Get("Idempotency-Key") == "" {
			t.Error("Idempotency-Key missing on POST")
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := NewClient(Config{BaseURL: server.URL})
	client.SetTokenSource(func() string { return "tok-1" })

	if _, err := client.Post(context.Background(), "/orders", map[string]int{"n": 1}); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
}

func TestClient_Do_NoAuthorizationWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := NewClient(Config{BaseURL: server.URL})
	if _, err := client.Get(context.Background(), "/", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
}

func TestClient_Do_QueryEncoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "latte order" {
			t.Errorf("q = %q", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := NewClient(Config{BaseURL: server.URL})
	q := url.Values{}
	q.Set("q", "latte order")
	if _, err := client.Get(context.Background(), "/orders/search", q); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
}

func TestClient_Do_ErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{400, KindBadRequest},
		{401, KindUnauthorized},
		{404, KindBadRequest},
		{422, KindBadRequest},
		{500, KindUnknown},
		{503, KindUnknown},
	}

	for _, tc := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{"message":"nope"}`))
		}))

		client, _ := NewClient(Config{BaseURL: server.URL})
		_, err := client.Get(context.Background(), "/x", nil)
		server.Close()

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("status %d: error %T, want *Error", tc.status, err)
		}
		if apiErr.Kind != tc.kind {
			t.Errorf("status %d: kind = %s, want %s", tc.status, apiErr.Kind, tc.kind)
		}
		if apiErr.StatusCode != tc.status {
			t.Errorf("status %d: StatusCode = %d", tc.status, apiErr.StatusCode)
		}
		if apiErr.Message != "nope" {
			t.Errorf("status %d: Message = %q, want %q", tc.status, apiErr.Message, "nope")
		}
	}
}

func TestClient_Do_MessageFieldProbing(t *testing.T) {
	tests := []struct {
		body     string
		expected string
	}{
		{`{"message":"from message"}`, "from message"},
		{`{"error":"from error"}`, "from error"},
		{`{"error_description":"from description"}`, "from description"},
		{`{"detail":"from detail"}`, "from detail"},
		{`plain text`, "plain text"},
	}

	for _, tc := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(tc.body))
		}))

		client, _ := NewClient(Config{BaseURL: server.URL})
		_, err := client.Get(context.Background(), "/x", nil)
		server.Close()

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("body %q: error %T, want *Error", tc.body, err)
		}
		if apiErr.Message != tc.expected {
			t.Errorf("body %q: Message = %q, want %q", tc.body, apiErr.Message, tc.expected)
		}
	}
}

func TestClient_Do_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := NewClient(Config{BaseURL: server.URL, Timeout: 20 * time.Millisecond})

	_, err := client.Get(context.Background(), "/slow", nil)
	if !IsTimeout(err) {
		t.Errorf("err = %v, want timeout kind", err)
	}
}

func TestClient_Do_NetworkFailure(t *testing.T) {
	// Closed server: connection refused, no response received.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, _ := NewClient(Config{BaseURL: server.URL})

	_, err := client.Get(context.Background(), "/x", nil)
	if !IsNetwork(err) {
		t.Errorf("err = %v, want network kind", err)
	}
}

func TestKindHelpers(t *testing.T) {
	if !IsUnauthorized(&Error{Kind: KindUnauthorized}) {
		t.Error("IsUnauthorized false for unauthorized error")
	}
	if IsUnauthorized(errors.New("plain")) {
		t.Error("IsUnauthorized true for plain error")
	}
	if !IsBadRequest(&Error{Kind: KindBadRequest}) {
		t.Error("IsBadRequest false for bad request error")
	}
}
