package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/rushteam/cinerec/core"
)

func TestEncodeTexts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/encode" {
			t.Errorf("path = %q, want /encode", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}

		var req struct {
			Model string   `json:"model"`
			Texts []string `json:"texts"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "all-MiniLM-L6-v2" {
			t.Errorf("model = %q", req.Model)
		}

		resp := map[string]any{"embeddings": [][]float64{{1, 0}, {0, 1}}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewSTEncoderClient(srv.URL, "all-MiniLM-L6-v2")
	got, err := c.EncodeTexts(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EncodeTexts() error = %v", err)
	}
	want := [][]float64{{1, 0}, {0, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EncodeTexts() = %v, want %v", got, want)
	}
}

func TestEncodeTextsSendsAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float64{{1}}})
	}))
	defer srv.Close()

	c := NewSTEncoderClient(srv.URL, "m", WithSTEncoderAPIKey("secret"))
	if _, err := c.EncodeTexts(context.Background(), []string{"a"}); err != nil {
		t.Fatalf("EncodeTexts() error = %v", err)
	}
}

func TestEncodeTextsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewSTEncoderClient(srv.URL, "m")
	_, err := c.EncodeTexts(context.Background(), []string{"a"})
	if !core.IsUnavailable(err) {
		t.Errorf("error = %v, want unavailable", err)
	}
}

func TestEncodeTextsCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float64{{1}}})
	}))
	defer srv.Close()

	c := NewSTEncoderClient(srv.URL, "m")
	if _, err := c.EncodeTexts(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected count mismatch error")
	}
}

func TestEncodeTextsEmptyInputNoRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewSTEncoderClient(srv.URL, "m")
	got, err := c.EncodeTexts(context.Background(), nil)
	if err != nil {
		t.Fatalf("EncodeTexts() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got = %v, want empty", got)
	}
	if called {
		t.Error("no HTTP request expected for empty input")
	}
}
