package content

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRemoteGenerate(t *testing.T) {
	var gotTopic string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req struct {
			Topic string `json:"topic"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotTopic = req.Topic
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Cats","description":"Fun #cats"}`))
	}))
	defer server.Close()

	got, err := NewRemoteGenerator(server.URL, server.Client()).Generate(context.Background(), "funny cat video")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gotTopic != "funny cat video" {
		t.Errorf("topic sent = %q", gotTopic)
	}
	if got.Title != "Cats" || got.Description != "Fun #cats" {
		t.Errorf("Generate() = %+v", got)
	}
}

func TestRemoteGenerateErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     error
		wantMessage string
	}{
		{"serverMessage", http.StatusBadGateway, `{"error":"model overloaded"}`, ErrUpstream, "model overloaded"},
		{"bareStatus", http.StatusInternalServerError, `oops`, ErrUpstream, "500"},
		{"missingKeys", http.StatusOK, `{"title":"only"}`, ErrMalformedResponse, "missing description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewRemoteGenerator(server.URL, nil).Generate(context.Background(), "cats")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Generate() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantMessage) {
				t.Errorf("error %q does not mention %q", err, tt.wantMessage)
			}
		})
	}
}
