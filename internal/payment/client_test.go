package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateSessionDevMode(t *testing.T) {
	c := &Client{PublicURL: "http://localhost:3000/"}

	s, err := c.CreateSession(context.Background(), "booking-42", 3000, "Inception")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if !strings.HasPrefix(s.Ref, "qs_") || len(s.Ref) != 3+32 {
		t.Errorf("ref = %q, want qs_ prefix and 32 hex chars", s.Ref)
	}
	if s.URL != "http://localhost:3000/pay/"+s.Ref {
		t.Errorf("url = %q", s.URL)
	}

	// References must not repeat across sessions.
	s2, err := c.CreateSession(context.Background(), "booking-43", 1500, "Inception")
	if err != nil {
		t.Fatalf("second CreateSession: %v", err)
	}
	if s2.Ref == s.Ref {
		t.Error("two sessions got the same reference")
	}
}

func TestCreateSessionProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Errorf("authorization = %q", got)
		}
		var req sessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Reference != "booking-42" || req.AmountCents != 3000 {
			t.Errorf("request = %+v", req)
		}
		fmt.Fprint(w, `{"id": "cs_123", "url": "https://checkout.example/cs_123"}`)
	}))
	defer srv.Close()

	c := &Client{APIURL: srv.URL, APIKey: "sk_test", HTTPClient: srv.Client()}
	s, err := c.CreateSession(context.Background(), "booking-42", 3000, "Inception")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if s.Ref != "cs_123" || s.URL != "https://checkout.example/cs_123" {
		t.Errorf("session = %+v", s)
	}
}

func TestCreateSessionProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := &Client{APIURL: srv.URL, HTTPClient: srv.Client()}
	if _, err := c.CreateSession(context.Background(), "booking-42", 3000, "Inception"); err == nil {
		t.Fatal("expected an error from a 503 provider")
	}
}
