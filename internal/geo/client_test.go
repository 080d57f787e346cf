package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestResolvePlace(t *testing.T) {
	var gotPlace string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPlace = r.URL.Query().Get("place")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"latitude":28.6139,"longitude":77.209,"timezone":"Asia/Kolkata"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	place, err := client.ResolvePlace(context.Background(), "Delhi", "", "India")
	if err != nil {
		t.Fatalf("ResolvePlace failed: %v", err)
	}
	if gotPlace != "Delhi, India" {
		t.Errorf("place query = %q, want %q", gotPlace, "Delhi, India")
	}
	if place.Latitude != 28.6139 || place.Longitude != 77.209 {
		t.Errorf("coordinates = (%v, %v), want (28.6139, 77.209)", place.Latitude, place.Longitude)
	}
	if place.Timezone != "Asia/Kolkata" {
		t.Errorf("timezone = %q, want Asia/Kolkata", place.Timezone)
	}
}

func TestResolvePlaceFlatPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"latitude":19.076,"longitude":72.8777,"timezone":"Asia/Kolkata"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	place, err := client.ResolvePlace(context.Background(), "Mumbai", "Maharashtra", "India")
	if err != nil {
		t.Fatalf("ResolvePlace failed: %v", err)
	}
	if place.Latitude != 19.076 {
		t.Errorf("latitude = %v, want 19.076", place.Latitude)
	}
}

func TestResolvePlaceErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"upstream down"}`},
		{"not found", http.StatusNotFound, `{}`},
		{"missing timezone", http.StatusOK, `{"data":{"latitude":1,"longitude":2}}`},
		{"malformed json", http.StatusOK, `{not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL)
			if _, err := client.ResolvePlace(context.Background(), "Nowhere", "", ""); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestResolvePlaceEmptyComponents(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.ResolvePlace(context.Background(), "  ", "", ""); err == nil {
		t.Error("expected error for empty place, got nil")
	}
	if called {
		t.Error("expected no request for empty place")
	}
}

func TestResolvePlaceTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithTimeout(10*time.Millisecond))
	if _, err := client.ResolvePlace(context.Background(), "Delhi", "", "India"); err == nil {
		t.Error("expected timeout error, got nil")
	}
}
