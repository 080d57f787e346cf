package astro

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Compute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/astro/compute" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var input ComputeInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			t.Errorf("decode input: %v", err)
		}
		if input.Timezone != "Asia/Kolkata" {
			t.Errorf("timezone = %q", input.Timezone)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"gain_signal":  "strengthening",
				"risk_signal":  "mild resistance",
				"phase_signal": "forming",
				"confidence":   0.72,
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	signal, err := client.Compute(context.Background(), &ComputeInput{
		DOBDate:  "1995-08-21",
		DOBTime:  "08:00:03",
		Latitude: 29.85, Longitude: 77.89,
		Timezone:       "Asia/Kolkata",
		ProblemContext: "timing readiness around a career shift",
		UDASummary:     "work stress",
	})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if signal.GainSignal != "strengthening" || signal.Confidence != 0.72 {
		t.Errorf("signal = %+v", signal)
	}
}

func TestClient_ComputeFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "success false",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "ephemeris unavailable"})
			},
		},
		{
			name: "success without data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"success": true})
			},
		},
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL)
			if _, err := client.Compute(context.Background(), &ComputeInput{}); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		client := NewClient(server.URL, WithTimeout(20*time.Millisecond))
		if _, err := client.Compute(context.Background(), &ComputeInput{}); err == nil {
			t.Fatal("expected timeout error")
		}
	})
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	if !NewClient(server.URL).Health(context.Background()) {
		t.Error("Health() = false, want true")
	}
	if NewClient("http://127.0.0.1:1").Health(context.Background()) {
		t.Error("Health() against dead endpoint = true")
	}
}
