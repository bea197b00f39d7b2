package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req apiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Inputs == "" {
			t.Error("request inputs empty")
		}
		if len(req.Parameters.CandidateLabels) != 4 {
			t.Errorf("candidate labels = %v, want 4 entries", req.Parameters.CandidateLabels)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer tok")
		}

		resp := apiResponse{
			Labels: []string{"sports", "other", "school", "social media"},
			Scores: []float64{0.81, 0.1, 0.06, 0.03},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer srv.Close()

	client, err := New(context.Background(), WithEndpoint(srv.URL), WithToken("tok"))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	labels := []string{"sports", "school", "social media", "other"}
	result, err := client.Classify(context.Background(), "zápas o víkendu", labels)
	if err != nil {
		t.Fatalf("Classify() failed: %v", err)
	}
	if result.Label != "sports" {
		t.Errorf("Label = %q, want %q", result.Label, "sports")
	}
	if result.Score != 0.81 {
		t.Errorf("Score = %v, want 0.81", result.Score)
	}
}

func TestClassifyRetriesModelLoading(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, `{"error":"model loading"}`, http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"labels":["other"],"scores":[0.5]}`)) //nolint:errcheck // test handler
	}))
	defer srv.Close()

	client, err := New(context.Background(), WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	result, err := client.Classify(context.Background(), "text", []string{"other"})
	if err != nil {
		t.Fatalf("Classify() failed: %v", err)
	}
	if result.Label != "other" {
		t.Errorf("Label = %q, want %q", result.Label, "other")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestClassifyEmptyText(t *testing.T) {
	client, err := New(context.Background(), WithEndpoint("http://localhost:0"))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if _, err := client.Classify(context.Background(), "", []string{"other"}); err == nil {
		t.Error("expected error for empty text")
	}
}
