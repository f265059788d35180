package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"SentiPull/pkg/config"
)

// echoServer labels "up" texts positive, "down" texts negative, everything else neutral.
func echoServer(t *testing.T, calls *int32, drop bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.URL.Path != "/ProsusAI/finbert" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token")
		}
		var req inferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		rows := make([][]labelScore, 0, len(req.Inputs))
		for _, in := range req.Inputs {
			top := "neutral"
			switch {
			case strings.Contains(in, "up"):
				top = "positive"
			case strings.Contains(in, "down"):
				top = "negative"
			}
			rows = append(rows, []labelScore{
				{Label: "other", Score: 0.05},
				{Label: top, Score: 0.9},
			})
		}
		if drop && len(rows) > 0 {
			rows = rows[1:]
		}
		_ = json.NewEncoder(w).Encode(rows)
	}))
}

func TestFinBERTPreservesOrderAcrossBatches(t *testing.T) {
	var calls int32
	srv := echoServer(t, &calls, false)
	defer srv.Close()

	f := NewFinBERT(Config{Endpoint: srv.URL, APIToken: "tok", BatchSize: 2}, nil)
	out, err := f.Classify(context.Background(), []string{"shares up", "shares down", "flat day"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	want := []string{"positive", "negative", "neutral"}
	if len(out) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(out))
	}
	for i, w := range want {
		if out[i].Label != w || out[i].Score != 0.9 {
			t.Fatalf("result %d: got %+v want %s", i, out[i], w)
		}
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 sub-batches, got %d", calls)
	}
}

func TestFinBERTLengthMismatchIsError(t *testing.T) {
	var calls int32
	srv := echoServer(t, &calls, true)
	defer srv.Close()

	f := NewFinBERT(Config{Endpoint: srv.URL, APIToken: "tok"}, nil)
	if _, err := f.Classify(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestFinBERTMissingToken(t *testing.T) {
	f := NewFinBERT(Config{}, nil)
	_, err := f.Classify(context.Background(), []string{"x"})
	if !errors.Is(err, config.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestFinBERTTruncatesInput(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req inferenceRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		got = req.Inputs
		_, _ = w.Write([]byte(`[[{"label":"Positive","score":0.7}]]`))
	}))
	defer srv.Close()

	f := NewFinBERT(Config{Endpoint: srv.URL, APIToken: "tok", MaxInputChars: 5}, nil)
	out, err := f.Classify(context.Background(), []string{"héllo world"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(got) != 1 || got[0] != "héllo" {
		t.Fatalf("expected truncated input, got %q", got)
	}
	if out[0].Label != "positive" {
		t.Fatalf("expected lower-cased label, got %q", out[0].Label)
	}
}

func TestClassifyEmptyInputSkipsCall(t *testing.T) {
	f := NewFinBERT(Config{Endpoint: "http://127.0.0.1:1", APIToken: "tok"}, nil)
	out, err := f.Classify(context.Background(), nil)
	if err != nil || len(out) != 0 {
		t.Fatalf("expected empty result, got %v %v", out, err)
	}
}
