package finnhub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SentiPull/pkg/config"
)

func newTestClient(url, key string) *Client {
	return New(Config{APIKey: key, BaseURL: url, Timeout: time.Second}, nil, nil, nil)
}

func TestFetchArticlesSingleDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/company-news" || q.Get("from") != "2024-03-05" || q.Get("to") != "2024-03-05" || q.Get("token") != "k" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`[{"headline":"Apple beats","summary":"Strong quarter","url":"u","source":"Reuters","datetime":1709640000}]`))
	}))
	defer srv.Close()

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	got, err := newTestClient(srv.URL, "k").FetchArticles(context.Background(), "AAPL", day)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 || got[0].Headline != "Apple beats" || got[0].Summary != "Strong quarter" {
		t.Fatalf("unexpected articles %+v", got)
	}
}

func TestFetchArticlesServerErrorIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL, "k").FetchArticles(context.Background(), "AAPL", time.Now())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}

func TestFetchArticlesBadJSONIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL, "k").FetchArticles(context.Background(), "AAPL", time.Now())
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v %v", got, err)
	}
}

func TestFetchArticlesMissingKey(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:1", "").FetchArticles(context.Background(), "AAPL", time.Now())
	if !errors.Is(err, config.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestInsiderTransactionsParsesChanges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"symbol":"AAPL","data":[
			{"name":"A","change":100,"transactionDate":"2024-01-02","filingDate":"2024-01-03","transactionCode":"P"},
			{"name":"B","change":-50,"transactionDate":"2024-01-04","filingDate":"2024-01-05","transactionCode":"S"}]}`))
	}))
	defer srv.Close()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := newTestClient(srv.URL, "k").InsiderTransactions(context.Background(), "AAPL", from, from.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("insider: %v", err)
	}
	if len(got) != 2 || got[0].Change != 100 || got[1].Change != -50 {
		t.Fatalf("unexpected transactions %+v", got)
	}
	if got[1].TransactionDate.Day() != 4 {
		t.Fatalf("unexpected transaction date %v", got[1].TransactionDate)
	}
}

func TestDailyCandlesNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("resolution") != "D" {
			t.Errorf("expected daily resolution")
		}
		_, _ = w.Write([]byte(`{"s":"no_data"}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL, "k").DailyCandles(context.Background(), "AAPL", time.Now().AddDate(0, 0, -5), time.Now())
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty candles, got %v %v", got, err)
	}
}

func TestDailyCandlesParsesColumns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"s":"ok","t":[1704153600,1704240000],"o":[1,2],"h":[3,4],"l":[0.5,1.5],"c":[2,3],"v":[10,20]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL, "k").DailyCandles(context.Background(), "AAPL", time.Now(), time.Now())
	if err != nil {
		t.Fatalf("candles: %v", err)
	}
	if len(got) != 2 || got[1].Close != 3 || got[0].Date.Format("2006-01-02") != "2024-01-02" {
		t.Fatalf("unexpected candles %+v", got)
	}
}
