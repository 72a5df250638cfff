package hn

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"hndigest/internal/config"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1, 2, 3, 4, 5]`))
	})
	mux.HandleFunc("/item/1.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"type":"story","title":"OpenAI releases GPT-5","url":"https://openai.com","score":200,"by":"pg","time":1700000000,"descendants":42}`))
	})
	mux.HandleFunc("/item/2.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":2,"type":"job","title":"Hiring engineers","score":1}`))
	})
	mux.HandleFunc("/item/3.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":3,"type":"story","title":"Ask HN: anything","score":10,"by":"user"}`))
	})
	mux.HandleFunc("/item/4.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/item/5.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testConfig(baseURL string) config.HackerNewsConfig {
	return config.HackerNewsConfig{
		BaseURL:        baseURL,
		PagesToScan:    2,
		StoriesPerPage: 30,
	}
}

func TestTopStories(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	client := NewClient(testConfig(server.URL), server.Client(), nil)

	stories, err := client.TopStories(context.Background())
	if err != nil {
		t.Fatalf("TopStories error: %v", err)
	}

	// Item 2 is a job, item 4 errors, item 5 is missing; 1 and 3 remain.
	if len(stories) != 2 {
		t.Fatalf("expected 2 stories, got %d", len(stories))
	}

	if stories[0].ID != 1 {
		t.Fatalf("unexpected first story id: %d", stories[0].ID)
	}
	if stories[0].Title != "OpenAI releases GPT-5" {
		t.Fatalf("unexpected title: %s", stories[0].Title)
	}
	if stories[0].Score != 200 || stories[0].Descendants != 42 {
		t.Fatalf("unexpected metrics: score=%d descendants=%d", stories[0].Score, stories[0].Descendants)
	}

	if stories[1].ID != 3 {
		t.Fatalf("unexpected second story id: %d", stories[1].ID)
	}
	if stories[1].URL != "" {
		t.Fatalf("missing url must default to empty, got %q", stories[1].URL)
	}
}

func TestTopStoriesTruncatesToConfiguredPages(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		ids := "["
		for i := 0; i < 100; i++ {
			if i > 0 {
				ids += ","
			}
			ids += fmt.Sprintf("%d", i+1)
		}
		ids += "]"
		_, _ = w.Write([]byte(ids))
	})

	var itemRequests int
	mux.HandleFunc("/item/", func(w http.ResponseWriter, r *http.Request) {
		itemRequests++
		_, _ = w.Write([]byte(`{"id":1,"type":"story","title":"t","score":1}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := config.HackerNewsConfig{BaseURL: server.URL, PagesToScan: 1, StoriesPerPage: 10}
	client := NewClient(cfg, server.Client(), nil)

	if _, err := client.TopStories(context.Background()); err != nil {
		t.Fatalf("TopStories error: %v", err)
	}

	if itemRequests != 10 {
		t.Fatalf("expected 10 item requests, got %d", itemRequests)
	}
}

func TestTopStoriesListFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), server.Client(), nil)

	if _, err := client.TopStories(context.Background()); err == nil {
		t.Fatal("expected error when the top-stories list cannot be fetched")
	}
}
