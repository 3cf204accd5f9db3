package teams

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPostSendsMessageCard(t *testing.T) {
	var got Card
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := &NotifierImpl{
		Webhooks:   map[string]string{CategoryStock: srv.URL},
		HttpClient: &http.Client{Timeout: time.Second},
	}

	card := NewCard("Back in stock", "SKU-1 is available", "2DC72D", Fact{Name: "Quantity", Value: "5"})
	if err := n.Post(context.Background(), CategoryStock, card); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if got.Type != "MessageCard" || got.Title != "Back in stock" || len(got.Sections) != 1 {
		t.Errorf("card = %+v", got)
	}
}

func TestPostUnconfiguredCategoryIsNoop(t *testing.T) {
	n := &NotifierImpl{Webhooks: map[string]string{}, HttpClient: http.DefaultClient}
	if err := n.Post(context.Background(), CategorySync, Card{}); err != nil {
		t.Errorf("Post() error = %v", err)
	}
}

func TestPostNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("Summary or Text is required"))
	}))
	defer srv.Close()

	n := &NotifierImpl{
		Webhooks:   map[string]string{CategorySync: srv.URL},
		HttpClient: &http.Client{Timeout: time.Second},
	}
	if err := n.Post(context.Background(), CategorySync, Card{}); err == nil {
		t.Error("expected error for 400 response")
	}
}
