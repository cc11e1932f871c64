package geocode_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/accessmaps/accessmap/internal/app/system/geocode"
	"go.uber.org/zap"
)

func TestForward_BlankQuery(t *testing.T) {
	c := geocode.New("token", zap.NewNop())

	places, err := c.Forward(context.Background(), "   ", 5)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if len(places) != 0 {
		t.Errorf("expected no places for blank query, got %d", len(places))
	}
}

func TestForward_NotConfigured(t *testing.T) {
	c := geocode.New("", zap.NewNop())

	_, err := c.Forward(context.Background(), "library", 5)
	if !errors.Is(err, geocode.ErrNotConfigured) {
		t.Errorf("got %v, want ErrNotConfigured", err)
	}
}

func TestForward_ParsesPlaces(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features":[
			{"place_name":"Main Library","center":[-122.016,37.564]},
			{"place_name":"Annex","center":[-122.017,37.565]},
			{"place_name":"malformed","center":[1]}
		]}`))
	}))
	defer srv.Close()

	c := geocode.New("secret-token", zap.NewNop()).WithBaseURL(srv.URL)

	places, err := c.Forward(context.Background(), "library", 5)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if len(places) != 2 {
		t.Fatalf("expected 2 places (malformed feature dropped), got %d", len(places))
	}
	if places[0].Name != "Main Library" || places[0].Lng != -122.016 || places[0].Lat != 37.564 {
		t.Errorf("first place: %+v", places[0])
	}

	if !strings.HasSuffix(gotPath, "/library.json") {
		t.Errorf("path: got %q", gotPath)
	}
	if !strings.Contains(gotQuery, "access_token=secret-token") || !strings.Contains(gotQuery, "limit=5") {
		t.Errorf("query: got %q", gotQuery)
	}
}

func TestForward_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := geocode.New("bad-token", zap.NewNop()).WithBaseURL(srv.URL)

	if _, err := c.Forward(context.Background(), "library", 5); err == nil {
		t.Error("expected error on upstream failure")
	}
}

func TestForward_DefaultLimit(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	c := geocode.New("token", zap.NewNop()).WithBaseURL(srv.URL)
	if _, err := c.Forward(context.Background(), "gym", 0); err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if !strings.Contains(gotQuery, "limit=5") {
		t.Errorf("query: got %q, want default limit 5", gotQuery)
	}
}
