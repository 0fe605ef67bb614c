package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/constelviz/constel/pkg/config"
)

func testCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	return &CLI{
		Logger: log.NewWithOptions(io.Discard, log.Options{}),
		Config: config.Default(),
	}
}

func TestNewRunnerSendsConfiguredBearerToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`{"connections": []}`))
	}))
	defer srv.Close()

	c := testCLI(t)
	c.Config.Payload.BearerToken = "secret-token"

	runner, err := c.newRunner(context.Background(), false)
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	defer runner.Close()

	if _, err := runner.Client.FetchPayload(context.Background(), srv.URL); err != nil {
		t.Fatalf("FetchPayload: %v", err)
	}
	if auth != "Bearer secret-token" {
		t.Errorf("Authorization = %q, want configured bearer token", auth)
	}
}

func TestNewRunnerCachesPayloadResponses(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"connections": []}`))
	}))
	defer srv.Close()

	c := testCLI(t)
	runner, err := c.newRunner(context.Background(), false)
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	defer runner.Close()

	for i := 0; i < 2; i++ {
		if _, err := runner.Client.FetchPayload(context.Background(), srv.URL); err != nil {
			t.Fatalf("FetchPayload %d: %v", i, err)
		}
	}
	if hits != 1 {
		t.Errorf("upstream hit %d times, want 1 (second fetch served from the response cache)", hits)
	}
}
