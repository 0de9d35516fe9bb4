package oembed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/prysma/prysma/internal/platform/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		Providers: []Provider{
			{Name: "youtube", Hosts: []string{"youtube.com", "youtu.be"}, Endpoint: server.URL},
		},
	})
}

func TestResolvePassesThroughProviderJSON(t *testing.T) {
	t.Parallel()

	var gotURL, gotFormat string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.Query().Get("url")
		gotFormat = r.URL.Query().Get("format")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"clip","html":"<iframe></iframe>"}`))
	})

	body, err := client.Resolve(context.Background(), "https://www.youtube.com/watch?v=abc123")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if string(body) != `{"title":"clip","html":"<iframe></iframe>"}` {
		t.Fatalf("body = %s", body)
	}
	if gotURL != "https://www.youtube.com/watch?v=abc123" {
		t.Fatalf("url param = %q", gotURL)
	}
	if gotFormat != "json" {
		t.Fatalf("format param = %q, want json", gotFormat)
	}
}

func TestResolveRejectsUnknownHost(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called for unknown hosts")
	})

	_, err := client.Resolve(context.Background(), "https://evil.example.com/watch?v=abc")
	if apperrors.GetCode(err) != apperrors.CodeEmbedUnsupportedProvider {
		t.Fatalf("code = %v, want unsupported provider", apperrors.GetCode(err))
	}
}

func TestResolveRejectsNonHTTPURL(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{})
	_, err := client.Resolve(context.Background(), "ftp://youtube.com/thing")
	if apperrors.GetCode(err) != apperrors.CodeEmbedUnsupportedProvider {
		t.Fatalf("code = %v, want unsupported provider", apperrors.GetCode(err))
	}
}

func TestResolveReportsUpstreamFailure(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Resolve(context.Background(), "https://youtu.be/abc123")
	if apperrors.GetCode(err) != apperrors.CodeEmbedUpstreamFailure {
		t.Fatalf("code = %v, want upstream failure", apperrors.GetCode(err))
	}
}

func TestDefaultProvidersCoverKnownHosts(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{})
	for _, host := range []string{"www.youtube.com", "youtu.be", "vimeo.com", "open.spotify.com", "soundcloud.com"} {
		if _, ok := client.match(host); !ok {
			t.Errorf("host %q not matched", host)
		}
	}
	if _, ok := client.match("notyoutube.com"); ok {
		t.Error("suffix match must not cross a dot boundary")
	}
}
