// Package oembed proxies media-highlight embed lookups to provider oEmbed
// endpoints. Responses pass through untouched; formatting belongs to the
// frontend.
package oembed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/prysma/prysma/internal/platform/errors"
)

const (
	defaultTimeout  = 5 * time.Second
	maxResponseSize = 1 << 20
)

// Provider maps one allowlisted media host to its oEmbed endpoint.
type Provider struct {
	Name     string
	Hosts    []string
	Endpoint string
}

// DefaultProviders is the supported media-highlight provider allowlist.
func DefaultProviders() []Provider {
	return []Provider{
		{
			Name:     "youtube",
			Hosts:    []string{"youtube.com", "youtu.be"},
			Endpoint: "https://www.youtube.com/oembed",
		},
		{
			Name:     "vimeo",
			Hosts:    []string{"vimeo.com"},
			Endpoint: "https://vimeo.com/api/oembed.json",
		},
		{
			Name:     "spotify",
			Hosts:    []string{"spotify.com"},
			Endpoint: "https://open.spotify.com/oembed",
		},
		{
			Name:     "soundcloud",
			Hosts:    []string{"soundcloud.com"},
			Endpoint: "https://soundcloud.com/oembed",
		},
	}
}

// Config controls provider resolution and upstream timeouts.
type Config struct {
	// Providers is the host allowlist. Nil means DefaultProviders.
	Providers []Provider
	// Timeout bounds one upstream lookup. Zero means a few seconds.
	Timeout time.Duration
}

// Client resolves embed URLs against allowlisted providers.
type Client struct {
	providers  []Provider
	httpClient *http.Client
}

// NewClient builds an oEmbed proxy client.
func NewClient(cfg Config) *Client {
	providers := cfg.Providers
	if providers == nil {
		providers = DefaultProviders()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		providers:  providers,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Resolve fetches the oEmbed document for one media URL.
//
// The returned bytes are the provider's JSON response verbatim.
func (c *Client) Resolve(ctx context.Context, mediaURL string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("oembed client is not configured")
	}
	mediaURL = strings.TrimSpace(mediaURL)
	if mediaURL == "" {
		return nil, apperrors.New(apperrors.CodeEmbedUnsupportedProvider, "media url is required")
	}
	parsed, err := url.Parse(mediaURL)
	if err != nil || parsed.Scheme != "https" && parsed.Scheme != "http" || parsed.Host == "" {
		return nil, apperrors.New(apperrors.CodeEmbedUnsupportedProvider, "media url is not a valid http(s) url")
	}

	provider, ok := c.match(parsed.Hostname())
	if !ok {
		return nil, apperrors.WithMetadata(apperrors.CodeEmbedUnsupportedProvider,
			"media host is not an allowlisted provider",
			map[string]string{"host": parsed.Hostname()})
	}

	endpoint := provider.Endpoint + "?" + url.Values{
		"url":    []string{mediaURL},
		"format": []string{"json"},
	}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build oembed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEmbedUpstreamFailure, provider.Name+" oembed lookup", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.WithMetadata(apperrors.CodeEmbedUpstreamFailure,
			provider.Name+" oembed lookup failed",
			map[string]string{"status": resp.Status})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEmbedUpstreamFailure, "read oembed response", err)
	}
	return body, nil
}

// match resolves a hostname against the allowlist, including subdomains.
func (c *Client) match(host string) (Provider, bool) {
	host = strings.ToLower(host)
	for _, provider := range c.providers {
		for _, allowed := range provider.Hosts {
			if host == allowed || strings.HasSuffix(host, "."+allowed) {
				return provider, true
			}
		}
	}
	return Provider{}, false
}
