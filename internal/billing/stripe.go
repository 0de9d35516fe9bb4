package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prysma/prysma/internal/platform/config"
	apperrors "github.com/prysma/prysma/internal/platform/errors"
)

const defaultStripeTimeout = 5 * time.Second

// stripeEnv holds raw env values before post-parse validation.
type stripeEnv struct {
	SecretKey string `env:"PRYSMA_STRIPE_SECRET_KEY"`
	BaseURL   string `env:"PRYSMA_STRIPE_BASE_URL" envDefault:"https://api.stripe.com"`
}

// StripeConfig defines how the Stripe client talks to the API.
type StripeConfig struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// LoadStripeConfigFromEnv reads Stripe configuration. A missing secret key
// is not an error: it means billing is disabled for this deployment.
func LoadStripeConfigFromEnv() (StripeConfig, error) {
	var raw stripeEnv
	if err := config.ParseEnv(&raw); err != nil {
		return StripeConfig{}, fmt.Errorf("stripe config: %w", err)
	}
	return StripeConfig{
		SecretKey: strings.TrimSpace(raw.SecretKey),
		BaseURL:   strings.TrimRight(strings.TrimSpace(raw.BaseURL), "/"),
		Timeout:   defaultStripeTimeout,
	}, nil
}

// Enabled reports whether a Stripe client can be constructed.
func (c StripeConfig) Enabled() bool {
	return c.SecretKey != ""
}

// StripeClient cancels subscriptions over the Stripe REST API.
type StripeClient struct {
	config     StripeConfig
	httpClient *http.Client
}

var _ Provider = (*StripeClient)(nil)

// NewStripeClient builds a Stripe billing provider.
func NewStripeClient(config StripeConfig) *StripeClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultStripeTimeout
	}
	return &StripeClient{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// stripeErrorBody is the subset of Stripe's error envelope worth logging.
type stripeErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CancelSubscription cancels immediately without proration.
//
// A 404 reports success: the subscription is already gone, which is exactly
// the state account teardown wants.
func (c *StripeClient) CancelSubscription(ctx context.Context, subscriptionID string) error {
	if c == nil || c.httpClient == nil {
		return apperrors.New(apperrors.CodeBilling, "stripe client is not configured")
	}
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return apperrors.New(apperrors.CodeBilling, "subscription id is required")
	}

	endpoint := fmt.Sprintf("%s/v1/subscriptions/%s", c.config.BaseURL, url.PathEscape(subscriptionID))
	form := url.Values{}
	form.Set("prorate", "false")

	request, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeBilling, "build cancellation request", err)
	}
	request.Header.Set("Authorization", "Bearer "+c.config.SecretKey)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeBilling, "call stripe", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, response.Body)
		_ = response.Body.Close()
	}()

	switch {
	case response.StatusCode >= 200 && response.StatusCode < 300:
		return nil
	case response.StatusCode == http.StatusNotFound:
		return nil
	default:
		var body stripeErrorBody
		_ = json.NewDecoder(io.LimitReader(response.Body, 4096)).Decode(&body)
		return apperrors.WithMetadata(
			apperrors.CodeBilling,
			fmt.Sprintf("stripe cancellation failed with status %d", response.StatusCode),
			map[string]string{
				"StripeType": body.Error.Type,
				"StripeCode": body.Error.Code,
			},
		)
	}
}
