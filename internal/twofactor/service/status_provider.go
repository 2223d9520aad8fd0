package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/allisson/stepup/internal/errors"
	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
)

// HTTPStatusProvider fetches two-factor state from the admin platform's REST
// API. Concurrent identical lookups are collapsed with singleflight so a
// burst of decisions for one principal produces a single upstream request.
// Responses are never cached: every decision observes provider state no
// older than its own in-flight window.
type HTTPStatusProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	group      singleflight.Group
}

// NewHTTPStatusProvider creates a provider client for the given base URL.
// The apiKey is optional; when set it is sent as X-Api-Key on every request.
func NewHTTPStatusProvider(baseURL, apiKey string, timeout time.Duration) *HTTPStatusProvider {
	return &HTTPStatusProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Status returns whether the given principal has two-factor enabled.
// Calls GET {baseURL}/two-factor/status?principal_id={principalID}.
func (p *HTTPStatusProvider) Status(ctx context.Context, principalID string) (twofactorDomain.TwoFactorStatus, error) {
	key := "status:" + principalID
	value, err, _ := p.group.Do(key, func() (interface{}, error) {
		endpoint := fmt.Sprintf(
			"%s/two-factor/status?principal_id=%s",
			p.baseURL,
			url.QueryEscape(principalID),
		)

		var status twofactorDomain.TwoFactorStatus
		if err := p.get(ctx, endpoint, &status); err != nil {
			return nil, err
		}
		return status, nil
	})
	if err != nil {
		return twofactorDomain.TwoFactorStatus{}, err
	}

	return value.(twofactorDomain.TwoFactorStatus), nil
}

// Settings returns the platform-wide two-factor enforcement configuration.
// Calls GET {baseURL}/two-factor/settings.
func (p *HTTPStatusProvider) Settings(ctx context.Context) (twofactorDomain.TwoFactorSettings, error) {
	value, err, _ := p.group.Do("settings", func() (interface{}, error) {
		endpoint := p.baseURL + "/two-factor/settings"

		var settings twofactorDomain.TwoFactorSettings
		if err := p.get(ctx, endpoint, &settings); err != nil {
			return nil, err
		}
		return settings, nil
	})
	if err != nil {
		return twofactorDomain.TwoFactorSettings{}, err
	}

	return value.(twofactorDomain.TwoFactorSettings), nil
}

// get performs a single GET request against the provider and decodes the
// JSON response into target. Any transport failure or non-2xx status maps
// to ErrProviderUnavailable so callers fail closed.
func (p *HTTPStatusProvider) get(ctx context.Context, endpoint string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperrors.Wrap(err, "failed to create two-factor provider request")
	}

	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("X-Api-Key", p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrapf(twofactorDomain.ErrProviderUnavailable, "request failed: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrapf(twofactorDomain.ErrProviderUnavailable, "failed to read response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.Wrapf(twofactorDomain.ErrProviderUnavailable, "unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return apperrors.Wrapf(twofactorDomain.ErrProviderUnavailable, "failed to decode response: %v", err)
	}

	return nil
}
