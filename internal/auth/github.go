package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/willbl/issuesheet/internal/domain"
)

const defaultBaseURL = "https://github.com"

// Flow implements the OAuth 2.0 Device Authorization Flow against GitHub.
// See https://docs.github.com/en/apps/oauth-apps/building-oauth-apps/authorizing-oauth-apps#device-flow
type Flow struct {
	clientID string
	scope    string
	baseURL  string
	client   *http.Client
}

// NewFlow creates a Flow for the given OAuth app client ID.
// Pass an empty baseURL to use the real GitHub endpoints. Pass a test server
// URL in tests.
func NewFlow(clientID string, scope string, baseURL string) *Flow {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Flow{
		clientID: clientID,
		scope:    scope,
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// RequestCode asks the provider for a device/user code pair. The returned
// grant's UserCode must be shown to the user along with VerificationURI.
// A non-success response is fatal: the flow is not retried, and the error
// carries the status line and raw response body verbatim.
func (f *Flow) RequestCode(ctx context.Context) (DeviceGrant, error) {
	query := url.Values{}
	query.Set("client_id", f.clientID)
	if f.scope != "" {
		query.Set("scope", f.scope)
	}

	resp, err := f.post(ctx, "/login/device/code", query)
	if err != nil {
		return DeviceGrant{}, fmt.Errorf("requesting device code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return DeviceGrant{}, fmt.Errorf("requesting device code: %w", &domain.APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		})
	}

	var raw struct {
		DeviceCode      string `json:"device_code"`
		UserCode        string `json:"user_code"`
		VerificationURI string `json:"verification_uri"`
		ExpiresIn       int    `json:"expires_in"`
		Interval        int    `json:"interval"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return DeviceGrant{}, fmt.Errorf("decoding device code response: %w", err)
	}
	return DeviceGrant{
		DeviceCode:      raw.DeviceCode,
		UserCode:        raw.UserCode,
		VerificationURI: raw.VerificationURI,
		ExpiresIn:       raw.ExpiresIn,
		Interval:        raw.Interval,
		ReceivedAt:      time.Now(),
	}, nil
}

// PollToken polls the token endpoint until the user completes authorization
// or the grant expires. Each iteration waits the grant's interval first, so
// the first poll never happens sooner than one interval after grant receipt.
//
// Transport failures and provider error payloads are both treated as "not
// yet authorized" and polled through; the deadline is the only bound on the
// loop. That includes access_denied — the provider keeps answering until the
// device code expires, so a denied flow surfaces as a timeout. The one error
// code acted on is slow_down, which raises the interval by 5 seconds as the
// provider instructs. ctx cancellation aborts the wait and any in-flight
// request.
func (f *Flow) PollToken(ctx context.Context, grant DeviceGrant) (AccessToken, error) {
	interval := time.Duration(grant.Interval) * time.Second
	deadline := grant.ReceivedAt.Add(time.Duration(grant.ExpiresIn) * time.Second)

	query := url.Values{}
	query.Set("client_id", f.clientID)
	query.Set("device_code", grant.DeviceCode)
	query.Set("grant_type", "urn:ietf:params:oauth:grant-type:device_code")

	for {
		if interval > 0 {
			timer := time.NewTimer(interval)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return AccessToken{}, ctx.Err()
			}
		} else if err := ctx.Err(); err != nil {
			return AccessToken{}, err
		}

		if !time.Now().Before(deadline) {
			return AccessToken{}, domain.ErrAuthTimeout
		}

		resp, err := f.post(ctx, "/login/oauth/access_token", query)
		if err != nil {
			if ctx.Err() != nil {
				return AccessToken{}, ctx.Err()
			}
			// transient network failure, keep polling
			continue
		}

		var raw struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
			Error       string `json:"error"`
		}
		ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
		decodeErr := json.NewDecoder(resp.Body).Decode(&raw)
		resp.Body.Close()
		if !ok || decodeErr != nil {
			continue
		}

		if raw.Error != "" {
			if raw.Error == "slow_down" {
				interval += 5 * time.Second
			}
			continue
		}
		if raw.AccessToken == "" {
			// neither token nor error, treat as a pending response
			continue
		}
		return AccessToken{Token: raw.AccessToken, Type: raw.TokenType}, nil
	}
}

func (f *Flow) post(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	endpoint, err := url.JoinPath(f.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("building URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return f.client.Do(req)
}
