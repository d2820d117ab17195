// Package publish turns derived issue records into created issues on the
// remote provider, strictly in input order and stopping at the first failure.
package publish

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/willbl/issuesheet/internal/auth"
	"github.com/willbl/issuesheet/internal/domain"
)

// Publisher creates issues on behalf of the authenticated user.
type Publisher struct {
	client *github.Client
}

// New creates a Publisher from the access token issued by the device flow.
func New(ctx context.Context, token auth.AccessToken) *Publisher {
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token.Token,
		TokenType:   token.Type,
	})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = 15 * time.Second
	return &Publisher{client: github.NewClient(tc)}
}

// NewWithBaseURL creates a Publisher pointed at a non-default API base URL.
// Pass a test server URL in tests.
func NewWithBaseURL(ctx context.Context, token auth.AccessToken, baseURL string) (*Publisher, error) {
	p := New(ctx, token)
	base, err := url.Parse(baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	p.client.BaseURL = base
	return p, nil
}

// Identity returns the login of the authenticated user. Failure is fatal to
// the run: there is no fallback identity.
func (p *Publisher) Identity(ctx context.Context) (string, error) {
	user, _, err := p.client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("looking up authenticated user: %w", apiError(err))
	}
	return user.GetLogin(), nil
}

// ResolveTarget resolves the collection issues will be created in. The
// identity lookup happens once, before the first creation call, and the
// result is held constant for the whole batch.
func (p *Publisher) ResolveTarget(ctx context.Context, supplied string) (domain.TargetCollection, error) {
	identity, err := p.Identity(ctx)
	if err != nil {
		return domain.TargetCollection{}, err
	}
	return domain.ResolveTarget(supplied, identity)
}

// Publish creates one issue per record, in input order, one call in flight
// at a time. Each outcome is handed to progress as soon as it is known. The
// first failure stops the batch: no further calls are made, nothing is
// retried, and issues already created stay created. Returns nil only if
// every record succeeded.
func (p *Publisher) Publish(ctx context.Context, target domain.TargetCollection, records []domain.IssueRecord, progress func(domain.CreationResult)) error {
	for i, record := range records {
		issue, _, err := p.client.Issues.Create(ctx, target.Owner, target.Name, &github.IssueRequest{
			Title: github.String(record.Title),
			Body:  github.String(record.Body),
		})
		if err != nil {
			result := domain.CreationResult{Index: i, Record: record, Err: apiError(err)}
			if progress != nil {
				progress(result)
			}
			return fmt.Errorf("creating issue %d of %d: %w", i+1, len(records), result.Err)
		}
		result := domain.CreationResult{Index: i, Record: record, Number: issue.GetNumber()}
		if progress != nil {
			progress(result)
		}
	}
	return nil
}

// apiError converts a go-github error response into a domain.APIError so the
// provider's status and error detail reach the user verbatim.
func apiError(err error) error {
	var ger *github.ErrorResponse
	if errors.As(err, &ger) && ger.Response != nil {
		parts := make([]string, 0, 1+len(ger.Errors))
		if ger.Message != "" {
			parts = append(parts, ger.Message)
		}
		for _, e := range ger.Errors {
			if e.Message != "" {
				parts = append(parts, e.Message)
			}
		}
		body := strings.Join(parts, "; ")
		if body == "" {
			body = ger.Error()
		}
		return &domain.APIError{
			StatusCode: ger.Response.StatusCode,
			Status:     ger.Response.Status,
			Body:       body,
		}
	}
	return err
}
