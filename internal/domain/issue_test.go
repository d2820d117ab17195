package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/willbl/issuesheet/internal/domain"
)

func TestResolveTarget_UnqualifiedUsesIdentity(t *testing.T) {
	target, err := domain.ResolveTarget("myrepo", "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.String() != "alice/myrepo" {
		t.Errorf("expected 'alice/myrepo', got '%s'", target)
	}
}

func TestResolveTarget_QualifiedUsedVerbatim(t *testing.T) {
	target, err := domain.ResolveTarget("bob/myrepo", "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.String() != "bob/myrepo" {
		t.Errorf("expected 'bob/myrepo', got '%s'", target)
	}
}

func TestResolveTarget_EmptyIdentifier(t *testing.T) {
	if _, err := domain.ResolveTarget("", "alice"); err == nil {
		t.Fatal("expected error for empty identifier, got nil")
	}
}

func TestResolveTarget_MalformedIdentifier(t *testing.T) {
	// Identifiers with a separator but an empty owner or name are rejected
	// locally instead of being sent to the provider as-is.
	for _, supplied := range []string{"/myrepo", "myrepo/"} {
		if _, err := domain.ResolveTarget(supplied, "alice"); err == nil {
			t.Errorf("expected error for identifier %q, got nil", supplied)
		}
	}
}

func TestCreationResult_OK(t *testing.T) {
	ok := domain.CreationResult{Index: 0, Number: 12}
	if !ok.OK() {
		t.Error("result without error should be OK")
	}
	failed := domain.CreationResult{Index: 1, Err: &domain.APIError{StatusCode: 422, Status: "422 Unprocessable Entity"}}
	if failed.OK() {
		t.Error("result with error should not be OK")
	}
}

func TestAPIError_MessageIncludesBody(t *testing.T) {
	err := &domain.APIError{StatusCode: 403, Status: "403 Forbidden", Body: `{"message":"rate limited"}`}
	want := `403 Forbidden: {"message":"rate limited"}`
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestErrAuthTimeout_MatchesWithErrorsIs(t *testing.T) {
	wrapped := fmt.Errorf("authentication failed: %w", domain.ErrAuthTimeout)
	if !errors.Is(wrapped, domain.ErrAuthTimeout) {
		t.Error("wrapped timeout should match ErrAuthTimeout")
	}
}
