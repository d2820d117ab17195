package domain

import (
	"fmt"
	"strings"
)

// IssueRecord is one row of the input sheet mapped to the issue that will be
// created from it. Records are immutable once derived; their order mirrors
// the row order of the input file and is also the creation order.
type IssueRecord struct {
	Title string
	Body  string
}

// TargetCollection is the owner-qualified repository issues are created in.
type TargetCollection struct {
	Owner string
	Name  string
}

// ResolveTarget builds the TargetCollection from the identifier the user
// supplied. An identifier that already contains a "/" is used verbatim;
// otherwise the authenticated identity becomes the owner.
func ResolveTarget(supplied string, identity string) (TargetCollection, error) {
	if owner, name, ok := strings.Cut(supplied, "/"); ok {
		if owner == "" || name == "" {
			return TargetCollection{}, fmt.Errorf("invalid repository identifier: %s", supplied)
		}
		return TargetCollection{Owner: owner, Name: name}, nil
	}
	if supplied == "" {
		return TargetCollection{}, fmt.Errorf("repository identifier is empty")
	}
	if identity == "" {
		return TargetCollection{}, fmt.Errorf("no authenticated identity to qualify repository %q", supplied)
	}
	return TargetCollection{Owner: identity, Name: supplied}, nil
}

func (t TargetCollection) String() string {
	return t.Owner + "/" + t.Name
}

// CreationResult is the per-record outcome of one issue-creation call.
// A success carries the number the provider assigned to the new issue;
// a failure carries the error (an *APIError for provider rejections).
type CreationResult struct {
	Index  int
	Record IssueRecord
	Number int
	Err    error
}

// OK reports whether the record was created.
func (r CreationResult) OK() bool {
	return r.Err == nil
}
