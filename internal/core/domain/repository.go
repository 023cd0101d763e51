package domain

import (
	"fmt"
	"strings"
)

// RepoRef names a hosted repository and an optional ref (branch, tag or
// commit). An empty Ref means the default branch.
type RepoRef struct {
	Owner string
	Name  string
	Ref   string
}

// ParseRepoRef parses "owner/name" or "owner/name@ref".
func ParseRepoRef(s string) (RepoRef, error) {
	path, ref, hasRef := strings.Cut(strings.TrimSpace(s), "@")
	if hasRef && ref == "" {
		return RepoRef{}, fmt.Errorf("%w: empty ref in %q", ErrInvalidInput, s)
	}
	owner, name, ok := strings.Cut(path, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepoRef{}, fmt.Errorf("%w: repository %q must be owner/name", ErrInvalidInput, s)
	}
	return RepoRef{Owner: owner, Name: name, Ref: ref}, nil
}

// String returns the owner/name[@ref] form.
func (r RepoRef) String() string {
	if r.Ref == "" {
		return r.Owner + "/" + r.Name
	}
	return r.Owner + "/" + r.Name + "@" + r.Ref
}
