// Package github downloads repository archives from GitHub.
//
// The client resolves the zipball link for owner/name at an optional ref
// through the REST API, then streams the archive. Public repositories work
// without a token. Private repositories need a personal access token with
// read access to contents.
//
// # Rate Limiting
//
// Requests are throttled proactively with a token bucket and reactively from
// the X-RateLimit-Remaining and X-RateLimit-Reset headers. A 429 or an
// exhausted 403 is reported as a [RateLimitError].
//
// # Example Usage
//
//	client := github.NewClient(ctx, token)
//	repo, _ := domain.ParseRepoRef("octo/widgets@main")
//	if err := client.FetchArchive(ctx, repo, f); err != nil {
//	    return err
//	}
package github
