package driven

import "context"

// PromptStore provides access to mode instruction templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// PromptWatcher is an optional interface for stores that can observe
// edits on disk and invalidate their cache.
type PromptWatcher interface {
	// Watch blocks until ctx is cancelled, calling Reload on every change.
	Watch(ctx context.Context) error
}

// Well-known prompt names, one per operating mode.
// Each template contains a {context} placeholder that is informative only:
// grounding is sent as a separate message and never substituted.
const (
	// PromptAnalyzer explains structure, purpose and architecture.
	PromptAnalyzer = "analyzer"

	// PromptDebugger finds bugs, performance problems and fixes.
	PromptDebugger = "debugger"

	// PromptDeveloper carries the BEGIN/END FILE output contract.
	PromptDeveloper = "developer"
)
