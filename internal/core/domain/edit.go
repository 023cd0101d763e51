package domain

// FileEdit is one full-file proposal parsed from a developer-mode response.
// It exists only for the duration of a single response.
type FileEdit struct {
	Path    string
	Content string
}

// Interpretation is the post-processed form of a raw model response.
type Interpretation struct {
	// Display is the text shown to the user.
	Display string

	// Edits holds the parsed file blocks in capture order.
	// Always empty outside developer mode.
	Edits []FileEdit
}

// EditMap returns the edits keyed by path. A later block for the same
// path replaces an earlier one.
func (i Interpretation) EditMap() map[string]string {
	m := make(map[string]string, len(i.Edits))
	for _, e := range i.Edits {
		m[e.Path] = e.Content
	}
	return m
}
